package handlers

import (
	"github.com/gin-gonic/gin"

	"retailops/internal/domain/purchasing"
	"retailops/internal/infrastructure/http/v1/dto"
)

// PurchasingHandler handles purchase orders and bills.
type PurchasingHandler struct {
	*BaseHandler
	service *purchasing.Service
}

// NewPurchasingHandler creates a new purchasing handler.
func NewPurchasingHandler(base *BaseHandler, service *purchasing.Service) *PurchasingHandler {
	return &PurchasingHandler{BaseHandler: base, service: service}
}

// ListPurchaseOrders handles GET /purchase-orders
func (h *PurchasingHandler) ListPurchaseOrders(c *gin.Context) {
	result, err := h.service.ListPurchaseOrders(c.Request.Context(), purchasing.PurchaseOrderFilter{
		ListFilter: h.ListFilter(c),
		Status:     purchasing.PurchaseOrderStatus(c.Query("status")),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// CreatePurchaseOrder handles POST /purchase-orders
func (h *PurchasingHandler) CreatePurchaseOrder(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	po, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	created, err := h.service.CreatePurchaseOrder(c.Request.Context(), po)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, created)
}

// GetPurchaseOrder handles GET /purchase-orders/:id
func (h *PurchasingHandler) GetPurchaseOrder(c *gin.Context) {
	poID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	po, err := h.service.GetPurchaseOrder(c.Request.Context(), poID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, po)
}

// CancelPurchaseOrder handles POST /purchase-orders/:id/cancel
func (h *PurchasingHandler) CancelPurchaseOrder(c *gin.Context) {
	poID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	po, err := h.service.CancelPurchaseOrder(c.Request.Context(), poID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, po)
}

// ReceivePurchaseOrder handles POST /purchase-orders/:id/receive and returns the
// bill created for the receipt.
func (h *PurchasingHandler) ReceivePurchaseOrder(c *gin.Context) {
	poID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	result, err := h.service.ReceivePurchaseOrder(c.Request.Context(), poID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// ListBills handles GET /bills
func (h *PurchasingHandler) ListBills(c *gin.Context) {
	result, err := h.service.ListBills(c.Request.Context(), purchasing.BillFilter{
		ListFilter: h.ListFilter(c),
		Status:     purchasing.BillStatus(c.Query("status")),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// CreateBill handles POST /bills
func (h *PurchasingHandler) CreateBill(c *gin.Context) {
	var req dto.CreateBillRequest
	if !h.BindJSON(c, &req) {
		return
	}
	bill, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	result, err := h.service.CreateBill(c.Request.Context(), bill)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// GetBill handles GET /bills/:id
func (h *PurchasingHandler) GetBill(c *gin.Context) {
	billID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	bill, err := h.service.GetBill(c.Request.Context(), billID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, bill)
}

// VoidBill handles POST /bills/:id/void
func (h *PurchasingHandler) VoidBill(c *gin.Context) {
	billID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	result, err := h.service.VoidBill(c.Request.Context(), billID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}
