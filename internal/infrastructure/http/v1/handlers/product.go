package handlers

import (
	"github.com/gin-gonic/gin"

	"retailops/internal/domain/inventory"
	"retailops/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles POS and online products.
type ProductHandler struct {
	*BaseHandler
	service *inventory.ProductService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *inventory.ProductService) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// ListPOS handles GET /pos-products
func (h *ProductHandler) ListPOS(c *gin.Context) {
	itemID, ok := h.QueryID(c, "itemId")
	if !ok {
		return
	}
	warehouseID, ok := h.QueryID(c, "warehouseId")
	if !ok {
		return
	}

	result, err := h.service.ListPOSProducts(c.Request.Context(), inventory.POSProductFilter{
		ListFilter:  h.ListFilter(c),
		ItemID:      itemID,
		WarehouseID: warehouseID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// CreatePOS handles POST /pos-products
func (h *ProductHandler) CreatePOS(c *gin.Context) {
	var req dto.CreatePOSProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.CreatePOSProduct(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// GetPOS handles GET /pos-products/:id
func (h *ProductHandler) GetPOS(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.GetPOSProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// ListOnline handles GET /online-products
func (h *ProductHandler) ListOnline(c *gin.Context) {
	result, err := h.service.ListOnlineProducts(c.Request.Context(), inventory.OnlineProductFilter{
		ListFilter:    h.ListFilter(c),
		PublishedOnly: c.Query("published") == "true",
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// CreateOnline handles POST /online-products
func (h *ProductHandler) CreateOnline(c *gin.Context) {
	var req dto.CreateOnlineProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.CreateOnlineProduct(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// GetOnline handles GET /online-products/:id
func (h *ProductHandler) GetOnline(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.GetOnlineProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}
