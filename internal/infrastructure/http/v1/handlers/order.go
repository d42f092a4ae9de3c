package handlers

import (
	"github.com/gin-gonic/gin"

	"retailops/internal/domain/inventory"
	"retailops/internal/domain/sales"
	"retailops/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles sales orders.
type OrderHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *sales.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), sales.OrderFilter{
		ListFilter: h.ListFilter(c),
		Status:     sales.OrderStatus(c.Query("status")),
		Source:     inventory.Source(c.Query("source")),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Create handles POST /orders. The order is created even when some stock lines
// fail; the per-line outcome is part of the response.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Create(c.Request.Context(), order)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.service.Get(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// Cancel handles POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	result, err := h.service.Cancel(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Return handles POST /orders/:id/return
func (h *OrderHandler) Return(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	result, err := h.service.Return(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}
