package handlers

import (
	"github.com/gin-gonic/gin"

	"retailops/internal/domain/storefront"
)

// StorefrontHandler serves public availability reads.
type StorefrontHandler struct {
	*BaseHandler
	service *storefront.Service
}

// NewStorefrontHandler creates a new storefront handler.
func NewStorefrontHandler(base *BaseHandler, service *storefront.Service) *StorefrontHandler {
	return &StorefrontHandler{BaseHandler: base, service: service}
}

// Availability handles GET /storefront/products/:id/availability
func (h *StorefrontHandler) Availability(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	availability, err := h.service.Availability(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=5")
	h.OK(c, availability)
}
