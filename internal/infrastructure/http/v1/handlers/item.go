package handlers

import (
	"github.com/gin-gonic/gin"

	"retailops/internal/core/apperror"
	"retailops/internal/domain/inventory"
	"retailops/internal/infrastructure/http/v1/dto"
)

// ItemHandler handles HTTP requests for inventory items.
type ItemHandler struct {
	*BaseHandler
	service *inventory.ItemService
	mirror  *inventory.Synchronizer
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service *inventory.ItemService, mirror *inventory.Synchronizer) *ItemHandler {
	return &ItemHandler{BaseHandler: base, service: service, mirror: mirror}
}

// List handles GET /items
func (h *ItemHandler) List(c *gin.Context) {
	warehouseID, ok := h.QueryID(c, "warehouseId")
	if !ok {
		return
	}
	filter := inventory.ItemFilter{
		ListFilter:  h.ListFilter(c),
		WarehouseID: warehouseID,
		Status:      inventory.Status(c.Query("status")),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		h.Error(c, apperror.NewValidation("invalid status").WithDetail("status", c.Query("status")))
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Create handles POST /items
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, item)
}

// Get handles GET /items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	itemID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// Update handles PUT /items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	itemID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.Update(c.Request.Context(), itemID, req.ToUpdate())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// Delete handles DELETE /items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	itemID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), itemID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Adjustments handles GET /items/:id/adjustments
func (h *ItemHandler) Adjustments(c *gin.Context) {
	itemID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	filter := inventory.AdjustmentFilter{ListFilter: h.ListFilter(c), ItemID: &itemID}

	result, err := h.service.Adjustments(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// History handles GET /items/:id/history
func (h *ItemHandler) History(c *gin.Context) {
	itemID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	entries, err := h.service.History(c.Request.Context(), itemID, h.ParseIntQuery(c, "limit", 50))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": entries})
}

// Sync handles POST /items/:id/sync, pushing the item's stock into its mirrors.
func (h *ItemHandler) Sync(c *gin.Context) {
	itemID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	report, err := h.mirror.SyncItem(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}
