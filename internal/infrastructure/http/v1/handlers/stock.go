package handlers

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"retailops/internal/core/apperror"
	"retailops/internal/domain"
	"retailops/internal/domain/inventory"
	"retailops/internal/infrastructure/export"
	"retailops/internal/infrastructure/http/v1/dto"
)

// maxExportRows caps a single ledger export.
const maxExportRows = 50_000

// StockUpdater applies manual adjustments.
type StockUpdater interface {
	UpdateStockAfterAdjustment(ctx context.Context, doc *inventory.StockDocument) (*inventory.Result, error)
}

// StockHandler handles manual adjustments, the ledger and full mirror syncs.
type StockHandler struct {
	*BaseHandler
	stock  StockUpdater
	items  *inventory.ItemService
	mirror *inventory.Synchronizer
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, stock StockUpdater, items *inventory.ItemService, mirror *inventory.Synchronizer) *StockHandler {
	return &StockHandler{BaseHandler: base, stock: stock, items: items, mirror: mirror}
}

// Adjust handles POST /stock/adjustments. Lines that fail are reported in the
// result; the request itself succeeds.
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	doc, err := req.ToDocument()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.stock.UpdateStockAfterAdjustment(c.Request.Context(), doc)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// ListAdjustments handles GET /stock/adjustments
func (h *StockHandler) ListAdjustments(c *gin.Context) {
	filter, ok := h.adjustmentFilter(c)
	if !ok {
		return
	}
	result, err := h.items.Adjustments(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// ExportAdjustments handles GET /stock/adjustments/export and returns an xlsx file
// with every matching ledger row, newest first.
func (h *StockHandler) ExportAdjustments(c *gin.Context) {
	filter, ok := h.adjustmentFilter(c)
	if !ok {
		return
	}
	filter.Limit = domain.MaxLimit
	filter.Offset = 0

	var rows []*inventory.StockAdjustment
	for len(rows) < maxExportRows {
		page, err := h.items.Adjustments(c.Request.Context(), filter)
		if err != nil {
			h.Error(c, err)
			return
		}
		rows = append(rows, page.Items...)
		if len(page.Items) < filter.Limit {
			break
		}
		filter.Offset += filter.Limit
	}

	var buf bytes.Buffer
	if err := export.WriteLedger(&buf, rows); err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+export.LedgerFilename(time.Now()))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// SyncAll handles POST /stock/sync, re-pushing every item into its mirrors.
func (h *StockHandler) SyncAll(c *gin.Context) {
	report, err := h.mirror.SyncAll(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

func (h *StockHandler) adjustmentFilter(c *gin.Context) (inventory.AdjustmentFilter, bool) {
	filter := inventory.AdjustmentFilter{
		ListFilter: h.ListFilter(c),
		Method:     inventory.AdjustmentMethod(c.Query("method")),
	}

	var ok bool
	if filter.ItemID, ok = h.QueryID(c, "itemId"); !ok {
		return filter, false
	}
	if filter.WarehouseID, ok = h.QueryID(c, "warehouseId"); !ok {
		return filter, false
	}
	if filter.From, ok = h.queryTime(c, "from"); !ok {
		return filter, false
	}
	if filter.To, ok = h.queryTime(c, "to"); !ok {
		return filter, false
	}
	return filter, true
}

func (h *StockHandler) queryTime(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+key+" (want RFC 3339)").WithDetail(key, raw))
		return nil, false
	}
	return &t, true
}
