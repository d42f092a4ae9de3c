package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"retailops/internal/core/apperror"
	appctx "retailops/internal/core/context"
	"retailops/internal/core/id"
	"retailops/internal/core/tx"
	"retailops/pkg/logger"
)

var tracer = otel.Tracer("retailops/inventory")

// Source is the channel a document came from. It decides how a line's product
// reference is resolved to an item.
type Source string

const (
	SourcePOS       Source = "pos"
	SourceOnline    Source = "online"
	SourceDashboard Source = "dashboard"
)

// IsValid reports whether s is a known source.
func (s Source) IsValid() bool {
	return s == SourcePOS || s == SourceOnline || s == SourceDashboard
}

// StockLine is one product reference with a positive quantity.
type StockLine struct {
	// ItemID wins over every other reference when set.
	ItemID *id.ID

	// ProductID is a POS product (source pos) or an online product (source online).
	ProductID *id.ID
	VariantID *id.ID

	ItemCode string
	Quantity int

	// Type is required on manual adjustment lines and ignored elsewhere.
	Type AdjustmentType
}

// reference returns the identifier reported back in LineResult.ProductID.
func (l StockLine) reference() string {
	switch {
	case l.ProductID != nil:
		return l.ProductID.String()
	case l.ItemID != nil:
		return l.ItemID.String()
	default:
		return l.ItemCode
	}
}

// StockDocument is the document a stock change is attributed to.
type StockDocument struct {
	ID          id.ID
	Number      string
	Source      Source
	WarehouseID *id.ID
	Lines       []StockLine

	// PurchaseOrderID links a bill to the purchase order it received.
	PurchaseOrderID *id.ID
	Note            string
}

// LineResult is the outcome of one line. Failed lines leave the item untouched.
type LineResult struct {
	ProductID        string `json:"productId"`
	ItemID           *id.ID `json:"itemId,omitempty"`
	PreviousQuantity int    `json:"previousQuantity"`
	NewQuantity      int    `json:"newQuantity"`
	Success          bool   `json:"success"`
	Error            string `json:"error,omitempty"`
}

// Result is the outcome of a batch. Successful lines are never rolled back.
type Result struct {
	Lines     []LineResult `json:"lines"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

func (r *Result) add(l LineResult) {
	r.Lines = append(r.Lines, l)
	if l.Success {
		r.Succeeded++
	} else {
		r.Failed++
	}
}

// mutation describes one of the stock operations.
type mutation struct {
	name   string
	method AdjustmentMethod
	// direction is empty for manual adjustments, where each line carries its own.
	direction AdjustmentType
	link      func(doc *StockDocument, adj *StockAdjustment)
}

var (
	afterOrder = mutation{
		name: "order", method: MethodSalesOrder, direction: TypeDecrease,
		link: func(doc *StockDocument, adj *StockAdjustment) { adj.SalesOrderID = &doc.ID },
	}
	reverseOrder = mutation{
		name: "order reversal", method: MethodSalesReturn, direction: TypeIncrease,
		link: func(doc *StockDocument, adj *StockAdjustment) { adj.SalesOrderID = &doc.ID },
	}
	afterAdjustment = mutation{
		name: "adjustment", method: MethodAdjustment,
		link: func(*StockDocument, *StockAdjustment) {},
	}
	afterPurchase = mutation{
		name: "purchase", method: MethodPurchaseOrder, direction: TypeIncrease,
		link: linkBill,
	}
	reversePurchase = mutation{
		name: "purchase reversal", method: MethodPurchaseOrder, direction: TypeDecrease,
		link: linkBill,
	}
)

func linkBill(doc *StockDocument, adj *StockAdjustment) {
	adj.BillID = &doc.ID
	adj.PurchaseOrderID = doc.PurchaseOrderID
}

// StockService applies document-driven stock changes to items, writes the ledger
// and refreshes the mirrors.
//
// Each line runs in its own transaction: the item row is locked, updated and the
// ledger row inserted together. The batch as a whole is not atomic.
type StockService struct {
	items       ItemRepository
	posProducts POSProductRepository
	online      OnlineProductRepository
	adjustments AdjustmentRepository
	txManager   tx.Manager
	mirror      *Synchronizer
}

// StockServiceConfig wires a StockService.
type StockServiceConfig struct {
	Items       ItemRepository
	POSProducts POSProductRepository
	Online      OnlineProductRepository
	Adjustments AdjustmentRepository
	TxManager   tx.Manager
	Mirror      *Synchronizer
}

// NewStockService creates a new stock service.
func NewStockService(cfg StockServiceConfig) *StockService {
	return &StockService{
		items:       cfg.Items,
		posProducts: cfg.POSProducts,
		online:      cfg.Online,
		adjustments: cfg.Adjustments,
		txManager:   cfg.TxManager,
		mirror:      cfg.Mirror,
	}
}

// UpdateStockAfterOrder decrements stock for every line of a placed order.
func (s *StockService) UpdateStockAfterOrder(ctx context.Context, doc *StockDocument) (*Result, error) {
	return s.apply(ctx, doc, afterOrder)
}

// ReverseStockUpdate restores stock for a cancelled or returned order. Only what
// the order actually took out, according to the ledger, is put back.
func (s *StockService) ReverseStockUpdate(ctx context.Context, doc *StockDocument) (*Result, error) {
	return s.reverse(ctx, doc, reverseOrder)
}

// UpdateStockAfterAdjustment applies a manual adjustment; each line carries its direction.
func (s *StockService) UpdateStockAfterAdjustment(ctx context.Context, doc *StockDocument) (*Result, error) {
	return s.apply(ctx, doc, afterAdjustment)
}

// UpdateStockAfterPurchase increments stock for a received bill.
func (s *StockService) UpdateStockAfterPurchase(ctx context.Context, doc *StockDocument) (*Result, error) {
	return s.apply(ctx, doc, afterPurchase)
}

// ReverseStockAfterPurchase decrements stock for a voided bill by what the bill
// actually received.
func (s *StockService) ReverseStockAfterPurchase(ctx context.Context, doc *StockDocument) (*Result, error) {
	return s.reverse(ctx, doc, reversePurchase)
}

// reverse applies m to the net movement the ledger holds for doc instead of the
// document's own lines. Failed lines left no ledger rows and clamped lines moved
// less than requested, so neither is reversed beyond its real effect.
func (s *StockService) reverse(ctx context.Context, doc *StockDocument, m mutation) (*Result, error) {
	if doc == nil {
		return nil, apperror.NewValidation("stock document is required")
	}
	if len(doc.Lines) == 0 {
		return nil, apperror.NewValidation("stock document has no lines").
			WithDetail("document", doc.Number)
	}

	rows, err := s.adjustments.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("load ledger for %s: %w", doc.Number, err)
	}

	net := make(map[id.ID]int, len(rows))
	var order []id.ID
	for _, row := range rows {
		if _, seen := net[row.ItemID]; !seen {
			order = append(order, row.ItemID)
		}
		net[row.ItemID] += row.NewQuantity - row.PreviousQuantity
	}

	rev := *doc
	rev.Lines = make([]StockLine, 0, len(order))
	for _, itemID := range order {
		itemID := itemID
		qty := net[itemID]
		if m.direction == TypeIncrease {
			qty = -qty
		}
		if qty <= 0 {
			continue
		}
		rev.Lines = append(rev.Lines, StockLine{ItemID: &itemID, Quantity: qty})
	}

	if len(rev.Lines) == 0 {
		logger.Info(ctx, "stock "+m.name+": nothing to reverse",
			"document_id", doc.ID,
			"document_number", doc.Number,
		)
		return &Result{Lines: []LineResult{}}, nil
	}
	return s.apply(ctx, &rev, m)
}

func (s *StockService) apply(ctx context.Context, doc *StockDocument, m mutation) (*Result, error) {
	if doc == nil {
		return nil, apperror.NewValidation("stock document is required")
	}
	if len(doc.Lines) == 0 {
		return nil, apperror.NewValidation("stock document has no lines").
			WithDetail("document", doc.Number)
	}

	ctx, span := tracer.Start(ctx, "stock."+string(m.method),
		trace.WithAttributes(
			attribute.String("document.number", doc.Number),
			attribute.String("document.source", string(doc.Source)),
			attribute.Int("document.lines", len(doc.Lines)),
		))
	defer span.End()

	result := &Result{Lines: make([]LineResult, 0, len(doc.Lines))}
	for i := range doc.Lines {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return result, err
		}
		result.add(s.applyLine(ctx, doc, doc.Lines[i], m))
	}

	span.SetAttributes(
		attribute.Int("stock.succeeded", result.Succeeded),
		attribute.Int("stock.failed", result.Failed),
	)

	log := logger.Info
	if result.Failed > 0 {
		log = logger.Warn
	}
	log(ctx, "stock "+m.name+" applied",
		"document_id", doc.ID,
		"document_number", doc.Number,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)

	return result, nil
}

func (s *StockService) applyLine(ctx context.Context, doc *StockDocument, line StockLine, m mutation) LineResult {
	lr := LineResult{ProductID: line.reference()}

	fail := func(err error) LineResult {
		lr.Error = lineError(err)
		logger.Warn(ctx, "stock line failed",
			"document_number", doc.Number,
			"product_id", lr.ProductID,
			"error", err,
		)
		return lr
	}

	if line.Quantity <= 0 {
		return fail(apperror.NewValidation("quantity must be positive"))
	}

	direction := m.direction
	if direction == "" {
		direction = line.Type
	}
	if !direction.IsValid() {
		return fail(apperror.NewValidation("adjustment type must be increase or decrease"))
	}

	itemID, err := s.resolveItem(ctx, doc, line)
	if err != nil {
		return fail(err)
	}
	lr.ItemID = &itemID

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		item, err := s.items.GetByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}

		prev := item.Quantity
		var next int
		if direction == TypeIncrease {
			next = ApplyIncrement(prev, line.Quantity)
		} else {
			if line.Quantity > prev {
				logger.Error(ctx, "stock would go negative, clamping to zero",
					"item_id", item.ID,
					"item_code", item.ItemCode,
					"previous_quantity", prev,
					"requested", line.Quantity,
					"document_number", doc.Number,
				)
			}
			next = ApplyDecrement(prev, line.Quantity)
		}

		item.Quantity = next
		item.RefreshStatus()
		item.Touch()
		if err := s.items.Update(ctx, item); err != nil {
			return err
		}

		adj := &StockAdjustment{
			ID:               id.New(),
			ItemID:           item.ID,
			WarehouseID:      item.WarehouseID,
			AdjustmentMethod: m.method,
			AdjustmentType:   direction,
			Quantity:         line.Quantity,
			PreviousQuantity: prev,
			NewQuantity:      next,
			Reference:        doc.Number,
			Note:             adjustmentNote(doc, m.method, direction, line.Quantity, prev, next),
			CreatedBy:        appctx.GetUserID(ctx),
			CreatedAt:        time.Now().UTC(),
		}
		m.link(doc, adj)
		if err := s.adjustments.Create(ctx, adj); err != nil {
			return fmt.Errorf("record adjustment: %w", err)
		}

		lr.PreviousQuantity = prev
		lr.NewQuantity = next
		return nil
	})
	if err != nil {
		return fail(err)
	}
	lr.Success = true

	if s.mirror != nil {
		if _, err := s.mirror.SyncItem(ctx, itemID); err != nil {
			logger.Error(ctx, "mirror sync after stock change", "item_id", itemID, "error", err)
		}
	}
	return lr
}

// resolveItem maps a line to an item ID. The first matching rule wins.
func (s *StockService) resolveItem(ctx context.Context, doc *StockDocument, line StockLine) (id.ID, error) {
	if line.ItemID != nil && !id.IsNil(*line.ItemID) {
		return *line.ItemID, nil
	}

	if line.ProductID != nil {
		switch doc.Source {
		case SourcePOS:
			p, err := s.posProducts.GetByID(ctx, *line.ProductID)
			if err != nil {
				return id.Nil(), err
			}
			if p.ItemID != nil && !id.IsNil(*p.ItemID) {
				return *p.ItemID, nil
			}
			if p.ItemCode != "" {
				return s.itemByCode(ctx, p.ItemCode, doc.WarehouseID)
			}
			return id.Nil(), apperror.NewBusinessRule(apperror.CodeBusinessRule, "pos product is not linked to an item").
				WithDetail("productId", p.ID)

		case SourceOnline:
			p, err := s.online.GetByID(ctx, *line.ProductID)
			if err != nil {
				return id.Nil(), err
			}
			link := p.InventoryProductID
			if line.VariantID != nil {
				v, ok := p.Variant(*line.VariantID)
				if !ok {
					return id.Nil(), apperror.NewNotFound("variant", line.VariantID.String())
				}
				link = v.InventoryProductID
			}
			if link == nil || id.IsNil(*link) {
				return id.Nil(), apperror.NewBusinessRule(apperror.CodeBusinessRule, "online product is not linked to an item").
					WithDetail("productId", p.ID)
			}
			return *link, nil
		}
	}

	if line.ItemCode != "" {
		return s.itemByCode(ctx, line.ItemCode, doc.WarehouseID)
	}

	return id.Nil(), apperror.NewValidation("line has no item reference")
}

func (s *StockService) itemByCode(ctx context.Context, code string, warehouseID *id.ID) (id.ID, error) {
	item, err := s.items.FindByCode(ctx, code, warehouseID)
	if err != nil {
		return id.Nil(), err
	}
	return item.ID, nil
}

// lineError is the text reported to callers. Internal details stay in the log.
func lineError(err error) string {
	if appErr, ok := apperror.AsAppError(err); ok {
		if appErr.Code == apperror.CodeInternal || appErr.Code == apperror.CodeDatabase {
			return "storage error"
		}
		return appErr.Message
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "request cancelled"
	}
	return "storage error"
}

func adjustmentNote(doc *StockDocument, method AdjustmentMethod, direction AdjustmentType, qty, prev, next int) string {
	var what string
	switch method {
	case MethodSalesOrder:
		what = fmt.Sprintf("Sold %d", qty)
	case MethodSalesReturn:
		what = fmt.Sprintf("Returned %d", qty)
	case MethodPurchaseOrder:
		if direction == TypeIncrease {
			what = fmt.Sprintf("Received %d", qty)
		} else {
			what = fmt.Sprintf("Reversed receipt of %d", qty)
		}
	default:
		if direction == TypeIncrease {
			what = fmt.Sprintf("Added %d", qty)
		} else {
			what = fmt.Sprintf("Removed %d", qty)
		}
	}

	note := fmt.Sprintf("%s (%d -> %d)", what, prev, next)
	if doc.Number != "" {
		note = doc.Number + ": " + note
	}
	if doc.Note != "" {
		note += ". " + doc.Note
	}
	return note
}
