// Package sales implements orders from the tills, the storefront and the dashboard.
// Placing an order sells stock; cancelling or returning it puts the stock back.
package sales

import (
	"context"
	"fmt"
	"strings"

	"retailops/internal/core/apperror"
	"retailops/internal/core/entity"
	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain"
	"retailops/internal/domain/inventory"
)

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	StatusPlaced    OrderStatus = "placed"
	StatusCancelled OrderStatus = "cancelled"
	StatusReturned  OrderStatus = "returned"
)

// OrderLine is one product on an order.
type OrderLine struct {
	LineNo    int         `db:"line_no" json:"lineNo"`
	ProductID *id.ID      `db:"product_id" json:"productId,omitempty"`
	VariantID *id.ID      `db:"variant_id" json:"variantId,omitempty"`
	ItemID    *id.ID      `db:"item_id" json:"itemId,omitempty"`
	ItemCode  string      `db:"item_code" json:"itemCode,omitempty"`
	Quantity  int         `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	Amount    types.Money `db:"amount" json:"amount"`
}

// Order is a sales document.
type Order struct {
	entity.Base

	Number       string           `db:"number" json:"number"`
	Source       inventory.Source `db:"source" json:"source"`
	WarehouseID  *id.ID           `db:"warehouse_id" json:"warehouseId,omitempty"`
	CustomerName string           `db:"customer_name" json:"customerName"`
	Status       OrderStatus      `db:"status" json:"status"`
	Lines        []OrderLine      `db:"-" json:"lines"`
	TotalAmount  types.Money      `db:"total_amount" json:"totalAmount"`
}

// Validate checks order invariants.
func (o *Order) Validate(_ context.Context) error {
	if !o.Source.IsValid() {
		return apperror.NewValidation("source must be pos, online or dashboard").WithDetail("field", "source")
	}
	if len(o.Lines) == 0 {
		return apperror.NewValidation("order must have at least one line").WithDetail("field", "lines")
	}
	for i, l := range o.Lines {
		if l.Quantity <= 0 {
			return apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i+1)).WithDetail("line", i+1)
		}
		if l.UnitPrice.IsNegative() {
			return apperror.NewValidation(fmt.Sprintf("line %d: unitPrice must not be negative", i+1)).WithDetail("line", i+1)
		}
		if l.ProductID == nil && l.ItemID == nil && strings.TrimSpace(l.ItemCode) == "" {
			return apperror.NewValidation(fmt.Sprintf("line %d: productId, itemId or itemCode is required", i+1)).WithDetail("line", i+1)
		}
	}
	return nil
}

// CalculateTotals numbers the lines and fills line amounts and the order total.
func (o *Order) CalculateTotals() {
	total := types.Zero()
	for i := range o.Lines {
		o.Lines[i].LineNo = i + 1
		o.Lines[i].Amount = types.LineAmount(o.Lines[i].Quantity, o.Lines[i].UnitPrice)
		total = total.Add(o.Lines[i].Amount)
	}
	o.TotalAmount = total
}

// StockDocument converts the order into the stock layer's document.
func (o *Order) StockDocument() *inventory.StockDocument {
	doc := &inventory.StockDocument{
		ID:          o.ID,
		Number:      o.Number,
		Source:      o.Source,
		WarehouseID: o.WarehouseID,
		Lines:       make([]inventory.StockLine, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		doc.Lines = append(doc.Lines, inventory.StockLine{
			ItemID:    l.ItemID,
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			ItemCode:  l.ItemCode,
			Quantity:  l.Quantity,
		})
	}
	return doc
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	domain.ListFilter

	Status OrderStatus
	Source inventory.Source
}

// Repository persists orders with their lines.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	GetByIDForUpdate(ctx context.Context, orderID id.ID) (*Order, error)

	// UpdateStatus writes status and updated_at.
	UpdateStatus(ctx context.Context, order *Order) error

	List(ctx context.Context, filter OrderFilter) (domain.ListResult[*Order], error)
}
