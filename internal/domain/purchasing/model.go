// Package purchasing implements purchase orders and bills (goods receipt notes).
// A bill brings stock in; voiding it takes the stock out again.
package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"retailops/internal/core/apperror"
	"retailops/internal/core/entity"
	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain"
	"retailops/internal/domain/inventory"
)

// PurchaseOrderStatus is the purchase order lifecycle state.
type PurchaseOrderStatus string

const (
	POStatusOrdered   PurchaseOrderStatus = "ordered"
	POStatusReceived  PurchaseOrderStatus = "received"
	POStatusCancelled PurchaseOrderStatus = "cancelled"
)

// PurchaseOrderLine is one item ordered from the supplier.
type PurchaseOrderLine struct {
	LineNo   int         `db:"line_no" json:"lineNo"`
	ItemID   id.ID       `db:"item_id" json:"itemId"`
	Quantity int         `db:"quantity" json:"quantity"`
	UnitCost types.Money `db:"unit_cost" json:"unitCost"`
	Amount   types.Money `db:"amount" json:"amount"`
}

// PurchaseOrder is an order placed with a supplier. It does not touch stock;
// receiving it creates a Bill, which does.
type PurchaseOrder struct {
	entity.Base

	Number       string              `db:"number" json:"number"`
	SupplierName string              `db:"supplier_name" json:"supplierName"`
	WarehouseID  id.ID               `db:"warehouse_id" json:"warehouseId"`
	Status       PurchaseOrderStatus `db:"status" json:"status"`
	Lines        []PurchaseOrderLine `db:"-" json:"lines"`
	TotalAmount  types.Money         `db:"total_amount" json:"totalAmount"`
	BillID       *id.ID              `db:"bill_id" json:"billId,omitempty"`
}

// Validate checks purchase order invariants.
func (po *PurchaseOrder) Validate(_ context.Context) error {
	if strings.TrimSpace(po.SupplierName) == "" {
		return apperror.NewValidation("supplierName is required").WithDetail("field", "supplierName")
	}
	if id.IsNil(po.WarehouseID) {
		return apperror.NewValidation("warehouseId is required").WithDetail("field", "warehouseId")
	}
	if len(po.Lines) == 0 {
		return apperror.NewValidation("purchase order must have at least one line").WithDetail("field", "lines")
	}
	for i, l := range po.Lines {
		if id.IsNil(l.ItemID) {
			return apperror.NewValidation(fmt.Sprintf("line %d: itemId is required", i+1)).WithDetail("line", i+1)
		}
		if l.Quantity <= 0 {
			return apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i+1)).WithDetail("line", i+1)
		}
		if l.UnitCost.IsNegative() {
			return apperror.NewValidation(fmt.Sprintf("line %d: unitCost must not be negative", i+1)).WithDetail("line", i+1)
		}
	}
	return nil
}

// CalculateTotals numbers the lines and fills line amounts and the total.
func (po *PurchaseOrder) CalculateTotals() {
	total := types.Zero()
	for i := range po.Lines {
		po.Lines[i].LineNo = i + 1
		po.Lines[i].Amount = types.LineAmount(po.Lines[i].Quantity, po.Lines[i].UnitCost)
		total = total.Add(po.Lines[i].Amount)
	}
	po.TotalAmount = total
}

// BillStatus is the bill lifecycle state.
type BillStatus string

const (
	BillStatusActive BillStatus = "active"
	BillStatusVoid   BillStatus = "void"
)

// BillLine is one received item.
type BillLine struct {
	LineNo   int         `db:"line_no" json:"lineNo"`
	ItemID   *id.ID      `db:"item_id" json:"itemId,omitempty"`
	ItemCode string      `db:"item_code" json:"itemCode,omitempty"`
	Quantity int         `db:"quantity" json:"quantity"`
	UnitCost types.Money `db:"unit_cost" json:"unitCost"`
	Amount   types.Money `db:"amount" json:"amount"`
}

// Bill is a supplier bill, also serving as the goods receipt note.
type Bill struct {
	entity.Base

	Number          string      `db:"number" json:"number"`
	PurchaseOrderID *id.ID      `db:"purchase_order_id" json:"purchaseOrderId,omitempty"`
	SupplierName    string      `db:"supplier_name" json:"supplierName"`
	WarehouseID     id.ID       `db:"warehouse_id" json:"warehouseId"`
	BillDate        time.Time   `db:"bill_date" json:"billDate"`
	Status          BillStatus  `db:"status" json:"status"`
	Lines           []BillLine  `db:"-" json:"lines"`
	TotalAmount     types.Money `db:"total_amount" json:"totalAmount"`
}

// Validate checks bill invariants.
func (b *Bill) Validate(_ context.Context) error {
	if strings.TrimSpace(b.SupplierName) == "" {
		return apperror.NewValidation("supplierName is required").WithDetail("field", "supplierName")
	}
	if id.IsNil(b.WarehouseID) {
		return apperror.NewValidation("warehouseId is required").WithDetail("field", "warehouseId")
	}
	if len(b.Lines) == 0 {
		return apperror.NewValidation("bill must have at least one line").WithDetail("field", "lines")
	}
	for i, l := range b.Lines {
		if id.PtrIsNil(l.ItemID) && strings.TrimSpace(l.ItemCode) == "" {
			return apperror.NewValidation(fmt.Sprintf("line %d: itemId or itemCode is required", i+1)).WithDetail("line", i+1)
		}
		if l.Quantity <= 0 {
			return apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i+1)).WithDetail("line", i+1)
		}
		if l.UnitCost.IsNegative() {
			return apperror.NewValidation(fmt.Sprintf("line %d: unitCost must not be negative", i+1)).WithDetail("line", i+1)
		}
	}
	return nil
}

// CalculateTotals numbers the lines and fills line amounts and the total.
func (b *Bill) CalculateTotals() {
	total := types.Zero()
	for i := range b.Lines {
		b.Lines[i].LineNo = i + 1
		b.Lines[i].Amount = types.LineAmount(b.Lines[i].Quantity, b.Lines[i].UnitCost)
		total = total.Add(b.Lines[i].Amount)
	}
	b.TotalAmount = total
}

// StockDocument converts the bill into the stock layer's document.
func (b *Bill) StockDocument() *inventory.StockDocument {
	wh := b.WarehouseID
	doc := &inventory.StockDocument{
		ID:              b.ID,
		Number:          b.Number,
		Source:          inventory.SourceDashboard,
		WarehouseID:     &wh,
		PurchaseOrderID: b.PurchaseOrderID,
		Lines:           make([]inventory.StockLine, 0, len(b.Lines)),
	}
	for _, l := range b.Lines {
		doc.Lines = append(doc.Lines, inventory.StockLine{
			ItemID:   l.ItemID,
			ItemCode: l.ItemCode,
			Quantity: l.Quantity,
		})
	}
	return doc
}

// PurchaseOrderFilter narrows purchase order listings.
type PurchaseOrderFilter struct {
	domain.ListFilter

	Status PurchaseOrderStatus
}

// BillFilter narrows bill listings.
type BillFilter struct {
	domain.ListFilter

	Status BillStatus
}

// PurchaseOrderRepository persists purchase orders with their lines.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *PurchaseOrder) error
	GetByID(ctx context.Context, poID id.ID) (*PurchaseOrder, error)
	GetByIDForUpdate(ctx context.Context, poID id.ID) (*PurchaseOrder, error)

	// UpdateStatus writes status, bill_id and updated_at.
	UpdateStatus(ctx context.Context, po *PurchaseOrder) error

	List(ctx context.Context, filter PurchaseOrderFilter) (domain.ListResult[*PurchaseOrder], error)
}

// BillRepository persists bills with their lines.
type BillRepository interface {
	Create(ctx context.Context, bill *Bill) error
	GetByID(ctx context.Context, billID id.ID) (*Bill, error)
	GetByIDForUpdate(ctx context.Context, billID id.ID) (*Bill, error)

	// UpdateStatus writes status and updated_at.
	UpdateStatus(ctx context.Context, bill *Bill) error

	List(ctx context.Context, filter BillFilter) (domain.ListResult[*Bill], error)
}
