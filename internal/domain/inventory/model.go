package inventory

import (
	"context"
	"strings"
	"time"

	"retailops/internal/core/apperror"
	"retailops/internal/core/entity"
	"retailops/internal/core/id"
	"retailops/internal/core/types"
)

// Item is a warehouse-scoped inventory record and the source of truth for stock.
type Item struct {
	entity.Base

	Name               string      `db:"name" json:"name"`
	ItemCode           string      `db:"item_code" json:"itemCode"`
	WarehouseID        id.ID       `db:"warehouse_id" json:"warehouseId"`
	Quantity           int         `db:"quantity" json:"quantity"`
	LowStockAlertLevel int         `db:"low_stock_alert_level" json:"lowStockAlertLevel"`
	Status             Status      `db:"status" json:"status"`
	UnitPrice          types.Money `db:"unit_price" json:"unitPrice"`
}

// NewItem creates an item with a generated ID and derived status.
func NewItem(name, itemCode string, warehouseID id.ID, quantity, alertLevel int) *Item {
	it := &Item{
		Base:               entity.NewBase(),
		Name:               name,
		ItemCode:           itemCode,
		WarehouseID:        warehouseID,
		Quantity:           quantity,
		LowStockAlertLevel: alertLevel,
		UnitPrice:          types.Zero(),
	}
	it.RefreshStatus()
	return it
}

// RefreshStatus re-derives Status from Quantity and LowStockAlertLevel.
func (i *Item) RefreshStatus() {
	i.Status = DeriveStatus(i.Quantity, i.LowStockAlertLevel)
}

// Validate checks item invariants.
func (i *Item) Validate(_ context.Context) error {
	if strings.TrimSpace(i.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(i.ItemCode) == "" {
		return apperror.NewValidation("itemCode is required").WithDetail("field", "itemCode")
	}
	if id.IsNil(i.WarehouseID) {
		return apperror.NewValidation("warehouseId is required").WithDetail("field", "warehouseId")
	}
	if i.Quantity < 0 {
		return apperror.NewValidation("quantity must not be negative").WithDetail("field", "quantity")
	}
	if i.LowStockAlertLevel < 0 {
		return apperror.NewValidation("lowStockAlertLevel must not be negative").WithDetail("field", "lowStockAlertLevel")
	}
	if i.UnitPrice.IsNegative() {
		return apperror.NewValidation("unitPrice must not be negative").WithDetail("field", "unitPrice")
	}
	return nil
}

// auditState is the field set written to the change log.
func (i *Item) auditState() map[string]any {
	return map[string]any{
		"name":               i.Name,
		"itemCode":           i.ItemCode,
		"warehouseId":        i.WarehouseID.String(),
		"quantity":           i.Quantity,
		"lowStockAlertLevel": i.LowStockAlertLevel,
		"status":             string(i.Status),
		"unitPrice":          i.UnitPrice.String(),
	}
}

// POSProduct is the point-of-sale copy of an item.
type POSProduct struct {
	entity.Base

	ItemID             *id.ID      `db:"item_id" json:"itemId,omitempty"`
	ItemCode           string      `db:"item_code" json:"itemCode"`
	WarehouseID        *id.ID      `db:"warehouse_id" json:"warehouseId,omitempty"`
	Name               string      `db:"name" json:"name"`
	Price              types.Money `db:"price" json:"price"`
	Quantity           int         `db:"quantity" json:"quantity"`
	LowStockAlertLevel int         `db:"low_stock_alert_level" json:"lowStockAlertLevel"`
	Status             Status      `db:"status" json:"status"`
}

// Validate checks POS product invariants.
func (p *POSProduct) Validate(_ context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if id.PtrIsNil(p.ItemID) && strings.TrimSpace(p.ItemCode) == "" {
		return apperror.NewValidation("itemId or itemCode is required").WithDetail("field", "itemId")
	}
	if p.Price.IsNegative() {
		return apperror.NewValidation("price must not be negative").WithDetail("field", "price")
	}
	return nil
}

// CopyStock copies quantity, alert level and status from the item.
func (p *POSProduct) CopyStock(it *Item) {
	p.Quantity = it.Quantity
	p.LowStockAlertLevel = it.LowStockAlertLevel
	p.Status = DeriveStatus(it.Quantity, it.LowStockAlertLevel)
}

// Variant is a sellable option of an online product with its own stock.
type Variant struct {
	ID                 id.ID  `db:"id" json:"id"`
	Name               string `db:"name" json:"name"`
	SKU                string `db:"sku" json:"sku"`
	InventoryProductID *id.ID `db:"inventory_product_id" json:"inventoryProductId,omitempty"`
	StockQuantity      int    `db:"stock_quantity" json:"stockQuantity"`
}

// OnlineProduct is a storefront product. Without variants it links to a single item
// through InventoryProductID; with variants each variant links separately.
type OnlineProduct struct {
	entity.Base

	Name               string    `db:"name" json:"name"`
	Slug               string    `db:"slug" json:"slug"`
	InventoryProductID *id.ID    `db:"inventory_product_id" json:"inventoryProductId,omitempty"`
	Variants           []Variant `db:"-" json:"variants"`
	TotalStockQuantity int       `db:"total_stock_quantity" json:"totalStockQuantity"`
	StockStatus        Status    `db:"stock_status" json:"stockStatus"`
	Published          bool      `db:"published" json:"published"`
}

// Validate checks online product invariants.
func (p *OnlineProduct) Validate(_ context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(p.Slug) == "" {
		return apperror.NewValidation("slug is required").WithDetail("field", "slug")
	}
	for i, v := range p.Variants {
		if strings.TrimSpace(v.Name) == "" {
			return apperror.NewValidation("variant name is required").WithDetail("variant", i)
		}
		if v.StockQuantity < 0 {
			return apperror.NewValidation("variant stock must not be negative").WithDetail("variant", i)
		}
	}
	return nil
}

// Variant returns the variant with the given ID.
func (p *OnlineProduct) Variant(variantID id.ID) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// LinksItem reports whether the product or any of its variants references itemID.
func (p *OnlineProduct) LinksItem(itemID id.ID) bool {
	if p.InventoryProductID != nil && *p.InventoryProductID == itemID {
		return true
	}
	for _, v := range p.Variants {
		if v.InventoryProductID != nil && *v.InventoryProductID == itemID {
			return true
		}
	}
	return false
}

// ApplyItemStock pushes the item's quantity into every linked variant and
// recomputes the total and the stock status.
func (p *OnlineProduct) ApplyItemStock(it *Item) {
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.InventoryProductID != nil && *v.InventoryProductID == it.ID {
			v.StockQuantity = it.Quantity
		}
	}

	if len(p.Variants) == 0 {
		p.TotalStockQuantity = it.Quantity
	} else {
		total := 0
		for _, v := range p.Variants {
			total += v.StockQuantity
		}
		p.TotalStockQuantity = total
	}
	p.StockStatus = DeriveStatus(p.TotalStockQuantity, it.LowStockAlertLevel)
}

// AdjustmentMethod names the kind of document that caused a stock change.
type AdjustmentMethod string

const (
	MethodSalesOrder    AdjustmentMethod = "sales_order"
	MethodPurchaseOrder AdjustmentMethod = "purchase_order"
	MethodSalesReturn   AdjustmentMethod = "sales_return"
	MethodAdjustment    AdjustmentMethod = "adjustment"
)

// AdjustmentType is the direction of a stock change.
type AdjustmentType string

const (
	TypeIncrease AdjustmentType = "increase"
	TypeDecrease AdjustmentType = "decrease"
)

// IsValid reports whether t is a known direction.
func (t AdjustmentType) IsValid() bool {
	return t == TypeIncrease || t == TypeDecrease
}

// StockAdjustment is an append-only ledger row; one per applied stock change.
type StockAdjustment struct {
	ID               id.ID            `db:"id" json:"id"`
	ItemID           id.ID            `db:"item_id" json:"itemId"`
	WarehouseID      id.ID            `db:"warehouse_id" json:"warehouseId"`
	AdjustmentMethod AdjustmentMethod `db:"adjustment_method" json:"adjustmentMethod"`
	AdjustmentType   AdjustmentType   `db:"adjustment_type" json:"adjustmentType"`
	Quantity         int              `db:"quantity" json:"quantity"`
	PreviousQuantity int              `db:"previous_quantity" json:"previousQuantity"`
	NewQuantity      int              `db:"new_quantity" json:"newQuantity"`
	SalesOrderID     *id.ID           `db:"sales_order_id" json:"salesOrderId,omitempty"`
	PurchaseOrderID  *id.ID           `db:"purchase_order_id" json:"purchaseOrderId,omitempty"`
	BillID           *id.ID           `db:"bill_id" json:"billId,omitempty"`
	Reference        string           `db:"reference" json:"reference"`
	Note             string           `db:"note" json:"note"`
	CreatedBy        string           `db:"created_by" json:"createdBy"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
}
