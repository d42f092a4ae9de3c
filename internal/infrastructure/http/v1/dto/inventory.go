package dto

import (
	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain/inventory"
)

// --- Items ---

// CreateItemRequest creates an inventory item.
type CreateItemRequest struct {
	Name               string       `json:"name" binding:"required"`
	ItemCode           string       `json:"itemCode" binding:"required"`
	WarehouseID        string       `json:"warehouseId" binding:"required"`
	Quantity           int          `json:"quantity" binding:"gte=0"`
	LowStockAlertLevel int          `json:"lowStockAlertLevel" binding:"gte=0"`
	UnitPrice          *types.Money `json:"unitPrice,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateItemRequest) ToEntity() (*inventory.Item, error) {
	warehouseID, err := parseRequiredID("warehouseId", r.WarehouseID)
	if err != nil {
		return nil, err
	}
	item := inventory.NewItem(r.Name, r.ItemCode, warehouseID, r.Quantity, r.LowStockAlertLevel)
	if r.UnitPrice != nil {
		item.UnitPrice = *r.UnitPrice
	}
	return item, nil
}

// UpdateItemRequest edits item details. Quantity changes go through stock adjustments.
type UpdateItemRequest struct {
	Name               *string      `json:"name,omitempty"`
	ItemCode           *string      `json:"itemCode,omitempty"`
	LowStockAlertLevel *int         `json:"lowStockAlertLevel,omitempty" binding:"omitempty,gte=0"`
	UnitPrice          *types.Money `json:"unitPrice,omitempty"`
}

// ToUpdate converts request to the service's update set.
func (r *UpdateItemRequest) ToUpdate() inventory.ItemUpdate {
	return inventory.ItemUpdate{
		Name:               r.Name,
		ItemCode:           r.ItemCode,
		LowStockAlertLevel: r.LowStockAlertLevel,
		UnitPrice:          r.UnitPrice,
	}
}

// --- Stock adjustments ---

// AdjustStockRequest is a manual stock correction from the dashboard.
type AdjustStockRequest struct {
	Reference   string                   `json:"reference,omitempty"`
	WarehouseID string                   `json:"warehouseId,omitempty"`
	Note        string                   `json:"note,omitempty"`
	Lines       []AdjustStockLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// AdjustStockLineRequest is one line of a manual adjustment.
type AdjustStockLineRequest struct {
	ItemID   string `json:"itemId,omitempty"`
	ItemCode string `json:"itemCode,omitempty"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Type     string `json:"type" binding:"required,oneof=increase decrease"`
}

// ToDocument converts request to a stock document.
func (r *AdjustStockRequest) ToDocument() (*inventory.StockDocument, error) {
	warehouseID, err := parseOptionalID("warehouseId", r.WarehouseID)
	if err != nil {
		return nil, err
	}

	doc := &inventory.StockDocument{
		ID:          id.New(),
		Number:      r.Reference,
		Source:      inventory.SourceDashboard,
		WarehouseID: warehouseID,
		Note:        r.Note,
		Lines:       make([]inventory.StockLine, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		itemID, err := parseOptionalID("itemId", l.ItemID)
		if err != nil {
			return nil, err
		}
		doc.Lines = append(doc.Lines, inventory.StockLine{
			ItemID:   itemID,
			ItemCode: l.ItemCode,
			Quantity: l.Quantity,
			Type:     inventory.AdjustmentType(l.Type),
		})
	}
	return doc, nil
}

// --- POS products ---

// CreatePOSProductRequest links a till product to an item by ID or by code.
type CreatePOSProductRequest struct {
	Name        string       `json:"name" binding:"required"`
	ItemID      string       `json:"itemId,omitempty"`
	ItemCode    string       `json:"itemCode,omitempty"`
	WarehouseID string       `json:"warehouseId,omitempty"`
	Price       *types.Money `json:"price,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreatePOSProductRequest) ToEntity() (*inventory.POSProduct, error) {
	itemID, err := parseOptionalID("itemId", r.ItemID)
	if err != nil {
		return nil, err
	}
	warehouseID, err := parseOptionalID("warehouseId", r.WarehouseID)
	if err != nil {
		return nil, err
	}

	p := &inventory.POSProduct{
		Name:        r.Name,
		ItemID:      itemID,
		ItemCode:    r.ItemCode,
		WarehouseID: warehouseID,
		Price:       types.Zero(),
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	return p, nil
}

// --- Online products ---

// CreateOnlineProductRequest creates a storefront product, optionally with variants.
type CreateOnlineProductRequest struct {
	Name               string           `json:"name" binding:"required"`
	Slug               string           `json:"slug" binding:"required"`
	InventoryProductID string           `json:"inventoryProductId,omitempty"`
	Published          bool             `json:"published"`
	Variants           []VariantRequest `json:"variants,omitempty" binding:"omitempty,dive"`
}

// VariantRequest is one variant of an online product.
type VariantRequest struct {
	Name               string `json:"name" binding:"required"`
	SKU                string `json:"sku,omitempty"`
	InventoryProductID string `json:"inventoryProductId,omitempty"`
	StockQuantity      int    `json:"stockQuantity" binding:"gte=0"`
}

// ToEntity converts request to domain entity.
func (r *CreateOnlineProductRequest) ToEntity() (*inventory.OnlineProduct, error) {
	link, err := parseOptionalID("inventoryProductId", r.InventoryProductID)
	if err != nil {
		return nil, err
	}

	p := &inventory.OnlineProduct{
		Name:               r.Name,
		Slug:               r.Slug,
		InventoryProductID: link,
		Published:          r.Published,
		Variants:           make([]inventory.Variant, 0, len(r.Variants)),
	}
	for _, v := range r.Variants {
		vLink, err := parseOptionalID("variants.inventoryProductId", v.InventoryProductID)
		if err != nil {
			return nil, err
		}
		p.Variants = append(p.Variants, inventory.Variant{
			ID:                 id.New(),
			Name:               v.Name,
			SKU:                v.SKU,
			InventoryProductID: vLink,
			StockQuantity:      v.StockQuantity,
		})
	}
	return p, nil
}
