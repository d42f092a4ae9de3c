package dto

import (
	"time"

	"retailops/internal/core/types"
	"retailops/internal/domain/inventory"
	"retailops/internal/domain/purchasing"
	"retailops/internal/domain/sales"
)

// --- Sales orders ---

// CreateOrderRequest places an order from a till, the storefront or the dashboard.
type CreateOrderRequest struct {
	Source       string             `json:"source" binding:"omitempty,oneof=pos online dashboard"`
	WarehouseID  string             `json:"warehouseId,omitempty"`
	CustomerName string             `json:"customerName,omitempty"`
	Lines        []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// OrderLineRequest is one product on an order. ProductID refers to a POS product
// or an online product depending on the source.
type OrderLineRequest struct {
	ProductID string      `json:"productId,omitempty"`
	VariantID string      `json:"variantId,omitempty"`
	ItemID    string      `json:"itemId,omitempty"`
	ItemCode  string      `json:"itemCode,omitempty"`
	Quantity  int         `json:"quantity" binding:"required,gt=0"`
	UnitPrice types.Money `json:"unitPrice"`
}

// ToEntity converts request to domain entity.
func (r *CreateOrderRequest) ToEntity() (*sales.Order, error) {
	warehouseID, err := parseOptionalID("warehouseId", r.WarehouseID)
	if err != nil {
		return nil, err
	}

	order := &sales.Order{
		Source:       inventory.Source(r.Source),
		WarehouseID:  warehouseID,
		CustomerName: r.CustomerName,
		Lines:        make([]sales.OrderLine, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		productID, err := parseOptionalID("productId", l.ProductID)
		if err != nil {
			return nil, err
		}
		variantID, err := parseOptionalID("variantId", l.VariantID)
		if err != nil {
			return nil, err
		}
		itemID, err := parseOptionalID("itemId", l.ItemID)
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, sales.OrderLine{
			ProductID: productID,
			VariantID: variantID,
			ItemID:    itemID,
			ItemCode:  l.ItemCode,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return order, nil
}

// --- Purchase orders ---

// CreatePurchaseOrderRequest orders items from a supplier.
type CreatePurchaseOrderRequest struct {
	SupplierName string                     `json:"supplierName" binding:"required"`
	WarehouseID  string                     `json:"warehouseId" binding:"required"`
	Lines        []PurchaseOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// PurchaseOrderLineRequest is one ordered item.
type PurchaseOrderLineRequest struct {
	ItemID   string      `json:"itemId" binding:"required"`
	Quantity int         `json:"quantity" binding:"required,gt=0"`
	UnitCost types.Money `json:"unitCost"`
}

// ToEntity converts request to domain entity.
func (r *CreatePurchaseOrderRequest) ToEntity() (*purchasing.PurchaseOrder, error) {
	warehouseID, err := parseRequiredID("warehouseId", r.WarehouseID)
	if err != nil {
		return nil, err
	}

	po := &purchasing.PurchaseOrder{
		SupplierName: r.SupplierName,
		WarehouseID:  warehouseID,
		Lines:        make([]purchasing.PurchaseOrderLine, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		itemID, err := parseRequiredID("itemId", l.ItemID)
		if err != nil {
			return nil, err
		}
		po.Lines = append(po.Lines, purchasing.PurchaseOrderLine{
			ItemID:   itemID,
			Quantity: l.Quantity,
			UnitCost: l.UnitCost,
		})
	}
	return po, nil
}

// --- Bills ---

// CreateBillRequest records a supplier bill that brings stock in.
type CreateBillRequest struct {
	SupplierName string            `json:"supplierName" binding:"required"`
	WarehouseID  string            `json:"warehouseId" binding:"required"`
	BillDate     *time.Time        `json:"billDate,omitempty"`
	Lines        []BillLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// BillLineRequest is one received item, by ID or by code.
type BillLineRequest struct {
	ItemID   string      `json:"itemId,omitempty"`
	ItemCode string      `json:"itemCode,omitempty"`
	Quantity int         `json:"quantity" binding:"required,gt=0"`
	UnitCost types.Money `json:"unitCost"`
}

// ToEntity converts request to domain entity.
func (r *CreateBillRequest) ToEntity() (*purchasing.Bill, error) {
	warehouseID, err := parseRequiredID("warehouseId", r.WarehouseID)
	if err != nil {
		return nil, err
	}

	bill := &purchasing.Bill{
		SupplierName: r.SupplierName,
		WarehouseID:  warehouseID,
		Lines:        make([]purchasing.BillLine, 0, len(r.Lines)),
	}
	if r.BillDate != nil {
		bill.BillDate = r.BillDate.UTC()
	}
	for _, l := range r.Lines {
		itemID, err := parseOptionalID("itemId", l.ItemID)
		if err != nil {
			return nil, err
		}
		bill.Lines = append(bill.Lines, purchasing.BillLine{
			ItemID:   itemID,
			ItemCode: l.ItemCode,
			Quantity: l.Quantity,
			UnitCost: l.UnitCost,
		})
	}
	return bill, nil
}
