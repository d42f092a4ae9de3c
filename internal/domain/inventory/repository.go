package inventory

import (
	"context"
	"time"

	"retailops/internal/core/id"
	"retailops/internal/domain"
)

// ItemFilter narrows item listings.
type ItemFilter struct {
	domain.ListFilter

	WarehouseID *id.ID
	Status      Status
}

// ItemRepository persists items. Lookups that miss return an apperror NotFound.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)

	// GetByIDForUpdate reads the item and locks the row until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, itemID id.ID) (*Item, error)

	// FindByCode returns the first item with the code, restricted to the warehouse
	// when one is given.
	FindByCode(ctx context.Context, itemCode string, warehouseID *id.ID) (*Item, error)

	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, itemID id.ID) error
	List(ctx context.Context, filter ItemFilter) (domain.ListResult[*Item], error)
}

// POSProductFilter narrows POS product listings.
type POSProductFilter struct {
	domain.ListFilter

	ItemID      *id.ID
	WarehouseID *id.ID
}

// POSProductRepository persists POS products.
type POSProductRepository interface {
	Create(ctx context.Context, p *POSProduct) error
	GetByID(ctx context.Context, productID id.ID) (*POSProduct, error)
	ListByItem(ctx context.Context, itemID id.ID) ([]*POSProduct, error)
	Update(ctx context.Context, p *POSProduct) error
	List(ctx context.Context, filter POSProductFilter) (domain.ListResult[*POSProduct], error)
}

// OnlineProductFilter narrows online product listings.
type OnlineProductFilter struct {
	domain.ListFilter

	PublishedOnly bool
}

// OnlineProductRepository persists online products together with their variants.
type OnlineProductRepository interface {
	Create(ctx context.Context, p *OnlineProduct) error
	GetByID(ctx context.Context, productID id.ID) (*OnlineProduct, error)

	// ListByItem returns products whose own or any variant's inventory link is itemID.
	ListByItem(ctx context.Context, itemID id.ID) ([]*OnlineProduct, error)

	Update(ctx context.Context, p *OnlineProduct) error
	List(ctx context.Context, filter OnlineProductFilter) (domain.ListResult[*OnlineProduct], error)
}

// AdjustmentFilter narrows ledger listings.
type AdjustmentFilter struct {
	domain.ListFilter

	ItemID      *id.ID
	WarehouseID *id.ID
	Method      AdjustmentMethod
	From        *time.Time
	To          *time.Time
}

// AdjustmentRepository is the append-only stock ledger.
type AdjustmentRepository interface {
	Create(ctx context.Context, adj *StockAdjustment) error

	// List returns newest first.
	List(ctx context.Context, filter AdjustmentFilter) (domain.ListResult[*StockAdjustment], error)

	// ListByDocument returns every row linked to the sales order or bill, oldest first.
	ListByDocument(ctx context.Context, documentID id.ID) ([]*StockAdjustment, error)
}

// AvailabilityInvalidator drops cached storefront availability for products.
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, productIDs ...id.ID) error
}
