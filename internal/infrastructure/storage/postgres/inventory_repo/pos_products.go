package inventory_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"retailops/internal/core/id"
	"retailops/internal/domain"
	"retailops/internal/domain/inventory"
	"retailops/internal/infrastructure/storage/postgres"
)

const posProductsTable = "pos_products"

// POSProductRepo implements inventory.POSProductRepository.
type POSProductRepo struct {
	*postgres.Table[inventory.POSProduct]
}

var _ inventory.POSProductRepository = (*POSProductRepo)(nil)

// NewPOSProductRepo creates a POS product repository.
func NewPOSProductRepo(txm *postgres.TxManager) *POSProductRepo {
	return &POSProductRepo{Table: postgres.NewTable[inventory.POSProduct](txm, posProductsTable, "pos product")}
}

func (r *POSProductRepo) Create(ctx context.Context, p *inventory.POSProduct) error {
	return r.Insert(ctx, p)
}

func (r *POSProductRepo) GetByID(ctx context.Context, productID id.ID) (*inventory.POSProduct, error) {
	return r.Table.GetByID(ctx, productID, false)
}

func (r *POSProductRepo) ListByItem(ctx context.Context, itemID id.ID) ([]*inventory.POSProduct, error) {
	return r.All(ctx, r.Select().Where(squirrel.Eq{"item_id": itemID}).OrderBy("created_at", "id"))
}

func (r *POSProductRepo) Update(ctx context.Context, p *inventory.POSProduct) error {
	return r.Table.Update(ctx, p.ID, p)
}

func (r *POSProductRepo) List(ctx context.Context, f inventory.POSProductFilter) (domain.ListResult[*inventory.POSProduct], error) {
	q := r.Select()
	if f.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *f.ItemID})
	}
	if f.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *f.WarehouseID})
	}
	return r.Page(ctx, q, f.ListFilter, "name ASC, id ASC", "name", "item_code")
}
