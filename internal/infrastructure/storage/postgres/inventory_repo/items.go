// Package inventory_repo provides PostgreSQL implementations of the inventory
// repositories: items, their POS and online mirrors, and the stock ledger.
package inventory_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"retailops/internal/core/id"
	"retailops/internal/domain"
	"retailops/internal/domain/inventory"
	"retailops/internal/infrastructure/storage/postgres"
)

const itemsTable = "inventory_items"

// ItemRepo implements inventory.ItemRepository.
type ItemRepo struct {
	*postgres.Table[inventory.Item]
}

var _ inventory.ItemRepository = (*ItemRepo)(nil)

// NewItemRepo creates an item repository.
func NewItemRepo(txm *postgres.TxManager) *ItemRepo {
	return &ItemRepo{Table: postgres.NewTable[inventory.Item](txm, itemsTable, "item")}
}

func (r *ItemRepo) Create(ctx context.Context, item *inventory.Item) error {
	return r.Insert(ctx, item)
}

func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*inventory.Item, error) {
	return r.Table.GetByID(ctx, itemID, false)
}

func (r *ItemRepo) GetByIDForUpdate(ctx context.Context, itemID id.ID) (*inventory.Item, error) {
	return r.Table.GetByID(ctx, itemID, true)
}

// FindByCode returns the earliest created item with the code.
func (r *ItemRepo) FindByCode(ctx context.Context, itemCode string, warehouseID *id.ID) (*inventory.Item, error) {
	return r.Get(ctx, r.findByCode(itemCode, warehouseID), itemCode)
}

func (r *ItemRepo) findByCode(itemCode string, warehouseID *id.ID) squirrel.SelectBuilder {
	q := r.Select().Where(squirrel.Eq{"item_code": itemCode})
	if warehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *warehouseID})
	}
	return q.OrderBy("created_at", "id").Limit(1)
}

func (r *ItemRepo) Update(ctx context.Context, item *inventory.Item) error {
	return r.Table.Update(ctx, item.ID, item)
}

func (r *ItemRepo) Delete(ctx context.Context, itemID id.ID) error {
	return r.Table.Delete(ctx, itemID)
}

func (r *ItemRepo) List(ctx context.Context, f inventory.ItemFilter) (domain.ListResult[*inventory.Item], error) {
	q := r.Select()
	if f.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *f.WarehouseID})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	return r.Page(ctx, q, f.ListFilter, "name ASC, id ASC", "name", "item_code")
}
