package inventory_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"retailops/internal/core/id"
	"retailops/internal/domain"
	"retailops/internal/domain/inventory"
	"retailops/internal/infrastructure/storage/postgres"
)

const adjustmentsTable = "stock_adjustments"

// AdjustmentRepo implements inventory.AdjustmentRepository. Rows are never
// updated or deleted.
type AdjustmentRepo struct {
	table *postgres.Table[inventory.StockAdjustment]
}

var _ inventory.AdjustmentRepository = (*AdjustmentRepo)(nil)

// NewAdjustmentRepo creates a ledger repository.
func NewAdjustmentRepo(txm *postgres.TxManager) *AdjustmentRepo {
	return &AdjustmentRepo{table: postgres.NewTable[inventory.StockAdjustment](txm, adjustmentsTable, "stock adjustment")}
}

func (r *AdjustmentRepo) Create(ctx context.Context, adj *inventory.StockAdjustment) error {
	return r.table.Insert(ctx, adj)
}

func (r *AdjustmentRepo) List(ctx context.Context, f inventory.AdjustmentFilter) (domain.ListResult[*inventory.StockAdjustment], error) {
	q := r.table.Select()
	if f.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *f.ItemID})
	}
	if f.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *f.WarehouseID})
	}
	if f.Method != "" {
		q = q.Where(squirrel.Eq{"adjustment_method": f.Method})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *f.To})
	}
	return r.table.Page(ctx, q, f.ListFilter, "created_at DESC, id DESC", "reference", "note")
}

func (r *AdjustmentRepo) ListByDocument(ctx context.Context, documentID id.ID) ([]*inventory.StockAdjustment, error) {
	return r.table.All(ctx, r.byDocument(documentID))
}

func (r *AdjustmentRepo) byDocument(documentID id.ID) squirrel.SelectBuilder {
	return r.table.Select().
		Where(squirrel.Or{
			squirrel.Eq{"sales_order_id": documentID},
			squirrel.Eq{"bill_id": documentID},
		}).
		OrderBy("created_at", "id")
}
