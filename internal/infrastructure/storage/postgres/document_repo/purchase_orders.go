package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"retailops/internal/core/id"
	"retailops/internal/domain"
	"retailops/internal/domain/purchasing"
	"retailops/internal/infrastructure/storage/postgres"
)

const (
	purchaseOrdersTable     = "purchase_orders"
	purchaseOrderLinesTable = "purchase_order_lines"
)

// PurchaseOrderRepo implements purchasing.PurchaseOrderRepository.
type PurchaseOrderRepo struct {
	table *postgres.Table[purchasing.PurchaseOrder]
}

var _ purchasing.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// NewPurchaseOrderRepo creates a purchase order repository.
func NewPurchaseOrderRepo(txm *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{table: postgres.NewTable[purchasing.PurchaseOrder](txm, purchaseOrdersTable, "purchase order")}
}

func (r *PurchaseOrderRepo) Create(ctx context.Context, po *purchasing.PurchaseOrder) error {
	return r.table.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.table.Insert(ctx, po); err != nil {
			return err
		}
		return insertLines(ctx, r.table.Querier(ctx), purchaseOrderLinesTable, po.ID, po.Lines)
	})
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, poID id.ID) (*purchasing.PurchaseOrder, error) {
	return r.get(ctx, poID, false)
}

func (r *PurchaseOrderRepo) GetByIDForUpdate(ctx context.Context, poID id.ID) (*purchasing.PurchaseOrder, error) {
	return r.get(ctx, poID, true)
}

func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, po *purchasing.PurchaseOrder) error {
	return r.table.UpdateColumns(ctx, po.ID, map[string]any{
		"status":     po.Status,
		"bill_id":    po.BillID,
		"updated_at": po.UpdatedAt,
	})
}

func (r *PurchaseOrderRepo) List(ctx context.Context, f purchasing.PurchaseOrderFilter) (domain.ListResult[*purchasing.PurchaseOrder], error) {
	q := r.table.Select()
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}

	res, err := r.table.Page(ctx, q, f.ListFilter, "created_at DESC, id DESC", "number", "supplier_name")
	if err != nil {
		return res, err
	}
	return res, r.attachLines(ctx, res.Items)
}

func (r *PurchaseOrderRepo) get(ctx context.Context, poID id.ID, forUpdate bool) (*purchasing.PurchaseOrder, error) {
	po, err := r.table.GetByID(ctx, poID, forUpdate)
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, []*purchasing.PurchaseOrder{po}); err != nil {
		return nil, err
	}
	return po, nil
}

func (r *PurchaseOrderRepo) attachLines(ctx context.Context, pos []*purchasing.PurchaseOrder) error {
	lines, err := loadLines[purchasing.PurchaseOrderLine](ctx, r.table.Querier(ctx), purchaseOrderLinesTable,
		idsOf(pos, func(po *purchasing.PurchaseOrder) id.ID { return po.ID }))
	if err != nil {
		return err
	}
	for _, po := range pos {
		po.Lines = lines[po.ID]
	}
	return nil
}
