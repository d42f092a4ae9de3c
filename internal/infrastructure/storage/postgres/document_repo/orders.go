package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"retailops/internal/core/id"
	"retailops/internal/domain"
	"retailops/internal/domain/sales"
	"retailops/internal/infrastructure/storage/postgres"
)

const (
	ordersTable     = "sales_orders"
	orderLinesTable = "sales_order_lines"
)

// OrderRepo implements sales.Repository.
type OrderRepo struct {
	table *postgres.Table[sales.Order]
}

var _ sales.Repository = (*OrderRepo)(nil)

// NewOrderRepo creates a sales order repository.
func NewOrderRepo(txm *postgres.TxManager) *OrderRepo {
	return &OrderRepo{table: postgres.NewTable[sales.Order](txm, ordersTable, "order")}
}

func (r *OrderRepo) Create(ctx context.Context, o *sales.Order) error {
	return r.table.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.table.Insert(ctx, o); err != nil {
			return err
		}
		return insertLines(ctx, r.table.Querier(ctx), orderLinesTable, o.ID, o.Lines)
	})
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*sales.Order, error) {
	return r.get(ctx, orderID, false)
}

func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, orderID id.ID) (*sales.Order, error) {
	return r.get(ctx, orderID, true)
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, o *sales.Order) error {
	return r.table.UpdateColumns(ctx, o.ID, map[string]any{
		"status":     o.Status,
		"updated_at": o.UpdatedAt,
	})
}

func (r *OrderRepo) List(ctx context.Context, f sales.OrderFilter) (domain.ListResult[*sales.Order], error) {
	q := r.table.Select()
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if f.Source != "" {
		q = q.Where(squirrel.Eq{"source": f.Source})
	}

	res, err := r.table.Page(ctx, q, f.ListFilter, "created_at DESC, id DESC", "number", "customer_name")
	if err != nil {
		return res, err
	}
	return res, r.attachLines(ctx, res.Items)
}

func (r *OrderRepo) get(ctx context.Context, orderID id.ID, forUpdate bool) (*sales.Order, error) {
	o, err := r.table.GetByID(ctx, orderID, forUpdate)
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, []*sales.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) attachLines(ctx context.Context, orders []*sales.Order) error {
	lines, err := loadLines[sales.OrderLine](ctx, r.table.Querier(ctx), orderLinesTable,
		idsOf(orders, func(o *sales.Order) id.ID { return o.ID }))
	if err != nil {
		return err
	}
	for _, o := range orders {
		o.Lines = lines[o.ID]
	}
	return nil
}
