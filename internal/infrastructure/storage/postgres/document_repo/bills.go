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
	billsTable     = "bills"
	billLinesTable = "bill_lines"
)

// BillRepo implements purchasing.BillRepository.
type BillRepo struct {
	table *postgres.Table[purchasing.Bill]
}

var _ purchasing.BillRepository = (*BillRepo)(nil)

// NewBillRepo creates a bill repository.
func NewBillRepo(txm *postgres.TxManager) *BillRepo {
	return &BillRepo{table: postgres.NewTable[purchasing.Bill](txm, billsTable, "bill")}
}

func (r *BillRepo) Create(ctx context.Context, b *purchasing.Bill) error {
	return r.table.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.table.Insert(ctx, b); err != nil {
			return err
		}
		return insertLines(ctx, r.table.Querier(ctx), billLinesTable, b.ID, b.Lines)
	})
}

func (r *BillRepo) GetByID(ctx context.Context, billID id.ID) (*purchasing.Bill, error) {
	return r.get(ctx, billID, false)
}

func (r *BillRepo) GetByIDForUpdate(ctx context.Context, billID id.ID) (*purchasing.Bill, error) {
	return r.get(ctx, billID, true)
}

func (r *BillRepo) UpdateStatus(ctx context.Context, b *purchasing.Bill) error {
	return r.table.UpdateColumns(ctx, b.ID, map[string]any{
		"status":     b.Status,
		"updated_at": b.UpdatedAt,
	})
}

func (r *BillRepo) List(ctx context.Context, f purchasing.BillFilter) (domain.ListResult[*purchasing.Bill], error) {
	q := r.table.Select()
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}

	res, err := r.table.Page(ctx, q, f.ListFilter, "bill_date DESC, id DESC", "number", "supplier_name")
	if err != nil {
		return res, err
	}
	return res, r.attachLines(ctx, res.Items)
}

func (r *BillRepo) get(ctx context.Context, billID id.ID, forUpdate bool) (*purchasing.Bill, error) {
	b, err := r.table.GetByID(ctx, billID, forUpdate)
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, []*purchasing.Bill{b}); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BillRepo) attachLines(ctx context.Context, bills []*purchasing.Bill) error {
	lines, err := loadLines[purchasing.BillLine](ctx, r.table.Querier(ctx), billLinesTable,
		idsOf(bills, func(b *purchasing.Bill) id.ID { return b.ID }))
	if err != nil {
		return err
	}
	for _, b := range bills {
		b.Lines = lines[b.ID]
	}
	return nil
}
