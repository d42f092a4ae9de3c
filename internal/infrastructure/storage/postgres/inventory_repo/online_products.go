package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"retailops/internal/core/id"
	"retailops/internal/domain"
	"retailops/internal/domain/inventory"
	"retailops/internal/infrastructure/storage/postgres"
)

const (
	onlineProductsTable = "online_products"
	variantsTable       = "online_product_variants"
)

// variantRow is one online_product_variants row. Position keeps the variant order.
type variantRow struct {
	ProductID id.ID `db:"product_id"`
	Position  int   `db:"position"`
	inventory.Variant
}

// OnlineProductRepo implements inventory.OnlineProductRepository. Variants live
// in their own table and are rewritten as a whole on every update.
type OnlineProductRepo struct {
	*postgres.Table[inventory.OnlineProduct]
	variants *postgres.Table[variantRow]
}

var _ inventory.OnlineProductRepository = (*OnlineProductRepo)(nil)

// NewOnlineProductRepo creates an online product repository.
func NewOnlineProductRepo(txm *postgres.TxManager) *OnlineProductRepo {
	return &OnlineProductRepo{
		Table:    postgres.NewTable[inventory.OnlineProduct](txm, onlineProductsTable, "online product"),
		variants: postgres.NewTable[variantRow](txm, variantsTable, "variant"),
	}
}

func (r *OnlineProductRepo) Create(ctx context.Context, p *inventory.OnlineProduct) error {
	return r.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.Insert(ctx, p); err != nil {
			return err
		}
		return r.insertVariants(ctx, p)
	})
}

func (r *OnlineProductRepo) GetByID(ctx context.Context, productID id.ID) (*inventory.OnlineProduct, error) {
	p, err := r.Table.GetByID(ctx, productID, false)
	if err != nil {
		return nil, err
	}
	if err := r.loadVariants(ctx, []*inventory.OnlineProduct{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *OnlineProductRepo) ListByItem(ctx context.Context, itemID id.ID) ([]*inventory.OnlineProduct, error) {
	products, err := r.All(ctx, r.linkedTo(itemID))
	if err != nil {
		return nil, err
	}
	if err := r.loadVariants(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// linkedTo matches products linked to itemID directly or through a variant.
func (r *OnlineProductRepo) linkedTo(itemID id.ID) squirrel.SelectBuilder {
	return r.Select().
		Where(squirrel.Or{
			squirrel.Eq{"inventory_product_id": itemID},
			squirrel.Expr(
				"EXISTS (SELECT 1 FROM "+variantsTable+" v WHERE v.product_id = "+onlineProductsTable+".id AND v.inventory_product_id = ?)",
				itemID,
			),
		}).
		OrderBy("created_at", "id")
}

func (r *OnlineProductRepo) Update(ctx context.Context, p *inventory.OnlineProduct) error {
	return r.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.Table.Update(ctx, p.ID, p); err != nil {
			return err
		}

		sql, args, err := postgres.Builder().
			Delete(variantsTable).
			Where(squirrel.Eq{"product_id": p.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete variants: %w", err)
		}
		if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
			return postgres.MapError("variant", "delete", err)
		}
		return r.insertVariants(ctx, p)
	})
}

func (r *OnlineProductRepo) List(ctx context.Context, f inventory.OnlineProductFilter) (domain.ListResult[*inventory.OnlineProduct], error) {
	q := r.Select()
	if f.PublishedOnly {
		q = q.Where(squirrel.Eq{"published": true})
	}

	result, err := r.Page(ctx, q, f.ListFilter, "name ASC, id ASC", "name", "slug")
	if err != nil {
		return result, err
	}
	if err := r.loadVariants(ctx, result.Items); err != nil {
		return result, err
	}
	return result, nil
}

func (r *OnlineProductRepo) insertVariants(ctx context.Context, p *inventory.OnlineProduct) error {
	if len(p.Variants) == 0 {
		return nil
	}

	cols := r.variants.Columns()
	ins := postgres.Builder().Insert(variantsTable).Columns(cols...)
	for i, v := range p.Variants {
		row := structToRow(variantRow{ProductID: p.ID, Position: i, Variant: v}, cols)
		ins = ins.Values(row...)
	}

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert variants: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError("variant", "insert", err)
	}
	return nil
}

// loadVariants fills Variants for all products with one query.
func (r *OnlineProductRepo) loadVariants(ctx context.Context, products []*inventory.OnlineProduct) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]id.ID, len(products))
	for i, p := range products {
		ids[i] = p.ID
		p.Variants = []inventory.Variant{}
	}

	rows, err := r.variants.All(ctx, r.variants.Select().
		Where(squirrel.Eq{"product_id": ids}).
		OrderBy("product_id", "position"))
	if err != nil {
		return err
	}

	byProduct := make(map[id.ID]*inventory.OnlineProduct, len(products))
	for _, p := range products {
		byProduct[p.ID] = p
	}
	for _, row := range rows {
		if p, ok := byProduct[row.ProductID]; ok {
			p.Variants = append(p.Variants, row.Variant)
		}
	}
	return nil
}

// structToRow returns the values of v in the order of cols.
func structToRow(v any, cols []string) []any {
	data := postgres.StructToMap(v)
	row := make([]any, len(cols))
	for i, col := range cols {
		row[i] = data[col]
	}
	return row
}
