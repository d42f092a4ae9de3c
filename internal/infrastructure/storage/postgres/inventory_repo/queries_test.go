package inventory_repo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/id"
)

func TestItemRepo_FindByCodeQuery(t *testing.T) {
	r := NewItemRepo(nil)
	selectAll := "SELECT " + strings.Join(r.Columns(), ", ") + " FROM inventory_items"
	wh := id.New()

	tests := []struct {
		name     string
		wh       *id.ID
		wantSQL  string
		wantArgs int
	}{
		{
			name:     "any warehouse",
			wantSQL:  selectAll + " WHERE item_code = $1 ORDER BY created_at, id LIMIT 1",
			wantArgs: 1,
		},
		{
			name:     "one warehouse",
			wh:       &wh,
			wantSQL:  selectAll + " WHERE item_code = $1 AND warehouse_id = $2 ORDER BY created_at, id LIMIT 1",
			wantArgs: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := r.findByCode("CUP-1", tt.wh).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			require.Len(t, args, tt.wantArgs)
			assert.Equal(t, "CUP-1", args[0])
		})
	}
}

func TestItemRepo_LockingRead(t *testing.T) {
	r := NewItemRepo(nil)

	sql, _, err := r.ByID(id.New(), true).ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(sql, " FROM inventory_items WHERE id = $1 FOR UPDATE"), sql)
}

func TestOnlineProductRepo_LinkedToQuery(t *testing.T) {
	r := NewOnlineProductRepo(nil)

	sql, args, err := r.linkedTo(id.New()).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT "+strings.Join(r.Columns(), ", ")+" FROM online_products"+
			" WHERE (inventory_product_id = $1 OR EXISTS (SELECT 1 FROM online_product_variants v"+
			" WHERE v.product_id = online_products.id AND v.inventory_product_id = $2))"+
			" ORDER BY created_at, id",
		sql)
	assert.Len(t, args, 2)
}

func TestOnlineProductRepo_VariantColumns(t *testing.T) {
	r := NewOnlineProductRepo(nil)

	assert.Equal(t, []string{
		"product_id", "position", "id", "name", "sku", "inventory_product_id", "stock_quantity",
	}, r.variants.Columns())
	assert.NotContains(t, r.Columns(), "variants")
}

func TestAdjustmentRepo_ByDocumentQuery(t *testing.T) {
	r := NewAdjustmentRepo(nil)

	sql, args, err := r.byDocument(id.New()).ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(sql,
		" FROM stock_adjustments WHERE (sales_order_id = $1 OR bill_id = $2) ORDER BY created_at, id"), sql)
	assert.Len(t, args, 2)
}
