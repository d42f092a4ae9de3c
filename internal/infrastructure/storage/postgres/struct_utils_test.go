package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/id"
	"retailops/internal/domain/inventory"
)

func TestExtractDBColumns_Item(t *testing.T) {
	cols := ExtractDBColumns[inventory.Item]()

	assert.Equal(t, []string{
		"id", "created_at", "updated_at",
		"name", "item_code", "warehouse_id", "quantity", "low_stock_alert_level", "status", "unit_price",
	}, cols)
}

func TestExtractDBColumns_SkipsDashTag(t *testing.T) {
	cols := ExtractDBColumns[inventory.OnlineProduct]()

	assert.NotContains(t, cols, "variants")
	assert.NotContains(t, cols, "-")
	assert.Contains(t, cols, "inventory_product_id")
}

func TestStructToMap_Item(t *testing.T) {
	item := inventory.NewItem("Cup", "CUP-1", id.New(), 12, 5)

	m := StructToMap(item)
	require.NotNil(t, m)

	assert.Equal(t, item.ID, m["id"])
	assert.Equal(t, item.CreatedAt, m["created_at"])
	assert.Equal(t, "CUP-1", m["item_code"])
	assert.Equal(t, 12, m["quantity"])
	assert.Equal(t, inventory.StatusInStock, m["status"])
	assert.Len(t, m, len(ExtractDBColumns[inventory.Item]()))
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}
