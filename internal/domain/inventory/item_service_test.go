package inventory_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain/audit"
	"retailops/internal/domain/inventory"
)

func newItemService(f *fixture) *inventory.ItemService {
	return inventory.NewItemService(f.store.Items(), f.store.Adjustments(), f.store.AuditLog(), f.store.TxManager(), f.mirror)
}

func TestItemService_CreateRecordsOpeningStock(t *testing.T) {
	f := newFixture(t)
	svc := newItemService(f)
	ctx := context.Background()

	item := &inventory.Item{Name: "Kettle", ItemCode: " KT-1 ", WarehouseID: f.wh, Quantity: 4, LowStockAlertLevel: 5, UnitPrice: types.MustMoney("19.90")}
	require.NoError(t, svc.Create(ctx, item))

	assert.False(t, id.IsNil(item.ID))
	assert.Equal(t, "KT-1", item.ItemCode)
	assert.Equal(t, inventory.StatusLowStock, item.Status)

	ledger := f.ledger(t, item.ID)
	require.Len(t, ledger, 1)
	assert.Equal(t, 0, ledger[0].PreviousQuantity)
	assert.Equal(t, 4, ledger[0].NewQuantity)

	history, err := svc.History(ctx, item.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, audit.ActionCreate, history[0].Action)
}

func TestItemService_CreateValidates(t *testing.T) {
	f := newFixture(t)
	svc := newItemService(f)

	err := svc.Create(context.Background(), &inventory.Item{Name: "No code", WarehouseID: f.wh})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestItemService_CreateDuplicateCode(t *testing.T) {
	f := newFixture(t)
	svc := newItemService(f)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &inventory.Item{Name: "A", ItemCode: "DUP", WarehouseID: f.wh}))
	err := svc.Create(ctx, &inventory.Item{Name: "B", ItemCode: "DUP", WarehouseID: f.wh})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestItemService_UpdateRederivesStatusAndSyncs(t *testing.T) {
	f := newFixture(t)
	svc := newItemService(f)
	ctx := context.Background()

	item := &inventory.Item{Name: "Lamp", ItemCode: "LMP", WarehouseID: f.wh, Quantity: 8, LowStockAlertLevel: 2}
	require.NoError(t, svc.Create(ctx, item))
	pos := &inventory.POSProduct{Name: "Lamp", ItemID: &item.ID, Quantity: 8, LowStockAlertLevel: 2, Status: inventory.StatusInStock}
	pos.ID = id.New()
	require.NoError(t, f.store.POSProducts().Create(ctx, pos))

	alert := 10
	updated, err := svc.Update(ctx, item.ID, inventory.ItemUpdate{LowStockAlertLevel: &alert})
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusLowStock, updated.Status)
	assert.Equal(t, 8, updated.Quantity)

	gotPOS, err := f.store.POSProducts().GetByID(ctx, pos.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusLowStock, gotPOS.Status)
	assert.Equal(t, 10, gotPOS.LowStockAlertLevel)

	history, err := svc.History(ctx, item.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, audit.ActionUpdate, history[0].Action)

	var changes map[string]map[string]any
	require.NoError(t, json.Unmarshal(history[0].Changes, &changes))
	assert.Contains(t, changes, "lowStockAlertLevel")
	assert.Contains(t, changes, "status")
	assert.NotContains(t, changes, "name")
}

func TestItemService_Delete(t *testing.T) {
	f := newFixture(t)
	svc := newItemService(f)
	ctx := context.Background()

	item := &inventory.Item{Name: "Vase", ItemCode: "VS", WarehouseID: f.wh}
	require.NoError(t, svc.Create(ctx, item))
	require.NoError(t, svc.Delete(ctx, item.ID))

	_, err := svc.Get(ctx, item.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(svc.Delete(ctx, item.ID)))
}

func TestItemService_ListFilters(t *testing.T) {
	f := newFixture(t)
	svc := newItemService(f)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &inventory.Item{Name: "Alpha", ItemCode: "A", WarehouseID: f.wh, Quantity: 0}))
	require.NoError(t, svc.Create(ctx, &inventory.Item{Name: "Beta", ItemCode: "B", WarehouseID: f.wh, Quantity: 50}))

	res, err := svc.List(ctx, inventory.ItemFilter{Status: inventory.StatusOutOfStock})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Alpha", res.Items[0].Name)

	_, err = svc.List(ctx, inventory.ItemFilter{Status: "bogus"})
	require.Error(t, err)
}
