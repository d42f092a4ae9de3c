package sales_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain/inventory"
	"retailops/internal/domain/sales"
	"retailops/internal/infrastructure/storage/memory"
	"retailops/pkg/numerator"
)

type env struct {
	store *memory.Store
	svc   *sales.Service
	wh    id.ID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.New()
	mirror := inventory.NewSynchronizer(store.Items(), store.POSProducts(), store.OnlineProducts(), nil)
	stock := inventory.NewStockService(inventory.StockServiceConfig{
		Items:       store.Items(),
		POSProducts: store.POSProducts(),
		Online:      store.OnlineProducts(),
		Adjustments: store.Adjustments(),
		TxManager:   store.TxManager(),
		Mirror:      mirror,
	})
	return &env{
		store: store,
		svc:   sales.NewService(store.Orders(), stock, numerator.New(numerator.NewMemoryStore()), store.TxManager()),
		wh:    id.New(),
	}
}

func (e *env) item(t *testing.T, code string, qty int) *inventory.Item {
	t.Helper()
	it := inventory.NewItem(code, code, e.wh, qty, 2)
	require.NoError(t, e.store.Items().Create(context.Background(), it))
	return it
}

func (e *env) quantity(t *testing.T, itemID id.ID) int {
	t.Helper()
	it, err := e.store.Items().GetByID(context.Background(), itemID)
	require.NoError(t, err)
	return it.Quantity
}

func TestCreate_SellsStockAndNumbers(t *testing.T) {
	e := newEnv(t)
	it := e.item(t, "MUG", 10)

	res, err := e.svc.Create(context.Background(), &sales.Order{
		Source:       inventory.SourceDashboard,
		CustomerName: "Walk-in",
		Lines: []sales.OrderLine{
			{ItemID: &it.ID, Quantity: 3, UnitPrice: types.MustMoney("4.50")},
		},
	})
	require.NoError(t, err)

	assert.Regexp(t, `^SO-\d{4}-00001$`, res.Order.Number)
	assert.Equal(t, sales.StatusPlaced, res.Order.Status)
	assert.Equal(t, "13.5", res.Order.TotalAmount.String())
	require.NotNil(t, res.Stock)
	assert.Equal(t, 1, res.Stock.Succeeded)
	assert.Equal(t, 7, e.quantity(t, it.ID))
}

func TestCreate_PartialStockFailureStillPlacesOrder(t *testing.T) {
	e := newEnv(t)
	a := e.item(t, "A", 5)
	missing := id.New()

	res, err := e.svc.Create(context.Background(), &sales.Order{
		Source: inventory.SourceDashboard,
		Lines: []sales.OrderLine{
			{ItemID: &a.ID, Quantity: 1, UnitPrice: types.MustMoney("1")},
			{ItemID: &missing, Quantity: 1, UnitPrice: types.MustMoney("1")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, sales.StatusPlaced, res.Order.Status)
	assert.Equal(t, 1, res.Stock.Succeeded)
	assert.Equal(t, 1, res.Stock.Failed)
	assert.Equal(t, 4, e.quantity(t, a.ID))

	stored, err := e.svc.Get(context.Background(), res.Order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Lines, 2)
}

func TestCreate_Validation(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Create(context.Background(), &sales.Order{Source: inventory.SourcePOS})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	_, err = e.svc.Create(context.Background(), &sales.Order{Source: "fax", Lines: []sales.OrderLine{{ItemCode: "X", Quantity: 1}}})
	require.Error(t, err)
}

func TestCancel_RestoresStockOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.item(t, "MUG", 10)

	res, err := e.svc.Create(ctx, &sales.Order{
		Source: inventory.SourceDashboard,
		Lines:  []sales.OrderLine{{ItemID: &it.ID, Quantity: 4, UnitPrice: types.MustMoney("2")}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, e.quantity(t, it.ID))

	cancelled, err := e.svc.Cancel(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusCancelled, cancelled.Order.Status)
	assert.Equal(t, 10, e.quantity(t, it.ID))

	_, err = e.svc.Cancel(ctx, res.Order.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidState, appErr.Code)

	_, err = e.svc.Return(ctx, res.Order.ID)
	require.Error(t, err)
	assert.Equal(t, 10, e.quantity(t, it.ID))
}

func TestReturn_RecordsSalesReturn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.item(t, "MUG", 10)

	res, err := e.svc.Create(ctx, &sales.Order{
		Source: inventory.SourceDashboard,
		Lines:  []sales.OrderLine{{ItemID: &it.ID, Quantity: 2, UnitPrice: types.MustMoney("2")}},
	})
	require.NoError(t, err)

	returned, err := e.svc.Return(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusReturned, returned.Order.Status)

	ledger, err := e.store.Adjustments().List(ctx, inventory.AdjustmentFilter{ItemID: &it.ID})
	require.NoError(t, err)
	require.Len(t, ledger.Items, 2)
	assert.Equal(t, inventory.MethodSalesReturn, ledger.Items[0].AdjustmentMethod)
	assert.Equal(t, res.Order.ID, *ledger.Items[0].SalesOrderID)
}

func TestCancel_DoesNotCreditFailedOrClampedLines(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	short := e.item(t, "SHORT", 2)

	res, err := e.svc.Create(ctx, &sales.Order{
		Source: inventory.SourceDashboard,
		Lines: []sales.OrderLine{
			{ItemID: &short.ID, Quantity: 5, UnitPrice: types.MustMoney("1")},
			{ItemCode: "LATE", Quantity: 4, UnitPrice: types.MustMoney("1")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Stock.Succeeded)
	require.Equal(t, 1, res.Stock.Failed)
	require.Equal(t, 0, e.quantity(t, short.ID))

	late := e.item(t, "LATE", 10)

	cancelled, err := e.svc.Cancel(ctx, res.Order.ID)
	require.NoError(t, err)
	require.NotNil(t, cancelled.Stock)
	assert.Equal(t, 1, cancelled.Stock.Succeeded)
	assert.Equal(t, 2, e.quantity(t, short.ID))
	assert.Equal(t, 10, e.quantity(t, late.ID))
}

func TestCancel_UnknownOrder(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Cancel(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}
