package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/id"
	"retailops/internal/domain/inventory"
	"retailops/internal/infrastructure/storage/memory"
)

type fixture struct {
	store   *memory.Store
	stock   *inventory.StockService
	mirror  *inventory.Synchronizer
	cleared []id.ID
	wh      id.ID
}

type recordingInvalidator struct{ f *fixture }

func (r recordingInvalidator) Invalidate(_ context.Context, ids ...id.ID) error {
	r.f.cleared = append(r.f.cleared, ids...)
	return nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.New(), wh: id.New()}
	f.mirror = inventory.NewSynchronizer(f.store.Items(), f.store.POSProducts(), f.store.OnlineProducts(), recordingInvalidator{f})
	f.stock = inventory.NewStockService(inventory.StockServiceConfig{
		Items:       f.store.Items(),
		POSProducts: f.store.POSProducts(),
		Online:      f.store.OnlineProducts(),
		Adjustments: f.store.Adjustments(),
		TxManager:   f.store.TxManager(),
		Mirror:      f.mirror,
	})
	return f
}

func (f *fixture) item(t *testing.T, code string, qty, alert int) *inventory.Item {
	t.Helper()
	it := inventory.NewItem("Item "+code, code, f.wh, qty, alert)
	require.NoError(t, f.store.Items().Create(context.Background(), it))
	return it
}

func (f *fixture) reload(t *testing.T, itemID id.ID) *inventory.Item {
	t.Helper()
	it, err := f.store.Items().GetByID(context.Background(), itemID)
	require.NoError(t, err)
	return it
}

func (f *fixture) ledger(t *testing.T, itemID id.ID) []*inventory.StockAdjustment {
	t.Helper()
	res, err := f.store.Adjustments().List(context.Background(), inventory.AdjustmentFilter{ItemID: &itemID})
	require.NoError(t, err)
	return res.Items
}

func orderDoc(lines ...inventory.StockLine) *inventory.StockDocument {
	return &inventory.StockDocument{ID: id.New(), Number: "SO-2026-00001", Source: inventory.SourceDashboard, Lines: lines}
}

func itemLine(itemID id.ID, qty int) inventory.StockLine {
	return inventory.StockLine{ItemID: &itemID, Quantity: qty}
}

func TestUpdateStockAfterOrder_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		quantity   int
		alertLevel int
		sell       int
		wantQty    int
		wantStatus inventory.Status
	}{
		{"sell below stock", 10, 5, 3, 7, inventory.StatusInStock},
		{"sell exactly stock", 5, 5, 5, 0, inventory.StatusOutOfStock},
		{"oversell clamps to zero", 2, 5, 5, 0, inventory.StatusOutOfStock},
		{"sell into low stock", 10, 5, 6, 4, inventory.StatusLowStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			it := f.item(t, "SKU-1", tt.quantity, tt.alertLevel)
			doc := orderDoc(itemLine(it.ID, tt.sell))

			res, err := f.stock.UpdateStockAfterOrder(context.Background(), doc)
			require.NoError(t, err)
			require.Len(t, res.Lines, 1)
			assert.True(t, res.Lines[0].Success)
			assert.Equal(t, tt.quantity, res.Lines[0].PreviousQuantity)
			assert.Equal(t, tt.wantQty, res.Lines[0].NewQuantity)

			got := f.reload(t, it.ID)
			assert.Equal(t, tt.wantQty, got.Quantity)
			assert.Equal(t, tt.wantStatus, got.Status)

			ledger := f.ledger(t, it.ID)
			require.Len(t, ledger, 1)
			adj := ledger[0]
			assert.Equal(t, inventory.MethodSalesOrder, adj.AdjustmentMethod)
			assert.Equal(t, inventory.TypeDecrease, adj.AdjustmentType)
			assert.Equal(t, tt.sell, adj.Quantity)
			assert.Equal(t, tt.quantity, adj.PreviousQuantity)
			assert.Equal(t, tt.wantQty, adj.NewQuantity)
			require.NotNil(t, adj.SalesOrderID)
			assert.Equal(t, doc.ID, *adj.SalesOrderID)
			assert.Equal(t, doc.Number, adj.Reference)
			assert.Contains(t, adj.Note, "Sold")
		})
	}
}

func TestUpdateStockAfterPurchase_FromZero(t *testing.T) {
	f := newFixture(t)
	it := f.item(t, "SKU-1", 0, 5)
	poID := id.New()
	doc := &inventory.StockDocument{
		ID: id.New(), Number: "BILL-2026-00001", Source: inventory.SourceDashboard,
		PurchaseOrderID: &poID, Lines: []inventory.StockLine{itemLine(it.ID, 20)},
	}

	res, err := f.stock.UpdateStockAfterPurchase(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)

	got := f.reload(t, it.ID)
	assert.Equal(t, 20, got.Quantity)
	assert.Equal(t, inventory.StatusInStock, got.Status)

	ledger := f.ledger(t, it.ID)
	require.Len(t, ledger, 1)
	assert.Equal(t, inventory.MethodPurchaseOrder, ledger[0].AdjustmentMethod)
	assert.Equal(t, inventory.TypeIncrease, ledger[0].AdjustmentType)
	require.NotNil(t, ledger[0].BillID)
	assert.Equal(t, doc.ID, *ledger[0].BillID)
	require.NotNil(t, ledger[0].PurchaseOrderID)
	assert.Equal(t, poID, *ledger[0].PurchaseOrderID)
}

func TestUpdateStockAfterOrder_PartialBatch(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "SKU-A", 10, 2)
	missing := id.New()

	res, err := f.stock.UpdateStockAfterOrder(context.Background(), orderDoc(itemLine(a.ID, 4), itemLine(missing, 1)))
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)

	assert.True(t, res.Lines[0].Success)
	assert.Equal(t, 6, res.Lines[0].NewQuantity)

	assert.False(t, res.Lines[1].Success)
	assert.Equal(t, missing.String(), res.Lines[1].ProductID)
	assert.Contains(t, res.Lines[1].Error, "not found")

	assert.Equal(t, 6, f.reload(t, a.ID).Quantity)
	assert.Len(t, f.ledger(t, a.ID), 1)
	assert.Empty(t, f.ledger(t, missing))
}

func TestUpdateStockAfterOrder_StorageFailureIsolated(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "SKU-A", 10, 2)
	b := f.item(t, "SKU-B", 10, 2)
	f.store.FailItemUpdates(a.ID, errors.New("disk full"))

	res, err := f.stock.UpdateStockAfterOrder(context.Background(), orderDoc(itemLine(a.ID, 1), itemLine(b.ID, 1)))
	require.NoError(t, err)

	assert.False(t, res.Lines[0].Success)
	assert.Equal(t, "storage error", res.Lines[0].Error)
	assert.True(t, res.Lines[1].Success)
	assert.Empty(t, f.ledger(t, a.ID))
	assert.Len(t, f.ledger(t, b.ID), 1)
}

func TestReverseStockUpdate_RestoresQuantity(t *testing.T) {
	f := newFixture(t)
	it := f.item(t, "SKU-1", 10, 5)
	doc := orderDoc(itemLine(it.ID, 4))
	ctx := context.Background()

	_, err := f.stock.UpdateStockAfterOrder(ctx, doc)
	require.NoError(t, err)
	res, err := f.stock.ReverseStockUpdate(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)

	got := f.reload(t, it.ID)
	assert.Equal(t, 10, got.Quantity)
	assert.Equal(t, inventory.StatusInStock, got.Status)

	ledger := f.ledger(t, it.ID)
	require.Len(t, ledger, 2)
	assert.Equal(t, inventory.MethodSalesReturn, ledger[0].AdjustmentMethod)
	assert.Equal(t, inventory.TypeIncrease, ledger[0].AdjustmentType)
}

func TestReverseStockAfterPurchase_Clamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "SKU-1", 3, 1)
	bill := &inventory.StockDocument{ID: id.New(), Number: "BILL-2026-00002", Source: inventory.SourceDashboard,
		Lines: []inventory.StockLine{itemLine(it.ID, 8)}}

	_, err := f.stock.UpdateStockAfterPurchase(ctx, bill)
	require.NoError(t, err)
	_, err = f.stock.UpdateStockAfterOrder(ctx, orderDoc(itemLine(it.ID, 9)))
	require.NoError(t, err)
	require.Equal(t, 2, f.reload(t, it.ID).Quantity)

	res, err := f.stock.ReverseStockAfterPurchase(ctx, bill)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.True(t, res.Lines[0].Success)
	assert.Equal(t, 0, f.reload(t, it.ID).Quantity)
}

func TestReverseStockUpdate_OnlyWhatTheOrderTook(t *testing.T) {
	tests := []struct {
		name    string
		stock   int
		sell    int
		restore int
	}{
		{name: "full sale", stock: 10, sell: 4, restore: 10},
		{name: "clamped sale", stock: 2, sell: 5, restore: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			it := f.item(t, "SKU-1", tt.stock, 1)
			doc := orderDoc(itemLine(it.ID, tt.sell))

			_, err := f.stock.UpdateStockAfterOrder(ctx, doc)
			require.NoError(t, err)
			_, err = f.stock.ReverseStockUpdate(ctx, doc)
			require.NoError(t, err)

			assert.Equal(t, tt.restore, f.reload(t, it.ID).Quantity)
		})
	}
}

func TestReverseStockUpdate_SkipsLinesThatFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sold := f.item(t, "SOLD", 10, 1)
	doc := orderDoc(itemLine(sold.ID, 3), inventory.StockLine{ItemCode: "LATE", Quantity: 4})

	res, err := f.stock.UpdateStockAfterOrder(ctx, doc)
	require.NoError(t, err)
	require.Equal(t, 1, res.Failed)

	late := f.item(t, "LATE", 10, 1)

	res, err = f.stock.ReverseStockUpdate(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 10, f.reload(t, sold.ID).Quantity)
	assert.Equal(t, 10, f.reload(t, late.ID).Quantity)
	assert.Empty(t, f.ledger(t, late.ID))
}

func TestReverseStockUpdate_NothingRecorded(t *testing.T) {
	f := newFixture(t)
	it := f.item(t, "SKU-1", 5, 1)

	res, err := f.stock.ReverseStockUpdate(context.Background(), orderDoc(itemLine(it.ID, 2)))
	require.NoError(t, err)
	assert.Empty(t, res.Lines)
	assert.Equal(t, 5, f.reload(t, it.ID).Quantity)
	assert.Empty(t, f.ledger(t, it.ID))
}

func TestReverseStockUpdate_SecondCallIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "SKU-1", 10, 1)
	doc := orderDoc(itemLine(it.ID, 4))

	_, err := f.stock.UpdateStockAfterOrder(ctx, doc)
	require.NoError(t, err)
	_, err = f.stock.ReverseStockUpdate(ctx, doc)
	require.NoError(t, err)
	res, err := f.stock.ReverseStockUpdate(ctx, doc)
	require.NoError(t, err)

	assert.Empty(t, res.Lines)
	assert.Equal(t, 10, f.reload(t, it.ID).Quantity)
}

func TestUpdateStockAfterAdjustment_PerLineDirection(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "SKU-A", 10, 2)
	b := f.item(t, "SKU-B", 1, 2)
	doc := &inventory.StockDocument{
		ID: id.New(), Number: "ADJ-7", Source: inventory.SourceDashboard, Note: "cycle count",
		Lines: []inventory.StockLine{
			{ItemID: &a.ID, Quantity: 3, Type: inventory.TypeDecrease},
			{ItemID: &b.ID, Quantity: 4, Type: inventory.TypeIncrease},
			{ItemID: &b.ID, Quantity: 1},
		},
	}

	res, err := f.stock.UpdateStockAfterAdjustment(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, res.Lines[2].Error, "adjustment type")

	assert.Equal(t, 7, f.reload(t, a.ID).Quantity)
	assert.Equal(t, 5, f.reload(t, b.ID).Quantity)

	ledger := f.ledger(t, b.ID)
	require.Len(t, ledger, 1)
	assert.Equal(t, inventory.MethodAdjustment, ledger[0].AdjustmentMethod)
	assert.Equal(t, "ADJ-7", ledger[0].Reference)
	assert.Contains(t, ledger[0].Note, "cycle count")
}

func TestApply_InvalidDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stock.UpdateStockAfterOrder(ctx, nil)
	require.Error(t, err)

	_, err = f.stock.UpdateStockAfterOrder(ctx, orderDoc())
	require.Error(t, err)
}

func TestApply_CancelledContextAborts(t *testing.T) {
	f := newFixture(t)
	it := f.item(t, "SKU-1", 10, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.stock.UpdateStockAfterOrder(ctx, orderDoc(itemLine(it.ID, 1)))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Lines)
	assert.Equal(t, 10, f.reload(t, it.ID).Quantity)
}

func TestApply_NonPositiveQuantityFailsLine(t *testing.T) {
	f := newFixture(t)
	it := f.item(t, "SKU-1", 10, 5)

	res, err := f.stock.UpdateStockAfterOrder(context.Background(), orderDoc(itemLine(it.ID, 0)))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 10, f.reload(t, it.ID).Quantity)
}

func TestResolve_POSProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	linked := f.item(t, "SKU-L", 10, 1)
	byCode := f.item(t, "SKU-C", 10, 1)

	posLinked := &inventory.POSProduct{Name: "Linked", ItemID: &linked.ID}
	posLinked.ID = id.New()
	posByCode := &inventory.POSProduct{Name: "By code", ItemCode: "SKU-C", WarehouseID: &f.wh}
	posByCode.ID = id.New()
	require.NoError(t, f.store.POSProducts().Create(ctx, posLinked))
	require.NoError(t, f.store.POSProducts().Create(ctx, posByCode))

	doc := &inventory.StockDocument{
		ID: id.New(), Number: "SO-2026-00009", Source: inventory.SourcePOS, WarehouseID: &f.wh,
		Lines: []inventory.StockLine{
			{ProductID: &posLinked.ID, Quantity: 2},
			{ProductID: &posByCode.ID, Quantity: 3},
			{ItemCode: "SKU-L", Quantity: 1},
		},
	}
	res, err := f.stock.UpdateStockAfterOrder(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, posLinked.ID.String(), res.Lines[0].ProductID)

	assert.Equal(t, 7, f.reload(t, linked.ID).Quantity)
	assert.Equal(t, 7, f.reload(t, byCode.ID).Quantity)
}

func TestResolve_ItemCodeRestrictedToWarehouse(t *testing.T) {
	f := newFixture(t)
	f.item(t, "SKU-X", 10, 1)
	other := id.New()

	doc := &inventory.StockDocument{
		ID: id.New(), Number: "SO-2026-00010", Source: inventory.SourcePOS, WarehouseID: &other,
		Lines: []inventory.StockLine{{ItemCode: "SKU-X", Quantity: 1}},
	}
	res, err := f.stock.UpdateStockAfterOrder(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
}

func TestResolve_OnlineVariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	red := f.item(t, "TEE-RED", 10, 2)
	blue := f.item(t, "TEE-BLUE", 4, 2)

	product := &inventory.OnlineProduct{
		Name: "Tee", Slug: "tee", Published: true,
		Variants: []inventory.Variant{
			{ID: id.New(), Name: "Red", SKU: "TEE-RED", InventoryProductID: &red.ID, StockQuantity: 10},
			{ID: id.New(), Name: "Blue", SKU: "TEE-BLUE", InventoryProductID: &blue.ID, StockQuantity: 4},
		},
		TotalStockQuantity: 14,
	}
	product.ID = id.New()
	require.NoError(t, f.store.OnlineProducts().Create(ctx, product))

	doc := &inventory.StockDocument{
		ID: id.New(), Number: "SO-2026-00011", Source: inventory.SourceOnline,
		Lines: []inventory.StockLine{{ProductID: &product.ID, VariantID: &product.Variants[0].ID, Quantity: 3}},
	}
	res, err := f.stock.UpdateStockAfterOrder(ctx, doc)
	require.NoError(t, err)
	require.Equal(t, 1, res.Succeeded)

	assert.Equal(t, 7, f.reload(t, red.ID).Quantity)
	assert.Equal(t, 4, f.reload(t, blue.ID).Quantity)

	synced, err := f.store.OnlineProducts().GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, synced.Variants[0].StockQuantity)
	assert.Equal(t, 11, synced.TotalStockQuantity)
	assert.Equal(t, inventory.StatusInStock, synced.StockStatus)
	assert.Contains(t, f.cleared, product.ID)
}

func TestResolve_OnlineProductWithoutLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := &inventory.OnlineProduct{Name: "Gift card", Slug: "gift-card"}
	product.ID = id.New()
	require.NoError(t, f.store.OnlineProducts().Create(ctx, product))

	doc := &inventory.StockDocument{
		ID: id.New(), Number: "SO-2026-00012", Source: inventory.SourceOnline,
		Lines: []inventory.StockLine{{ProductID: &product.ID, Quantity: 1}},
	}
	res, err := f.stock.UpdateStockAfterOrder(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, res.Lines[0].Error, "not linked")
}
