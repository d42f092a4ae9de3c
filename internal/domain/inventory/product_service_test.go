package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain/inventory"
)

func TestProductService_CreatePOSProductCopiesStock(t *testing.T) {
	f := newFixture(t)
	svc := inventory.NewProductService(f.store.Items(), f.store.POSProducts(), f.store.OnlineProducts())
	ctx := context.Background()
	it := f.item(t, "PEN", 2, 5)

	p := &inventory.POSProduct{Name: "Pen", ItemCode: "PEN", Price: types.MustMoney("1.50")}
	require.NoError(t, svc.CreatePOSProduct(ctx, p))

	require.NotNil(t, p.ItemID)
	assert.Equal(t, it.ID, *p.ItemID)
	assert.Equal(t, 2, p.Quantity)
	assert.Equal(t, inventory.StatusLowStock, p.Status)
	require.NotNil(t, p.WarehouseID)
	assert.Equal(t, f.wh, *p.WarehouseID)
}

func TestProductService_CreatePOSProductUnknownItem(t *testing.T) {
	f := newFixture(t)
	svc := inventory.NewProductService(f.store.Items(), f.store.POSProducts(), f.store.OnlineProducts())
	missing := id.New()

	err := svc.CreatePOSProduct(context.Background(), &inventory.POSProduct{Name: "Ghost", ItemID: &missing})
	assert.True(t, apperror.IsNotFound(err))
}

func TestProductService_CreateOnlineProductWithVariants(t *testing.T) {
	f := newFixture(t)
	svc := inventory.NewProductService(f.store.Items(), f.store.POSProducts(), f.store.OnlineProducts())
	ctx := context.Background()
	small := f.item(t, "CAP-S", 3, 1)
	large := f.item(t, "CAP-L", 0, 1)

	p := &inventory.OnlineProduct{
		Name: "Cap", Slug: " Cap ", Published: true,
		Variants: []inventory.Variant{
			{Name: "S", SKU: "CAP-S", InventoryProductID: &small.ID},
			{Name: "L", SKU: "CAP-L", InventoryProductID: &large.ID},
		},
	}
	require.NoError(t, svc.CreateOnlineProduct(ctx, p))

	assert.Equal(t, "cap", p.Slug)
	assert.Equal(t, 3, p.Variants[0].StockQuantity)
	assert.Equal(t, 0, p.Variants[1].StockQuantity)
	assert.Equal(t, 3, p.TotalStockQuantity)
	assert.False(t, id.IsNil(p.Variants[0].ID))

	err := svc.CreateOnlineProduct(ctx, &inventory.OnlineProduct{Name: "Cap 2", Slug: "cap", InventoryProductID: &small.ID})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestProductService_CreateOnlineProductRequiresLink(t *testing.T) {
	f := newFixture(t)
	svc := inventory.NewProductService(f.store.Items(), f.store.POSProducts(), f.store.OnlineProducts())

	err := svc.CreateOnlineProduct(context.Background(), &inventory.OnlineProduct{Name: "Loose", Slug: "loose"})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
