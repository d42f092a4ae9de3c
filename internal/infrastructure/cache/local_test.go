package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/id"
	"retailops/internal/domain/storefront"
)

func TestLocalAvailabilityCache_SetGetDelete(t *testing.T) {
	c := NewLocalAvailabilityCache(nil)
	ctx := context.Background()
	pid := id.New()

	require.NoError(t, c.Set(ctx, &storefront.Availability{ProductID: pid, TotalStockQuantity: 4}, time.Minute))

	got, ok, err := c.Get(ctx, pid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, got.TotalStockQuantity)

	require.NoError(t, c.Delete(ctx, pid))
	_, ok, _ = c.Get(ctx, pid)
	assert.False(t, ok)
}

func TestLocalAvailabilityCache_Expires(t *testing.T) {
	c := NewLocalAvailabilityCache(nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()
	pid := id.New()

	require.NoError(t, c.Set(ctx, &storefront.Availability{ProductID: pid}, time.Minute))
	now = now.Add(2 * time.Minute)

	_, ok, err := c.Get(ctx, pid)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalAvailabilityCache_HandleNotification(t *testing.T) {
	c := NewLocalAvailabilityCache(nil)
	ctx := context.Background()
	a, b, keep := id.New(), id.New(), id.New()
	for _, pid := range []id.ID{a, b, keep} {
		require.NoError(t, c.Set(ctx, &storefront.Availability{ProductID: pid}, time.Minute))
	}

	c.handleNotification(a.String() + "," + b.String())

	_, okA, _ := c.Get(ctx, a)
	_, okB, _ := c.Get(ctx, b)
	_, okKeep, _ := c.Get(ctx, keep)
	assert.False(t, okA)
	assert.False(t, okB)
	assert.True(t, okKeep)

	c.handleNotification("not-an-id")
	_, okKeep, _ = c.Get(ctx, keep)
	assert.False(t, okKeep, "unparsable payload clears everything")
}

func TestNoopAvailabilityCache(t *testing.T) {
	var c NoopAvailabilityCache
	ctx := context.Background()
	pid := id.New()

	require.NoError(t, c.Set(ctx, &storefront.Availability{ProductID: pid}, time.Minute))
	_, ok, err := c.Get(ctx, pid)
	require.NoError(t, err)
	assert.False(t, ok)
}
