package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/config"
	"retailops/internal/core/id"
	"retailops/internal/domain/inventory"
)

func TestOpen_MemoryDriver(t *testing.T) {
	cfg := &config.Config{
		StorageDriver:        config.DriverMemory,
		AvailabilityCacheTTL: time.Minute,
	}

	rt, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Pool)
	assert.Empty(t, rt.Checks)
	require.NotNil(t, rt.Services)

	item := inventory.NewItem("Mug", "MUG", id.New(), 4, 1)
	require.NoError(t, rt.Services.Items.Create(context.Background(), item))

	got, err := rt.Services.Items.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)
}

func TestClose_Idempotent(t *testing.T) {
	rt, err := Open(context.Background(), &config.Config{StorageDriver: config.DriverMemory})
	require.NoError(t, err)

	assert.NoError(t, rt.Close())
	assert.NoError(t, rt.Close())
}
