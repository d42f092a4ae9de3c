package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences UPSERT: args are (key, increment).
type mockQuerier struct {
	mu    sync.Mutex
	value int64
	calls int
	err   error
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}
	if by, ok := args[1].(int64); ok {
		m.value += by
	}
	return &mockRow{val: m.value}
}

var period = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(NewPostgresStore(q))
	ctx := context.Background()
	cfg := numerator.DefaultConfig(numerator.PrefixBill)

	num, err := svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "BILL-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "BILL-2026-00002", num)
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(NewPostgresStore(q))
	ctx := context.Background()
	cfg := numerator.DefaultConfig(numerator.PrefixSalesOrder)
	opts := &numerator.Options{Strategy: numerator.StrategyCached, RangeSize: 10}

	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "SO-2026-00001", num)
	assert.Equal(t, int64(10), q.value)

	for i := 0; i < 9; i++ {
		_, err = svc.GetNextNumber(ctx, cfg, opts, period)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, q.calls, "range of 10 served from memory")

	num, err = svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "SO-2026-00011", num)
	assert.Equal(t, int64(20), q.value)
}

func TestGetNextNumber_StoreError(t *testing.T) {
	q := &mockQuerier{err: errors.New("connection refused")}
	svc := New(NewPostgresStore(q))

	_, err := svc.GetNextNumber(context.Background(), numerator.DefaultConfig("PO"), nil, period)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGetNextNumber_YearlyReset(t *testing.T) {
	svc := New(NewMemoryStore())
	ctx := context.Background()
	cfg := numerator.DefaultConfig(numerator.PrefixPurchaseOrder)

	_, err := svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)

	num, err := svc.GetNextNumber(ctx, cfg, nil, period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "PO-2027-00001", num)
}

func TestSetNextNumber_InvalidatesCache(t *testing.T) {
	svc := New(NewMemoryStore())
	ctx := context.Background()
	cfg := numerator.DefaultConfig("SO")
	opts := &numerator.Options{Strategy: numerator.StrategyCached, RangeSize: 10}

	_, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)

	require.NoError(t, svc.SetNextNumber(ctx, cfg, period, 100))

	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "SO-2026-00101", num)
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("SO-2026-00042"))
	assert.Equal(t, int64(7), ParseNumber("BILL-00007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}
