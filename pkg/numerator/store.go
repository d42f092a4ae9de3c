package numerator

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool used by PostgresStore.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps counters in sys_sequences.
// Numbers are allocated outside business transactions, so the pool is used directly.
type PostgresStore struct {
	q Querier
}

// NewPostgresStore creates a store backed by the sys_sequences table.
func NewPostgresStore(q Querier) *PostgresStore {
	return &PostgresStore{q: q}
}

func (p *PostgresStore) Advance(ctx context.Context, key string, by int64) (int64, error) {
	var val int64
	err := p.q.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
		RETURNING current_val
	`, key, by).Scan(&val)
	return val, err
}

func (p *PostgresStore) Set(ctx context.Context, key string, value int64) error {
	var result int64
	return p.q.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&result)
}

// MemoryStore keeps counters in process memory (memory storage driver and tests).
type MemoryStore struct {
	mu   sync.Mutex
	vals map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vals: make(map[string]int64)}
}

func (m *MemoryStore) Advance(_ context.Context, key string, by int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] += by
	return m.vals[key], nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
	return nil
}
