// Package tx provides transaction management abstractions.
// Domain services depend on Manager; the implementation lives in
// infrastructure/storage/postgres (and a pass-through one in storage/memory).
package tx

import (
	"context"
)

// Manager runs a unit of work inside a database transaction.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// Nested calls reuse the transaction already in ctx.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
