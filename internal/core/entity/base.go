// Package entity holds the fields and contracts shared by every persisted record.
package entity

import (
	"context"
	"time"

	"retailops/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate returns nil if valid, an AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Base contains common fields for all records (catalog rows and documents).
type Base struct {
	ID        id.ID     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBase creates a Base with a generated ID and both timestamps set to now.
func NewBase() Base {
	now := time.Now().UTC()
	return Base{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps UpdatedAt.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// GetID returns the record ID.
func (b *Base) GetID() id.ID {
	return b.ID
}
