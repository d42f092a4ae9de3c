package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"retailops/internal/core/id"
)

func TestNewBase(t *testing.T) {
	b := NewBase()

	assert.False(t, id.IsNil(b.ID))
	assert.Equal(t, b.CreatedAt, b.UpdatedAt)
}

func TestTouch(t *testing.T) {
	b := NewBase()
	b.UpdatedAt = b.UpdatedAt.Add(-time.Hour)

	b.Touch()

	assert.True(t, b.UpdatedAt.After(b.CreatedAt))
}
