package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	oldState := map[string]any{"name": "Mug", "quantity": 10, "note": "x"}
	newState := map[string]any{"name": "Mug", "quantity": 7, "status": "low_stock"}

	changes := Diff(oldState, newState)

	assert.Len(t, changes, 3)
	assert.Equal(t, map[string]any{"old": 10, "new": 7}, changes["quantity"])
	assert.Equal(t, map[string]any{"old": nil, "new": "low_stock"}, changes["status"])
	assert.Equal(t, map[string]any{"old": "x", "new": nil}, changes["note"])
	assert.NotContains(t, changes, "name")
}

func TestDiff_NoChanges(t *testing.T) {
	state := map[string]any{"quantity": 3}
	assert.Empty(t, Diff(state, state))
}
