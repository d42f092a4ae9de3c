package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name       string
		quantity   int
		alertLevel int
		want       Status
	}{
		{"zero", 0, 5, StatusOutOfStock},
		{"zero with zero alert", 0, 0, StatusOutOfStock},
		{"one", 1, 5, StatusLowStock},
		{"at threshold", 5, 5, StatusLowStock},
		{"above threshold", 6, 5, StatusInStock},
		{"no alert level", 1, 0, StatusInStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.quantity, tt.alertLevel))
		})
	}
}

func TestDeriveStatus_Tiers(t *testing.T) {
	for a := 0; a <= 20; a++ {
		for q := 0; q <= 40; q++ {
			got := DeriveStatus(q, a)
			assert.Equal(t, q == 0, got == StatusOutOfStock, "q=%d a=%d", q, a)
			assert.Equal(t, q > 0 && q <= a, got == StatusLowStock, "q=%d a=%d", q, a)
			assert.Equal(t, q > a, got == StatusInStock, "q=%d a=%d", q, a)
		}
	}
}

func TestApplyDecrement_Clamps(t *testing.T) {
	for prev := 0; prev <= 30; prev++ {
		for delta := 0; delta <= 30; delta++ {
			want := prev - delta
			if want < 0 {
				want = 0
			}
			assert.Equal(t, want, ApplyDecrement(prev, delta), "prev=%d delta=%d", prev, delta)
		}
	}
}

func TestApplyIncrement_ReversesDecrement(t *testing.T) {
	for prev := 0; prev <= 30; prev++ {
		for delta := 0; delta <= prev; delta++ {
			assert.Equal(t, prev, ApplyIncrement(ApplyDecrement(prev, delta), delta))
		}
	}
}
