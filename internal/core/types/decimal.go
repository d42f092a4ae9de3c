// Package types provides money helpers shared by documents and catalogs.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// LineAmount returns quantity * unitPrice rounded to 2 decimal places.
func LineAmount(quantity int, unitPrice Money) Money {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
