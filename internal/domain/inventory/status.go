// Package inventory owns items, their POS and storefront mirrors, and the stock
// adjustment ledger. Every quantity change goes through StockService.
package inventory

// Status is the stock status derived from quantity and the low-stock alert level.
type Status string

const (
	StatusInStock    Status = "in_stock"
	StatusLowStock   Status = "low_stock"
	StatusOutOfStock Status = "out_of_stock"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusInStock, StatusLowStock, StatusOutOfStock:
		return true
	}
	return false
}

// DeriveStatus maps a quantity to its status: 0 is out of stock, anything up to
// and including alertLevel is low stock.
func DeriveStatus(quantity, alertLevel int) Status {
	switch {
	case quantity <= 0:
		return StatusOutOfStock
	case quantity <= alertLevel:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// ApplyDecrement returns max(0, prev-delta).
func ApplyDecrement(prev, delta int) int {
	if delta >= prev {
		return 0
	}
	return prev - delta
}

// ApplyIncrement returns prev+delta.
func ApplyIncrement(prev, delta int) int {
	return prev + delta
}
