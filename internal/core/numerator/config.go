// Package numerator provides domain contracts for document auto-numbering.
package numerator

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict allocates every number with a single UPSERT ... RETURNING.
	// Gap-free; used for bills, which are accounting documents.
	StrategyStrict Strategy = iota

	// StrategyCached reserves ranges of numbers in memory.
	// Gaps appear after a restart; used for orders coming from tills and the storefront.
	StrategyCached
)

// Options configuration for number generation.
type Options struct {
	Strategy Strategy
	// RangeSize is the number of values reserved at once by StrategyCached. Default 50.
	RangeSize int64
}

// DefaultOptions returns strict numbering.
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Config holds numbering configuration for one document kind.
type Config struct {
	// Prefix added to all numbers (e.g. "SO", "PO", "BILL")
	Prefix string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// ResetPeriod: "year", "month", "never"
	ResetPeriod string
}

// DefaultConfig returns PREFIX-YEAR-NNNNN numbering that restarts every year.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// Prefixes of the documents that trigger stock mutation.
const (
	PrefixSalesOrder    = "SO"
	PrefixPurchaseOrder = "PO"
	PrefixBill          = "BILL"
)
