package numerator

import (
	"context"
	"time"
)

// Generator generates sequential document numbers (PREFIX-YEAR-NNNNN).
// Implementations live in pkg/numerator.
type Generator interface {
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)
}
