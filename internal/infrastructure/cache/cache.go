// Package cache implements the storefront availability cache: Redis when configured,
// otherwise an in-process map kept coherent across processes with LISTEN/NOTIFY.
package cache

import (
	"context"
	"time"

	"retailops/internal/core/id"
	"retailops/internal/domain/storefront"
)

const keyPrefix = "availability:"

func key(productID id.ID) string {
	return keyPrefix + productID.String()
}

// NoopAvailabilityCache never stores anything.
type NoopAvailabilityCache struct{}

var _ storefront.Cache = NoopAvailabilityCache{}

func (NoopAvailabilityCache) Get(_ context.Context, _ id.ID) (*storefront.Availability, bool, error) {
	return nil, false, nil
}

func (NoopAvailabilityCache) Set(_ context.Context, _ *storefront.Availability, _ time.Duration) error {
	return nil
}

func (NoopAvailabilityCache) Delete(_ context.Context, _ ...id.ID) error {
	return nil
}
