// Package storefront serves stock availability to the public shop, read through
// a cache that the mirror synchronizer invalidates.
package storefront

import (
	"context"
	"time"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/domain/inventory"
	"retailops/pkg/logger"
)

// VariantAvailability is the public stock view of one variant.
type VariantAvailability struct {
	ID            id.ID  `json:"id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	StockQuantity int    `json:"stockQuantity"`
	InStock       bool   `json:"inStock"`
}

// Availability is the public stock view of an online product.
type Availability struct {
	ProductID          id.ID                 `json:"productId"`
	Slug               string                `json:"slug"`
	TotalStockQuantity int                   `json:"totalStockQuantity"`
	StockStatus        inventory.Status      `json:"stockStatus"`
	Variants           []VariantAvailability `json:"variants"`
	CheckedAt          time.Time             `json:"checkedAt"`
}

// Cache stores availability snapshots by product.
type Cache interface {
	Get(ctx context.Context, productID id.ID) (*Availability, bool, error)
	Set(ctx context.Context, value *Availability, ttl time.Duration) error
	Delete(ctx context.Context, productIDs ...id.ID) error
}

// Service reads availability through the cache.
type Service struct {
	products inventory.OnlineProductRepository
	cache    Cache
	ttl      time.Duration
}

var _ inventory.AvailabilityInvalidator = (*Service)(nil)

// NewService creates a storefront service.
func NewService(products inventory.OnlineProductRepository, cache Cache, ttl time.Duration) *Service {
	return &Service{products: products, cache: cache, ttl: ttl}
}

// Availability returns the stock view of a published product. Cache errors are
// logged and fall through to the repository.
func (s *Service) Availability(ctx context.Context, productID id.ID) (*Availability, error) {
	cached, ok, err := s.cache.Get(ctx, productID)
	if err != nil {
		logger.Warn(ctx, "availability cache read failed", "product_id", productID, "error", err)
	} else if ok {
		return cached, nil
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, apperror.NewNotFound("product", productID.String())
	}

	av := &Availability{
		ProductID:          p.ID,
		Slug:               p.Slug,
		TotalStockQuantity: p.TotalStockQuantity,
		StockStatus:        p.StockStatus,
		Variants:           make([]VariantAvailability, 0, len(p.Variants)),
		CheckedAt:          time.Now().UTC(),
	}
	for _, v := range p.Variants {
		av.Variants = append(av.Variants, VariantAvailability{
			ID:            v.ID,
			Name:          v.Name,
			SKU:           v.SKU,
			StockQuantity: v.StockQuantity,
			InStock:       v.StockQuantity > 0,
		})
	}

	if err := s.cache.Set(ctx, av, s.ttl); err != nil {
		logger.Warn(ctx, "availability cache write failed", "product_id", productID, "error", err)
	}
	return av, nil
}

// Invalidate drops cached availability for the products.
func (s *Service) Invalidate(ctx context.Context, productIDs ...id.ID) error {
	if len(productIDs) == 0 {
		return nil
	}
	return s.cache.Delete(ctx, productIDs...)
}
