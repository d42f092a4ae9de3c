package inventory

import (
	"context"
	"strings"
	"time"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/domain"
	"retailops/pkg/logger"
)

// ProductService manages the POS and storefront catalogs. Stock fields of new
// products are copied from their linked items.
type ProductService struct {
	items       ItemRepository
	posProducts POSProductRepository
	online      OnlineProductRepository
}

// NewProductService creates a new product service.
func NewProductService(items ItemRepository, pos POSProductRepository, online OnlineProductRepository) *ProductService {
	return &ProductService{items: items, posProducts: pos, online: online}
}

// CreatePOSProduct links a POS product to an item (by ID, or by code within the
// product's warehouse) and copies its stock.
func (s *ProductService) CreatePOSProduct(ctx context.Context, p *POSProduct) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	var (
		item *Item
		err  error
	)
	if p.ItemID != nil && !id.IsNil(*p.ItemID) {
		item, err = s.items.GetByID(ctx, *p.ItemID)
	} else {
		item, err = s.items.FindByCode(ctx, strings.TrimSpace(p.ItemCode), p.WarehouseID)
	}
	if err != nil {
		return err
	}

	if id.IsNil(p.ID) {
		p.ID = id.New()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	p.ItemID = &item.ID
	p.ItemCode = item.ItemCode
	if p.WarehouseID == nil {
		wh := item.WarehouseID
		p.WarehouseID = &wh
	}
	if p.Price.IsZero() {
		p.Price = item.UnitPrice
	}
	p.CopyStock(item)

	if err := s.posProducts.Create(ctx, p); err != nil {
		return err
	}
	logger.Info(ctx, "pos product created", "pos_product_id", p.ID, "item_id", item.ID)
	return nil
}

// GetPOSProduct returns one POS product.
func (s *ProductService) GetPOSProduct(ctx context.Context, productID id.ID) (*POSProduct, error) {
	return s.posProducts.GetByID(ctx, productID)
}

// ListPOSProducts returns a page of POS products.
func (s *ProductService) ListPOSProducts(ctx context.Context, filter POSProductFilter) (domain.ListResult[*POSProduct], error) {
	filter.Normalize()
	return s.posProducts.List(ctx, filter)
}

// CreateOnlineProduct stores a storefront product and computes its stock from the
// linked items. Every link must point at an existing item.
func (s *ProductService) CreateOnlineProduct(ctx context.Context, p *OnlineProduct) error {
	p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.ID) {
		p.ID = id.New()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	linked := make(map[id.ID]*Item)
	load := func(ref *id.ID) error {
		if ref == nil || id.IsNil(*ref) {
			return nil
		}
		if _, ok := linked[*ref]; ok {
			return nil
		}
		item, err := s.items.GetByID(ctx, *ref)
		if err != nil {
			return err
		}
		linked[*ref] = item
		return nil
	}

	if err := load(p.InventoryProductID); err != nil {
		return err
	}
	for i := range p.Variants {
		if id.IsNil(p.Variants[i].ID) {
			p.Variants[i].ID = id.New()
		}
		if err := load(p.Variants[i].InventoryProductID); err != nil {
			return err
		}
	}

	if len(p.Variants) == 0 && len(linked) == 0 {
		return apperror.NewValidation("inventoryProductId is required for a product without variants").
			WithDetail("field", "inventoryProductId")
	}

	p.TotalStockQuantity = 0
	p.StockStatus = StatusOutOfStock
	for _, item := range linked {
		p.ApplyItemStock(item)
	}

	if err := s.online.Create(ctx, p); err != nil {
		return err
	}
	logger.Info(ctx, "online product created", "online_product_id", p.ID, "variants", len(p.Variants))
	return nil
}

// GetOnlineProduct returns one online product with its variants.
func (s *ProductService) GetOnlineProduct(ctx context.Context, productID id.ID) (*OnlineProduct, error) {
	return s.online.GetByID(ctx, productID)
}

// ListOnlineProducts returns a page of online products.
func (s *ProductService) ListOnlineProducts(ctx context.Context, filter OnlineProductFilter) (domain.ListResult[*OnlineProduct], error) {
	filter.Normalize()
	return s.online.List(ctx, filter)
}
