package memory

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/domain"
	"retailops/internal/domain/inventory"
)

func ptrEq(p *id.ID, v id.ID) bool {
	return p != nil && *p == v
}

func matchesSearch(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// ItemRepo implements inventory.ItemRepository.
type ItemRepo struct{ s *Store }

var _ inventory.ItemRepository = (*ItemRepo)(nil)

func (r *ItemRepo) Create(_ context.Context, item *inventory.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; ok {
		return apperror.NewDuplicate("item", "id", item.ID.String())
	}
	for _, existing := range r.s.items {
		if existing.ItemCode == item.ItemCode && existing.WarehouseID == item.WarehouseID {
			return apperror.NewDuplicate("item", "itemCode", item.ItemCode)
		}
	}
	r.s.items[item.ID] = *item
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, itemID id.ID) (*inventory.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID.String())
	}
	return &item, nil
}

func (r *ItemRepo) GetByIDForUpdate(ctx context.Context, itemID id.ID) (*inventory.Item, error) {
	return r.GetByID(ctx, itemID)
}

func (r *ItemRepo) FindByCode(_ context.Context, itemCode string, warehouseID *id.ID) (*inventory.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found *inventory.Item
	for _, item := range r.s.items {
		if item.ItemCode != itemCode {
			continue
		}
		if warehouseID != nil && item.WarehouseID != *warehouseID {
			continue
		}
		if found == nil || createdBefore(&item, found) {
			it := item
			found = &it
		}
	}
	if found == nil {
		return nil, apperror.NewNotFound("item", itemCode)
	}
	return found, nil
}

// createdBefore orders items by created_at, then id, like the SQL driver.
func createdBefore(a, b *inventory.Item) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func (r *ItemRepo) Update(_ context.Context, item *inventory.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err, ok := r.s.failUpdates[item.ID]; ok {
		return apperror.NewDatabase("update item", err)
	}
	if _, ok := r.s.items[item.ID]; !ok {
		return apperror.NewNotFound("item", item.ID.String())
	}
	r.s.items[item.ID] = *item
	return nil
}

func (r *ItemRepo) Delete(_ context.Context, itemID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[itemID]; !ok {
		return apperror.NewNotFound("item", itemID.String())
	}
	delete(r.s.items, itemID)

	// ON DELETE SET NULL on every mirror link
	for pid, p := range r.s.posProducts {
		if ptrEq(p.ItemID, itemID) {
			p.ItemID = nil
			r.s.posProducts[pid] = p
		}
	}
	for pid, p := range r.s.onlineProducts {
		if !p.LinksItem(itemID) {
			continue
		}
		p = *cloneOnline(p)
		if ptrEq(p.InventoryProductID, itemID) {
			p.InventoryProductID = nil
		}
		for i := range p.Variants {
			if ptrEq(p.Variants[i].InventoryProductID, itemID) {
				p.Variants[i].InventoryProductID = nil
			}
		}
		r.s.onlineProducts[pid] = p
	}
	return nil
}

func (r *ItemRepo) List(_ context.Context, f inventory.ItemFilter) (domain.ListResult[*inventory.Item], error) {
	r.s.mu.RLock()
	all := make([]*inventory.Item, 0, len(r.s.items))
	for _, item := range r.s.items {
		if f.WarehouseID != nil && item.WarehouseID != *f.WarehouseID {
			continue
		}
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if !matchesSearch(f.Search, item.Name, item.ItemCode) {
			continue
		}
		it := item
		all = append(all, &it)
	}
	r.s.mu.RUnlock()

	if f.OrderBy == "created_at" {
		sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	} else {
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	}
	return domain.Page(all, f.ListFilter), nil
}

// POSProductRepo implements inventory.POSProductRepository.
type POSProductRepo struct{ s *Store }

var _ inventory.POSProductRepository = (*POSProductRepo)(nil)

func (r *POSProductRepo) Create(_ context.Context, p *inventory.POSProduct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posProducts[p.ID]; ok {
		return apperror.NewDuplicate("pos product", "id", p.ID.String())
	}
	r.s.posProducts[p.ID] = *p
	return nil
}

func (r *POSProductRepo) GetByID(_ context.Context, productID id.ID) (*inventory.POSProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posProducts[productID]
	if !ok {
		return nil, apperror.NewNotFound("pos product", productID.String())
	}
	return &p, nil
}

func (r *POSProductRepo) ListByItem(_ context.Context, itemID id.ID) ([]*inventory.POSProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*inventory.POSProduct
	for _, p := range r.s.posProducts {
		if ptrEq(p.ItemID, itemID) {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *POSProductRepo) Update(_ context.Context, p *inventory.POSProduct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posProducts[p.ID]; !ok {
		return apperror.NewNotFound("pos product", p.ID.String())
	}
	r.s.posProducts[p.ID] = *p
	return nil
}

func (r *POSProductRepo) List(_ context.Context, f inventory.POSProductFilter) (domain.ListResult[*inventory.POSProduct], error) {
	r.s.mu.RLock()
	all := make([]*inventory.POSProduct, 0, len(r.s.posProducts))
	for _, p := range r.s.posProducts {
		if f.ItemID != nil && !ptrEq(p.ItemID, *f.ItemID) {
			continue
		}
		if f.WarehouseID != nil && !ptrEq(p.WarehouseID, *f.WarehouseID) {
			continue
		}
		if !matchesSearch(f.Search, p.Name, p.ItemCode) {
			continue
		}
		cp := p
		all = append(all, &cp)
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return domain.Page(all, f.ListFilter), nil
}

// OnlineProductRepo implements inventory.OnlineProductRepository.
type OnlineProductRepo struct{ s *Store }

var _ inventory.OnlineProductRepository = (*OnlineProductRepo)(nil)

func cloneOnline(p inventory.OnlineProduct) *inventory.OnlineProduct {
	p.Variants = append([]inventory.Variant(nil), p.Variants...)
	return &p
}

func (r *OnlineProductRepo) Create(_ context.Context, p *inventory.OnlineProduct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.onlineProducts {
		if existing.Slug == p.Slug {
			return apperror.NewDuplicate("online product", "slug", p.Slug)
		}
	}
	r.s.onlineProducts[p.ID] = *cloneOnline(*p)
	return nil
}

func (r *OnlineProductRepo) GetByID(_ context.Context, productID id.ID) (*inventory.OnlineProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.onlineProducts[productID]
	if !ok {
		return nil, apperror.NewNotFound("online product", productID.String())
	}
	return cloneOnline(p), nil
}

func (r *OnlineProductRepo) ListByItem(_ context.Context, itemID id.ID) ([]*inventory.OnlineProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*inventory.OnlineProduct
	for _, p := range r.s.onlineProducts {
		if p.LinksItem(itemID) {
			out = append(out, cloneOnline(p))
		}
	}
	return out, nil
}

func (r *OnlineProductRepo) Update(_ context.Context, p *inventory.OnlineProduct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.onlineProducts[p.ID]; !ok {
		return apperror.NewNotFound("online product", p.ID.String())
	}
	r.s.onlineProducts[p.ID] = *cloneOnline(*p)
	return nil
}

func (r *OnlineProductRepo) List(_ context.Context, f inventory.OnlineProductFilter) (domain.ListResult[*inventory.OnlineProduct], error) {
	r.s.mu.RLock()
	all := make([]*inventory.OnlineProduct, 0, len(r.s.onlineProducts))
	for _, p := range r.s.onlineProducts {
		if f.PublishedOnly && !p.Published {
			continue
		}
		if !matchesSearch(f.Search, p.Name, p.Slug) {
			continue
		}
		all = append(all, cloneOnline(p))
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return domain.Page(all, f.ListFilter), nil
}

// AdjustmentRepo implements inventory.AdjustmentRepository.
type AdjustmentRepo struct{ s *Store }

var _ inventory.AdjustmentRepository = (*AdjustmentRepo)(nil)

func (r *AdjustmentRepo) Create(_ context.Context, adj *inventory.StockAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.adjustments = append(r.s.adjustments, *adj)
	return nil
}

func (r *AdjustmentRepo) List(_ context.Context, f inventory.AdjustmentFilter) (domain.ListResult[*inventory.StockAdjustment], error) {
	r.s.mu.RLock()
	all := make([]*inventory.StockAdjustment, 0, len(r.s.adjustments))
	// appended in time order; walk backwards for newest first
	for i := len(r.s.adjustments) - 1; i >= 0; i-- {
		a := r.s.adjustments[i]
		if f.ItemID != nil && a.ItemID != *f.ItemID {
			continue
		}
		if f.WarehouseID != nil && a.WarehouseID != *f.WarehouseID {
			continue
		}
		if f.Method != "" && a.AdjustmentMethod != f.Method {
			continue
		}
		if f.From != nil && a.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && a.CreatedAt.After(*f.To) {
			continue
		}
		if !matchesSearch(f.Search, a.Reference, a.Note) {
			continue
		}
		all = append(all, &a)
	}
	r.s.mu.RUnlock()

	return domain.Page(all, f.ListFilter), nil
}

func (r *AdjustmentRepo) ListByDocument(_ context.Context, documentID id.ID) ([]*inventory.StockAdjustment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var rows []*inventory.StockAdjustment
	for _, a := range r.s.adjustments {
		a := a
		if ptrEq(a.SalesOrderID, documentID) || ptrEq(a.BillID, documentID) {
			rows = append(rows, &a)
		}
	}
	return rows, nil
}
