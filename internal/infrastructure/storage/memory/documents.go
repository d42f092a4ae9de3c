package memory

import (
	"context"
	"sort"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/domain"
	"retailops/internal/domain/purchasing"
	"retailops/internal/domain/sales"
)

// OrderRepo implements sales.Repository.
type OrderRepo struct{ s *Store }

var _ sales.Repository = (*OrderRepo)(nil)

func cloneOrder(o sales.Order) *sales.Order {
	o.Lines = append([]sales.OrderLine(nil), o.Lines...)
	return &o
}

func (r *OrderRepo) Create(_ context.Context, o *sales.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.ID]; ok {
		return apperror.NewDuplicate("order", "id", o.ID.String())
	}
	r.s.orders[o.ID] = *cloneOrder(*o)
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, orderID id.ID) (*sales.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID.String())
	}
	return cloneOrder(o), nil
}

func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, orderID id.ID) (*sales.Order, error) {
	return r.GetByID(ctx, orderID)
}

func (r *OrderRepo) UpdateStatus(_ context.Context, o *sales.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orders[o.ID]
	if !ok {
		return apperror.NewNotFound("order", o.ID.String())
	}
	stored.Status = o.Status
	stored.UpdatedAt = o.UpdatedAt
	r.s.orders[o.ID] = stored
	return nil
}

func (r *OrderRepo) List(_ context.Context, f sales.OrderFilter) (domain.ListResult[*sales.Order], error) {
	r.s.mu.RLock()
	all := make([]*sales.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Source != "" && o.Source != f.Source {
			continue
		}
		if !matchesSearch(f.Search, o.Number, o.CustomerName) {
			continue
		}
		all = append(all, cloneOrder(o))
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return domain.Page(all, f.ListFilter), nil
}

// PurchaseOrderRepo implements purchasing.PurchaseOrderRepository.
type PurchaseOrderRepo struct{ s *Store }

var _ purchasing.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

func clonePO(po purchasing.PurchaseOrder) *purchasing.PurchaseOrder {
	po.Lines = append([]purchasing.PurchaseOrderLine(nil), po.Lines...)
	return &po
}

func (r *PurchaseOrderRepo) Create(_ context.Context, po *purchasing.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.purchaseOrders[po.ID]; ok {
		return apperror.NewDuplicate("purchase order", "id", po.ID.String())
	}
	r.s.purchaseOrders[po.ID] = *clonePO(*po)
	return nil
}

func (r *PurchaseOrderRepo) GetByID(_ context.Context, poID id.ID) (*purchasing.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	po, ok := r.s.purchaseOrders[poID]
	if !ok {
		return nil, apperror.NewNotFound("purchase order", poID.String())
	}
	return clonePO(po), nil
}

func (r *PurchaseOrderRepo) GetByIDForUpdate(ctx context.Context, poID id.ID) (*purchasing.PurchaseOrder, error) {
	return r.GetByID(ctx, poID)
}

func (r *PurchaseOrderRepo) UpdateStatus(_ context.Context, po *purchasing.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.purchaseOrders[po.ID]
	if !ok {
		return apperror.NewNotFound("purchase order", po.ID.String())
	}
	stored.Status = po.Status
	stored.BillID = po.BillID
	stored.UpdatedAt = po.UpdatedAt
	r.s.purchaseOrders[po.ID] = stored
	return nil
}

func (r *PurchaseOrderRepo) List(_ context.Context, f purchasing.PurchaseOrderFilter) (domain.ListResult[*purchasing.PurchaseOrder], error) {
	r.s.mu.RLock()
	all := make([]*purchasing.PurchaseOrder, 0, len(r.s.purchaseOrders))
	for _, po := range r.s.purchaseOrders {
		if f.Status != "" && po.Status != f.Status {
			continue
		}
		if !matchesSearch(f.Search, po.Number, po.SupplierName) {
			continue
		}
		all = append(all, clonePO(po))
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return domain.Page(all, f.ListFilter), nil
}

// BillRepo implements purchasing.BillRepository.
type BillRepo struct{ s *Store }

var _ purchasing.BillRepository = (*BillRepo)(nil)

func cloneBill(b purchasing.Bill) *purchasing.Bill {
	b.Lines = append([]purchasing.BillLine(nil), b.Lines...)
	return &b
}

func (r *BillRepo) Create(_ context.Context, b *purchasing.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bills[b.ID]; ok {
		return apperror.NewDuplicate("bill", "id", b.ID.String())
	}
	r.s.bills[b.ID] = *cloneBill(*b)
	return nil
}

func (r *BillRepo) GetByID(_ context.Context, billID id.ID) (*purchasing.Bill, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bills[billID]
	if !ok {
		return nil, apperror.NewNotFound("bill", billID.String())
	}
	return cloneBill(b), nil
}

func (r *BillRepo) GetByIDForUpdate(ctx context.Context, billID id.ID) (*purchasing.Bill, error) {
	return r.GetByID(ctx, billID)
}

func (r *BillRepo) UpdateStatus(_ context.Context, b *purchasing.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.bills[b.ID]
	if !ok {
		return apperror.NewNotFound("bill", b.ID.String())
	}
	stored.Status = b.Status
	stored.UpdatedAt = b.UpdatedAt
	r.s.bills[b.ID] = stored
	return nil
}

func (r *BillRepo) List(_ context.Context, f purchasing.BillFilter) (domain.ListResult[*purchasing.Bill], error) {
	r.s.mu.RLock()
	all := make([]*purchasing.Bill, 0, len(r.s.bills))
	for _, b := range r.s.bills {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if !matchesSearch(f.Search, b.Number, b.SupplierName) {
			continue
		}
		all = append(all, cloneBill(b))
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].BillDate.After(all[j].BillDate) })
	return domain.Page(all, f.ListFilter), nil
}
