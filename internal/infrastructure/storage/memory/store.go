// Package memory is the in-process storage driver (STORAGE_DRIVER=memory). It
// implements every repository contract over maps and is used by the service and
// handler tests.
package memory

import (
	"context"
	"sync"

	"retailops/internal/core/id"
	"retailops/internal/core/tx"
	"retailops/internal/domain/audit"
	"retailops/internal/domain/inventory"
	"retailops/internal/domain/purchasing"
	"retailops/internal/domain/sales"
)

// Store holds all records. Values are copied on the way in and out so callers
// never share memory with the store.
type Store struct {
	mu sync.RWMutex

	items          map[id.ID]inventory.Item
	posProducts    map[id.ID]inventory.POSProduct
	onlineProducts map[id.ID]inventory.OnlineProduct
	adjustments    []inventory.StockAdjustment
	orders         map[id.ID]sales.Order
	purchaseOrders map[id.ID]purchasing.PurchaseOrder
	bills          map[id.ID]purchasing.Bill
	auditEntries   []audit.Entry

	// failUpdates makes Update calls for these items fail (tests).
	failUpdates map[id.ID]error

	txMu sync.Mutex
}

// New creates an empty store.
func New() *Store {
	return &Store{
		items:          make(map[id.ID]inventory.Item),
		posProducts:    make(map[id.ID]inventory.POSProduct),
		onlineProducts: make(map[id.ID]inventory.OnlineProduct),
		orders:         make(map[id.ID]sales.Order),
		purchaseOrders: make(map[id.ID]purchasing.PurchaseOrder),
		bills:          make(map[id.ID]purchasing.Bill),
		failUpdates:    make(map[id.ID]error),
	}
}

// FailItemUpdates makes every later item Update for itemID return err.
func (s *Store) FailItemUpdates(itemID id.ID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpdates[itemID] = err
}

func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }
func (s *Store) POSProducts() *POSProductRepo { return &POSProductRepo{s: s} }
func (s *Store) OnlineProducts() *OnlineProductRepo { return &OnlineProductRepo{s: s} }
func (s *Store) Adjustments() *AdjustmentRepo { return &AdjustmentRepo{s: s} }
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }
func (s *Store) PurchaseOrders() *PurchaseOrderRepo { return &PurchaseOrderRepo{s: s} }
func (s *Store) Bills() *BillRepo { return &BillRepo{s: s} }
func (s *Store) AuditLog() *AuditLog { return &AuditLog{s: s} }
func (s *Store) TxManager() *TxManager { return &TxManager{s: s} }

// TxManager serializes transactions. There is no rollback: a failing function
// leaves whatever it already wrote. Row locks (GetByIDForUpdate) are implied by
// the serialization.
type TxManager struct {
	s *Store
}

var _ tx.Manager = (*TxManager)(nil)

type txKey struct{}

func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

// Ping always succeeds.
func (m *TxManager) Ping(context.Context) error { return nil }
