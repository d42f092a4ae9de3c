package purchasing

import (
	"context"
	"time"

	"retailops/internal/core/apperror"
	"retailops/internal/core/entity"
	"retailops/internal/core/id"
	"retailops/internal/core/numerator"
	"retailops/internal/core/tx"
	"retailops/internal/domain"
	"retailops/internal/domain/inventory"
	"retailops/pkg/logger"
)

// StockUpdater is the part of inventory.StockService used by bills.
type StockUpdater interface {
	UpdateStockAfterPurchase(ctx context.Context, doc *inventory.StockDocument) (*inventory.Result, error)
	ReverseStockAfterPurchase(ctx context.Context, doc *inventory.StockDocument) (*inventory.Result, error)
}

// BillResult is a bill together with the outcome of its stock update.
// Stock is nil when the stock update failed as a whole.
type BillResult struct {
	Bill  *Bill             `json:"bill"`
	Stock *inventory.Result `json:"stock,omitempty"`
}

// Service handles purchase orders and bills. Stock failures never fail the bill.
type Service struct {
	orders    PurchaseOrderRepository
	bills     BillRepository
	stock     StockUpdater
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new purchasing service.
func NewService(orders PurchaseOrderRepository, bills BillRepository, stock StockUpdater, gen numerator.Generator, txManager tx.Manager) *Service {
	return &Service{
		orders:    orders,
		bills:     bills,
		stock:     stock,
		numerator: gen,
		txManager: txManager,
	}
}

func (s *Service) nextNumber(ctx context.Context, prefix string, at time.Time) (string, error) {
	// bills are accounting documents and stay gap-free
	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(prefix), numerator.DefaultOptions(), at)
	if err != nil {
		return "", apperror.NewInternal(err)
	}
	return number, nil
}

// CreatePurchaseOrder validates, numbers and stores a purchase order.
func (s *Service) CreatePurchaseOrder(ctx context.Context, po *PurchaseOrder) (*PurchaseOrder, error) {
	if err := po.Validate(ctx); err != nil {
		return nil, err
	}
	po.Base = entity.NewBase()
	po.Status = POStatusOrdered
	po.BillID = nil
	po.CalculateTotals()

	number, err := s.nextNumber(ctx, numerator.PrefixPurchaseOrder, po.CreatedAt)
	if err != nil {
		return nil, err
	}
	po.Number = number

	if err := s.orders.Create(ctx, po); err != nil {
		return nil, err
	}
	logger.Info(ctx, "purchase order created", "purchase_order_id", po.ID, "number", po.Number)
	return po, nil
}

// GetPurchaseOrder returns one purchase order.
func (s *Service) GetPurchaseOrder(ctx context.Context, poID id.ID) (*PurchaseOrder, error) {
	return s.orders.GetByID(ctx, poID)
}

// ListPurchaseOrders returns a page of purchase orders.
func (s *Service) ListPurchaseOrders(ctx context.Context, filter PurchaseOrderFilter) (domain.ListResult[*PurchaseOrder], error) {
	filter.Normalize()
	return s.orders.List(ctx, filter)
}

// CancelPurchaseOrder cancels an order that has not been received.
func (s *Service) CancelPurchaseOrder(ctx context.Context, poID id.ID) (*PurchaseOrder, error) {
	var po *PurchaseOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		po, err = s.orders.GetByIDForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if po.Status != POStatusOrdered {
			return apperror.NewInvalidState("purchase order", string(po.Status), "cancel")
		}
		po.Status = POStatusCancelled
		po.Touch()
		return s.orders.UpdateStatus(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "purchase order cancelled", "purchase_order_id", po.ID, "number", po.Number)
	return po, nil
}

// ReceivePurchaseOrder turns an ordered purchase order into a bill (GRN), marks
// the order received and brings the stock in.
func (s *Service) ReceivePurchaseOrder(ctx context.Context, poID id.ID) (*BillResult, error) {
	var bill *Bill
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		po, err := s.orders.GetByIDForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if po.Status != POStatusOrdered {
			return apperror.NewInvalidState("purchase order", string(po.Status), "receive")
		}

		bill = &Bill{
			Base:            entity.NewBase(),
			PurchaseOrderID: &po.ID,
			SupplierName:    po.SupplierName,
			WarehouseID:     po.WarehouseID,
			Status:          BillStatusActive,
			Lines:           make([]BillLine, 0, len(po.Lines)),
		}
		bill.BillDate = bill.CreatedAt
		for _, l := range po.Lines {
			itemID := l.ItemID
			bill.Lines = append(bill.Lines, BillLine{
				ItemID:   &itemID,
				Quantity: l.Quantity,
				UnitCost: l.UnitCost,
			})
		}
		bill.CalculateTotals()

		if bill.Number, err = s.nextNumber(ctx, numerator.PrefixBill, bill.BillDate); err != nil {
			return err
		}
		if err := s.bills.Create(ctx, bill); err != nil {
			return err
		}

		po.Status = POStatusReceived
		po.BillID = &bill.ID
		po.Touch()
		return s.orders.UpdateStatus(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "purchase order received",
		"purchase_order_id", poID,
		"bill_id", bill.ID,
		"bill_number", bill.Number,
	)

	return &BillResult{Bill: bill, Stock: s.receiveStock(ctx, bill)}, nil
}

// CreateBill records a bill entered without a purchase order and brings the stock in.
func (s *Service) CreateBill(ctx context.Context, bill *Bill) (*BillResult, error) {
	if err := bill.Validate(ctx); err != nil {
		return nil, err
	}
	bill.Base = entity.NewBase()
	bill.Status = BillStatusActive
	if bill.BillDate.IsZero() {
		bill.BillDate = bill.CreatedAt
	}
	bill.CalculateTotals()

	number, err := s.nextNumber(ctx, numerator.PrefixBill, bill.BillDate)
	if err != nil {
		return nil, err
	}
	bill.Number = number

	if err := s.bills.Create(ctx, bill); err != nil {
		return nil, err
	}
	logger.Info(ctx, "bill created", "bill_id", bill.ID, "number", bill.Number, "total", bill.TotalAmount.String())

	return &BillResult{Bill: bill, Stock: s.receiveStock(ctx, bill)}, nil
}

func (s *Service) receiveStock(ctx context.Context, bill *Bill) *inventory.Result {
	result, err := s.stock.UpdateStockAfterPurchase(ctx, bill.StockDocument())
	if err != nil {
		logger.Error(ctx, "stock update after purchase failed", "bill_id", bill.ID, "error", err)
	}
	return result
}

// GetBill returns one bill.
func (s *Service) GetBill(ctx context.Context, billID id.ID) (*Bill, error) {
	return s.bills.GetByID(ctx, billID)
}

// ListBills returns a page of bills.
func (s *Service) ListBills(ctx context.Context, filter BillFilter) (domain.ListResult[*Bill], error) {
	filter.Normalize()
	return s.bills.List(ctx, filter)
}

// VoidBill voids an active bill and takes its stock back out.
func (s *Service) VoidBill(ctx context.Context, billID id.ID) (*BillResult, error) {
	var bill *Bill
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.bills.GetByIDForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill.Status != BillStatusActive {
			return apperror.NewInvalidState("bill", string(bill.Status), "void")
		}
		bill.Status = BillStatusVoid
		bill.Touch()
		return s.bills.UpdateStatus(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "bill voided", "bill_id", bill.ID, "number", bill.Number)

	result, err := s.stock.ReverseStockAfterPurchase(ctx, bill.StockDocument())
	if err != nil {
		logger.Error(ctx, "stock reversal after void failed", "bill_id", bill.ID, "error", err)
	}
	return &BillResult{Bill: bill, Stock: result}, nil
}
