package sales

import (
	"context"

	"retailops/internal/core/apperror"
	"retailops/internal/core/entity"
	"retailops/internal/core/id"
	"retailops/internal/core/numerator"
	"retailops/internal/core/tx"
	"retailops/internal/domain"
	"retailops/internal/domain/inventory"
	"retailops/pkg/logger"
)

// StockUpdater is the part of inventory.StockService used by orders.
type StockUpdater interface {
	UpdateStockAfterOrder(ctx context.Context, doc *inventory.StockDocument) (*inventory.Result, error)
	ReverseStockUpdate(ctx context.Context, doc *inventory.StockDocument) (*inventory.Result, error)
}

// OrderResult is an order together with the outcome of its stock update.
// Stock is nil when the stock update failed as a whole.
type OrderResult struct {
	Order *Order            `json:"order"`
	Stock *inventory.Result `json:"stock,omitempty"`
}

// Service handles the order lifecycle. Stock failures never fail the order: they
// are logged and reported in OrderResult.Stock.
type Service struct {
	repo      Repository
	stock     StockUpdater
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new order service.
func NewService(repo Repository, stock StockUpdater, gen numerator.Generator, txManager tx.Manager) *Service {
	return &Service{repo: repo, stock: stock, numerator: gen, txManager: txManager}
}

// orderNumbering hands out order numbers from memory ranges; gaps are acceptable.
var orderNumbering = &numerator.Options{Strategy: numerator.StrategyCached, RangeSize: 50}

// Create places an order and sells its stock.
func (s *Service) Create(ctx context.Context, order *Order) (*OrderResult, error) {
	if order.Source == "" {
		order.Source = inventory.SourceDashboard
	}
	if err := order.Validate(ctx); err != nil {
		return nil, err
	}

	order.Base = entity.NewBase()
	order.Status = StatusPlaced
	order.CalculateTotals()

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(numerator.PrefixSalesOrder), orderNumbering, order.CreatedAt)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	order.Number = number

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	logger.Info(ctx, "order placed",
		"order_id", order.ID,
		"number", order.Number,
		"source", order.Source,
		"total", order.TotalAmount.String(),
	)

	result, err := s.stock.UpdateStockAfterOrder(ctx, order.StockDocument())
	if err != nil {
		logger.Error(ctx, "stock update after order failed", "order_id", order.ID, "error", err)
	}
	return &OrderResult{Order: order, Stock: result}, nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// List returns a page of orders.
func (s *Service) List(ctx context.Context, filter OrderFilter) (domain.ListResult[*Order], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// Cancel cancels a placed order and puts its stock back.
func (s *Service) Cancel(ctx context.Context, orderID id.ID) (*OrderResult, error) {
	return s.reverse(ctx, orderID, StatusCancelled, "cancel")
}

// Return marks a placed order returned and puts its stock back.
func (s *Service) Return(ctx context.Context, orderID id.ID) (*OrderResult, error) {
	return s.reverse(ctx, orderID, StatusReturned, "return")
}

func (s *Service) reverse(ctx context.Context, orderID id.ID, to OrderStatus, action string) (*OrderResult, error) {
	var order *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != StatusPlaced {
			return apperror.NewInvalidState("order", string(order.Status), action)
		}
		order.Status = to
		order.Touch()
		return s.repo.UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "order "+string(to), "order_id", order.ID, "number", order.Number)

	result, err := s.stock.ReverseStockUpdate(ctx, order.StockDocument())
	if err != nil {
		logger.Error(ctx, "stock reversal failed", "order_id", order.ID, "error", err)
	}
	return &OrderResult{Order: order, Stock: result}, nil
}
