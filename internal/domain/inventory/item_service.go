package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"retailops/internal/core/apperror"
	appctx "retailops/internal/core/context"
	"retailops/internal/core/id"
	"retailops/internal/core/tx"
	"retailops/internal/core/types"
	"retailops/internal/domain"
	"retailops/internal/domain/audit"
	"retailops/pkg/logger"
)

const entityItem = "item"

// ItemService manages the item catalog. Quantity is set once at creation (as an
// opening balance in the ledger); afterwards only StockService changes it.
type ItemService struct {
	items       ItemRepository
	adjustments AdjustmentRepository
	auditLog    audit.Log
	txManager   tx.Manager
	mirror      *Synchronizer
}

// NewItemService creates a new item service.
func NewItemService(items ItemRepository, adjustments AdjustmentRepository, auditLog audit.Log, txManager tx.Manager, mirror *Synchronizer) *ItemService {
	return &ItemService{
		items:       items,
		adjustments: adjustments,
		auditLog:    auditLog,
		txManager:   txManager,
		mirror:      mirror,
	}
}

// Create validates and stores a new item. A positive opening quantity is recorded
// in the ledger as an adjustment.
func (s *ItemService) Create(ctx context.Context, item *Item) error {
	if id.IsNil(item.ID) {
		item.ID = id.New()
	}
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	item.ItemCode = strings.TrimSpace(item.ItemCode)
	item.RefreshStatus()

	if err := item.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.items.Create(ctx, item); err != nil {
			return err
		}
		if item.Quantity > 0 {
			if err := s.adjustments.Create(ctx, &StockAdjustment{
				ID:               id.New(),
				ItemID:           item.ID,
				WarehouseID:      item.WarehouseID,
				AdjustmentMethod: MethodAdjustment,
				AdjustmentType:   TypeIncrease,
				Quantity:         item.Quantity,
				PreviousQuantity: 0,
				NewQuantity:      item.Quantity,
				Note:             fmt.Sprintf("Opening stock (0 -> %d)", item.Quantity),
				CreatedBy:        appctx.GetUserID(ctx),
				CreatedAt:        now,
			}); err != nil {
				return fmt.Errorf("record opening stock: %w", err)
			}
		}
		return s.auditLog.LogChange(ctx, entityItem, item.ID, audit.ActionCreate, audit.Diff(nil, item.auditState()))
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "item created", "item_id", item.ID, "item_code", item.ItemCode)
	return nil
}

// Get returns one item.
func (s *ItemService) Get(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.items.GetByID(ctx, itemID)
}

// List returns a page of items.
func (s *ItemService) List(ctx context.Context, filter ItemFilter) (domain.ListResult[*Item], error) {
	filter.Normalize()
	if filter.Status != "" && !filter.Status.IsValid() {
		return domain.ListResult[*Item]{}, apperror.NewValidation("unknown status").WithDetail("status", filter.Status)
	}
	return s.items.List(ctx, filter)
}

// ItemUpdate carries the editable item fields. Nil fields are left unchanged.
type ItemUpdate struct {
	Name               *string
	ItemCode           *string
	LowStockAlertLevel *int
	UnitPrice          *types.Money
}

// Update edits item details and re-derives status (the alert level may have moved).
func (s *ItemService) Update(ctx context.Context, itemID id.ID, upd ItemUpdate) (*Item, error) {
	var item *Item
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.items.GetByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		before := item.auditState()

		if upd.Name != nil {
			item.Name = *upd.Name
		}
		if upd.ItemCode != nil {
			item.ItemCode = strings.TrimSpace(*upd.ItemCode)
		}
		if upd.LowStockAlertLevel != nil {
			item.LowStockAlertLevel = *upd.LowStockAlertLevel
		}
		if upd.UnitPrice != nil {
			item.UnitPrice = *upd.UnitPrice
		}
		item.RefreshStatus()
		item.Touch()

		if err := item.Validate(ctx); err != nil {
			return err
		}
		if err := s.items.Update(ctx, item); err != nil {
			return err
		}

		changes := audit.Diff(before, item.auditState())
		if len(changes) == 0 {
			return nil
		}
		return s.auditLog.LogChange(ctx, entityItem, item.ID, audit.ActionUpdate, changes)
	})
	if err != nil {
		return nil, err
	}

	if s.mirror != nil {
		if _, err := s.mirror.SyncItem(ctx, itemID); err != nil {
			logger.Error(ctx, "mirror sync after item update", "item_id", itemID, "error", err)
		}
	}
	return item, nil
}

// Delete removes the item. Ledger rows are kept.
func (s *ItemService) Delete(ctx context.Context, itemID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		item, err := s.items.GetByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if err := s.items.Delete(ctx, itemID); err != nil {
			return err
		}
		logger.Info(ctx, "item deleted", "item_id", itemID, "item_code", item.ItemCode)
		return s.auditLog.LogChange(ctx, entityItem, itemID, audit.ActionDelete, audit.Diff(item.auditState(), nil))
	})
}

// History returns the item's change log, newest first.
func (s *ItemService) History(ctx context.Context, itemID id.ID, limit int) ([]audit.Entry, error) {
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.auditLog.History(ctx, entityItem, itemID, limit)
}

// Adjustments returns a page of the stock ledger.
func (s *ItemService) Adjustments(ctx context.Context, filter AdjustmentFilter) (domain.ListResult[*StockAdjustment], error) {
	filter.Normalize()
	return s.adjustments.List(ctx, filter)
}
