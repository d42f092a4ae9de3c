package inventory

import (
	"context"
	"fmt"

	"retailops/internal/core/id"
	"retailops/internal/domain"
	"retailops/pkg/logger"
)

// syncPageSize is the number of items read per page by SyncAll.
const syncPageSize = 200

// SyncReport describes what one SyncItem call touched. Informational only.
type SyncReport struct {
	ItemID        id.ID    `json:"itemId"`
	POSUpdated    int      `json:"posUpdated"`
	OnlineUpdated int      `json:"onlineUpdated"`
	Failures      []string `json:"failures,omitempty"`
}

// SyncAllReport aggregates a full sweep.
type SyncAllReport struct {
	Items         int      `json:"items"`
	POSUpdated    int      `json:"posUpdated"`
	OnlineUpdated int      `json:"onlineUpdated"`
	Failures      []string `json:"failures,omitempty"`
}

// Synchronizer pushes item stock into the POS and storefront mirrors.
// Each mirror row is saved on its own; a failing target does not stop the rest.
type Synchronizer struct {
	items       ItemRepository
	posProducts POSProductRepository
	online      OnlineProductRepository
	invalidator AvailabilityInvalidator
}

// NewSynchronizer creates a mirror synchronizer. invalidator may be nil.
func NewSynchronizer(items ItemRepository, pos POSProductRepository, online OnlineProductRepository, invalidator AvailabilityInvalidator) *Synchronizer {
	return &Synchronizer{
		items:       items,
		posProducts: pos,
		online:      online,
		invalidator: invalidator,
	}
}

// SyncItem re-reads the item and refreshes every mirror linked to it.
// The returned error covers only the item read; per-target failures go into the report.
func (s *Synchronizer) SyncItem(ctx context.Context, itemID id.ID) (SyncReport, error) {
	report := SyncReport{ItemID: itemID}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return report, fmt.Errorf("load item %s: %w", itemID, err)
	}

	s.syncPOS(ctx, item, &report)
	s.syncOnline(ctx, item, &report)

	if len(report.Failures) > 0 {
		logger.Warn(ctx, "mirror sync finished with failures",
			"item_id", itemID,
			"failures", report.Failures,
		)
	}
	return report, nil
}

func (s *Synchronizer) syncPOS(ctx context.Context, item *Item, report *SyncReport) {
	products, err := s.posProducts.ListByItem(ctx, item.ID)
	if err != nil {
		logger.Error(ctx, "list pos products for sync", "item_id", item.ID, "error", err)
		report.Failures = append(report.Failures, fmt.Sprintf("pos lookup: %v", err))
		return
	}

	for _, p := range products {
		p.CopyStock(item)
		p.Touch()
		if err := s.posProducts.Update(ctx, p); err != nil {
			logger.Error(ctx, "sync pos product", "pos_product_id", p.ID, "item_id", item.ID, "error", err)
			report.Failures = append(report.Failures, fmt.Sprintf("pos %s: %v", p.ID, err))
			continue
		}
		report.POSUpdated++
	}
}

func (s *Synchronizer) syncOnline(ctx context.Context, item *Item, report *SyncReport) {
	products, err := s.online.ListByItem(ctx, item.ID)
	if err != nil {
		logger.Error(ctx, "list online products for sync", "item_id", item.ID, "error", err)
		report.Failures = append(report.Failures, fmt.Sprintf("online lookup: %v", err))
		return
	}

	touched := make([]id.ID, 0, len(products))
	for _, p := range products {
		p.ApplyItemStock(item)
		p.Touch()
		if err := s.online.Update(ctx, p); err != nil {
			logger.Error(ctx, "sync online product", "online_product_id", p.ID, "item_id", item.ID, "error", err)
			report.Failures = append(report.Failures, fmt.Sprintf("online %s: %v", p.ID, err))
			continue
		}
		touched = append(touched, p.ID)
		report.OnlineUpdated++
	}

	if len(touched) > 0 && s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, touched...); err != nil {
			logger.Warn(ctx, "invalidate availability cache", "item_id", item.ID, "error", err)
		}
	}
}

// SyncAll pages through every item and syncs its mirrors.
// Stops early only when ctx is done.
func (s *Synchronizer) SyncAll(ctx context.Context) (SyncAllReport, error) {
	var total SyncAllReport

	filter := ItemFilter{ListFilter: domain.ListFilter{Limit: syncPageSize, OrderBy: "created_at"}}
	for {
		page, err := s.items.List(ctx, filter)
		if err != nil {
			return total, fmt.Errorf("list items: %w", err)
		}

		for _, item := range page.Items {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			report, err := s.SyncItem(ctx, item.ID)
			total.Items++
			if err != nil {
				total.Failures = append(total.Failures, err.Error())
				continue
			}
			total.POSUpdated += report.POSUpdated
			total.OnlineUpdated += report.OnlineUpdated
			total.Failures = append(total.Failures, report.Failures...)
		}

		filter.Offset += len(page.Items)
		if len(page.Items) == 0 || int64(filter.Offset) >= page.TotalCount {
			break
		}
	}

	logger.Info(ctx, "mirror sweep completed",
		"items", total.Items,
		"pos_updated", total.POSUpdated,
		"online_updated", total.OnlineUpdated,
		"failures", len(total.Failures),
	)
	return total, nil
}
