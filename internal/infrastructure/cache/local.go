package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"retailops/internal/core/id"
	"retailops/internal/domain/storefront"
	"retailops/pkg/logger"
)

// NotifyChannel is the PostgreSQL channel carrying invalidated product IDs.
const NotifyChannel = "availability_changed"

type localEntry struct {
	value     *storefront.Availability
	expiresAt time.Time
}

// LocalAvailabilityCache is an in-process TTL cache. With a pool attached, Delete
// also publishes the IDs with pg_notify and Start listens for deletions published
// by other processes (the worker's sweep, other API instances).
type LocalAvailabilityCache struct {
	pool *pgxpool.Pool

	mu      sync.RWMutex
	entries map[id.ID]localEntry
	now     func() time.Time

	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

var _ storefront.Cache = (*LocalAvailabilityCache)(nil)

// NewLocalAvailabilityCache creates a local cache. pool may be nil (single process).
func NewLocalAvailabilityCache(pool *pgxpool.Pool) *LocalAvailabilityCache {
	return &LocalAvailabilityCache{
		pool:    pool,
		entries: make(map[id.ID]localEntry),
		now:     time.Now,
	}
}

func (c *LocalAvailabilityCache) Get(_ context.Context, productID id.ID) (*storefront.Availability, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[productID]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *LocalAvailabilityCache) Set(_ context.Context, value *storefront.Availability, ttl time.Duration) error {
	if value == nil || ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	c.entries[value.ProductID] = localEntry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *LocalAvailabilityCache) Delete(ctx context.Context, productIDs ...id.ID) error {
	c.drop(productIDs...)
	if c.pool == nil || len(productIDs) == 0 {
		return nil
	}

	parts := make([]string, len(productIDs))
	for i, pid := range productIDs {
		parts[i] = pid.String()
	}
	if _, err := c.pool.Exec(ctx, "SELECT pg_notify($1, $2)", NotifyChannel, strings.Join(parts, ",")); err != nil {
		return fmt.Errorf("notify %s: %w", NotifyChannel, err)
	}
	return nil
}

func (c *LocalAvailabilityCache) drop(productIDs ...id.ID) {
	c.mu.Lock()
	for _, pid := range productIDs {
		delete(c.entries, pid)
	}
	c.mu.Unlock()
}

// handleNotification drops the IDs in a comma-separated payload. An empty or
// unparsable payload clears the whole cache.
func (c *LocalAvailabilityCache) handleNotification(payload string) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		c.clear()
		return
	}
	ids := make([]id.ID, 0, strings.Count(payload, ",")+1)
	for _, part := range strings.Split(payload, ",") {
		pid, err := id.Parse(strings.TrimSpace(part))
		if err != nil {
			c.clear()
			return
		}
		ids = append(ids, pid)
	}
	c.drop(ids...)
}

func (c *LocalAvailabilityCache) clear() {
	c.mu.Lock()
	c.entries = make(map[id.ID]localEntry)
	c.mu.Unlock()
}

// Start begins listening for invalidations. No-op without a pool.
func (c *LocalAvailabilityCache) Start(ctx context.Context) {
	if c.pool == nil {
		return
	}
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if c.started {
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.started = true

	c.wg.Add(1)
	go c.listenLoop(ctx)
	logger.Info(ctx, "availability cache listener started", "channel", NotifyChannel)
}

// Stop stops the listener and waits for it to exit.
func (c *LocalAvailabilityCache) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	cancel()
	c.wg.Wait()
}

func (c *LocalAvailabilityCache) listenLoop(ctx context.Context) {
	defer c.wg.Done()

	for ctx.Err() == nil {
		conn, err := c.pool.Acquire(ctx)
		if err != nil {
			logger.Error(ctx, "failed to acquire connection for LISTEN", "error", err)
			sleep(ctx, time.Second)
			continue
		}

		if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
			logger.Error(ctx, "failed to LISTEN", "error", err)
			conn.Release()
			sleep(ctx, time.Second)
			continue
		}

		// entries may have gone stale while we were not listening
		c.clear()
		c.waitForNotifications(ctx, conn)
		conn.Release()
	}
}

func (c *LocalAvailabilityCache) waitForNotifications(ctx context.Context, conn *pgxpool.Conn) {
	for ctx.Err() == nil {
		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		n, err := conn.Conn().WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if waitCtx.Err() != nil {
				continue
			}
			logger.Warn(ctx, "LISTEN connection lost", "error", err)
			return
		}

		logger.Debug(ctx, "availability invalidation received", "payload", n.Payload)
		c.handleNotification(n.Payload)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
