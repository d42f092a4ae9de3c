// Package worker runs the periodic mirror reconciliation sweep.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	appctx "retailops/internal/core/context"
	"retailops/internal/domain/inventory"
	"retailops/internal/infrastructure/storage/postgres"
	"retailops/pkg/logger"
)

// MirrorSyncer re-pushes every item's stock to its mirrors.
type MirrorSyncer interface {
	SyncAll(ctx context.Context) (inventory.SyncAllReport, error)
}

// Sweeper calls SyncAll on a fixed interval. A sweep that is still running when
// the next tick fires delays it instead of overlapping.
type Sweeper struct {
	syncer   MirrorSyncer
	interval time.Duration
	pool     *pgxpool.Pool
	log      *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewSweeper creates a sweeper. pool is optional and only used for stats logging.
func NewSweeper(syncer MirrorSyncer, interval time.Duration, pool *pgxpool.Pool, log *logger.Logger) *Sweeper {
	return &Sweeper{
		syncer:   syncer,
		interval: interval,
		pool:     pool,
		log:      log.WithComponent("mirror-sweeper"),
	}
}

// Start runs one sweep immediately and then one per interval until Stop.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true

	go s.loop(ctx)
	s.log.Infow("sweeper started", "interval", s.interval)
}

// Stop cancels the loop and waits for the current sweep to return.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
	s.log.Info("sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep. Errors are logged, never returned: the next
// tick retries everything.
func (s *Sweeper) RunOnce(ctx context.Context) inventory.SyncAllReport {
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "mirror-sweeper"})

	start := time.Now()
	report, err := s.syncer.SyncAll(ctx)
	if err != nil && ctx.Err() == nil {
		logger.Error(ctx, "mirror sweep failed", "error", err, "items", report.Items)
	}
	for _, f := range report.Failures {
		logger.Warn(ctx, "mirror sweep failure", "failure", f)
	}
	logger.Debug(ctx, "mirror sweep finished", "duration_ms", time.Since(start).Milliseconds())

	if s.pool != nil {
		postgres.LogPoolStats(ctx, s.pool)
	}
	return report
}
