package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/nicktill/promcheck/pkg/api"
	"github.com/nicktill/promcheck/pkg/server/monitor"
	"github.com/nicktill/promcheck/pkg/storage"
	"github.com/nicktill/promcheck/pkg/watch"
)

// Retention deletes reports older than MaxAge on a schedule.
type Retention struct {
	Store    storage.Storage
	MaxAge   time.Duration
	Interval time.Duration
	Monitor  *monitor.TaskMonitor
	Logger   *slog.Logger

	// A failed sweep is retried MaxRetries times, waiting BaseDelay, then
	// twice that, and so on.
	MaxRetries int
	BaseDelay  time.Duration

	now func() time.Time
}

// NewRetention creates a retention task with the default retry policy.
func NewRetention(store storage.Storage, maxAge, interval time.Duration, logger *slog.Logger) *Retention {
	return &Retention{
		Store:      store,
		MaxAge:     maxAge,
		Interval:   interval,
		Monitor:    monitor.NewTaskMonitor("retention", 2*interval),
		Logger:     logger,
		MaxRetries: 3,
		BaseDelay:  30 * time.Second,
		now:        time.Now,
	}
}

// Sweep deletes every report created before now minus MaxAge.
func (r *Retention) Sweep(ctx context.Context) error {
	cutoff := r.now().Add(-r.MaxAge)
	if err := r.Store.Delete(ctx, cutoff); err != nil {
		return fmt.Errorf("failed to delete reports before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return nil
}

// sweepWithRetry runs Sweep with exponential backoff and records the outcome.
func (r *Retention) sweepWithRetry(ctx context.Context) {
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.BaseDelay * time.Duration(1<<(attempt-1))
			r.Logger.Info("retrying retention sweep", "in", delay, "attempt", attempt+1, "max_attempts", r.MaxRetries+1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}

		start := time.Now()
		err := r.Sweep(ctx)
		if err == nil {
			r.Monitor.RecordSuccess()
			r.Logger.Debug("retention sweep completed", "took", time.Since(start).Round(time.Millisecond))
			return
		}

		r.Monitor.RecordFailure(err)
		r.Logger.Warn("retention sweep failed", "attempt", attempt+1, "max_attempts", r.MaxRetries+1, "error", err)

		if status := r.Monitor.Status(); status.ConsecutiveErrors > 3 {
			r.Logger.Error("retention keeps failing", "consecutive_errors", status.ConsecutiveErrors)
		}
	}

	r.Logger.Warn("retention sweep gave up, will retry on next schedule", "attempts", r.MaxRetries+1)
}

// Run sweeps once immediately and then every Interval until ctx is cancelled.
func (r *Retention) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.Logger.Info("retention scheduler started", "max_age", r.MaxAge, "interval", r.Interval)
	r.sweepWithRetry(ctx)

	for {
		select {
		case <-ticker.C:
			r.sweepWithRetry(ctx)
		case <-ctx.Done():
			r.Logger.Info("stopping retention scheduler")
			return
		}
	}
}

// gcRunner is implemented by stores that need value log garbage collection.
type gcRunner interface {
	RunGC(discardRatio float64) error
}

// RunBadgerGC reclaims badger value log space periodically.
// Stores without a value log return immediately.
func RunBadgerGC(ctx context.Context, store storage.Storage, interval time.Duration, discardRatio float64, logger *slog.Logger, wg *sync.WaitGroup) {
	defer wg.Done()

	gc, ok := store.(gcRunner)
	if !ok {
		logger.Debug("store has no value log, skipping GC")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("badger GC scheduler started", "interval", interval)

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			err := gc.RunGC(discardRatio)
			switch {
			case err == nil:
				logger.Info("badger GC reclaimed space", "took", time.Since(start).Round(time.Millisecond))
			case errors.Is(err, badgerdb.ErrNoRewrite):
				logger.Debug("badger GC found nothing to rewrite")
			default:
				logger.Warn("badger GC failed", "error", err)
			}
		case <-ctx.Done():
			logger.Info("stopping badger GC scheduler")
			return
		}
	}
}

// RunWatcher revalidates the data directory whenever its exposition files
// change, recording a report for every settled burst of changes.
func RunWatcher(ctx context.Context, w *watch.Watcher, handler *api.Handler, logger *slog.Logger, wg *sync.WaitGroup) {
	defer wg.Done()

	err := w.Run(ctx, func() {
		if _, err := handler.ValidateAndRecord(ctx, handler.DataDir()); err != nil {
			logger.Warn("failed to record report after change", "error", err)
		}
	})
	if err != nil {
		logger.Error("watcher stopped", "error", err)
	}
}
