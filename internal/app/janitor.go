package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/binp/internal/platform/correlation"
)

const (
	DefaultJanitorInterval = time.Hour
	sweepTimeout           = 30 * time.Second
)

type expiredDeleter interface {
	DeleteExpired(ctx context.Context) (int, error)
}

// SweepLock lets replicas sharing a database agree on which one sweeps.
type SweepLock interface {
	TryAcquire(ctx context.Context) (bool, error)
}

// Janitor periodically deletes expired snippets. Reads already hide expired
// snippets, the janitor only reclaims storage.
type Janitor struct {
	deleter  expiredDeleter
	clock    clockwork.Clock
	interval time.Duration
	lock     SweepLock
}

type JanitorOption func(*Janitor)

// WithSweepLock skips sweeps while another instance holds the lock.
func WithSweepLock(lock SweepLock) JanitorOption {
	return func(j *Janitor) { j.lock = lock }
}

func NewJanitor(deleter expiredDeleter, clock clockwork.Clock, interval time.Duration, opts ...JanitorOption) *Janitor {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	j := &Janitor{deleter: deleter, clock: clock, interval: interval}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run sweeps once immediately, then every interval. It blocks until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := j.clock.NewTicker(j.interval)
	defer ticker.Stop()

	slog.Info("Janitor started", "interval", j.interval)
	j.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Janitor stopped")
			return
		case <-ticker.Chan():
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()
	ctx = correlation.WithID(ctx, correlation.NewID())

	if j.lock != nil {
		acquired, err := j.lock.TryAcquire(ctx)
		switch {
		case err != nil:
			// DeleteExpired is idempotent.
			slog.WarnContext(ctx, "Sweep lock unavailable, sweeping anyway", "error", err)
		case !acquired:
			slog.DebugContext(ctx, "Another instance holds the sweep lock, skipping")
			return
		}
	}

	n, err := j.deleter.DeleteExpired(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Expired snippet sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "Deleted expired snippets", "count", n)
	}
}
