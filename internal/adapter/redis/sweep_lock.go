package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	sweepLockKey    = "janitor:sweep"
	minSweepLockTTL = time.Second
)

// SweepLock elects one sweeping instance per period with SET NX. The lock
// is never released early: it expires after ttl, so replicas skip the
// sweeps that fall into the same period.
type SweepLock struct {
	rdb        goredis.Cmdable
	instanceID string
	ttl        time.Duration
}

// NewSweepLock creates a lock. instanceID should be unique per instance
// (e.g. hostname-PID) and shows up in logs of the losing replicas.
func NewSweepLock(rdb goredis.Cmdable, instanceID string, ttl time.Duration) *SweepLock {
	// A zero TTL would make SET NX keep the key forever.
	ttl = max(ttl, minSweepLockTTL)
	return &SweepLock{rdb: rdb, instanceID: instanceID, ttl: ttl}
}

// TryAcquire reports whether this instance won the current period.
func (l *SweepLock) TryAcquire(ctx context.Context) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, sweepLockKey, l.instanceID, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	return ok, nil
}
