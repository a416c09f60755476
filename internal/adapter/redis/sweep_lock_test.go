package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepLock_OneWinnerPerPeriod(t *testing.T) {
	mr, rdb := setupMiniRedis(t)
	ctx := context.Background()

	a := NewSweepLock(rdb, "host-a-1", time.Minute)
	b := NewSweepLock(rdb, "host-b-1", time.Minute)

	ok, err := a.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	holder, err := mr.Get(sweepLockKey)
	require.NoError(t, err)
	assert.Equal(t, "host-a-1", holder)

	mr.FastForward(time.Minute)

	ok, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "lock expires after the period")
}

func TestSweepLock_RedisDown(t *testing.T) {
	mr, rdb := setupMiniRedis(t)
	mr.Close()

	_, err := NewSweepLock(rdb, "host-a-1", time.Minute).TryAcquire(context.Background())

	assert.ErrorContains(t, err, "failed to acquire sweep lock")
}

func TestSweepLock_ZeroTTLStillExpires(t *testing.T) {
	mr, rdb := setupMiniRedis(t)

	ok, err := NewSweepLock(rdb, "host-a-1", 0).TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, minSweepLockTTL, mr.TTL(sweepLockKey))
}
