package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/binp/internal/adapter/metrics"
)

func failingProcess(err error) goredis.ProcessHook {
	return func(context.Context, goredis.Cmder) error { return err }
}

func TestCircuitBreakerHook_NormalOperation(t *testing.T) {
	hook := NewCircuitBreakerHook(BreakerSettings(), nil)
	ctx := context.Background()

	process := hook.ProcessHook(failingProcess(nil))
	for range 10 {
		require.NoError(t, process(ctx, goredis.NewStringCmd(ctx, "get", "key")))
	}

	assert.Equal(t, gobreaker.StateClosed, hook.State())
	counts := hook.Counts()
	assert.Equal(t, uint32(10), counts.Requests)
	assert.Equal(t, uint32(10), counts.TotalSuccesses)
	assert.Equal(t, uint32(0), counts.TotalFailures)
}

func TestCircuitBreakerHook_NilReplyIsSuccess(t *testing.T) {
	hook := NewCircuitBreakerHook(BreakerSettings(), nil)
	ctx := context.Background()

	process := hook.ProcessHook(failingProcess(goredis.Nil))
	for range 10 {
		err := process(ctx, goredis.NewStringCmd(ctx, "get", "key"))
		require.ErrorIs(t, err, goredis.Nil)
	}

	assert.Equal(t, gobreaker.StateClosed, hook.State())
	assert.Equal(t, uint32(0), hook.Counts().TotalFailures)
}

func TestCircuitBreakerHook_TransientFailures(t *testing.T) {
	hook := NewCircuitBreakerHook(BreakerSettings(), nil)
	ctx := context.Background()

	process := hook.ProcessHook(failingProcess(errors.New("connection refused")))
	for range 2 {
		err := process(ctx, goredis.NewStringCmd(ctx, "get", "key"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}

	assert.Equal(t, gobreaker.StateClosed, hook.State(), "too few requests to trip")
}

func TestCircuitBreakerHook_FailsFastWhenOpen(t *testing.T) {
	m := metrics.NewRedisMetrics(prometheus.NewRegistry())
	hook := NewCircuitBreakerHook(BreakerSettings(), m)
	ctx := context.Background()

	process := hook.ProcessHook(failingProcess(errors.New("redis down")))
	for range 5 {
		_ = process(ctx, goredis.NewStringCmd(ctx, "get", "key"))
	}
	require.Equal(t, gobreaker.StateOpen, hook.State())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerState))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BreakerTransitions.WithLabelValues("open")))

	called := false
	process = hook.ProcessHook(func(context.Context, goredis.Cmder) error {
		called = true
		return nil
	})
	err := process(ctx, goredis.NewStatusCmd(ctx, "set", "key", "value"))

	require.ErrorIs(t, err, ErrCircuitOpen)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called, "Redis must not be called while the circuit is open")
}

func TestCircuitBreakerHook_RecoversThroughHalfOpen(t *testing.T) {
	settings := BreakerSettings()
	settings.Timeout = 50 * time.Millisecond
	hook := NewCircuitBreakerHook(settings, nil)
	ctx := context.Background()

	failing := hook.ProcessHook(failingProcess(errors.New("failure")))
	for range 5 {
		_ = failing(ctx, goredis.NewStringCmd(ctx, "get", "key"))
	}
	require.Equal(t, gobreaker.StateOpen, hook.State())

	require.Eventually(t, func() bool {
		return hook.State() == gobreaker.StateHalfOpen
	}, time.Second, 10*time.Millisecond)

	healthy := hook.ProcessHook(failingProcess(nil))
	require.NoError(t, healthy(ctx, goredis.NewStringCmd(ctx, "get", "key")))
	assert.Equal(t, gobreaker.StateClosed, hook.State())
}

func TestCircuitBreakerHook_Pipeline(t *testing.T) {
	hook := NewCircuitBreakerHook(BreakerSettings(), nil)
	ctx := context.Background()

	pipeline := hook.ProcessPipelineHook(func(context.Context, []goredis.Cmder) error {
		return errors.New("pipeline failed")
	})
	for range 5 {
		require.Error(t, pipeline(ctx, nil))
	}

	assert.Equal(t, gobreaker.StateOpen, hook.State())
	assert.ErrorIs(t, pipeline(ctx, nil), ErrCircuitOpen)
}
