package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/pscheid92/binp/internal/adapter/metrics"
)

// ErrCircuitOpen is returned for commands rejected while the breaker is open.
var ErrCircuitOpen = errors.New("redis circuit breaker open")

// CircuitBreakerHook fails Redis commands fast once Redis looks unhealthy.
// Redis is only a cache in binp, so callers treat ErrCircuitOpen as a miss
// and fall through to the database.
type CircuitBreakerHook struct {
	cb *gobreaker.CircuitBreaker
}

var _ goredis.Hook = (*CircuitBreakerHook)(nil)

// BreakerSettings returns the defaults: trip at a 60% failure rate over at
// least 5 requests in a 10s window, probe again after 30s.
func BreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "redis",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
	}
}

// NewCircuitBreakerHook builds the hook. m may be nil.
func NewCircuitBreakerHook(settings gobreaker.Settings, m *metrics.RedisMetrics) *CircuitBreakerHook {
	settings.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, goredis.Nil)
	}
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		slog.Warn("Circuit breaker state changed",
			"component", name,
			"from", from.String(),
			"to", to.String(),
		)
		if m != nil {
			m.BreakerTransitions.WithLabelValues(to.String()).Inc()
			m.BreakerState.Set(stateToFloat(to))
		}
	}
	return &CircuitBreakerHook{cb: gobreaker.NewCircuitBreaker(settings)}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func (h *CircuitBreakerHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := h.cb.Execute(func() (any, error) {
			return next(ctx, network, addr)
		})
		if err != nil {
			return nil, h.wrap(err)
		}
		return conn.(net.Conn), nil
	}
}

// ProcessHook counts redis.Nil as a success, a cache miss is a healthy reply.
func (h *CircuitBreakerHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		return h.execute(func() error { return next(ctx, cmd) })
	}
}

func (h *CircuitBreakerHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		return h.execute(func() error { return next(ctx, cmds) })
	}
}

func (h *CircuitBreakerHook) execute(op func() error) error {
	_, err := h.cb.Execute(func() (any, error) {
		return nil, op()
	})
	if err != nil {
		return h.wrap(err)
	}
	return nil
}

func (h *CircuitBreakerHook) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}
	return err
}

// State returns the current breaker state.
func (h *CircuitBreakerHook) State() gobreaker.State {
	return h.cb.State()
}

// Counts returns the request counts of the current window.
func (h *CircuitBreakerHook) Counts() gobreaker.Counts {
	return h.cb.Counts()
}
