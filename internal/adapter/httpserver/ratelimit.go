package httpserver

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/pscheid92/binp/internal/adapter/metrics"
	apperrors "github.com/pscheid92/binp/internal/platform/errors"
)

const rateLimiterExpiry = 5 * time.Minute

// newRateLimiter limits each client IP to ratePerSecond with the given burst.
// Probes and metrics scrapes are exempt.
func newRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiry,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return metrics.IsOperationalPath(c.Request().URL.Path)
		},
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		ErrorHandler: func(c echo.Context, err error) error {
			return HandleError(c, apperrors.InternalError("rate limiter failed", err))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			slog.DebugContext(c.Request().Context(), "Request denied by rate limiter", "client_ip", identifier)
			return HandleError(c, apperrors.RateLimitedError("rate limit exceeded").WithField("retry", "slow down and try again"))
		},
	})
}

// rateLimitBurst allows short bursts of twice the sustained rate.
func rateLimitBurst(ratePerSecond float64) int {
	return max(int(ratePerSecond*2), 1)
}
