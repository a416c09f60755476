package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pscheid92/binp/internal/platform/errors"
)

const testRemoteAddr = "1.2.3.4:1234"

func serveLimited(t *testing.T, handler echo.HandlerFunc, path, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRateLimiterAllowsRequestsUnderLimit(t *testing.T) {
	handler := newRateLimiter(10, 3)(okHandler)

	for range 3 {
		rec := serveLimited(t, handler, "/test", testRemoteAddr)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterBlocksExcessiveRequests(t *testing.T) {
	handler := newRateLimiter(0.01, 1)(okHandler)

	rec := serveLimited(t, handler, "/test", testRemoteAddr)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serveLimited(t, handler, "/test", testRemoteAddr)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp apperrors.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.TypeRateLimited, resp.Type)
	assert.Equal(t, "rate limit exceeded", resp.Error)
}

func TestRateLimiterTracksClientsSeparately(t *testing.T) {
	handler := newRateLimiter(0.01, 1)(okHandler)

	rec := serveLimited(t, handler, "/test", testRemoteAddr)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serveLimited(t, handler, "/test", "5.6.7.8:1234")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterSkipsProbes(t *testing.T) {
	handler := newRateLimiter(0.01, 1)(okHandler)

	for _, path := range []string{"/health/live", "/health/live", "/metrics", "/metrics"} {
		rec := serveLimited(t, handler, path, testRemoteAddr)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRateLimitBurst(t *testing.T) {
	assert.Equal(t, 40, rateLimitBurst(20))
	assert.Equal(t, 1, rateLimitBurst(0.1))
}
