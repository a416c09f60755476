package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/binp/internal/domain"
	"github.com/pscheid92/binp/internal/platform/correlation"
	apperrors "github.com/pscheid92/binp/internal/platform/errors"
)

func TestMiddlewareWithStructuredError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return apperrors.ValidationError("invalid input")
	})

	err := handler(c)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp apperrors.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid input", resp.Error)
	assert.Equal(t, apperrors.TypeValidation, resp.Type)
}

func TestMiddlewareWithStandardError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return errors.New("standard error")
	})

	err := handler(c)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp apperrors.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)
	assert.Equal(t, apperrors.TypeInternal, resp.Type)
}

func TestMiddlewareWithNoError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMiddlewarePassesHTTPErrorThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return echo.ErrMethodNotAllowed
	})

	err := handler(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusMethodNotAllowed, httpErr.Code)
}

func TestToStructured_DomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.ErrorType
	}{
		{"not found", domain.ErrSnippetNotFound, apperrors.TypeNotFound},
		{"expired", fmt.Errorf("%w: %w", domain.ErrSnippetNotFound, domain.ErrSnippetExpired), apperrors.TypeNotFound},
		{"invalid text", fmt.Errorf("%w: text is required", domain.ErrInvalidText), apperrors.TypeValidation},
		{"invalid language", fmt.Errorf("%w %q", domain.ErrInvalidLanguage, "cobol"), apperrors.TypeValidation},
		{"invalid expiry", fmt.Errorf("%w %q", domain.ErrInvalidExpiry, "2y"), apperrors.TypeValidation},
		{"exists", fmt.Errorf("failed to store snippet: %w", domain.ErrSnippetExists), apperrors.TypeConflict},
		{"structured", apperrors.ExternalError("redis down", nil), apperrors.TypeExternal},
		{"unknown", errors.New("boom"), apperrors.TypeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toStructured(tt.err).Type)
		})
	}
}

func TestWrapHTTPError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := WrapHTTPError(echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(cause))

	assert.Equal(t, apperrors.TypeValidation, err.Type)
	assert.Equal(t, "invalid request body", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestWrapHTTPError_DefaultMessage(t *testing.T) {
	err := WrapHTTPError(&echo.HTTPError{Code: http.StatusServiceUnavailable})

	assert.Equal(t, apperrors.TypeExternal, err.Type)
	assert.Equal(t, "Service Unavailable", err.Message)
	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus())
}

func TestMethodNotAllowedIsJSON(t *testing.T) {
	srv := newTestServer(t, &mockSnippetService{})

	for _, target := range []string{"/abc123", "/snippet"} {
		t.Run(target, func(t *testing.T) {
			rec := do(srv, http.MethodPut, target, "", acceptJSON)

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Contains(t, rec.Body.String(), `"type":"validation"`)
			assert.Contains(t, rec.Body.String(), `"error":"Method Not Allowed"`)
		})
	}
}

func TestCorrelationID(t *testing.T) {
	srv := newTestServer(t, &mockSnippetService{})

	t.Run("continues a valid caller id", func(t *testing.T) {
		rec := do(srv, http.MethodGet, "/health/live", "", map[string]string{correlation.Header: "cli-1234"})

		assert.Equal(t, "cli-1234", rec.Header().Get(correlation.Header))
	})

	t.Run("replaces an invalid caller id", func(t *testing.T) {
		rec := do(srv, http.MethodGet, "/health/live", "", map[string]string{correlation.Header: "bad id\n"})

		got := rec.Header().Get(correlation.Header)
		assert.Len(t, got, 8)
		assert.NotEqual(t, "bad id\n", got)
	})

	t.Run("generates one when absent", func(t *testing.T) {
		rec := do(srv, http.MethodGet, "/health/live", "", nil)

		assert.Len(t, rec.Header().Get(correlation.Header), 8)
	})
}

func TestCorrelationMiddleware_StoresIDInContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(correlation.Header, "abc-123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got string
	handler := correlationMiddleware(func(c echo.Context) error {
		got, _ = correlation.ID(c.Request().Context())
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, "abc-123", got)
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, &mockSnippetService{})

	rec := do(srv, http.MethodGet, "/health/live", "", nil)

	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

func TestSecureHeaders(t *testing.T) {
	srv := newTestServer(t, &mockSnippetService{})

	rec := do(srv, http.MethodGet, "/", "", nil)

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "script-src 'self' https://unpkg.com")
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, &mockSnippetService{})

	t.Run("allows the development origin", func(t *testing.T) {
		rec := do(srv, http.MethodGet, "/api/options", "", map[string]string{"Origin": "http://localhost:8080"})

		assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("ignores other origins", func(t *testing.T) {
		rec := do(srv, http.MethodGet, "/api/options", "", map[string]string{"Origin": "https://evil.example"})

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestGzip(t *testing.T) {
	srv := newTestServer(t, &mockSnippetService{})

	rec := do(srv, http.MethodGet, "/", "", map[string]string{"Accept-Encoding": "gzip"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}
