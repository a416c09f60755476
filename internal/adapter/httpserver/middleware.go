package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pscheid92/binp/internal/domain"
	"github.com/pscheid92/binp/internal/platform/correlation"
	apperrors "github.com/pscheid92/binp/internal/platform/errors"
)

// Incoming correlation IDs are echoed into logs, so only short tokens are
// accepted.
var correlationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func requestIDMiddleware() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// correlationMiddleware continues the caller's correlation ID or starts a
// new one, and returns it in the response.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(correlation.Header)
		if !correlationIDPattern.MatchString(id) {
			id = correlation.NewID()
		}
		c.Response().Header().Set(correlation.Header, id)

		ctx := correlation.WithID(c.Request().Context(), id)
		if requestID := c.Response().Header().Get(echo.HeaderXRequestID); requestID != "" {
			ctx = correlation.WithAttrs(ctx, slog.String("request_id", requestID))
		}
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// ErrorHandlingMiddleware turns handler errors into structured JSON
// responses. Framework errors are left to the HTTP error handler.
func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			return HandleError(c, err)
		}
	}
}

// toStructured maps domain sentinels onto error categories. Anything
// unrecognised becomes an internal error.
func toStructured(err error) *apperrors.Error {
	var structuredErr *apperrors.Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	switch {
	case errors.Is(err, domain.ErrSnippetNotFound):
		return apperrors.NotFoundError("snippet not found")
	case isValidationError(err):
		return apperrors.ValidationError(validationMessage(err))
	case errors.Is(err, domain.ErrSnippetExists):
		return apperrors.ConflictError("snippet already exists")
	default:
		return apperrors.AsStructuredError(err)
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrInvalidText) ||
		errors.Is(err, domain.ErrInvalidLanguage) ||
		errors.Is(err, domain.ErrInvalidExpiry)
}

// validationMessage is the client-facing text of a validation error. The
// service builds these messages from user input and option lists only.
func validationMessage(err error) string {
	return err.Error()
}

func logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	ctx := c.Request().Context()
	switch err.Type {
	case apperrors.TypeValidation:
		slog.InfoContext(ctx, "Validation error", attrs...)
	case apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Not found", attrs...)
	case apperrors.TypeConflict:
		slog.WarnContext(ctx, "Conflict", attrs...)
	case apperrors.TypeRateLimited:
		slog.WarnContext(ctx, "Rate limited", attrs...)
	case apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	case apperrors.TypeExternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "External service error", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}

// HandleError logs err and writes it as a structured JSON response.
func HandleError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	structuredErr := toStructured(err)
	logError(c, structuredErr)
	if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
		return fmt.Errorf("failed to write error response: %w", err)
	}
	return nil
}

// WrapHTTPError converts errors raised by echo and its middleware.
func WrapHTTPError(httpErr *echo.HTTPError) *apperrors.Error {
	message, _ := httpErr.Message.(string)
	err := apperrors.FromStatus(httpErr.Code, message)
	if httpErr.Internal != nil {
		err.Cause = httpErr.Internal
	}
	return err
}

// handleHTTPError is echo's last-resort error handler. Browsers get the not
// found page for unknown routes, everything else gets JSON.
func (s *Server) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var structuredErr *apperrors.Error
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		structuredErr = WrapHTTPError(httpErr)
	} else {
		structuredErr = toStructured(err)
	}
	logError(c, structuredErr)

	var writeErr error
	switch {
	case c.Request().Method == http.MethodHead:
		writeErr = c.NoContent(structuredErr.HTTPStatus())
	case structuredErr.Type == apperrors.TypeNotFound && !wantsJSON(c):
		writeErr = s.renderTemplate(c, http.StatusNotFound, "not_found.html", newPageData("Not found"))
	default:
		writeErr = c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse())
	}
	if writeErr != nil {
		slog.ErrorContext(c.Request().Context(), "Failed to write error response", "error", writeErr)
	}
}
