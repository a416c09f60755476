// Package errors provides structured errors that carry an error category,
// a client-safe message and log context, and map onto HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the category of an error, used for status mapping and metrics.
type ErrorType string

const (
	TypeValidation  ErrorType = "validation"
	TypeNotFound    ErrorType = "not_found"
	TypeConflict    ErrorType = "conflict"
	TypeRateLimited ErrorType = "rate_limited"
	TypeInternal    ErrorType = "internal"
	TypeExternal    ErrorType = "external"
)

// Error is a structured error. Message is shown to clients, Cause is logged only.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any

	// status overrides the type's default status code.
	status int
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus is the status the error was created with, or the default for
// its type.
func (e *Error) HTTPStatus() int {
	if e.status != 0 {
		return e.status
	}
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeRateLimited:
		return http.StatusTooManyRequests
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause, Context: make(map[string]any)}
}

func ValidationError(message string) *Error {
	return newError(TypeValidation, message, nil)
}

func NotFoundError(message string) *Error {
	return newError(TypeNotFound, message, nil)
}

func ConflictError(message string) *Error {
	return newError(TypeConflict, message, nil)
}

func RateLimitedError(message string) *Error {
	return newError(TypeRateLimited, message, nil)
}

func InternalError(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

func ExternalError(message string, cause error) *Error {
	return newError(TypeExternal, message, cause)
}

// WithField adds a context field (chainable).
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Response is the JSON body sent to clients.
type Response struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *Error) ToResponse() Response {
	return Response{Error: e.Message, Type: e.Type, Context: e.Context}
}

// AsStructuredError returns err as *Error, wrapping unknown errors as internal.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal server error", err)
}

// FromStatus builds a structured error for an HTTP status produced outside
// the application, e.g. by framework middleware.
func FromStatus(code int, message string) *Error {
	var t ErrorType
	switch {
	case code == http.StatusNotFound:
		t = TypeNotFound
	case code == http.StatusConflict:
		t = TypeConflict
	case code == http.StatusTooManyRequests:
		t = TypeRateLimited
	case code == http.StatusBadGateway || code == http.StatusServiceUnavailable:
		t = TypeExternal
	case code >= 400 && code < 500:
		t = TypeValidation
	default:
		t = TypeInternal
	}
	if message == "" {
		message = http.StatusText(code)
	}
	err := newError(t, message, nil)
	err.status = code
	return err
}
