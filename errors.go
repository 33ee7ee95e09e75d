package koa

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a structured HTTP error that implements the error interface.
// Expose controls whether Message may be written to the client; errors built
// from 4xx statuses are exposed by default, 5xx are not.
type Error struct {
	Status  int            `json:"-"`                 // HTTP status code (not in JSON)
	Code    string         `json:"code"`              // Machine-readable error code
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Optional context
	Expose  bool           `json:"-"`                 // Safe to send Message to the client
	Err     error          `json:"-"`                 // Wrapped cause
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e Error) Unwrap() error {
	return e.Err
}

// WithMessage returns a copy of the error with a custom message.
func (e Error) WithMessage(message string) Error {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with additional details.
func (e Error) WithDetails(details map[string]any) Error {
	e.Details = details
	return e
}

// WithError returns a copy of the error wrapping the given cause.
func (e Error) WithError(err error) Error {
	e.Err = err
	return e
}

// NewError builds an Error for the given status code. The message defaults to
// the standard status text. Statuses below 500 are exposed to the client.
func NewError(status int, message string) Error {
	if status < 100 || status > 999 {
		status = http.StatusInternalServerError
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return Error{
		Status:  status,
		Message: message,
		Expose:  status < http.StatusInternalServerError,
	}
}

// Predefined HTTP errors using http.StatusText for default messages.
var (
	ErrBadRequest           = Error{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: http.StatusText(http.StatusBadRequest), Expose: true}
	ErrUnauthorized         = Error{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: http.StatusText(http.StatusUnauthorized), Expose: true}
	ErrForbidden            = Error{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: http.StatusText(http.StatusForbidden), Expose: true}
	ErrNotFound             = Error{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: http.StatusText(http.StatusNotFound), Expose: true}
	ErrMethodNotAllowed     = Error{Status: http.StatusMethodNotAllowed, Code: "METHOD_NOT_ALLOWED", Message: http.StatusText(http.StatusMethodNotAllowed), Expose: true}
	ErrConflict             = Error{Status: http.StatusConflict, Code: "CONFLICT", Message: http.StatusText(http.StatusConflict), Expose: true}
	ErrUnprocessableEntity  = Error{Status: http.StatusUnprocessableEntity, Code: "UNPROCESSABLE_ENTITY", Message: http.StatusText(http.StatusUnprocessableEntity), Expose: true}
	ErrTooManyRequests      = Error{Status: http.StatusTooManyRequests, Code: "TOO_MANY_REQUESTS", Message: http.StatusText(http.StatusTooManyRequests), Expose: true}
	ErrInternalServerError  = Error{Status: http.StatusInternalServerError, Code: "INTERNAL_SERVER_ERROR", Message: http.StatusText(http.StatusInternalServerError)}
	ErrNotImplemented       = Error{Status: http.StatusNotImplemented, Code: "NOT_IMPLEMENTED", Message: http.StatusText(http.StatusNotImplemented)}
	ErrBadGateway           = Error{Status: http.StatusBadGateway, Code: "BAD_GATEWAY", Message: http.StatusText(http.StatusBadGateway)}
	ErrServiceUnavailable   = Error{Status: http.StatusServiceUnavailable, Code: "SERVICE_UNAVAILABLE", Message: http.StatusText(http.StatusServiceUnavailable)}
	ErrGatewayTimeout       = Error{Status: http.StatusGatewayTimeout, Code: "GATEWAY_TIMEOUT", Message: http.StatusText(http.StatusGatewayTimeout)}
)

// Pipeline errors.
var (
	// ErrNextCalledTwice reports a middleware that invoked its continuation
	// more than once within a single dispatch run.
	ErrNextCalledTwice = errors.New("next() called more than once")
)

// toError converts a recovered panic value to an error.
func toError(v any) error {
	switch e := v.(type) {
	case error:
		return e
	case string:
		return errors.New(e)
	default:
		return fmt.Errorf("panic: %v", e)
	}
}
