package middleware

import (
	"github.com/google/uuid"

	"github.com/littleLane/koa"
)

// requestIDStateKey is the state bag key under which the request ID is stored.
const requestIDStateKey = "middleware.request_id"

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *koa.Context) bool
	// Generator creates new request IDs (default: UUID v4)
	Generator func() string
	// HeaderName specifies the header name for the request ID (default: "X-Request-ID")
	HeaderName string
	// UseExisting determines whether to use an existing request ID from the incoming request
	UseExisting bool
}

// RequestID creates a request ID middleware with default configuration.
// It generates a new UUID for each request and includes it in both the
// context state and response headers.
func RequestID() koa.Middleware {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig creates a request ID middleware with custom configuration.
// The ID is stored in the context state and added to response headers before
// deeper layers run, so downstream middleware can pick it up for logging.
func RequestIDWithConfig(cfg RequestIDConfig) koa.Middleware {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Request-ID"
	}

	if cfg.Generator == nil {
		cfg.Generator = func() string {
			return uuid.New().String()
		}
	}

	return func(ctx *koa.Context, next koa.Next) error {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next()
		}

		var requestID string

		if cfg.UseExisting {
			if existingID := ctx.Request.Header(cfg.HeaderName); existingID != "" {
				requestID = existingID
			}
		}

		if requestID == "" {
			requestID = cfg.Generator()
		}

		ctx.Set(requestIDStateKey, requestID)
		ctx.Response.SetHeader(cfg.HeaderName, requestID)

		return next()
	}
}

// GetRequestID retrieves the request ID from the context state.
// Returns the ID and a boolean indicating whether it was found.
func GetRequestID(ctx *koa.Context) (string, bool) {
	v, ok := ctx.Get(requestIDStateKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
