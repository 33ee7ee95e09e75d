package middleware

import (
	"fmt"

	"github.com/littleLane/koa"
)

// RecoverConfig configures the panic recovery middleware.
type RecoverConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *koa.Context) bool

	// Handler converts a recovered panic value into the error returned to
	// upstream layers (default: 500 Internal Server Error wrapping the value)
	Handler func(ctx *koa.Context, v any) error
}

// Recover creates a panic recovery middleware with default configuration.
// Panics from deeper layers become pipeline failures instead of crashing
// the connection goroutine.
func Recover() koa.Middleware {
	return RecoverWithConfig(RecoverConfig{})
}

// RecoverWithConfig creates a panic recovery middleware with custom configuration.
func RecoverWithConfig(cfg RecoverConfig) koa.Middleware {
	if cfg.Handler == nil {
		cfg.Handler = func(ctx *koa.Context, v any) error {
			return koa.ErrInternalServerError.WithError(fmt.Errorf("panic: %v", v))
		}
	}

	return func(ctx *koa.Context, next koa.Next) (err error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next()
		}

		defer func() {
			if v := recover(); v != nil {
				err = cfg.Handler(ctx, v)
			}
		}()

		return next()
	}
}
