package middleware

import (
	"log/slog"
	"time"

	"github.com/littleLane/koa"
	"github.com/littleLane/koa/logger"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *koa.Context) bool

	// Logger is the slog logger to use (default: slog.Default())
	Logger *slog.Logger

	// LogLevel for request logging (default: slog.LevelInfo)
	LogLevel slog.Level

	// SlowRequestThreshold logs slow requests at warning level (default: 5s)
	SlowRequestThreshold time.Duration

	// Component name for structured logging (default: "http")
	Component string
}

// Logging creates a request logging middleware with default configuration.
// It logs one line per request with method, path, status, and duration,
// escalating to warn for 4xx and slow requests and to error for 5xx.
func Logging() koa.Middleware {
	return LoggingWithConfig(LoggingConfig{})
}

// LoggingWithLogger creates a logging middleware with a custom logger.
func LoggingWithLogger(log *slog.Logger) koa.Middleware {
	return LoggingWithConfig(LoggingConfig{Logger: log})
}

// LoggingWithConfig creates a request logging middleware with custom
// configuration. The log line is emitted on the way back out of the stack,
// after deeper layers have settled, so it sees the final status.
func LoggingWithConfig(cfg LoggingConfig) koa.Middleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = slog.LevelInfo
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return func(ctx *koa.Context, next koa.Next) error {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next()
		}

		start := time.Now()
		err := next()
		duration := time.Since(start)

		status := ctx.Response.Status()
		attrs := []slog.Attr{
			logger.Component(cfg.Component),
			logger.Method(ctx.Method()),
			logger.Path(ctx.Path()),
			logger.StatusCode(status),
			logger.Duration(duration),
			logger.ClientIP(ctx.Request.IP()),
		}
		if id, ok := GetRequestID(ctx); ok {
			attrs = append(attrs, logger.RequestID(id))
		}

		level := cfg.LogLevel
		switch {
		case err != nil || status >= 500:
			level = slog.LevelError
			attrs = append(attrs, logger.Error(err))
		case status >= 400:
			level = slog.LevelWarn
		case duration > cfg.SlowRequestThreshold:
			level = slog.LevelWarn
			attrs = append(attrs, slog.Bool("slow_request", true))
		}

		cfg.Logger.LogAttrs(ctx, level, "request completed", attrs...)
		return err
	}
}
