package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/littleLane/koa"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *koa.Context) bool

	// Registerer receives the collectors (default: prometheus.DefaultRegisterer)
	Registerer prometheus.Registerer

	// Namespace prefixes all metric names (default: "koa")
	Namespace string

	// DurationBuckets overrides the request duration histogram buckets
	DurationBuckets []float64
}

// Metrics creates a metrics middleware with default configuration.
// It records a request counter and a duration histogram, both labeled by
// method and status code.
func Metrics() koa.Middleware {
	return MetricsWithConfig(MetricsConfig{})
}

// MetricsWithConfig creates a metrics middleware with custom configuration.
// Panics if collector registration fails; conflicting registrations are a
// startup-time programming error.
func MetricsWithConfig(cfg MetricsConfig) koa.Middleware {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "koa"
	}
	if cfg.DurationBuckets == nil {
		cfg.DurationBuckets = prometheus.DefBuckets
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests processed.",
	}, []string{"method", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request processing time in seconds.",
		Buckets:   cfg.DurationBuckets,
	}, []string{"method", "status"})

	cfg.Registerer.MustRegister(requests, duration)

	return func(ctx *koa.Context, next koa.Next) error {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next()
		}

		start := time.Now()
		err := next()

		status := ctx.Response.Status()
		if err != nil {
			var httpErr koa.Error
			if errors.As(err, &httpErr) && httpErr.Status != 0 {
				status = httpErr.Status
			} else {
				status = 500
			}
		}

		labels := prometheus.Labels{
			"method": ctx.Method(),
			"status": strconv.Itoa(status),
		}
		requests.With(labels).Inc()
		duration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}
