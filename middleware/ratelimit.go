package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/littleLane/koa"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *koa.Context) bool

	// Limit is the number of requests allowed per window (default: 100)
	Limit int

	// Window is the fixed window duration (default: 1 minute)
	Window time.Duration

	// KeyExtractor defines how to extract the rate limiting key from
	// requests (default: client IP)
	KeyExtractor func(ctx *koa.Context) string

	// MaxKeys bounds the number of tracked keys; least recently used keys
	// are evicted first (default: 65536)
	MaxKeys int

	// SetHeaders includes X-RateLimit-* information in responses (default: true
	// when constructed through RateLimit)
	SetHeaders bool
}

type rateWindow struct {
	mu    sync.Mutex
	start time.Time
	count int
}

// RateLimit creates a rate limiting middleware allowing limit requests per
// window for each client IP. Counters live in a bounded in-process LRU
// store, so a flood of unique keys cannot exhaust memory.
func RateLimit(limit int, window time.Duration) koa.Middleware {
	return RateLimitWithConfig(RateLimitConfig{
		Limit:      limit,
		Window:     window,
		SetHeaders: true,
	})
}

// RateLimitWithConfig creates a rate limiting middleware with custom
// configuration. Requests over the limit fail the pipeline with
// 429 Too Many Requests, carrying a retry_after detail.
func RateLimitWithConfig(cfg RateLimitConfig) koa.Middleware {
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = 65536
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = func(ctx *koa.Context) string {
			return ctx.Request.IP()
		}
	}

	store, err := lru.New[string, *rateWindow](cfg.MaxKeys)
	if err != nil {
		panic("ratelimit middleware: " + err.Error())
	}

	return func(ctx *koa.Context, next koa.Next) error {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next()
		}

		key := cfg.KeyExtractor(ctx)
		win, ok := store.Get(key)
		if !ok {
			win = &rateWindow{}
			if prev, found, _ := store.PeekOrAdd(key, win); found {
				win = prev
			}
		}

		now := time.Now()
		win.mu.Lock()
		if now.Sub(win.start) >= cfg.Window {
			win.start = now
			win.count = 0
		}
		win.count++
		count := win.count
		retryAfter := win.start.Add(cfg.Window).Sub(now)
		win.mu.Unlock()

		remaining := cfg.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		if cfg.SetHeaders {
			ctx.Response.SetHeader("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			ctx.Response.SetHeader("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		if count > cfg.Limit {
			if cfg.SetHeaders {
				ctx.Response.SetHeader("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			}
			return koa.ErrTooManyRequests.WithDetails(map[string]any{
				"retry_after": fmt.Sprintf("%.0f", retryAfter.Seconds()),
			})
		}

		return next()
	}
}
