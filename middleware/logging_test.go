package middleware_test

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/littleLane/koa"
	"github.com/littleLane/koa/middleware"
)

func TestLogging_SuccessfulRequest(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	serve(t, httptest.NewRequest("GET", "/users", nil),
		middleware.LoggingWithLogger(log),
		func(ctx *koa.Context, next koa.Next) error {
			ctx.SetBody("ok")
			return nil
		},
	)

	out := buf.String()
	assert.Contains(t, out, "request completed")
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/users")
	assert.Contains(t, out, "status_code=200")
	assert.Contains(t, out, "level=INFO")
}

func TestLogging_FailedRequestLogsError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	serve(t, httptest.NewRequest("GET", "/", nil),
		middleware.LoggingWithLogger(log),
		func(ctx *koa.Context, next koa.Next) error {
			return errors.New("backend down")
		},
	)

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "backend down")
}

func TestLogging_ClientErrorLogsWarn(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	serve(t, httptest.NewRequest("GET", "/", nil),
		middleware.LoggingWithLogger(log),
		func(ctx *koa.Context, next koa.Next) error {
			ctx.SetStatus(404)
			return nil
		},
	)

	assert.Contains(t, buf.String(), "level=WARN")
}

func TestLogging_IncludesRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	serve(t, httptest.NewRequest("GET", "/", nil),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			Generator: func() string { return "req-42" },
		}),
		middleware.LoggingWithLogger(log),
		func(ctx *koa.Context, next koa.Next) error {
			ctx.SetBody("ok")
			return nil
		},
	)

	assert.Contains(t, buf.String(), "request_id=req-42")
}

func TestLogging_Skip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	serve(t, httptest.NewRequest("GET", "/health", nil),
		middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger: log,
			Skip:   func(ctx *koa.Context) bool { return ctx.Path() == "/health" },
		}),
		func(ctx *koa.Context, next koa.Next) error {
			ctx.SetBody("ok")
			return nil
		},
	)

	assert.Empty(t, buf.String())
}
