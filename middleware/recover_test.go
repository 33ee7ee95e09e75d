package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/littleLane/koa"
	"github.com/littleLane/koa/middleware"
)

func TestRecover_ConvertsPanicToError(t *testing.T) {
	t.Parallel()

	rec := serve(t, httptest.NewRequest("GET", "/", nil),
		middleware.Recover(),
		func(ctx *koa.Context, next koa.Next) error {
			panic("something broke")
		},
	)

	assert.Equal(t, 500, rec.Code)
	assert.Equal(t, "Internal Server Error", rec.Body.String())
}

func TestRecover_UpstreamObservesFailure(t *testing.T) {
	t.Parallel()

	var seen error
	serve(t, httptest.NewRequest("GET", "/", nil),
		func(ctx *koa.Context, next koa.Next) error {
			seen = next()
			return seen
		},
		middleware.Recover(),
		func(ctx *koa.Context, next koa.Next) error {
			panic("deep panic")
		},
	)

	require.Error(t, seen)
	var httpErr koa.Error
	require.ErrorAs(t, seen, &httpErr)
	require.NotNil(t, httpErr.Err)
	assert.Contains(t, httpErr.Err.Error(), "deep panic")
}

func TestRecover_CustomHandler(t *testing.T) {
	t.Parallel()

	rec := serve(t, httptest.NewRequest("GET", "/", nil),
		middleware.RecoverWithConfig(middleware.RecoverConfig{
			Handler: func(ctx *koa.Context, v any) error {
				return koa.NewError(503, "temporarily offline")
			},
		}),
		func(ctx *koa.Context, next koa.Next) error {
			panic("overload")
		},
	)

	assert.Equal(t, 503, rec.Code)
}

func TestRecover_PassesThroughCleanRequests(t *testing.T) {
	t.Parallel()

	rec := serve(t, httptest.NewRequest("GET", "/", nil),
		middleware.Recover(),
		func(ctx *koa.Context, next koa.Next) error {
			ctx.SetBody("fine")
			return nil
		},
	)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "fine", rec.Body.String())
}
