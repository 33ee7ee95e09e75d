package koa_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/littleLane/koa"
)

func newTestContext(t *testing.T) *koa.Context {
	t.Helper()
	app := koa.New()
	req := httptest.NewRequest("GET", "/", nil)
	return app.NewContext(httptest.NewRecorder(), req)
}

// tracer returns a middleware that appends its index to log before and
// after invoking its continuation.
func tracer(log *[]int, i int) koa.Middleware {
	return func(ctx *koa.Context, next koa.Next) error {
		*log = append(*log, i)
		if err := next(); err != nil {
			return err
		}
		*log = append(*log, i)
		return nil
	}
}

func TestCompose_OnionOrder(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 2, 5} {
		n := n
		t.Run(map[int]string{0: "zero", 1: "one", 2: "two", 5: "five"}[n]+"_middleware", func(t *testing.T) {
			t.Parallel()

			var log []int
			mws := make([]koa.Middleware, n)
			for i := range mws {
				mws[i] = tracer(&log, i)
			}

			err := koa.Compose(mws...)(newTestContext(t), nil)
			require.NoError(t, err)

			want := make([]int, 0, 2*n)
			for i := 0; i < n; i++ {
				want = append(want, i)
			}
			for i := n - 1; i >= 0; i-- {
				want = append(want, i)
			}
			if n == 0 {
				assert.Empty(t, log)
			} else {
				assert.Equal(t, want, log)
			}
		})
	}
}

func TestCompose_EmptyInvokesFallback(t *testing.T) {
	t.Parallel()

	calls := 0
	err := koa.Compose()(newTestContext(t), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCompose_FallbackRunsAfterStack(t *testing.T) {
	t.Parallel()

	var log []string
	mw := func(ctx *koa.Context, next koa.Next) error {
		log = append(log, "before")
		err := next()
		log = append(log, "after")
		return err
	}

	err := koa.Compose(mw)(newTestContext(t), func() error {
		log = append(log, "fallback")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"before", "fallback", "after"}, log)
}

func TestCompose_NextCalledTwice(t *testing.T) {
	t.Parallel()

	deeperRuns := 0
	offender := func(ctx *koa.Context, next koa.Next) error {
		if err := next(); err != nil {
			return err
		}
		return next()
	}
	deeper := func(ctx *koa.Context, next koa.Next) error {
		deeperRuns++
		return next()
	}

	err := koa.Compose(offender, deeper)(newTestContext(t), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, koa.ErrNextCalledTwice)
	// The error names the middleware that re-invoked its continuation,
	// not the one that would have run next.
	assert.Contains(t, err.Error(), "middleware 0")
	assert.Equal(t, 1, deeperRuns)
}

func TestCompose_ShortCircuit(t *testing.T) {
	t.Parallel()

	reached := false
	first := func(ctx *koa.Context, next koa.Next) error {
		return nil // never calls next
	}
	second := func(ctx *koa.Context, next koa.Next) error {
		reached = true
		return next()
	}

	err := koa.Compose(first, second)(newTestContext(t), nil)
	require.NoError(t, err)
	assert.False(t, reached)
}

func TestCompose_ErrorPropagation(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var seen []string

	outer := func(ctx *koa.Context, next koa.Next) error {
		err := next()
		seen = append(seen, "outer:"+err.Error())
		return err
	}
	inner := func(ctx *koa.Context, next koa.Next) error {
		return boom
	}

	err := koa.Compose(outer, inner)(newTestContext(t), nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"outer:boom"}, seen)
}

func TestCompose_InterceptedError(t *testing.T) {
	t.Parallel()

	outer := func(ctx *koa.Context, next koa.Next) error {
		if err := next(); err != nil {
			ctx.SetStatus(200)
			ctx.SetBody("recovered")
			return nil
		}
		return nil
	}
	inner := func(ctx *koa.Context, next koa.Next) error {
		return errors.New("boom")
	}

	ctx := newTestContext(t)
	err := koa.Compose(outer, inner)(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", ctx.Body())
}

func TestCompose_NestedComposition(t *testing.T) {
	t.Parallel()

	var log []int
	innerStack := koa.Compose(tracer(&log, 1), tracer(&log, 2))
	outerStack := koa.Compose(tracer(&log, 0), innerStack, tracer(&log, 3))

	err := outerStack(newTestContext(t), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 3, 2, 1, 0}, log)
}

func TestCompose_ReusableAcrossRuns(t *testing.T) {
	t.Parallel()

	var log []int
	h := koa.Compose(tracer(&log, 0), tracer(&log, 1))

	require.NoError(t, h(newTestContext(t), nil))
	require.NoError(t, h(newTestContext(t), nil))
	assert.Equal(t, []int{0, 1, 1, 0, 0, 1, 1, 0}, log)
}

func TestCompose_NilMiddlewarePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		koa.Compose(nil)
	})
}
