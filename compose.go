package koa

import "fmt"

// Next is the continuation handed to a middleware. Calling it passes control
// to the next layer of the stack and blocks until every deeper layer settles.
type Next func() error

// Middleware processes a request context and decides whether to pass control
// downstream by invoking next. A middleware that returns without calling next
// short-circuits all deeper layers; code after the next call runs on the way
// back out, in reverse registration order.
type Middleware func(ctx *Context, next Next) error

// Compose combines an ordered middleware stack into a single middleware.
// The result has the same shape as its parts, so composed stacks nest freely.
//
// Each invocation of the composed middleware starts a fresh dispatch run.
// Within one run the continuation given to each layer may be called at most
// once; a second call fails the run with ErrNextCalledTwice.
func Compose(middleware ...Middleware) Middleware {
	for i, m := range middleware {
		if m == nil {
			panic(fmt.Sprintf("koa: middleware at index %d is nil", i))
		}
	}

	return func(ctx *Context, next Next) error {
		// index tracks the last dispatched layer for this run.
		index := -1

		var dispatch func(i int) error
		dispatch = func(i int) error {
			if i <= index {
				// The layer that re-invoked its continuation sits one
				// position above the dispatch it triggered.
				return fmt.Errorf("%w: middleware %d", ErrNextCalledTwice, i-1)
			}
			index = i

			if i == len(middleware) {
				if next == nil {
					return nil
				}
				return next()
			}

			return middleware[i](ctx, func() error {
				return dispatch(i + 1)
			})
		}

		return dispatch(0)
	}
}
