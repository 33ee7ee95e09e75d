// Package koa is a minimalist HTTP middleware framework. It composes
// independently authored middleware functions into a single request pipeline
// with onion-model ordering, gives each request an isolated mutable context,
// and finalizes the outgoing response from whatever the pipeline produced.
//
// # Middleware Model
//
// A middleware receives the request context and a continuation:
//
//	app := koa.New()
//
//	app.Use(func(ctx *koa.Context, next koa.Next) error {
//		start := time.Now()
//		if err := next(); err != nil { // run deeper layers
//			return err
//		}
//		ctx.Logger().Info("served", "elapsed", time.Since(start))
//		return nil
//	})
//
//	app.Use(func(ctx *koa.Context, next koa.Next) error {
//		ctx.SetBody("Hello World")
//		return nil
//	})
//
//	http.ListenAndServe(":8080", app.Callback())
//
// Code before the next call runs in registration order; code after it runs
// in exact reverse order once every deeper layer has settled. A middleware
// that never calls next short-circuits the rest of the stack. Failures
// returned at any depth propagate unmodified through each awaiting layer
// unless one intercepts them.
//
// # Response Finalization
//
// Middleware describe the response by mutating ctx.Response (or the Context
// delegates SetStatus and SetBody); the framework writes the actual bytes
// once, after the stack settles. String and []byte bodies are written
// verbatim, io.Reader bodies are streamed, anything else is JSON-encoded.
// Bodyless statuses (204, 205, 304) discard the body, and a missing body
// becomes the status text.
//
// # Subpackages
//
//	github.com/littleLane/koa/config     - Type-safe environment variable loading
//	github.com/littleLane/koa/logger     - Structured logging helpers built on slog
//	github.com/littleLane/koa/middleware - Reusable middleware (request ID, logging, metrics, JWT, rate limiting)
//	github.com/littleLane/koa/server     - HTTP server with graceful shutdown
package koa
