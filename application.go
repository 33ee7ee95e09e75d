package koa

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/littleLane/koa/logger"
)

// DefaultSubdomainOffset is the number of trailing host labels ignored when
// computing subdomains, e.g. 2 for "example.com".
const DefaultSubdomainOffset = 2

// ErrorHandler receives every failure that escapes the middleware stack.
type ErrorHandler func(ctx *Context, err error)

// Application holds process-wide configuration and the middleware stack.
// Create one at startup, register middleware, then serve its Callback.
// Configuration must not be mutated once requests are being served; the
// application is shared read-only by every in-flight request.
type Application struct {
	// Env is the environment name, e.g. "development" or "production".
	Env string

	// Proxy controls whether X-Forwarded-* headers are trusted.
	Proxy bool

	// Keys are signing keys for cookie-signing integrations. Carried as
	// configuration; this package does not sign anything itself.
	Keys []string

	// SubdomainOffset is the number of trailing host labels ignored by
	// Request.Subdomains.
	SubdomainOffset int

	// Silent suppresses error reporting from the default error sink.
	Silent bool

	middleware []Middleware
	logger     *slog.Logger
	onError    ErrorHandler
}

// Option configures an Application.
type Option func(*Application)

// WithEnv sets the environment name.
func WithEnv(env string) Option {
	return func(app *Application) { app.Env = env }
}

// WithProxy enables trusting X-Forwarded-* proxy headers.
func WithProxy(proxy bool) Option {
	return func(app *Application) { app.Proxy = proxy }
}

// WithKeys sets the signing keys exposed to cookie-signing integrations.
func WithKeys(keys ...string) Option {
	return func(app *Application) { app.Keys = keys }
}

// WithSubdomainOffset sets the subdomain offset used by Request.Subdomains.
func WithSubdomainOffset(offset int) Option {
	return func(app *Application) { app.SubdomainOffset = offset }
}

// WithSilent disables error reporting from the default error sink.
func WithSilent(silent bool) Option {
	return func(app *Application) { app.Silent = silent }
}

// WithLogger sets the logger used by the default error sink and ctx.Logger.
func WithLogger(log *slog.Logger) Option {
	return func(app *Application) { app.logger = log }
}

// WithErrorHandler replaces the default error sink with an explicit callback.
func WithErrorHandler(h ErrorHandler) Option {
	return func(app *Application) { app.onError = h }
}

// New creates an Application with the given options.
// Defaults: development env, subdomain offset 2, a no-op logger.
func New(opts ...Option) *Application {
	app := &Application{
		Env:             "development",
		SubdomainOffset: DefaultSubdomainOffset,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Config holds application configuration with environment variable support.
type Config struct {
	Env             string   `env:"KOA_ENV" envDefault:"development"`
	Proxy           bool     `env:"KOA_PROXY" envDefault:"false"`
	Keys            []string `env:"KOA_KEYS" envSeparator:","`
	SubdomainOffset int      `env:"KOA_SUBDOMAIN_OFFSET" envDefault:"2"`
	Silent          bool     `env:"KOA_SILENT" envDefault:"false"`
}

// NewFromConfig creates an Application from configuration.
// Additional options can override config values.
func NewFromConfig(cfg Config, opts ...Option) *Application {
	configOpts := []Option{
		WithEnv(cfg.Env),
		WithProxy(cfg.Proxy),
		WithSubdomainOffset(cfg.SubdomainOffset),
		WithSilent(cfg.Silent),
	}
	if len(cfg.Keys) > 0 {
		configOpts = append(configOpts, WithKeys(cfg.Keys...))
	}
	configOpts = append(configOpts, opts...)
	return New(configOpts...)
}

// Use appends a middleware to the stack. Returns the application for
// chaining. Panics on nil: a missing middleware is a registration-time
// programming error, not a request-time condition.
func (app *Application) Use(m Middleware) *Application {
	if m == nil {
		panic("koa: middleware must not be nil")
	}
	app.middleware = append(app.middleware, m)
	return app
}

// Middleware returns the registered middleware stack.
func (app *Application) Middleware() []Middleware {
	return app.middleware
}

// NewContext builds the isolated per-request state bundle: a fresh context
// with cross-linked request and response facades, an empty state bag, and a
// snapshot of the original URL. Pure construction, no I/O.
func (app *Application) NewContext(w http.ResponseWriter, r *http.Request) *Context {
	ww, ok := w.(*responseWriter)
	if !ok {
		ww = &responseWriter{ResponseWriter: w}
	}

	ctx := &Context{
		App:         app,
		Respond:     true,
		req:         r,
		w:           ww,
		originalURL: requestURI(r),
		state:       make(map[string]any),
	}
	ctx.Request = &Request{App: app, Ctx: ctx, req: r}
	ctx.Response = &Response{App: app, Ctx: ctx, w: ww, req: r, status: http.StatusNotFound}
	ctx.Request.Response = ctx.Response
	ctx.Response.Request = ctx.Request
	return ctx
}

// Callback returns the http.Handler that serves the application: the
// middleware stack is composed once, and each request gets its own context.
func (app *Application) Callback() http.Handler {
	fn := Compose(app.middleware...)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := app.NewContext(w, r)

		defer func() {
			if v := recover(); v != nil {
				app.handleError(ctx, toError(v))
			}
		}()

		_ = app.handleRequest(ctx, fn)
	})
}

// HandleRequest runs the registered middleware stack against an existing
// context and finalizes the response. It is the single request entry point
// exposed to hosts that manage their own transport.
func (app *Application) HandleRequest(ctx *Context) error {
	return app.handleRequest(ctx, Compose(app.middleware...))
}

func (app *Application) handleRequest(ctx *Context, fn Middleware) error {
	err := fn(ctx, nil)
	if err != nil {
		app.handleError(ctx, err)
		return err
	}

	if err := app.respond(ctx); err != nil {
		app.handleError(ctx, err)
		return err
	}

	// Transport-level write failures surface through the response writer
	// once the response has been flushed.
	if werr := ctx.w.WriteError(); werr != nil {
		if app.onError != nil {
			app.onError(ctx, werr)
		} else {
			app.onerror(ctx, werr)
		}
		return werr
	}
	return nil
}

// handleError routes a pipeline failure to the error sink and, while the
// response is still open, writes the generic failure response.
func (app *Application) handleError(ctx *Context, err error) {
	if app.onError != nil {
		app.onError(ctx, err)
	} else {
		app.onerror(ctx, err)
	}
	app.writeErrorResponse(ctx, err)
}

// onerror is the default error sink. It panics on a nil error (a malformed
// failure value is a fatal programming error), stays quiet for expected
// failures and silenced applications, and otherwise reports the failure to
// the application logger. It never terminates the process.
func (app *Application) onerror(ctx *Context, err error) {
	if err == nil {
		panic("koa: onerror called with nil error")
	}

	var httpErr Error
	if errors.As(err, &httpErr) {
		if httpErr.Status == http.StatusNotFound || httpErr.Expose {
			return
		}
	}
	if app.Silent {
		return
	}

	log := app.logger
	if ctx != nil {
		log = ctx.Logger()
	}
	log.Error("request failed", logger.Error(err), logger.Stack())
}

// writeErrorResponse sends the failure to the client if nothing has been
// written yet. Exposed errors keep their message; everything else gets the
// bare status text.
func (app *Application) writeErrorResponse(ctx *Context, err error) {
	res := ctx.Response
	if !res.Writable() {
		return
	}

	status := http.StatusInternalServerError
	message := http.StatusText(status)

	var httpErr Error
	if errors.As(err, &httpErr) {
		if httpErr.Status >= 100 && httpErr.Status <= 999 {
			status = httpErr.Status
		}
		if httpErr.Expose && httpErr.Message != "" {
			message = httpErr.Message
		} else {
			message = http.StatusText(status)
		}
	}

	// Drop headers accumulated by the failed run; they may describe a
	// response that will never be sent.
	res.RemoveHeader("Content-Length")
	res.RemoveHeader("Transfer-Encoding")
	res.SetType("text/plain; charset=utf-8")
	res.SetLength(int64(len(message)))
	ctx.w.WriteHeader(status)
	_, _ = io.WriteString(ctx.w, message)
}

// Inspect returns a statically declared snapshot of the application's
// configuration, suitable for display and debugging.
func (app *Application) Inspect() map[string]any {
	return map[string]any{
		"env":             app.Env,
		"proxy":           app.Proxy,
		"subdomainOffset": app.SubdomainOffset,
	}
}

// requestURI returns the URL as sent by the client, falling back to the
// parsed URL for synthetic requests that carry no RequestURI.
func requestURI(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}
