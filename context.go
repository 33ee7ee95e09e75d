package koa

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Context is the per-request state bundle threaded through the middleware
// stack. Exactly one Context exists per request; it is created by the
// application's context factory, mutated by middleware, and discarded once
// the response is finalized. It is never pooled or shared across requests.
//
// Context implements context.Context by delegating to the request's context.
type Context struct {
	// App is the owning application. Shared across requests, read-only.
	App *Application

	// Request and Response are the per-request facades. Each cross-references
	// the other and the owning context.
	Request  *Request
	Response *Response

	// Respond controls whether the application writes the response from the
	// context state after the stack settles. Middleware taking over the raw
	// transport (e.g. hijacking the connection) should set it to false.
	Respond bool

	req *http.Request
	w   *responseWriter

	originalURL string
	state       map[string]any
}

// Deadline delegates to the request's context.
func (c *Context) Deadline() (deadline time.Time, ok bool) {
	return c.req.Context().Deadline()
}

// Done delegates to the request's context.
func (c *Context) Done() <-chan struct{} {
	return c.req.Context().Done()
}

// Err delegates to the request's context.
func (c *Context) Err() error {
	return c.req.Context().Err()
}

// Value delegates to the request's context.
func (c *Context) Value(key any) any {
	return c.req.Context().Value(key)
}

var _ context.Context = (*Context)(nil)

// OriginalURL returns the request URL as it was when the context was created,
// before any middleware rewrote the path.
func (c *Context) OriginalURL() string {
	return c.originalURL
}

// Set stores an arbitrary value in the per-request state bag.
// The bag starts empty for every request and is never shared.
func (c *Context) Set(key string, val any) {
	c.state[key] = val
}

// Get retrieves a value from the per-request state bag.
func (c *Context) Get(key string) (any, bool) {
	val, ok := c.state[key]
	return val, ok
}

// GetString retrieves a string value from the state bag, or "" if absent
// or not a string.
func (c *Context) GetString(key string) string {
	s, _ := c.state[key].(string)
	return s
}

// State returns the per-request state bag. The map is owned by this request.
func (c *Context) State() map[string]any {
	return c.state
}

// Throw builds an HTTP error for the given status. Returning it from a
// middleware fails the pipeline and produces the matching error response.
func (c *Context) Throw(status int, message string) error {
	return NewError(status, message)
}

// Logger returns the application logger annotated with request attributes.
func (c *Context) Logger() *slog.Logger {
	return c.App.logger.With(
		slog.String("method", c.Request.Method()),
		slog.String("path", c.Request.Path()),
	)
}

// Status returns the response status code. Delegates to the response facade.
func (c *Context) Status() int {
	return c.Response.Status()
}

// SetStatus sets the response status code. Delegates to the response facade.
func (c *Context) SetStatus(code int) {
	c.Response.SetStatus(code)
}

// Body returns the response body value. Delegates to the response facade.
func (c *Context) Body() any {
	return c.Response.Body()
}

// SetBody sets the response body value. Delegates to the response facade.
func (c *Context) SetBody(body any) {
	c.Response.SetBody(body)
}

// Method returns the request method. Delegates to the request facade.
func (c *Context) Method() string {
	return c.Request.Method()
}

// Path returns the request path. Delegates to the request facade.
func (c *Context) Path() string {
	return c.Request.Path()
}
