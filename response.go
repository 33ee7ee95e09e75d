package koa

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Response is the per-request view over the raw transport response. It
// accumulates status and body while the stack runs; the application writes
// the final bytes once the stack settles. All mutable state is owned by the
// request, only application-level defaults are shared.
type Response struct {
	// App is the owning application. Shared across requests, read-only.
	App *Application

	// Ctx is the owning context; Request is the sibling facade.
	Ctx     *Context
	Request *Request

	w   *responseWriter
	req *http.Request

	status           int
	explicitStatus   bool
	body             any
	explicitNullBody bool
}

// Raw returns the underlying http.ResponseWriter.
func (r *Response) Raw() http.ResponseWriter {
	return r.w
}

// Status returns the response status code. Defaults to 404 until a status or
// body is set, mirroring a stack that never handled the request.
func (r *Response) Status() int {
	return r.status
}

// SetStatus sets the response status code. Panics on a code outside 100-999;
// an invalid status is a programming error, not a request-time condition.
func (r *Response) SetStatus(code int) {
	if code < 100 || code > 999 {
		panic(fmt.Sprintf("koa: invalid status code %d", code))
	}
	r.status = code
	r.explicitStatus = true
	if r.body != nil && statusEmpty(code) {
		r.body = nil
	}
}

// Body returns the response body value.
func (r *Response) Body() any {
	return r.body
}

// SetBody sets the response body. Accepts string, []byte, io.Reader, or any
// JSON-serializable value. Setting a body implies status 200 unless a status
// was set explicitly; setting a nil body implies 204 and marks the null body
// as deliberate so no fallback text is produced.
func (r *Response) SetBody(body any) {
	r.body = body

	if body == nil {
		if !statusEmpty(r.status) {
			r.status = http.StatusNoContent
		}
		r.explicitNullBody = true
		r.RemoveHeader("Content-Type")
		r.RemoveHeader("Content-Length")
		r.RemoveHeader("Transfer-Encoding")
		return
	}

	r.explicitNullBody = false
	if !r.explicitStatus {
		r.status = http.StatusOK
	}

	// Stale length from a previous body must not survive a replacement.
	r.RemoveHeader("Content-Length")

	if r.GetHeader("Content-Type") != "" {
		return
	}
	switch b := body.(type) {
	case string:
		if strings.HasPrefix(strings.TrimSpace(b), "<") {
			r.SetHeader("Content-Type", "text/html; charset=utf-8")
		} else {
			r.SetHeader("Content-Type", "text/plain; charset=utf-8")
		}
	case []byte, io.Reader:
		r.SetHeader("Content-Type", "application/octet-stream")
	default:
		r.SetHeader("Content-Type", "application/json; charset=utf-8")
	}
}

// GetHeader returns the value of a named response header.
func (r *Response) GetHeader(key string) string {
	return r.w.Header().Get(key)
}

// SetHeader sets a response header. No-op once headers have been sent.
func (r *Response) SetHeader(key, value string) {
	if r.HeaderSent() {
		return
	}
	r.w.Header().Set(key, value)
}

// RemoveHeader removes a response header. No-op once headers have been sent.
func (r *Response) RemoveHeader(key string) {
	if r.HeaderSent() {
		return
	}
	r.w.Header().Del(key)
}

// Header returns the response header map for bulk access.
func (r *Response) Header() http.Header {
	return r.w.Header()
}

// Length returns the Content-Length header value, or 0 when unset.
func (r *Response) Length() int64 {
	n, err := strconv.ParseInt(r.GetHeader("Content-Length"), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// SetLength sets the Content-Length header.
func (r *Response) SetLength(n int64) {
	r.SetHeader("Content-Length", strconv.FormatInt(n, 10))
}

// SetType sets the Content-Type header.
func (r *Response) SetType(contentType string) {
	r.SetHeader("Content-Type", contentType)
}

// HeaderSent reports whether the status line and headers have been written.
func (r *Response) HeaderSent() bool {
	return r.w.Written()
}

// Writable reports whether the response can still be written.
func (r *Response) Writable() bool {
	return !r.w.Written()
}

// Redirect sets up a redirect to the given URL with the given status.
// A non-3xx status falls back to 302.
func (r *Response) Redirect(status int, location string) {
	if status < 300 || status > 399 {
		status = http.StatusFound
	}
	r.SetHeader("Location", location)
	r.SetStatus(status)
	r.SetBody("Redirecting to " + location)
	r.SetType("text/plain; charset=utf-8")
}

// statusEmpty reports whether the status code forbids a response body.
func statusEmpty(code int) bool {
	switch code {
	case http.StatusNoContent, http.StatusResetContent, http.StatusNotModified:
		return true
	}
	return false
}
