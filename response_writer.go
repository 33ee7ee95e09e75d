package koa

import "net/http"

// responseWriter wraps http.ResponseWriter to track response state.
// The first WriteHeader wins; later calls are ignored so the finalizer and
// error path can safely probe writability. Write errors are retained so the
// application can report transport failures after the handler returns.
type responseWriter struct {
	http.ResponseWriter
	written  bool
	status   int
	size     int64
	writeErr error
}

func (w *responseWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	if err != nil && w.writeErr == nil {
		w.writeErr = err
	}
	return n, err
}

// Written returns true if the response status line has been sent.
func (w *responseWriter) Written() bool {
	return w.written
}

// Status returns the HTTP status code of the response, or 0 if unsent.
func (w *responseWriter) Status() int {
	return w.status
}

// Size returns the number of body bytes written so far.
func (w *responseWriter) Size() int64 {
	return w.size
}

// WriteError returns the first error observed while writing to the transport.
func (w *responseWriter) WriteError() error {
	return w.writeErr
}

// Flush implements http.Flusher if the underlying ResponseWriter supports it.
func (w *responseWriter) Flush() bool {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
		return true
	}
	return false
}
