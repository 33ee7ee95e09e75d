package koa

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

// respond converts the terminal context state into the one response written
// to the transport. It runs exactly once per request, after the middleware
// stack settles successfully, and only while the response is still open.
//
// Branches are evaluated in order; each one terminates the response exactly
// once. Once headers are on the wire, later branches only read them.
func (app *Application) respond(ctx *Context) error {
	if !ctx.Respond {
		return nil
	}

	res := ctx.Response
	w := ctx.w
	if !res.Writable() && res.body == nil {
		return nil
	}

	status := res.status
	body := res.body

	// Statuses that forbid a body discard whatever the stack produced.
	if statusEmpty(status) {
		res.RemoveHeader("Content-Type")
		res.RemoveHeader("Content-Length")
		res.RemoveHeader("Transfer-Encoding")
		w.WriteHeader(status)
		return nil
	}

	if ctx.Request.Method() == http.MethodHead {
		if !res.HeaderSent() && res.GetHeader("Content-Length") == "" {
			if n, ok := bodyLength(body); ok {
				res.SetLength(n)
			}
		}
		w.WriteHeader(status)
		return nil
	}

	if body == nil {
		if res.explicitNullBody {
			res.RemoveHeader("Content-Type")
			res.RemoveHeader("Transfer-Encoding")
			w.WriteHeader(status)
			return nil
		}

		// Synthesize a textual body from the status: the code itself on
		// HTTP/2+, the reason phrase on older protocol versions.
		fallback := strconv.Itoa(status)
		if ctx.req.ProtoMajor < 2 {
			if text := http.StatusText(status); text != "" {
				fallback = text
			}
		}
		if !res.HeaderSent() {
			res.SetType("text/plain; charset=utf-8")
			res.SetLength(int64(len(fallback)))
		}
		w.WriteHeader(status)
		_, err := io.WriteString(w, fallback)
		return err
	}

	switch b := body.(type) {
	case []byte:
		if !res.HeaderSent() && res.GetHeader("Content-Length") == "" {
			res.SetLength(int64(len(b)))
		}
		w.WriteHeader(status)
		_, err := w.Write(b)
		return err

	case string:
		if !res.HeaderSent() && res.GetHeader("Content-Length") == "" {
			res.SetLength(int64(len(b)))
		}
		w.WriteHeader(status)
		_, err := io.WriteString(w, b)
		return err

	case io.Reader:
		// Completion is driven by the stream: the response ends when the
		// reader does, not before.
		w.WriteHeader(status)
		_, err := io.Copy(w, b)
		if c, ok := b.(io.Closer); ok {
			c.Close()
		}
		return err

	default:
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		if !res.HeaderSent() {
			res.SetLength(int64(len(buf)))
		}
		w.WriteHeader(status)
		_, err = w.Write(buf)
		return err
	}
}

// bodyLength computes the byte length a body value would serialize to.
// Streams have no knowable length up front.
func bodyLength(body any) (int64, bool) {
	switch b := body.(type) {
	case nil:
		return 0, false
	case []byte:
		return int64(len(b)), true
	case string:
		return int64(len(b)), true
	case io.Reader:
		return 0, false
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			return 0, false
		}
		return int64(len(buf)), true
	}
}
