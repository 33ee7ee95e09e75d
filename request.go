package koa

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Request is the per-request view over the raw transport request. Reads that
// depend on application-wide settings (proxy trust, subdomain offset) consult
// the owning application explicitly; everything mutable lives on this
// instance, so writes are never observable from another request.
type Request struct {
	// App is the owning application. Shared across requests, read-only.
	App *Application

	// Ctx is the owning context; Response is the sibling facade.
	Ctx      *Context
	Response *Response

	req *http.Request
}

// Raw returns the underlying *http.Request.
func (r *Request) Raw() *http.Request {
	return r.req
}

// Method returns the request method token.
func (r *Request) Method() string {
	return r.req.Method
}

// SetMethod overrides the request method, e.g. for method-override middleware.
func (r *Request) SetMethod(method string) {
	r.req.Method = method
}

// Path returns the request path.
func (r *Request) Path() string {
	return r.req.URL.Path
}

// SetPath rewrites the request path. The original URL snapshot taken at
// context creation is not affected.
func (r *Request) SetPath(path string) {
	r.req.URL.Path = path
}

// URL returns the parsed request URL.
func (r *Request) URL() *url.URL {
	return r.req.URL
}

// QueryString returns the raw query string, without the leading "?".
func (r *Request) QueryString() string {
	return r.req.URL.RawQuery
}

// Query returns the parsed query parameters.
func (r *Request) Query() url.Values {
	return r.req.URL.Query()
}

// Header returns the value of the named request header.
func (r *Request) Header(key string) string {
	return r.req.Header.Get(key)
}

// SetHeader sets a request header, visible to deeper middleware only.
func (r *Request) SetHeader(key, value string) {
	r.req.Header.Set(key, value)
}

// Host returns the request host (host:port when present). When the
// application trusts proxy headers, X-Forwarded-Host wins.
func (r *Request) Host() string {
	if r.App.Proxy {
		if host := r.req.Header.Get("X-Forwarded-Host"); host != "" {
			if i := strings.IndexByte(host, ','); i >= 0 {
				host = host[:i]
			}
			return strings.TrimSpace(host)
		}
	}
	return r.req.Host
}

// Hostname returns the host without the port.
func (r *Request) Hostname() string {
	host := r.Host()
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.HasSuffix(host, "]") {
		// Leave IPv6 literals like "[::1]" intact.
		if !strings.Contains(host[i:], "]") {
			return host[:i]
		}
	}
	return host
}

// Protocol returns "https" or "http". When the application trusts proxy
// headers, X-Forwarded-Proto wins over the connection state.
func (r *Request) Protocol() string {
	if r.req.TLS != nil {
		return "https"
	}
	if r.App.Proxy {
		if proto := r.req.Header.Get("X-Forwarded-Proto"); proto != "" {
			if i := strings.IndexByte(proto, ','); i >= 0 {
				proto = proto[:i]
			}
			return strings.TrimSpace(proto)
		}
	}
	return "http"
}

// Secure reports whether the request arrived over TLS.
func (r *Request) Secure() bool {
	return r.Protocol() == "https"
}

// IPs returns the addresses from X-Forwarded-For, client first, when the
// application trusts proxy headers. Empty otherwise.
func (r *Request) IPs() []string {
	if !r.App.Proxy {
		return nil
	}
	fwd := r.req.Header.Get("X-Forwarded-For")
	if fwd == "" {
		return nil
	}
	parts := strings.Split(fwd, ",")
	ips := make([]string, 0, len(parts))
	for _, p := range parts {
		if ip := strings.TrimSpace(p); ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

// IP returns the client address: the first forwarded address when proxy
// headers are trusted, the socket peer otherwise.
func (r *Request) IP() string {
	if ips := r.IPs(); len(ips) > 0 {
		return ips[0]
	}
	addr := r.req.RemoteAddr
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		return strings.Trim(addr[:i], "[]")
	}
	return addr
}

// Subdomains returns the subdomains of the host, ordered from the one closest
// to the registered domain. The application's SubdomainOffset controls how
// many trailing labels are ignored (default 2, e.g. "example.com").
func (r *Request) Subdomains() []string {
	host := r.Hostname()
	if host == "" || hostIsAddr(host) {
		return nil
	}
	offset := r.App.SubdomainOffset
	labels := strings.Split(host, ".")
	if len(labels) <= offset {
		return nil
	}
	subs := labels[:len(labels)-offset]
	// Reverse so the label nearest the registered domain comes first.
	out := make([]string, 0, len(subs))
	for i := len(subs) - 1; i >= 0; i-- {
		out = append(out, subs[i])
	}
	return out
}

// Length returns the request Content-Length, or 0 when absent or malformed.
func (r *Request) Length() int64 {
	if r.req.ContentLength >= 0 {
		return r.req.ContentLength
	}
	n, err := strconv.ParseInt(r.req.Header.Get("Content-Length"), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Type returns the request media type without parameters, e.g. "application/json".
func (r *Request) Type() string {
	ct := r.req.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

// hostIsAddr reports whether host looks like an IP literal rather than a name.
func hostIsAddr(host string) bool {
	if strings.HasPrefix(host, "[") {
		return true
	}
	for _, c := range host {
		if (c < '0' || c > '9') && c != '.' {
			return false
		}
	}
	return true
}
