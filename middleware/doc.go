// Package middleware provides reusable middleware for koa applications:
// request IDs, structured request logging, panic recovery, Prometheus
// metrics, JWT authentication, and in-process rate limiting.
//
// Every constructor follows the same pattern: a zero-config variant with
// sensible defaults and a WithConfig variant for fine-grained control.
// Config structs accept a Skip function to bypass the middleware for
// selected requests.
package middleware
