// Package httpserver provides the HTTP/HTTPS ingest server for TouchMap.
//
// It is built on net/http with Go 1.22 method patterns. Each route is
// wrapped in the middleware chain RequestID, Recover, Audit, RateLimit and
// BodyLimit; health probes and /metrics skip rate limiting.
//
// Request ids arrive in or are returned through X-Request-ID and travel in
// the request context, so handler logs and response envelopes share them.
package httpserver
