// Package apiclient forwards HTTP requests to the platform's resource API.
//
// The Client owns no token state. Each call receives the bearer token to
// attach, so the same Client serves both application and user tokens.
//
// Requests are restricted to the configured API host: a caller-supplied
// absolute URL pointing anywhere else fails with *HostMismatchError before
// any network I/O and before the token is attached.
//
// Non-2xx responses become *APIError carrying the status, method, path and
// raw body. Diagnose turns an APIError into a Diagnostic with likely-cause and
// fix text for common status codes.
//
// An optional golang.org/x/time/rate limiter paces outgoing requests and
// Prometheus metrics record counts and latencies.
package apiclient
