package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// HTTPTimeout bounds a single request attempt. Backoff waits are not counted.
const HTTPTimeout = 30 * time.Second

var (
	// ErrNetwork is returned when no response was received (DNS, refused
	// connection, timeout, truncated body).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned for HTTP 429 responses.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound is returned for HTTP 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrUpstream is returned for any other non-2xx status and for payloads
	// that cannot be decoded.
	ErrUpstream = errors.New("upstream error")
)

// NewHTTPClient creates an HTTP client with the per-attempt timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: HTTPTimeout}
}

// NewLimiter returns a limiter allowing perMinute requests per minute with a
// small burst. perMinute <= 0 returns nil, which disables pacing.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	burst := max(1, perMinute/10)
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// URLEncode percent-encodes a string for use in query parameters.
func URLEncode(s string) string { return url.QueryEscape(s) }

// PathEscape percent-encodes a single path segment.
func PathEscape(s string) string { return url.PathEscape(s) }

type requestIDKey struct{}

// WithRequestID returns a context carrying id for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by [WithRequestID], or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
