package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/matzehuels/tokenfolio/pkg/cache"
	"github.com/matzehuels/tokenfolio/pkg/httputil"
	"github.com/matzehuels/tokenfolio/pkg/observability"
)

// Client provides shared HTTP functionality for API clients.
// It handles caching, retry logic, request pacing and common request headers.
//
// All methods are safe for concurrent use.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
	retrier *httputil.Retrier
	limiter *rate.Limiter
	group   *singleflight.Group
	logger  *log.Logger
	refresh bool
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRetrier replaces the default retry policy.
func WithRetrier(r *httputil.Retrier) Option {
	return func(c *Client) {
		if r != nil {
			c.retrier = r
		}
	}
}

// WithLimiter paces outgoing requests. A nil limiter disables pacing.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the logger used for cache and request diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client backed by the given cache. Entries are stored
// for ttl (cache.DefaultTTL when ttl <= 0). Headers are applied to every
// request. A nil backend disables caching.
func NewClient(backend cache.Cache, ttl time.Duration, headers map[string]string, opts ...Option) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	c := &Client{
		http:    NewHTTPClient(),
		cache:   backend,
		ttl:     ttl,
		headers: headers,
		retrier: httputil.NewRetrier(),
		group:   &singleflight.Group{},
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithRefresh returns a copy of c that skips cache reads. Fresh results are
// still written back. The copy shares the cache, limiter and in-flight group.
func (c *Client) WithRefresh() *Client {
	cp := *c
	cp.refresh = true
	return &cp
}

// Refreshing reports whether cache reads are skipped.
func (c *Client) Refreshing() bool { return c.refresh }

// Logger returns the client's logger.
func (c *Client) Logger() *log.Logger { return c.logger }

// Cached retrieves the value stored under key, or runs fetch under the retry
// policy and caches the raw payload it returns. v receives the decoded JSON
// either way. The op name labels logs and hooks.
//
// Concurrent misses on the same key share one fetch. Cache backend errors are
// logged and handled as misses; only a successful, decodable payload is
// written.
func (c *Client) Cached(ctx context.Context, op, key string, v any, fetch func(ctx context.Context) ([]byte, error)) (err error) {
	reqID := uuid.NewString()
	ctx = WithRequestID(ctx, reqID)
	logger := c.logger.With("op", op, "req", reqID[:8])

	start := time.Now()
	observability.Gateway().OnOperationStart(ctx, op)
	defer func() {
		observability.Gateway().OnOperationComplete(ctx, op, time.Since(start), err)
	}()

	if !c.refresh {
		if c.readCache(ctx, logger, op, key, v) {
			return nil
		}
	}

	flightKey := key
	if c.refresh {
		flightKey = "refresh:" + key
	}
	// The shared fetch outlives any single caller; each caller stops waiting
	// on its own cancellation in the select below.
	fctx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flightKey, func() (any, error) {
		data, err := httputil.RetryValue(fctx, c.retrier, fetch)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, scratch(v)); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrUpstream, op, err)
		}
		c.writeCache(fctx, logger, op, key, data)
		return data, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		logger.Debug("fetch failed", "err", res.Err)
		return res.Err
	}
	if res.Shared {
		logger.Debug("shared in-flight fetch", "key", key)
	}
	if err := json.Unmarshal(res.Val.([]byte), v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, op, err)
	}
	return nil
}

// scratch returns a fresh value of v's pointed-to type so a payload can be
// validated without touching the caller's destination.
func scratch(v any) any {
	t := reflect.TypeOf(v)
	if t == nil || t.Kind() != reflect.Pointer {
		return new(any)
	}
	return reflect.New(t.Elem()).Interface()
}

func (c *Client) readCache(ctx context.Context, logger *log.Logger, op, key string, v any) bool {
	data, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "key", key, "err", err)
		observability.Cache().OnCacheError(ctx, op, err)
		return false
	}
	if !hit {
		logger.Debug("cache miss", "key", key)
		observability.Cache().OnCacheMiss(ctx, op)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn("discarding undecodable cache entry", "key", key, "err", err)
		observability.Cache().OnCacheError(ctx, op, err)
		return false
	}
	logger.Debug("cache hit", "key", key)
	observability.Cache().OnCacheHit(ctx, op)
	return true
}

func (c *Client) writeCache(ctx context.Context, logger *log.Logger, op, key string, data []byte) {
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		logger.Warn("cache write failed", "key", key, "err", err)
		observability.Cache().OnCacheError(ctx, op, err)
		return
	}
	observability.Cache().OnCacheSet(ctx, op, len(data))
}

// Get performs a single HTTP GET and JSON-decodes the response into v.
// It does not retry; wrap it in [Client.Cached] or an [httputil.Retrier].
func (c *Client) Get(ctx context.Context, url string, v any) error {
	data, err := c.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}

// Fetch performs a single HTTP GET and returns the response body.
//
// Failures are classified for the retry executor: no response and 429 come
// back as [httputil.RetryableError] wrapping [ErrNetwork] or [ErrRateLimited];
// 404 is [ErrNotFound]; any other non-2xx status is [ErrUpstream].
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	c.logger.Debug("request", "req", shortID(ctx), "url", url)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		c.logger.Debug("response", "req", shortID(ctx), "status", resp.StatusCode, "err", err)
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
	}
	return data, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{
			Err:        fmt.Errorf("%w: status %d", ErrRateLimited, code),
			RetryAfter: httputil.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	default:
		return fmt.Errorf("%w: status %d", ErrUpstream, code)
	}
}

func shortID(ctx context.Context) string {
	id := RequestID(ctx)
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
