// Package observability provides hooks for metrics and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about gateway operations, cache lookups, HTTP calls and
// retries.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, so the gateway packages
// stay free of any metrics backend. [Prometheus] is the bundled backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    prom := observability.NewPrometheus()
//	    observability.SetGatewayHooks(prom)
//	    observability.SetCacheHooks(prom)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Gateway().OnOperationStart(ctx, "topAssets")
//	// ... fetch ...
//	observability.Gateway().OnOperationComplete(ctx, "topAssets", duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Gateway Hooks
// =============================================================================

// GatewayHooks receives events for each data gateway operation.
type GatewayHooks interface {
	OnOperationStart(ctx context.Context, op string)
	OnOperationComplete(ctx context.Context, op string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations. The op argument is the
// gateway operation that owns the key (topAssets, assetDetail, search).
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, op string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, op string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, op string, size int)

	// OnCacheError records a backend failure that was downgraded to a miss.
	OnCacheError(ctx context.Context, op string, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// Retry Hooks
// =============================================================================

// RetryHooks receives events from the retry executor.
type RetryHooks interface {
	// OnRetry is called before sleeping ahead of the given (1-based) next attempt.
	OnRetry(ctx context.Context, attempt int, delay time.Duration, err error)

	// OnGiveUp is called when a transient failure survives every retry.
	OnGiveUp(ctx context.Context, attempts int, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGatewayHooks is a no-op implementation of GatewayHooks.
type NoopGatewayHooks struct{}

func (NoopGatewayHooks) OnOperationStart(context.Context, string)                          {}
func (NoopGatewayHooks) OnOperationComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)          {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)         {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int)     {}
func (NoopCacheHooks) OnCacheError(context.Context, string, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// NoopRetryHooks is a no-op implementation of RetryHooks.
type NoopRetryHooks struct{}

func (NoopRetryHooks) OnRetry(context.Context, int, time.Duration, error) {}
func (NoopRetryHooks) OnGiveUp(context.Context, int, error)               {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	gatewayHooks GatewayHooks = NoopGatewayHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	retryHooks   RetryHooks   = NoopRetryHooks{}
	hooksMu      sync.RWMutex
)

// SetGatewayHooks registers custom gateway hooks.
// This should be called once at application startup before any fetches.
func SetGatewayHooks(h GatewayHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		gatewayHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// SetRetryHooks registers custom retry hooks.
func SetRetryHooks(h RetryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		retryHooks = h
	}
}

// Gateway returns the registered gateway hooks.
func Gateway() GatewayHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return gatewayHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Retry returns the registered retry hooks.
func Retry() RetryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return retryHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	gatewayHooks = NoopGatewayHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
	retryHooks = NoopRetryHooks{}
}
