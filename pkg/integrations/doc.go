// Package integrations provides the shared HTTP client behind the market data
// gateway.
//
// # Overview
//
// [Client] bundles everything an API client needs besides its endpoints:
//
//   - an HTTP client with a per-attempt timeout ([HTTPTimeout])
//   - a [cache.Cache] consulted before any request ([Client.Cached])
//   - the retry executor from [httputil]
//   - optional client-side pacing with a token bucket ([NewLimiter])
//   - in-flight de-duplication of identical cache misses
//
// API-specific clients live in subpackages and embed *Client:
//
//   - [coingecko]: CoinGecko v3 market data
//
// # Client Pattern
//
//	gw := coingecko.NewClient(cache.NewMemoryCache(), cache.DefaultTTL)
//	assets, err := gw.ListTopAssets(ctx, "usd", 50)
//
// # Error Classification
//
// [Client.Fetch] classifies each attempt so the retrier can tell transient
// failures from terminal ones:
//
//   - no response: [httputil.RetryableError] wrapping [ErrNetwork]
//   - 429: [httputil.RetryableError] wrapping [ErrRateLimited]
//   - 404: [ErrNotFound]
//   - anything else outside 2xx: [ErrUpstream]
//
// Subpackages translate these sentinels into [errors.Code] values.
//
// [coingecko]: github.com/matzehuels/tokenfolio/pkg/integrations/coingecko
// [cache.Cache]: github.com/matzehuels/tokenfolio/pkg/cache.Cache
// [errors.Code]: github.com/matzehuels/tokenfolio/pkg/errors.Code
package integrations
