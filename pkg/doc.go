// Package pkg provides the libraries behind tokenfolio, a cryptocurrency
// market data client.
//
// # Overview
//
// The pkg directory is organized leaf to root:
//
//  1. [cache] - TTL cache backends (memory, file, Redis) and key builders
//  2. [httputil] - Retry executor with bounded exponential backoff
//  3. [integrations] - Shared HTTP client: caching, request dedupe, pacing
//  4. [integrations/coingecko] - The data gateway for CoinGecko
//  5. [market] - Currency formatting and local filtering
//  6. [history] - Display currency and recently viewed assets, persisted
//  7. [config] - TOML and environment settings
//  8. [observability] - Hook registry and the Prometheus adapter
//
// # Data flow
//
//	command
//	   ↓
//	[coingecko.Client] ──hit──→ [cache.Cache]
//	   ↓ miss
//	[httputil.Retrier] (network errors and 429 only)
//	   ↓
//	market data service
//
// # Quick Start
//
//	gw := coingecko.NewClient(cache.NewMemoryCache(), cache.DefaultTTL)
//	assets, err := gw.ListTopAssets(ctx, "usd", 10)
//	if errors.Is(err, errors.ErrCodeRateLimited) {
//	    // three retries were not enough
//	}
package pkg
