// Package cache provides the time-bounded response store used by the market
// data gateway.
//
// # Backends
//
//   - [MemoryCache]: process-lifetime map, the default
//   - [FileCache]: JSON files under ~/.cache/tokenfolio/, survives restarts
//   - [RedisCache]: shared store for several processes
//   - [NullCache]: caching disabled
//
// All backends store opaque byte payloads. A Get never hands out a slice the
// cache still holds, so callers may keep or modify what they receive.
//
// # Expiry
//
// An entry is valid while now - storedAt < ttl. Expired entries are reported
// as misses and removed lazily; there is no size bound and no LRU. Keys are
// low-cardinality (one per currency/limit/id/query actually requested) so
// growth over a long-lived process stays small.
//
// # Keys
//
// [Keyer] derives deterministic keys from an operation name and its
// parameters, e.g. "topAssets:usd:50".
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultTTL is how long a fetched response stays valid.
const DefaultTTL = 5 * time.Minute

// Cache is the storage contract shared by every backend.
type Cache interface {
	// Get returns the payload stored under key if it is still valid.
	// A miss (absent or expired) is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set replaces any entry under key with data, timestamped now.
	// A ttl <= 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys for the gateway operations.
type Keyer interface {
	TopAssetsKey(currency string, limit int) string
	AssetDetailKey(id, currency string) string
	SearchKey(query string) string
}

// DefaultKeyer produces "operation:param:param" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TopAssetsKey returns e.g. "topAssets:usd:50".
func (DefaultKeyer) TopAssetsKey(currency string, limit int) string {
	return fmt.Sprintf("topAssets:%s:%d", currency, limit)
}

// AssetDetailKey returns e.g. "assetDetail:bitcoin:usd".
func (DefaultKeyer) AssetDetailKey(id, currency string) string {
	return fmt.Sprintf("assetDetail:%s:%s", id, currency)
}

// SearchKey lower-cases the query, so "BTC" and "btc" share an entry even
// though the remote search may treat them differently.
func (DefaultKeyer) SearchKey(query string) string {
	return "search:" + strings.ToLower(query)
}

var _ Keyer = DefaultKeyer{}
