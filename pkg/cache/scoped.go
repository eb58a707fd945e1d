package cache

// ScopedKeyer wraps a Keyer with a prefix. Several tokenfolio installations
// can then share one Redis database without reading each other's entries:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "tokenfolio:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TopAssetsKey generates a prefixed key for the top-assets listing.
func (k *ScopedKeyer) TopAssetsKey(currency string, limit int) string {
	return k.prefix + k.inner.TopAssetsKey(currency, limit)
}

// AssetDetailKey generates a prefixed key for an asset detail record.
func (k *ScopedKeyer) AssetDetailKey(id, currency string) string {
	return k.prefix + k.inner.AssetDetailKey(id, currency)
}

// SearchKey generates a prefixed key for a search result.
func (k *ScopedKeyer) SearchKey(query string) string {
	return k.prefix + k.inner.SearchKey(query)
}
