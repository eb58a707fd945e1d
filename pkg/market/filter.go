package market

import (
	"strings"

	"github.com/matzehuels/tokenfolio/pkg/integrations/coingecko"
)

// DefaultFilterLimit caps local filter results.
const DefaultFilterLimit = 10

// FilterAssets returns the assets whose name or symbol contains query,
// case-insensitively, in their original order. An empty or whitespace-only
// query matches nothing. limit <= 0 selects DefaultFilterLimit.
//
// Unlike the remote search this never leaves the process; it narrows an
// already fetched listing.
func FilterAssets(assets []coingecko.AssetSummary, query string, limit int) []coingecko.AssetSummary {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultFilterLimit
	}

	q := strings.ToLower(query)
	var out []coingecko.AssetSummary
	for _, a := range assets {
		if strings.Contains(strings.ToLower(a.Name), q) || strings.Contains(strings.ToLower(a.Symbol), q) {
			out = append(out, a)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
