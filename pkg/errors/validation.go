package errors

import (
	"strings"
	"unicode"
)

// maxAssetIDLength bounds asset ids accepted by the gateway. CoinGecko ids are
// short slugs; anything longer is a typo or an injection attempt.
const maxAssetIDLength = 128

// ValidateAssetID checks an asset id before it is placed in a request path.
//
// The rules are conservative:
//   - No empty or whitespace-only ids
//   - No control characters
//   - No path separators or query/fragment delimiters
//   - Maximum length of 128 characters
//
// Whether the id exists is the remote service's call; an unknown id surfaces
// as NOT_FOUND from the request itself.
func ValidateAssetID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidArgument, "asset id cannot be empty")
	}

	if len(id) > maxAssetIDLength {
		return New(ErrCodeInvalidArgument, "asset id too long (max %d characters)", maxAssetIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidArgument, "asset id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\?#") || strings.Contains(id, "..") {
		return New(ErrCodeInvalidArgument, "asset id contains invalid characters: %q", id)
	}

	return nil
}

// ValidateLimit checks a page size for the top-assets listing. CoinGecko caps
// per_page at 250.
func ValidateLimit(limit int) error {
	if limit < 0 || limit > 250 {
		return New(ErrCodeInvalidArgument, "limit must be between 1 and 250 (0 selects the default), got %d", limit)
	}
	return nil
}
