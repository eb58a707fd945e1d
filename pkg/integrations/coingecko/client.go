package coingecko

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/tokenfolio/pkg/buildinfo"
	"github.com/matzehuels/tokenfolio/pkg/cache"
	errs "github.com/matzehuels/tokenfolio/pkg/errors"
	"github.com/matzehuels/tokenfolio/pkg/httputil"
	"github.com/matzehuels/tokenfolio/pkg/integrations"
)

const (
	// DefaultBaseURL is the public, unauthenticated v3 endpoint.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	// DefaultLimit is the page size used when ListTopAssets gets limit <= 0.
	DefaultLimit = 50
)

// Operation names used for cache keys, logs and metrics.
const (
	OpTopAssets   = "topAssets"
	OpAssetDetail = "assetDetail"
	OpSearch      = "search"
)

// Config customizes a [Client]. The zero value targets the public API.
type Config struct {
	BaseURL   string      // API root without trailing slash (default DefaultBaseURL)
	UserAgent string      // User-Agent header (default buildinfo.UserAgent())
	Keyer     cache.Keyer // Cache key builder (default cache.NewDefaultKeyer())
}

// Client is the data gateway for CoinGecko market data. Each operation
// consults the cache, fetches on a miss under the retry policy, and stores
// the fresh payload.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	keys    cache.Keyer
}

// NewClient creates a gateway for the public API backed by the given cache.
func NewClient(backend cache.Cache, ttl time.Duration, opts ...integrations.Option) *Client {
	return New(backend, ttl, Config{}, opts...)
}

// New creates a gateway with explicit configuration.
func New(backend cache.Cache, ttl time.Duration, cfg Config, opts ...integrations.Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = buildinfo.UserAgent()
	}
	if cfg.Keyer == nil {
		cfg.Keyer = cache.NewDefaultKeyer()
	}
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": cfg.UserAgent,
	}
	return &Client{
		Client:  integrations.NewClient(backend, ttl, headers, opts...),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		keys:    cfg.Keyer,
	}
}

// WithRefresh returns a copy that bypasses cache reads and overwrites the
// cached entries with fresh results.
func (c *Client) WithRefresh() *Client {
	cp := *c
	cp.Client = c.Client.WithRefresh()
	return &cp
}

// ListTopAssets returns the first page of assets ordered by market cap,
// priced in currency. limit <= 0 selects DefaultLimit.
//
// The currency is passed through unvalidated; unknown codes surface as
// UPSTREAM_ERROR from the service.
func (c *Client) ListTopAssets(ctx context.Context, currency string, limit int) ([]AssetSummary, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if err := errs.ValidateLimit(limit); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("vs_currency", currency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(limit))
	q.Set("page", "1")
	q.Set("sparkline", "false")
	endpoint := c.baseURL + "/coins/markets?" + q.Encode()

	var assets []AssetSummary
	err := c.Cached(ctx, OpTopAssets, c.keys.TopAssetsKey(currency, limit), &assets, func(ctx context.Context) ([]byte, error) {
		return c.Fetch(ctx, endpoint)
	})
	if err != nil {
		return nil, mapError(err, "list top assets in %q", currency)
	}
	return assets, nil
}

// GetAssetDetail returns the full document for one asset. The currency only
// scopes the cache entry; the document itself carries figures for every
// currency. An empty id fails with INVALID_ARGUMENT before any request.
func (c *Client) GetAssetDetail(ctx context.Context, id, currency string) (*AssetDetail, error) {
	if err := errs.ValidateAssetID(id); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("market_data", "true")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")
	q.Set("sparkline", "false")
	endpoint := c.baseURL + "/coins/" + integrations.PathEscape(id) + "?" + q.Encode()

	var detail AssetDetail
	err := c.Cached(ctx, OpAssetDetail, c.keys.AssetDetailKey(id, currency), &detail, func(ctx context.Context) ([]byte, error) {
		return c.Fetch(ctx, endpoint)
	})
	if err != nil {
		return nil, mapError(err, "get asset %q", id)
	}
	return &detail, nil
}

// SearchAssets runs a free-text search. An empty or whitespace-only query
// returns an empty result without touching the cache or the network.
//
// Results are cached under the lower-cased query while the request keeps
// the caller's spelling.
func (c *Client) SearchAssets(ctx context.Context, query string) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return &SearchResult{Coins: []SearchCoin{}}, nil
	}

	endpoint := c.baseURL + "/search?query=" + integrations.URLEncode(query)

	var result SearchResult
	err := c.Cached(ctx, OpSearch, c.keys.SearchKey(query), &result, func(ctx context.Context) ([]byte, error) {
		return c.Fetch(ctx, endpoint)
	})
	if err != nil {
		return nil, mapError(err, "search %q", query)
	}
	if result.Coins == nil {
		result.Coins = []SearchCoin{}
	}
	return &result, nil
}

// mapError translates transport sentinels into the error taxonomy.
// Context errors pass through unchanged.
func mapError(err error, format string, args ...any) error {
	var coded *errs.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.As(err, &coded):
		return err
	case errors.Is(err, integrations.ErrNotFound):
		return errs.Wrap(errs.ErrCodeNotFound, err, format, args...)
	case errors.Is(err, integrations.ErrRateLimited):
		wait := int(httputil.RetryAfterHint(err) / time.Second)
		return errs.Wrap(errs.ErrCodeRateLimited, &errs.RateLimitedError{RetryAfter: wait, Err: err}, format, args...)
	case errors.Is(err, integrations.ErrNetwork):
		return errs.Wrap(errs.ErrCodeNetworkUnavailable, err, format, args...)
	default:
		return errs.Wrap(errs.ErrCodeUpstream, err, format, args...)
	}
}
