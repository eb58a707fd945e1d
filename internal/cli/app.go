package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/tokenfolio/pkg/cache"
	"github.com/matzehuels/tokenfolio/pkg/config"
	"github.com/matzehuels/tokenfolio/pkg/history"
	"github.com/matzehuels/tokenfolio/pkg/integrations"
	"github.com/matzehuels/tokenfolio/pkg/integrations/coingecko"
	"github.com/matzehuels/tokenfolio/pkg/market"
	"github.com/matzehuels/tokenfolio/pkg/observability"
)

// app is the per-command environment: settings, gateway and history.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	cache    cache.Cache
	gateway  *coingecko.Client
	history  *history.Service // nil unless requested
	currency string

	metrics     *observability.Prometheus
	metricsFile string
}

// openApp loads the configuration and builds the gateway. The history
// service is opened only when withHistory is set, so commands that never
// touch it do not dial its backend.
func (c *CLI) openApp(ctx context.Context, withHistory bool) (*app, error) {
	cfg, warnings, err := config.Load(c.flags.configPath)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		c.Logger.Warn(w)
	}

	a := &app{cfg: cfg, logger: c.Logger}

	a.metricsFile = c.flags.metricsFile
	if a.metricsFile == "" {
		a.metricsFile = cfg.Metrics.File
	}
	if a.metricsFile != "" {
		a.metrics = observability.NewPrometheus()
		a.metrics.Install()
	}

	backend, keys, err := newCache(ctx, cfg, c.flags.noCache)
	if err != nil {
		return nil, err
	}
	a.cache = backend
	a.gateway = c.newGateway(cfg, backend, keys)

	if withHistory {
		store, err := newStore(ctx, cfg)
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		a.history, err = history.Open(ctx, store, a.gateway,
			history.WithLogger(c.Logger),
			history.WithStaleAfter(cfg.Cache.TTL.Duration),
		)
		if err != nil {
			_ = store.Close()
			_ = backend.Close()
			return nil, err
		}
	}

	a.currency, err = c.activeCurrency(a.history)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// activeCurrency resolves the display currency: the --currency flag, then
// the saved preference, then the default.
func (c *CLI) activeCurrency(h *history.Service) (string, error) {
	if c.flags.currency != "" {
		return market.ValidateCurrency(c.flags.currency)
	}
	if h != nil {
		return h.Currency(), nil
	}
	return market.DefaultCurrency, nil
}

// Close joins background work, releases the backends and writes the
// metrics file when one was requested.
func (a *app) Close() error {
	var errs []error
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.metrics != nil {
		if err := a.metrics.WriteTextfile(a.metricsFile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
		observability.Reset()
	}
	return errors.Join(errs...)
}

// =============================================================================
// Builders
// =============================================================================

// newCache builds the configured response cache and its key builder.
// Redis keys are namespaced with the configured prefix.
func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, cache.Keyer, error) {
	keys := cache.NewDefaultKeyer()
	if noCache {
		return cache.NewNullCache(), keys, nil
	}

	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), keys, nil
	case config.CacheFile:
		dir := cfg.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), keys, nil
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, nil, err
		}
		return fc, keys, nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(keys, cfg.Redis.Prefix+"cache:"), nil
	default:
		return cache.NewMemoryCache(), keys, nil
	}
}

// newGateway builds the CoinGecko client with the configured transport,
// pacing and retry policy.
func (c *CLI) newGateway(cfg *config.Config, backend cache.Cache, keys cache.Keyer) *coingecko.Client {
	httpClient := integrations.NewHTTPClient()
	httpClient.Timeout = cfg.API.Timeout.Duration

	retrier := cfg.Retrier()
	retrier.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.Logger.Warn("request failed, retrying", "attempt", attempt, "in", delay, "err", err)
	}

	gw := coingecko.New(backend, cfg.Cache.TTL.Duration,
		coingecko.Config{
			BaseURL:   cfg.API.BaseURL,
			UserAgent: cfg.API.UserAgent,
			Keyer:     keys,
		},
		integrations.WithHTTPClient(httpClient),
		integrations.WithRetrier(retrier),
		integrations.WithLimiter(integrations.NewLimiter(cfg.API.RequestsPerMinute)),
		integrations.WithLogger(c.Logger),
	)
	if c.flags.refresh {
		gw = gw.WithRefresh()
	}
	return gw
}

// newStore opens the configured preference store.
func newStore(ctx context.Context, cfg *config.Config) (history.Store, error) {
	switch cfg.State.Backend {
	case config.StateRedis:
		return history.DialRedisStore(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Prefix, cfg.State.Profile)
	case config.StateMongo:
		return history.NewMongoStore(ctx, history.MongoConfig{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
			Profile:    cfg.State.Profile,
		})
	default:
		return history.NewFileStore(cfg.State.Path)
	}
}
