// Package config loads tokenfolio settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, by default $XDG_CONFIG_HOME/tokenfolio/config.toml
//  3. TOKENFOLIO_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// Example file:
//
//	[api]
//	base_url = "https://api.coingecko.com/api/v3"
//	timeout = "30s"
//	requests_per_minute = 30
//
//	[cache]
//	backend = "redis"
//	ttl = "5m"
//
//	[redis]
//	addr = "localhost:6379"
//	prefix = "tokenfolio:"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tokenfolio/pkg/cache"
	"github.com/matzehuels/tokenfolio/pkg/httputil"
	"github.com/matzehuels/tokenfolio/pkg/integrations"
	"github.com/matzehuels/tokenfolio/pkg/integrations/coingecko"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// State backends.
const (
	StateFile  = "file"
	StateRedis = "redis"
	StateMongo = "mongo"
)

const appName = "tokenfolio"

// Duration is a time.Duration read from strings like "30s" or "5m".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full settings tree.
type Config struct {
	API     APIConfig     `toml:"api"`
	Cache   CacheConfig   `toml:"cache"`
	Retry   RetryConfig   `toml:"retry"`
	Redis   RedisConfig   `toml:"redis"`
	State   StateConfig   `toml:"state"`
	Mongo   MongoConfig   `toml:"mongo"`
	Metrics MetricsConfig `toml:"metrics"`
}

type APIConfig struct {
	BaseURL           string   `toml:"base_url"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerMinute int      `toml:"requests_per_minute"` // 0 disables client-side pacing
	UserAgent         string   `toml:"user_agent"`          // empty uses tokenfolio/<version>
}

type CacheConfig struct {
	Backend string   `toml:"backend"`
	TTL     Duration `toml:"ttl"`
	Dir     string   `toml:"dir"` // file backend only; empty uses the XDG cache dir
}

type RetryConfig struct {
	MaxRetries int      `toml:"max_retries"`
	BaseDelay  Duration `toml:"base_delay"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type StateConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"` // file backend only
	Profile string `toml:"profile"`
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type MetricsConfig struct {
	File string `toml:"file"` // Prometheus textfile written at exit; empty disables
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           coingecko.DefaultBaseURL,
			Timeout:           Duration{integrations.HTTPTimeout},
			RequestsPerMinute: 30,
		},
		Cache: CacheConfig{Backend: CacheMemory, TTL: Duration{cache.DefaultTTL}},
		Retry: RetryConfig{MaxRetries: httputil.DefaultMaxRetries, BaseDelay: Duration{httputil.DefaultBaseDelay}},
		Redis: RedisConfig{Addr: "localhost:6379", Prefix: appName + ":"},
		State: StateConfig{Backend: StateFile, Profile: "default"},
		Mongo: MongoConfig{Database: "tokenfolio", Collection: "state"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/tokenfolio/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// Load reads path (or DefaultPath when empty) over the defaults, applies
// environment overrides and validates the result. A missing default file is
// not an error; a missing explicit file is. Unknown keys are reported in
// the returned warnings.
func Load(path string) (*Config, []string, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, nil, fmt.Errorf("locate config: %w", err)
		}
		path = p
	}

	var warnings []string
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		for _, key := range md.Undecoded() {
			warnings = append(warnings, fmt.Sprintf("%s: unknown key %q", path, key.String()))
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, warnings, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, warnings, err
	}
	return cfg, warnings, nil
}

// Validate rejects settings that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url must not be empty"))
	}
	if c.API.Timeout.Duration <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if c.API.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("api.requests_per_minute must not be negative"))
	}
	if !slices.Contains([]string{CacheMemory, CacheFile, CacheRedis, CacheNone}, c.Cache.Backend) {
		errs = append(errs, fmt.Errorf("cache.backend %q is not one of memory, file, redis, none", c.Cache.Backend))
	}
	if c.Cache.TTL.Duration <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive"))
	}
	if c.Retry.MaxRetries < 0 || c.Retry.MaxRetries > 10 {
		errs = append(errs, fmt.Errorf("retry.max_retries must be between 0 and 10, got %d", c.Retry.MaxRetries))
	}
	if c.Retry.BaseDelay.Duration <= 0 {
		errs = append(errs, errors.New("retry.base_delay must be positive"))
	}
	if !slices.Contains([]string{StateFile, StateRedis, StateMongo}, c.State.Backend) {
		errs = append(errs, fmt.Errorf("state.backend %q is not one of file, redis, mongo", c.State.Backend))
	}
	if c.State.Backend == StateMongo && c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo.uri is required when state.backend is mongo"))
	}
	if (c.Cache.Backend == CacheRedis || c.State.Backend == StateRedis) && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required for the redis backend"))
	}
	return errors.Join(errs...)
}

// Retrier builds the retry policy. max_retries = 0 disables retries.
func (c *Config) Retrier() *httputil.Retrier {
	r := &httputil.Retrier{MaxRetries: c.Retry.MaxRetries, BaseDelay: c.Retry.BaseDelay.Duration}
	if r.MaxRetries == 0 {
		r.MaxRetries = -1
	}
	return r
}
