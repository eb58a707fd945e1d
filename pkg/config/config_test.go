package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if cfg.Cache.TTL.Duration != 5*time.Minute {
		t.Errorf("default ttl = %v", cfg.Cache.TTL.Duration)
	}
	if cfg.Retry.MaxRetries != 3 || cfg.Retry.BaseDelay.Duration != time.Second {
		t.Errorf("default retry = %+v", cfg.Retry)
	}
	if cfg.API.Timeout.Duration != 30*time.Second {
		t.Errorf("default timeout = %v", cfg.API.Timeout.Duration)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[api]
base_url = "http://localhost:9999"
timeout = "10s"
requests_per_minute = 0

[cache]
backend = "file"
ttl = "1m"
dir = "/tmp/tf"

[retry]
max_retries = 5
base_delay = "250ms"

[state]
backend = "mongo"

[mongo]
uri = "mongodb://localhost:27017"
`)

	cfg, warnings, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	if cfg.API.BaseURL != "http://localhost:9999" || cfg.API.Timeout.Duration != 10*time.Second {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Cache.Backend != CacheFile || cfg.Cache.TTL.Duration != time.Minute || cfg.Cache.Dir != "/tmp/tf" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Retry.MaxRetries != 5 || cfg.Retry.BaseDelay.Duration != 250*time.Millisecond {
		t.Errorf("retry = %+v", cfg.Retry)
	}
	if cfg.State.Backend != StateMongo || cfg.Mongo.Database != "tokenfolio" {
		t.Errorf("state = %+v mongo = %+v", cfg.State, cfg.Mongo)
	}
	// Untouched sections keep their defaults.
	if cfg.Redis.Prefix != "tokenfolio:" {
		t.Errorf("redis prefix = %q", cfg.Redis.Prefix)
	}
}

func TestLoadUnknownKeysWarn(t *testing.T) {
	path := writeConfig(t, "[cache]\nbackend = \"memory\"\ncolour = \"blue\"\n")
	_, warnings, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "cache.colour") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing explicit config should fail")
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, _, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Cache.Backend != CacheMemory {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, "[cache]\nttl = \"soon\"\n")
	if _, _, err := Load(path); err == nil {
		t.Error("invalid duration should fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "[cache]\nbackend = \"file\"\n")
	t.Setenv("TOKENFOLIO_CACHE_BACKEND", "none")
	t.Setenv("TOKENFOLIO_CACHE_TTL", "90s")
	t.Setenv("TOKENFOLIO_RETRY_MAX_RETRIES", "1")
	t.Setenv("TOKENFOLIO_REDIS_ADDR", "redis:6380")

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Cache.Backend != CacheNone || cfg.Cache.TTL.Duration != 90*time.Second {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Retry.MaxRetries != 1 || cfg.Redis.Addr != "redis:6380" {
		t.Errorf("retry = %+v redis = %+v", cfg.Retry, cfg.Redis)
	}
}

func TestEnvInvalidNumber(t *testing.T) {
	cfg := Default()
	lookup := func(k string) (string, bool) {
		if k == "TOKENFOLIO_REDIS_DB" {
			return "zero", true
		}
		return "", false
	}
	if err := cfg.applyEnv(lookup); err == nil || !strings.Contains(err.Error(), "TOKENFOLIO_REDIS_DB") {
		t.Errorf("applyEnv() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad cache backend", func(c *Config) { c.Cache.Backend = "disk" }, "cache.backend"},
		{"zero ttl", func(c *Config) { c.Cache.TTL.Duration = 0 }, "cache.ttl"},
		{"too many retries", func(c *Config) { c.Retry.MaxRetries = 50 }, "retry.max_retries"},
		{"negative rpm", func(c *Config) { c.API.RequestsPerMinute = -1 }, "requests_per_minute"},
		{"mongo without uri", func(c *Config) { c.State.Backend = StateMongo }, "mongo.uri"},
		{"bad state backend", func(c *Config) { c.State.Backend = "sqlite" }, "state.backend"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheRedis; c.Redis.Addr = "" }, "redis.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestRetrier(t *testing.T) {
	cfg := Default()
	if r := cfg.Retrier(); r.MaxRetries != 3 || r.BaseDelay != time.Second {
		t.Errorf("Retrier() = %+v", r)
	}
	cfg.Retry.MaxRetries = 0
	if r := cfg.Retrier(); r.MaxRetries != -1 {
		t.Errorf("max_retries = 0 should disable retries, got %d", r.MaxRetries)
	}
}
