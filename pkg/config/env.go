package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOKENFOLIO_"

type lookupFunc func(string) (string, bool)

// applyEnv overrides fields from TOKENFOLIO_<SECTION>_<KEY> variables.
func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		"API_BASE_URL":     &c.API.BaseURL,
		"API_USER_AGENT":   &c.API.UserAgent,
		"CACHE_BACKEND":    &c.Cache.Backend,
		"CACHE_DIR":        &c.Cache.Dir,
		"REDIS_ADDR":       &c.Redis.Addr,
		"REDIS_PASSWORD":   &c.Redis.Password,
		"REDIS_PREFIX":     &c.Redis.Prefix,
		"STATE_BACKEND":    &c.State.Backend,
		"STATE_PATH":       &c.State.Path,
		"STATE_PROFILE":    &c.State.Profile,
		"MONGO_URI":        &c.Mongo.URI,
		"MONGO_DATABASE":   &c.Mongo.Database,
		"MONGO_COLLECTION": &c.Mongo.Collection,
		"METRICS_FILE":     &c.Metrics.File,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"API_REQUESTS_PER_MINUTE": &c.API.RequestsPerMinute,
		"RETRY_MAX_RETRIES":       &c.Retry.MaxRetries,
		"REDIS_DB":                &c.Redis.DB,
	}
	for key, dst := range ints {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	durs := map[string]*time.Duration{
		"API_TIMEOUT":      &c.API.Timeout.Duration,
		"CACHE_TTL":        &c.Cache.TTL.Duration,
		"RETRY_BASE_DELAY": &c.Retry.BaseDelay.Duration,
	}
	for key, dst := range durs {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}
	return nil
}
