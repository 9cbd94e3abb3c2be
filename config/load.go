package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FUNCCACHE"

// Load reads the configuration. If path is empty, funccache.* is searched
// for in the working directory and the user config directory; a missing
// file is not an error. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("funccache")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "funccache"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", describe(v, path), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", describe(v, path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func describe(v *viper.Viper, path string) string {
	if used := v.ConfigFileUsed(); used != "" {
		return used
	}
	if path != "" {
		return path
	}
	return "configuration"
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("cache.name", d.Cache.Name)
	v.SetDefault("cache.policy", d.Cache.Policy)
	v.SetDefault("cache.variant", d.Cache.Variant)
	v.SetDefault("cache.prefix", d.Cache.Prefix)
	v.SetDefault("cache.max_size", d.Cache.MaxSize)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.ttl_mode", d.Cache.TTLMode)
	v.SetDefault("cache.max_field_ttl", d.Cache.MaxFieldTTL)
	v.SetDefault("cache.codec", d.Cache.Codec)
	v.SetDefault("cache.digest", d.Cache.Digest)
	v.SetDefault("cache.singleflight", d.Cache.Singleflight)

	v.SetDefault("redis.url", d.Redis.URL)
	v.SetDefault("redis.addrs", d.Redis.Addrs)
	v.SetDefault("redis.cluster", d.Redis.Cluster)
	v.SetDefault("redis.username", d.Redis.Username)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.dial_timeout", d.Redis.DialTimeout)
	v.SetDefault("redis.read_timeout", d.Redis.ReadTimeout)
	v.SetDefault("redis.write_timeout", d.Redis.WriteTimeout)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)

	v.SetDefault("resilience.retry_attempts", d.Resilience.RetryAttempts)
	v.SetDefault("resilience.retry_initial_delay", d.Resilience.RetryInitialDelay)
	v.SetDefault("resilience.breaker_max_failures", d.Resilience.BreakerMaxFailures)
	v.SetDefault("resilience.breaker_reset_timeout", d.Resilience.BreakerResetTimeout)
	v.SetDefault("resilience.store_timeout", d.Resilience.StoreTimeout)
	v.SetDefault("resilience.max_recompute", d.Resilience.MaxRecompute)
	v.SetDefault("resilience.recompute_wait", d.Resilience.RecomputeWait)

	v.SetDefault("observe.service_name", d.Observe.ServiceName)
	v.SetDefault("observe.version", d.Observe.Version)
	v.SetDefault("observe.tracing.enabled", d.Observe.Tracing.Enabled)
	v.SetDefault("observe.tracing.exporter", d.Observe.Tracing.Exporter)
	v.SetDefault("observe.tracing.sample_pct", d.Observe.Tracing.SamplePct)
	v.SetDefault("observe.metrics.enabled", d.Observe.Metrics.Enabled)
	v.SetDefault("observe.metrics.exporter", d.Observe.Metrics.Exporter)
	v.SetDefault("observe.logging.enabled", d.Observe.Logging.Enabled)
	v.SetDefault("observe.logging.level", d.Observe.Logging.Level)

	v.SetDefault("serve.addr", d.Serve.Addr)
	v.SetDefault("serve.api_keys", d.Serve.APIKeys)
	v.SetDefault("serve.api_key_header", d.Serve.APIKeyHeader)
}
