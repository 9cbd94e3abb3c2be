// Package config loads funccache settings from a file and the environment.
//
// Settings are read with viper from funccache.{yaml,toml,json} (or an
// explicit path) and overridden by FUNCCACHE_* environment variables,
// where nested keys use underscores: FUNCCACHE_CACHE_POLICY=lfu,
// FUNCCACHE_REDIS_URL=redis://host:6379/0.
//
// Redis credentials and the serve API keys may be secret references
// resolved by package secret, e.g. password: secretref:file:/run/secrets/redis.
package config
