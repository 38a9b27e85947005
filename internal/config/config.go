// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

// Package config loads passgate's settings. Values are layered in order:
// built-in defaults, an optional YAML file, environment overrides, then
// command-line flags that were explicitly set.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/internal/logging"
)

// Backend names.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Environment variables that override file values.
const (
	EnvDatabaseURL       = "DATABASE_URL"
	EnvRedisURL          = "REDIS_URL"
	EnvAdminPasswordHash = "PASSGATE_ADMIN_PASSWORD_HASH"
)

// Config is the full service configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Store    StoreConfig    `koanf:"store"`
	Database DatabaseConfig `koanf:"database"`
	Session  SessionConfig  `koanf:"session"`
	Redis    RedisConfig    `koanf:"redis"`
	Admin    AdminConfig    `koanf:"admin"`
	Hasher   HasherConfig   `koanf:"hasher"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// HTTPConfig configures the public API listener and session cookie.
type HTTPConfig struct {
	Addr              string        `koanf:"addr"`
	CookieName        string        `koanf:"cookie_name"`
	CookieSecure      bool          `koanf:"cookie_secure"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
}

// StoreConfig selects the account store.
type StoreConfig struct {
	Backend string `koanf:"backend"`
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	URL            string        `koanf:"url"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	// AutoMigrate applies pending schema migrations when serve starts.
	AutoMigrate bool `koanf:"auto_migrate"`
}

// SessionConfig selects the session store and lifetime.
type SessionConfig struct {
	Backend string        `koanf:"backend"`
	TTL     time.Duration `koanf:"ttl"`
}

// RedisConfig configures the Redis client. URL, when set, takes precedence
// over the individual fields.
type RedisConfig struct {
	URL      string `koanf:"url"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// AdminConfig is the administrator credential pair.
type AdminConfig struct {
	Username     string `koanf:"username"`
	PasswordHash string `koanf:"password_hash"`
}

// HasherConfig holds the argon2id work factor for new hashes.
type HasherConfig struct {
	Time      uint32 `koanf:"time"`
	MemoryKiB uint32 `koanf:"memory_kib"`
	Threads   uint8  `koanf:"threads"`
}

// Params converts the config to hasher parameters.
func (h HasherConfig) Params() auth.Params {
	return auth.Params{Time: h.Time, MemoryKiB: h.MemoryKiB, Threads: h.Threads}
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// MetricsConfig configures the observability listener. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

func defaults() map[string]any {
	p := auth.DefaultParams()
	return map[string]any{
		"http.addr":                "127.0.0.1:8080",
		"http.cookie_name":         "passgate_session",
		"http.cookie_secure":       false,
		"http.read_header_timeout": 10 * time.Second,
		"store.backend":            BackendMemory,
		"database.url":             "",
		"database.connect_timeout": 30 * time.Second,
		"database.auto_migrate":    true,
		"session.backend":          BackendMemory,
		"session.ttl":              auth.DefaultSessionTTL,
		"redis.url":                "",
		"redis.addr":               "",
		"redis.password":           "",
		"redis.db":                 0,
		"admin.username":           "",
		"admin.password_hash":      "",
		"hasher.time":              p.Time,
		"hasher.memory_kib":        p.MemoryKiB,
		"hasher.threads":           p.Threads,
		"log.format":               "json",
		"log.level":                "info",
		"metrics.addr":             "127.0.0.1:9100",
	}
}

// Load builds a Config. path may be empty. flags may be nil; otherwise only
// flags registered by BindFlags and explicitly changed take effect.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	for key, val := range defaults() {
		if err := k.Set(key, val); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("key", key).Wrap(err)
		}
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
		if err := ValidateFile(raw); err != nil {
			return nil, oops.With("path", path).Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	for env, key := range map[string]string{
		EnvDatabaseURL:       "database.url",
		EnvRedisURL:          "redis.url",
		EnvAdminPasswordHash: "admin.password_hash",
	} {
		if val, ok := os.LookupEnv(env); ok && val != "" {
			if err := k.Set(key, val); err != nil {
				return nil, oops.Code("CONFIG_INVALID").With("env", env).Wrap(err)
			}
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "unmarshal config").Wrap(err)
	}
	cfg.Store.Backend = strings.ToLower(cfg.Store.Backend)
	cfg.Session.Backend = strings.ToLower(cfg.Session.Backend)
	return &cfg, nil
}

// UsesPostgres reports whether any store needs the database pool.
func (c *Config) UsesPostgres() bool {
	return c.Store.Backend == BackendPostgres || c.Session.Backend == BackendPostgres
}

// UsesRedis reports whether sessions live in Redis.
func (c *Config) UsesRedis() bool {
	return c.Session.Backend == BackendRedis
}

// Validate checks everything `serve` needs.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return invalid("http.addr", "http.addr is required")
	}
	if c.HTTP.CookieName == "" {
		return invalid("http.cookie_name", "http.cookie_name is required")
	}
	if err := c.ValidateStores(); err != nil {
		return err
	}
	if c.Session.TTL <= 0 {
		return invalid("session.ttl", "session.ttl must be positive, got %s", c.Session.TTL)
	}
	if c.Admin.Username == "" {
		return invalid("admin.username", "admin.username is required")
	}
	if c.Admin.PasswordHash == "" {
		return invalid("admin.password_hash", "admin.password_hash is required (see `passgate hash-password`)")
	}
	// The cause is flattened so CONFIG_INVALID stays the outermost and only code.
	if err := auth.ValidateHash(c.Admin.PasswordHash); err != nil {
		return invalid("admin.password_hash", "admin.password_hash is not a valid hash: %v", err)
	}
	if err := c.Hasher.Params().Validate(); err != nil {
		return invalid("hasher", "hasher parameters: %v", err)
	}
	if !logging.ValidFormat(c.Log.Format) {
		return invalid("log.format", "log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ValidateStores checks the backend selection and the connection settings
// it requires. Commands that only touch storage call it instead of Validate.
func (c *Config) ValidateStores() error {
	switch c.Store.Backend {
	case BackendMemory, BackendPostgres:
	default:
		return invalid("store.backend", "store.backend must be memory or postgres, got %q", c.Store.Backend)
	}
	switch c.Session.Backend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return invalid("session.backend", "session.backend must be memory, postgres or redis, got %q", c.Session.Backend)
	}
	if c.UsesPostgres() && c.Database.URL == "" {
		return invalid("database.url", "database.url (or %s) is required for the postgres backend", EnvDatabaseURL)
	}
	if c.UsesRedis() && c.Redis.URL == "" && c.Redis.Addr == "" {
		return invalid("redis.addr", "redis.addr (or %s) is required for the redis backend", EnvRedisURL)
	}
	return nil
}

func invalid(key, format string, args ...any) error {
	return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
}
