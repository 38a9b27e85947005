// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/pkg/errutil"
)

// testAdminHash is an argon2id hash of "s3cret" at minimal cost.
const testAdminHash = "$argon2id$v=19$m=64,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$2ZP0k3pUcb+4xOt2fCdaGXakxH7CslAWL7/JRVNI1EE"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{EnvDatabaseURL, EnvRedisURL, EnvAdminPasswordHash} {
		t.Setenv(env, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "passgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	clearEnv(t)
	cfg, err := Load("", nil)
	require.NoError(t, err)
	cfg.Admin = AdminConfig{Username: "admin", PasswordHash: testAdminHash}
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr)
	assert.Equal(t, "passgate_session", cfg.HTTP.CookieName)
	assert.False(t, cfg.HTTP.CookieSecure)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadHeaderTimeout)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 30*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, auth.DefaultParams(), cfg.Hasher.Params())
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
http:
  addr: 0.0.0.0:9000
  cookie_secure: true
store:
  backend: Postgres
database:
  url: postgres://file@localhost/passgate
session:
  backend: redis
  ttl: 30m
redis:
  addr: localhost:6379
  db: 2
admin:
  username: root
hasher:
  time: 2
  memory_kib: 32768
  threads: 2
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.HTTP.Addr)
	assert.True(t, cfg.HTTP.CookieSecure)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, "postgres://file@localhost/passgate", cfg.Database.URL)
	assert.Equal(t, BackendRedis, cfg.Session.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "root", cfg.Admin.Username)
	assert.Equal(t, auth.Params{Time: 2, MemoryKiB: 32768, Threads: 2}, cfg.Hasher.Params())
	// Untouched keys keep their defaults.
	assert.Equal(t, "passgate_session", cfg.HTTP.CookieName)
	assert.True(t, cfg.UsesPostgres())
	assert.True(t, cfg.UsesRedis())
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://file@localhost/passgate
`)
	t.Setenv(EnvDatabaseURL, "postgres://env@localhost/passgate")
	t.Setenv(EnvRedisURL, "redis://localhost:6380/1")
	t.Setenv(EnvAdminPasswordHash, testAdminHash)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env@localhost/passgate", cfg.Database.URL)
	assert.Equal(t, "redis://localhost:6380/1", cfg.Redis.URL)
	assert.Equal(t, testAdminHash, cfg.Admin.PasswordHash)
}

func TestLoad_Flags(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
http:
  addr: 0.0.0.0:9000
log:
  format: text
`)

	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.String("config", "", "")
	BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--log-level", "debug", "--session-ttl", "15m"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	// Changed flags win.
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	// Unchanged flags never clobber the file.
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTP.Addr)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		key    string
	}{
		{"missing admin username", func(c *Config) { c.Admin.Username = "" }, "admin.username"},
		{"missing admin hash", func(c *Config) { c.Admin.PasswordHash = "" }, "admin.password_hash"},
		{"plaintext admin hash", func(c *Config) { c.Admin.PasswordHash = "adm" }, "admin.password_hash"},
		{"unknown store", func(c *Config) { c.Store.Backend = "sqlite" }, "store.backend"},
		{"redis account store", func(c *Config) { c.Store.Backend = BackendRedis }, "store.backend"},
		{"unknown session store", func(c *Config) { c.Session.Backend = "file" }, "session.backend"},
		{"postgres without url", func(c *Config) { c.Store.Backend = BackendPostgres }, "database.url"},
		{"postgres sessions without url", func(c *Config) { c.Session.Backend = BackendPostgres }, "database.url"},
		{"redis without addr", func(c *Config) { c.Session.Backend = BackendRedis }, "redis.addr"},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, "session.ttl"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad hasher", func(c *Config) { c.Hasher.Threads = 0 }, "hasher"},
		{"empty addr", func(c *Config) { c.HTTP.Addr = "" }, "http.addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
			errutil.AssertErrorContext(t, err, "key", tt.key)
		})
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig(t).Validate())
	})

	t.Run("redis url satisfies redis backend", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Session.Backend = BackendRedis
		cfg.Redis.URL = "redis://localhost:6379/0"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("bcrypt admin hash", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Admin.PasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
		assert.NoError(t, cfg.Validate())
	})
}
