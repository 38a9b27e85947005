// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/internal/auth/memory"
	"github.com/passgate/passgate/internal/auth/postgres"
	authredis "github.com/passgate/passgate/internal/auth/redis"
	"github.com/passgate/passgate/internal/config"
	"github.com/passgate/passgate/internal/observability"
	"github.com/passgate/passgate/internal/store"
)

// Database is the pool surface the postgres repositories and readiness
// probe need. *pgxpool.Pool satisfies it.
type Database interface {
	postgres.Pool
	Ping(ctx context.Context) error
	Close()
}

// RedisClient is the client surface the redis session store and readiness
// probe need. *goredis.Client satisfies it.
type RedisClient interface {
	goredis.Cmdable
	Close() error
}

func connectDatabase(ctx context.Context, url string, timeout time.Duration) (Database, error) {
	pool, err := store.Connect(ctx, url, timeout)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// newRedisClient builds a client from cfg and pings it once.
func newRedisClient(ctx context.Context, cfg config.RedisConfig) (RedisClient, error) {
	var opts *goredis.Options
	if cfg.URL != "" {
		parsed, err := goredis.ParseURL(cfg.URL)
		if err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("key", "redis.url").Wrap(err)
		}
		opts = parsed
	} else {
		opts = &goredis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // ping error takes precedence
		return nil, oops.Code("REDIS_CONNECT_FAILED").With("addr", opts.Addr).Wrap(err)
	}
	slog.InfoContext(ctx, "connected to redis", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}

// backends holds the stores selected by configuration plus the
// connections that must be closed at shutdown.
type backends struct {
	accounts auth.AccountRepository
	sessions auth.SessionRepository
	checks   []observability.Check

	db    Database
	redis RedisClient
}

// openBackends connects whatever cfg selects. On error nothing is left open.
func openBackends(ctx context.Context, cfg *config.Config, deps *ServeDeps) (*backends, error) {
	b := &backends{}

	if cfg.UsesPostgres() {
		db, err := deps.DatabaseConnector(ctx, cfg.Database.URL, cfg.Database.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		b.db = db
		b.checks = append(b.checks, observability.Check{Name: "postgres", Probe: db.Ping})
	}

	if cfg.UsesRedis() {
		rdb, err := deps.RedisConnector(ctx, cfg.Redis)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.redis = rdb
		b.checks = append(b.checks, observability.Check{
			Name:  "redis",
			Probe: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		b.accounts = postgres.NewAccountRepository(b.db)
	default:
		b.accounts = memory.NewAccountRepository()
	}

	switch cfg.Session.Backend {
	case config.BackendPostgres:
		b.sessions = postgres.NewSessionRepository(b.db)
	case config.BackendRedis:
		b.sessions = authredis.NewSessionRepository(b.redis)
	default:
		b.sessions = memory.NewSessionRepository()
	}

	return b, nil
}

// Close releases any open connections.
func (b *backends) Close() {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			slog.Debug("error closing redis client", "error", err)
		}
	}
	if b.db != nil {
		b.db.Close()
	}
}
