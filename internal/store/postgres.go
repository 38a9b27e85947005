// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

// Package store owns the PostgreSQL connection and schema migrations.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// DefaultConnectTimeout bounds how long Connect keeps retrying.
const DefaultConnectTimeout = 30 * time.Second

// pinger is the part of a pool Connect needs to verify liveness.
type pinger interface {
	Ping(ctx context.Context) error
	Close()
}

// poolFactory builds a pool from a DSN. Swapped in tests.
type poolFactory func(ctx context.Context, dsn string) (pinger, error)

func newPgxPool(ctx context.Context, dsn string) (pinger, error) {
	return pgxpool.New(ctx, dsn)
}

// Connect opens a pgx pool for dsn and pings it, retrying with exponential
// backoff until timeout elapses. Malformed DSNs fail immediately.
func Connect(ctx context.Context, dsn string, timeout time.Duration) (*pgxpool.Pool, error) {
	p, err := connectWith(ctx, dsn, timeout, newPgxPool)
	if err != nil {
		return nil, err
	}
	pool, _ := p.(*pgxpool.Pool)
	return pool, nil
}

func connectWith(ctx context.Context, dsn string, timeout time.Duration, factory poolFactory) (pinger, error) {
	if dsn == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("database URL is required")
	}
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	pool, err := factory(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "parse database URL").Wrap(err)
	}

	backoff := retry.NewExponential(100 * time.Millisecond)
	backoff = retry.WithCappedDuration(2*time.Second, backoff)
	backoff = retry.WithMaxDuration(timeout, backoff)

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if pingErr := pool.Ping(ctx); pingErr != nil {
			slog.WarnContext(ctx, "database not ready, retrying", "attempt", attempt, "error", pingErr)
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping database").
			With("attempts", attempt).
			Wrap(err)
	}

	slog.InfoContext(ctx, "connected to database", "attempts", attempt)
	return pool, nil
}
