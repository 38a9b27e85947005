// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package main

import (
	"context"
	"net"
	"time"

	"github.com/passgate/passgate/internal/config"
	"github.com/passgate/passgate/internal/observability"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// DatabaseConnector opens the PostgreSQL pool.
	// Default: store.Connect
	DatabaseConnector func(ctx context.Context, url string, timeout time.Duration) (Database, error)

	// RedisConnector opens the Redis client for the redis session backend.
	// Default: newRedisClient
	RedisConnector func(ctx context.Context, cfg config.RedisConfig) (RedisClient, error)

	// MigratorFactory opens the schema migrator used when
	// database.auto_migrate is set.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// ListenerFactory creates the public API listener.
	// Default: net.Listen
	ListenerFactory func(network, address string) (net.Listener, error)
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.DatabaseConnector == nil {
		out.DatabaseConnector = connectDatabase
	}
	if out.RedisConnector == nil {
		out.RedisConnector = newRedisClient
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = migratorFactory
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if out.ListenerFactory == nil {
		out.ListenerFactory = net.Listen
	}
	return &out
}
