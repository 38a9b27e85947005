// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/internal/config"
	"github.com/passgate/passgate/internal/httpapi"
	"github.com/passgate/passgate/internal/logging"
	"github.com/passgate/passgate/internal/observability"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the public registration/login API and the administrator
endpoints. Settings come from --config, environment variables and flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	config.BindFlags(cmd.Flags())

	return cmd
}

// runServeWithDeps starts the API with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()

	if err := cfg.Validate(); err != nil {
		return oops.Wrapf(err, "invalid configuration")
	}

	logger, err := logging.SetDefault(logging.Options{
		Service: "passgate",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
		Writer:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return oops.Wrapf(err, "set up logging")
	}

	logger.Info("starting passgate",
		"http_addr", cfg.HTTP.Addr,
		"store_backend", cfg.Store.Backend,
		"session_backend", cfg.Session.Backend,
	)

	hasher, err := auth.NewArgon2idHasherWithParams(cfg.Hasher.Params())
	if err != nil {
		return oops.Wrapf(err, "create password hasher")
	}

	if cfg.UsesPostgres() && cfg.Database.AutoMigrate {
		if err := autoMigrate(cfg.Database.URL, deps.MigratorFactory); err != nil {
			return err
		}
	}

	stores, err := openBackends(ctx, cfg, deps)
	if err != nil {
		return oops.Wrapf(err, "open stores")
	}
	defer stores.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var metrics *observability.Metrics
	var obsServer ObservabilityServer
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr,
			observability.DependencyChecker(observability.DefaultCheckTimeout, stores.checks...))
		obsErrChan, startErr := obsServer.Start()
		if startErr != nil {
			return oops.Wrapf(startErr, "start observability server")
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		metrics = obsServer.Metrics()
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	api, err := buildAPI(cfg, hasher, stores, metrics, logger)
	if err != nil {
		stopObservability(obsServer)
		return err
	}

	listener, err := deps.ListenerFactory("tcp", cfg.HTTP.Addr)
	if err != nil {
		stopObservability(obsServer)
		return oops.Code("LISTEN_FAILED").With("addr", cfg.HTTP.Addr).Wrap(err)
	}

	httpServer := &http.Server{
		Handler:           api.Router(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
		close(errChan)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Passgate listening on " + listener.Addr().String())
	logger.Info("passgate ready", "http_addr", listener.Addr().String())

	var serveErr error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err, ok := <-errChan:
		if ok {
			serveErr = oops.Code("SERVE_FAILED").Wrap(err)
		}
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return serveErr
}

// buildAPI wires the services over the selected stores.
func buildAPI(cfg *config.Config, hasher *auth.Argon2idHasher, stores *backends, metrics *observability.Metrics, logger *slog.Logger) (*httpapi.API, error) {
	accounts, err := auth.NewAccountService(stores.accounts, hasher, auth.WithAccountLogger(logger))
	if err != nil {
		return nil, oops.Wrapf(err, "create account service")
	}

	sessions, err := auth.NewSessionManager(stores.sessions,
		auth.WithSessionTTL(cfg.Session.TTL),
		auth.WithSessionLogger(logger),
	)
	if err != nil {
		return nil, oops.Wrapf(err, "create session manager")
	}

	gate, err := auth.NewGate(sessions)
	if err != nil {
		return nil, oops.Wrapf(err, "create access gate")
	}

	authn, err := auth.NewAdminAuthenticator(auth.AdminCredential{
		Username:     cfg.Admin.Username,
		PasswordHash: cfg.Admin.PasswordHash,
	}, hasher)
	if err != nil {
		return nil, oops.Wrapf(err, "load admin credential")
	}

	admin, err := auth.NewAdminService(authn, sessions, stores.accounts, hasher, logger)
	if err != nil {
		return nil, oops.Wrapf(err, "create admin service")
	}

	return httpapi.New(accounts, admin, gate,
		httpapi.WithLogger(logger),
		httpapi.WithMetrics(metrics),
		httpapi.WithCookie(httpapi.CookieConfig{
			Name:   cfg.HTTP.CookieName,
			Secure: cfg.HTTP.CookieSecure,
			TTL:    cfg.Session.TTL,
		}),
	)
}

// autoMigrate applies pending migrations before any repository touches the
// schema.
func autoMigrate(databaseURL string, factory func(string) (Migrator, error)) error {
	m, err := factory(databaseURL)
	if err != nil {
		return oops.Code("AUTO_MIGRATE_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			slog.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	if err := m.Up(); err != nil {
		return oops.Code("AUTO_MIGRATE_FAILED").With("operation", "apply migrations").Wrap(err)
	}
	slog.Info("database migrations applied")
	return nil
}

func stopObservability(srv ObservabilityServer) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		slog.Warn("failed to stop observability server during cleanup", "error", err)
	}
}

// monitorServerErrors cancels ctx when the server reports an error.
// It returns when the channel closes or ctx is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
