// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/internal/config"
)

// NewSessionsCmd creates the sessions subcommand.
func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Maintain administrator sessions",
	}

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		Long: `Delete expired administrator sessions from the configured session
store. Redis expires keys itself, so pruning it is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runPruneWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}
	prune.Flags().String("session-backend", config.BackendMemory, "session store (memory, postgres or redis)")
	cmd.AddCommand(prune)

	return cmd
}

// runPruneWithDeps prunes expired sessions with injectable dependencies.
// If deps is nil, default implementations are used.
func runPruneWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()

	if err := cfg.ValidateStores(); err != nil {
		return err
	}
	if cfg.Session.Backend == config.BackendMemory {
		cmd.Println("Memory session store has nothing to prune")
		return nil
	}

	stores, err := openBackends(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer stores.Close()

	mgr, err := auth.NewSessionManager(stores.sessions, auth.WithSessionTTL(cfg.Session.TTL))
	if err != nil {
		return err
	}

	removed, err := mgr.PruneExpired(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Pruned %d expired session(s)\n", removed)
	return nil
}
