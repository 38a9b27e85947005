// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package observability

import (
	"context"
	"log/slog"
	"time"
)

// DefaultCheckTimeout bounds each dependency probe.
const DefaultCheckTimeout = 2 * time.Second

// ReadinessChecker returns whether the service is ready to accept requests.
type ReadinessChecker func() bool

// Check probes one dependency. A nil error means healthy.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// DependencyChecker returns a ReadinessChecker that is ready only when every
// check passes within timeout. No checks means always ready.
func DependencyChecker(timeout time.Duration, checks ...Check) ReadinessChecker {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		for _, c := range checks {
			if err := c.Probe(ctx); err != nil {
				slog.WarnContext(ctx, "readiness check failed", "dependency", c.Name, "error", err)
				return false
			}
		}
		return true
	}
}
