// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDependencyChecker(t *testing.T) {
	healthy := Check{Name: "postgres", Probe: func(context.Context) error { return nil }}
	down := Check{Name: "redis", Probe: func(context.Context) error { return errors.New("connection refused") }}
	slow := Check{Name: "slow", Probe: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	tests := []struct {
		name   string
		checks []Check
		want   bool
	}{
		{"no checks", nil, true},
		{"all healthy", []Check{healthy, healthy}, true},
		{"one down", []Check{healthy, down}, false},
		{"timeout", []Check{slow}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ready := DependencyChecker(50*time.Millisecond, tt.checks...)
			assert.Equal(t, tt.want, ready())
		})
	}
}

func TestDependencyChecker_StopsAtFirstFailure(t *testing.T) {
	calls := 0
	counting := Check{Name: "after", Probe: func(context.Context) error {
		calls++
		return nil
	}}
	down := Check{Name: "first", Probe: func(context.Context) error { return errors.New("down") }}

	assert.False(t, DependencyChecker(0, down, counting)())
	assert.Zero(t, calls)
}
