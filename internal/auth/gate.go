// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package auth

import (
	"context"
	"time"

	"github.com/samber/oops"
)

// SessionResolver resolves a session handle to its current state.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (SessionState, error)
}

// AdminGrant proves the Gate admitted a caller. Its zero value is not a
// valid grant, and only Gate can mint one.
type AdminGrant struct {
	granted   bool
	expiresAt time.Time
}

// Valid reports whether the grant was issued by a Gate.
func (g AdminGrant) Valid() bool {
	return g.granted
}

// ExpiresAt returns when the underlying session expires.
func (g AdminGrant) ExpiresAt() time.Time {
	return g.expiresAt
}

// Gate admits or rejects callers of privileged operations.
type Gate struct {
	resolver SessionResolver
}

// NewGate creates a Gate over resolver.
func NewGate(resolver SessionResolver) (*Gate, error) {
	if resolver == nil {
		return nil, oops.Errorf("session resolver is required")
	}
	return &Gate{resolver: resolver}, nil
}

// AuthorizeAdmin allows the caller iff token resolves to an admin session.
// It never mutates or refreshes the session.
func (g *Gate) AuthorizeAdmin(ctx context.Context, token string) (AdminGrant, error) {
	state, err := g.resolver.Resolve(ctx, token)
	if err != nil {
		return AdminGrant{}, oops.With("operation", "authorize admin").Wrap(err)
	}
	if !state.IsAdmin {
		return AdminGrant{}, errForbidden()
	}
	return AdminGrant{granted: true, expiresAt: state.ExpiresAt}, nil
}

func errForbidden() error {
	return oops.Code(CodeForbidden).Errorf("administrator session required")
}
