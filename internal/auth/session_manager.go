// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// SessionState is the resolved view of a session handle.
type SessionState struct {
	IsAdmin   bool
	ExpiresAt time.Time
}

// SessionManager issues, resolves and destroys administrator sessions.
// It is the only writer of session state. Expiry is checked when a token is
// resolved; nothing sweeps in the background.
type SessionManager struct {
	sessions SessionRepository
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// SessionManagerOption configures a SessionManager.
type SessionManagerOption func(*SessionManager)

// WithSessionTTL sets the lifetime of new sessions.
func WithSessionTTL(ttl time.Duration) SessionManagerOption {
	return func(m *SessionManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithSessionClock overrides the clock used for issuance and expiry.
func WithSessionClock(now func() time.Time) SessionManagerOption {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSessionLogger sets the logger used by the manager.
func WithSessionLogger(logger *slog.Logger) SessionManagerOption {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewSessionManager creates a SessionManager backed by sessions.
func NewSessionManager(sessions SessionRepository, opts ...SessionManagerOption) (*SessionManager, error) {
	if sessions == nil {
		return nil, oops.Errorf("session repository is required")
	}
	m := &SessionManager{
		sessions: sessions,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL returns the lifetime of new sessions.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// CreateAdminSession allocates a new administrator session and returns the
// plaintext token to hand to the client.
func (m *SessionManager) CreateAdminSession(ctx context.Context, meta SessionMetadata) (string, *Session, error) {
	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return "", nil, oops.Code(CodeStoreUnavailable).
			With("operation", "generate session token").
			Wrap(err)
	}

	now := m.now()
	session, err := NewAdminSession(tokenHash, meta, now, now.Add(m.ttl))
	if err != nil {
		return "", nil, oops.Code(CodeStoreUnavailable).
			With("operation", "build session").
			Wrap(err)
	}

	if err := m.sessions.Create(ctx, session); err != nil {
		return "", nil, oops.Code(CodeStoreUnavailable).
			With("operation", "persist session").
			Wrap(err)
	}

	m.logger.InfoContext(ctx, "admin session created",
		"session_id", session.ID.String(),
		"ip_address", meta.IPAddress,
		"expires_at", session.ExpiresAt)
	return token, session, nil
}

// Destroy invalidates the session for token. Unknown, empty and
// already-destroyed tokens are not errors.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if !wellFormedToken(token) {
		return nil
	}
	err := m.sessions.DeleteByTokenHash(ctx, HashSessionToken(token))
	if err == nil {
		m.logger.InfoContext(ctx, "admin session destroyed")
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return oops.Code(CodeStoreUnavailable).
		With("operation", "delete session").
		Wrap(err)
}

// Resolve looks up the current state of token. Unknown, empty and expired
// tokens resolve to a non-admin state without error; only store failures
// are returned.
func (m *SessionManager) Resolve(ctx context.Context, token string) (SessionState, error) {
	if !wellFormedToken(token) {
		return SessionState{}, nil
	}

	session, err := m.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SessionState{}, nil
		}
		return SessionState{}, oops.Code(CodeStoreUnavailable).
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if session.IsExpiredAt(m.now()) {
		return SessionState{}, nil
	}
	return SessionState{IsAdmin: session.IsAdmin, ExpiresAt: session.ExpiresAt}, nil
}

// PruneExpired deletes expired sessions from the backing store. It is an
// operator tool; resolution never depends on it.
func (m *SessionManager) PruneExpired(ctx context.Context) (int64, error) {
	n, err := m.sessions.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, oops.Code(CodeStoreUnavailable).
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return n, nil
}

// wellFormedToken rejects anything that GenerateSessionToken could not have
// produced, so garbage cookies never reach the store.
func wellFormedToken(token string) bool {
	if len(token) != 2*SessionTokenBytes {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}
