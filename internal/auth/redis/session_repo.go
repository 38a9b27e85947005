// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

// Package redis implements auth.SessionRepository on Redis. Each session is
// a hash whose key expires at the session's ExpiresAt, so the server never
// has to sweep expired rows.
package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/passgate/passgate/internal/auth"
)

// KeyPrefix namespaces session keys.
const KeyPrefix = "passgate:session:"

const (
	fieldID        = "id"
	fieldIsAdmin   = "is_admin"
	fieldUserAgent = "user_agent"
	fieldIPAddress = "ip_address"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
)

// SessionRepository implements auth.SessionRepository using Redis hashes.
type SessionRepository struct {
	rdb    goredis.Cmdable
	prefix string
}

// NewSessionRepository creates a SessionRepository over rdb.
func NewSessionRepository(rdb goredis.Cmdable) *SessionRepository {
	return &SessionRepository{rdb: rdb, prefix: KeyPrefix}
}

func (r *SessionRepository) key(tokenHash string) string {
	return r.prefix + tokenHash
}

// Create stores session and sets the key to expire at session.ExpiresAt.
// The write and the expiry are applied in one MULTI/EXEC.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	key := r.key(session.TokenHash)
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, encodeSession(session))
		pipe.PExpireAt(ctx, key, session.ExpiresAt)
		return nil
	})
	if err != nil {
		return oops.With("operation", "store session in redis").
			With("session_id", session.ID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session. A missing key is auth.ErrNotFound.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	fields, err := r.rdb.HGetAll(ctx, r.key(tokenHash)).Result()
	if err != nil {
		return nil, oops.With("operation", "load session from redis").Wrap(err)
	}
	if len(fields) == 0 {
		return nil, auth.ErrNotFound
	}
	return decodeSession(tokenHash, fields)
}

// DeleteByTokenHash removes a session.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	n, err := r.rdb.Del(ctx, r.key(tokenHash)).Result()
	if err != nil {
		return oops.With("operation", "delete session from redis").Wrap(err)
	}
	if n == 0 {
		return auth.ErrNotFound
	}
	return nil
}

// DeleteExpired is a no-op: Redis evicts expired keys on its own.
func (r *SessionRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func encodeSession(s *auth.Session) map[string]any {
	return map[string]any{
		fieldID:        s.ID.String(),
		fieldIsAdmin:   strconv.FormatBool(s.IsAdmin),
		fieldUserAgent: s.UserAgent,
		fieldIPAddress: s.IPAddress,
		fieldCreatedAt: s.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodeSession(tokenHash string, fields map[string]string) (*auth.Session, error) {
	id, err := ulid.Parse(fields[fieldID])
	if err != nil {
		return nil, oops.With("operation", "decode session").With("field", fieldID).Wrap(err)
	}
	isAdmin, err := strconv.ParseBool(fields[fieldIsAdmin])
	if err != nil {
		return nil, oops.With("operation", "decode session").With("field", fieldIsAdmin).Wrap(err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return nil, oops.With("operation", "decode session").With("field", fieldCreatedAt).Wrap(err)
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, fields[fieldExpiresAt])
	if err != nil {
		return nil, oops.With("operation", "decode session").With("field", fieldExpiresAt).Wrap(err)
	}
	return &auth.Session{
		ID:        id,
		TokenHash: tokenHash,
		IsAdmin:   isAdmin,
		UserAgent: fields[fieldUserAgent],
		IPAddress: fields[fieldIPAddress],
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
