// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/pkg/errutil"
)

func TestSessionCodec(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	session, err := auth.NewAdminSession(auth.HashSessionToken("tok"),
		auth.SessionMetadata{UserAgent: "curl/8", IPAddress: "10.0.0.1"}, created, created.Add(time.Hour))
	require.NoError(t, err)

	encoded := encodeSession(session)
	fields := make(map[string]string, len(encoded))
	for k, v := range encoded {
		s, ok := v.(string)
		require.True(t, ok, "field %s is not a string", k)
		fields[k] = s
	}

	got, err := decodeSession(session.TokenHash, fields)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestDecodeSession_Corrupt(t *testing.T) {
	valid := map[string]string{
		fieldID:        "01HZY7Q3W5X8N2V4K6M9P1R3T5",
		fieldIsAdmin:   "true",
		fieldCreatedAt: "2026-03-01T12:00:00Z",
		fieldExpiresAt: "2026-03-01T13:00:00Z",
	}

	tests := []struct {
		name  string
		field string
		value string
	}{
		{"bad id", fieldID, "nope"},
		{"bad flag", fieldIsAdmin, "maybe"},
		{"bad created", fieldCreatedAt, "yesterday"},
		{"bad expiry", fieldExpiresAt, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := make(map[string]string, len(valid))
			for k, v := range valid {
				fields[k] = v
			}
			fields[tt.field] = tt.value

			_, err := decodeSession("hash", fields)
			require.Error(t, err)
			errutil.AssertErrorContext(t, err, "field", tt.field)
		})
	}
}

func TestSessionRepository_Key(t *testing.T) {
	repo := NewSessionRepository(nil)
	assert.Equal(t, "passgate:session:abc", repo.key("abc"))
}

func TestSessionRepository_DeleteExpiredIsNoop(t *testing.T) {
	repo := NewSessionRepository(nil)
	n, err := repo.DeleteExpired(t.Context(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}
