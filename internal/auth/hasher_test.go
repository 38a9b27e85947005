// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/pkg/errutil"
)

// fastParams keeps argon2id cheap in unit tests.
var fastParams = auth.Params{Time: 1, MemoryKiB: 64, Threads: 1}

func newFastHasher(t *testing.T) *auth.Argon2idHasher {
	t.Helper()
	hasher, err := auth.NewArgon2idHasherWithParams(fastParams)
	require.NoError(t, err)
	return hasher
}

func TestHashPassword(t *testing.T) {
	hasher := newFastHasher(t)

	t.Run("produces self-describing argon2id hash", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=64,t=1,p=1$"))
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
		assert.Len(t, hash2, len(hash1))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeEmptyPassword)
	})

	t.Run("rejects oversized password", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("x", auth.MaxPasswordLength+1))
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodePasswordTooLong)
	})
}

func TestVerifyPassword(t *testing.T) {
	hasher := newFastHasher(t)

	hash, err := hasher.Hash("hunter2")
	require.NoError(t, err)

	t.Run("correct password verifies", func(t *testing.T) {
		assert.True(t, hasher.Verify("hunter2", hash))
	})

	t.Run("single character alterations fail", func(t *testing.T) {
		for _, altered := range []string{"hunter3", "Hunter2", "hunter", "hunter22", "xunter2"} {
			assert.False(t, hasher.Verify(altered, hash), altered)
		}
	})

	t.Run("hash produced with other parameters still verifies", func(t *testing.T) {
		other, err := auth.NewArgon2idHasherWithParams(auth.Params{Time: 2, MemoryKiB: 128, Threads: 2})
		require.NoError(t, err)
		otherHash, err := other.Hash("hunter2")
		require.NoError(t, err)
		assert.True(t, hasher.Verify("hunter2", otherHash))
	})

	malformed := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not a hash", "not-a-valid-hash"},
		{"wrong algorithm", "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"invalid version", "$argon2id$vXX$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"unknown version", "$argon2id$v=16$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"invalid parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid salt base64", "$argon2id$v=19$m=65536,t=1,p=4$!!!invalid!!!$aGFzaA"},
		{"invalid key base64", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!invalid!!!"},
		{"threads overflow", "$argon2id$v=19$m=65536,t=1,p=256$c2FsdA$aGFzaA"},
		{"absurd memory", "$argon2id$v=19$m=4294967295,t=1,p=4$c2FsdA$aGFzaA"},
		{"bad bcrypt", "$2a$10$tooshort"},
	}
	for _, tt := range malformed {
		t.Run("malformed hash is a mismatch: "+tt.name, func(t *testing.T) {
			assert.False(t, hasher.Verify("password", tt.hash))
		})
	}
}

func TestVerifyBcrypt(t *testing.T) {
	hasher := newFastHasher(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, hasher.Verify("hunter2", string(legacy)))
	assert.False(t, hasher.Verify("hunter3", string(legacy)))
}

func TestNeedsUpgrade(t *testing.T) {
	hasher := newFastHasher(t)

	t.Run("bcrypt hash needs upgrade", func(t *testing.T) {
		assert.True(t, hasher.NeedsUpgrade("$2a$10$N9qo8uLOickgx2ZMRZoMyeIvNq.Uf3hE9tQALNP1Qn9sNp5x5x5x5"))
	})

	t.Run("current argon2id hash does not", func(t *testing.T) {
		hash, err := hasher.Hash("password")
		require.NoError(t, err)
		assert.False(t, hasher.NeedsUpgrade(hash))
	})

	t.Run("argon2id hash with stale parameters does", func(t *testing.T) {
		stronger, err := auth.NewArgon2idHasherWithParams(auth.Params{Time: 2, MemoryKiB: 64, Threads: 1})
		require.NoError(t, err)
		hash, err := hasher.Hash("password")
		require.NoError(t, err)
		assert.True(t, stronger.NeedsUpgrade(hash))
	})
}

func TestValidateHash(t *testing.T) {
	hasher := newFastHasher(t)
	hash, err := hasher.Hash("password")
	require.NoError(t, err)
	legacy, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, auth.ValidateHash(hash))
	assert.NoError(t, auth.ValidateHash(string(legacy)))
	assert.Error(t, auth.ValidateHash("plaintext"))
	assert.Error(t, auth.ValidateHash("$2b$99$garbage"))
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  auth.Params
		wantErr bool
	}{
		{"defaults", auth.DefaultParams(), false},
		{"zero time", auth.Params{Time: 0, MemoryKiB: 64, Threads: 1}, true},
		{"zero threads", auth.Params{Time: 1, MemoryKiB: 64, Threads: 0}, true},
		{"memory below thread floor", auth.Params{Time: 1, MemoryKiB: 8, Threads: 4}, true},
		{"time too large", auth.Params{Time: 1000, MemoryKiB: 64, Threads: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, auth.CodeValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}
