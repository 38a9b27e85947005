// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package auth

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 1
	MaxUsernameLength = 64
)

// Account is a registered user. Usernames are case-sensitive and never change
// after creation.
type Account struct {
	ID             ulid.ULID
	Username       string
	CredentialHash string
	CreatedAt      time.Time
}

// NewAccount creates a validated Account stamped with createdAt.
func NewAccount(username, credentialHash string, createdAt time.Time) (*Account, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if credentialHash == "" {
		return nil, oops.Code(CodeValidation).Errorf("credential hash cannot be empty")
	}
	if createdAt.IsZero() {
		return nil, oops.Code(CodeValidation).Errorf("creation time cannot be zero")
	}
	return &Account{
		ID:             ulid.Make(),
		Username:       username,
		CredentialHash: credentialHash,
		CreatedAt:      createdAt.UTC(),
	}, nil
}

// ValidateUsername validates a username against rules.
// Username requirements:
//   - Length: MinUsernameLength to MaxUsernameLength characters
//   - No leading or trailing whitespace
//   - No control characters and no '/' (usernames appear in URL paths)
//   - Not "." or "..", which router path cleaning would rewrite
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code(CodeValidation).Errorf("username cannot be empty")
	}
	if !utf8.ValidString(username) {
		return oops.Code(CodeValidation).Errorf("username must be valid UTF-8")
	}
	if n := utf8.RuneCountInString(username); n < MinUsernameLength || n > MaxUsernameLength {
		return oops.Code(CodeValidation).
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if strings.TrimSpace(username) != username {
		return oops.Code(CodeValidation).Errorf("username cannot start or end with whitespace")
	}
	if username == "." || username == ".." {
		return oops.Code(CodeValidation).Errorf("username cannot be a dot path segment")
	}
	for _, r := range username {
		if unicode.IsControl(r) || r == '/' {
			return oops.Code(CodeValidation).Errorf("username contains a forbidden character")
		}
	}
	return nil
}

// ValidatePassword checks a plaintext password before it reaches the hasher.
func ValidatePassword(password string) error {
	if password == "" {
		return oops.Code(CodeValidation).Errorf("password cannot be empty")
	}
	if len(password) > MaxPasswordLength {
		return oops.Code(CodeValidation).
			With("max", MaxPasswordLength).
			Errorf("password must be at most %d bytes", MaxPasswordLength)
	}
	return nil
}

// AccountRepository is the durable account store.
//
// Implementations must enforce username uniqueness themselves: two concurrent
// Insert calls for one username must leave exactly one record.
type AccountRepository interface {
	// FindByUsername retrieves an account by exact username.
	// Returns ErrNotFound if absent.
	FindByUsername(ctx context.Context, username string) (*Account, error)

	// Insert stores a new account.
	// Returns ErrDuplicateAccount if the username is taken.
	Insert(ctx context.Context, account *Account) error

	// UpdateCredential replaces the credential hash of an account.
	// Returns ErrNotFound if absent.
	UpdateCredential(ctx context.Context, username, credentialHash string) error

	// Delete permanently removes an account.
	// Returns ErrNotFound if absent.
	Delete(ctx context.Context, username string) error

	// ListAll returns every account ordered by CreatedAt ascending.
	ListAll(ctx context.Context) ([]*Account, error)
}
