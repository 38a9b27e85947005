// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// AccountService registers accounts and checks user credentials.
// Login is stateless: ordinary users never receive a session.
type AccountService struct {
	accounts  AccountRepository
	hasher    PasswordHasher
	dummyHash string
	logger    *slog.Logger
	now       func() time.Time
}

// AccountServiceOption configures an AccountService.
type AccountServiceOption func(*AccountService)

// WithAccountLogger sets the logger used by the service.
func WithAccountLogger(logger *slog.Logger) AccountServiceOption {
	return func(s *AccountService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAccountClock overrides the clock used to stamp new accounts.
func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *AccountService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts AccountRepository, hasher PasswordHasher, opts ...AccountServiceOption) (*AccountService, error) {
	if accounts == nil {
		return nil, oops.Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}

	// The dummy hash is produced by the live hasher so verifying against it
	// costs the same as verifying a real account.
	seed := make([]byte, 16)
	if _, err := rand.Read(seed); err != nil {
		return nil, oops.With("operation", "seed dummy hash").Wrap(err)
	}
	dummy, err := hasher.Hash(hex.EncodeToString(seed))
	if err != nil {
		return nil, oops.With("operation", "compute dummy hash").Wrap(err)
	}

	s := &AccountService{
		accounts:  accounts,
		hasher:    hasher,
		dummyHash: dummy,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates an account for username.
func (s *AccountService) Register(ctx context.Context, username, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	_, err := s.accounts.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return oops.Code(CodeDuplicateAccount).
			With("username", username).
			Errorf("username already exists")
	case !errors.Is(err, ErrNotFound):
		return oops.Code(CodeStoreUnavailable).
			With("operation", "find account by username").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return oops.Code(CodeStoreUnavailable).
			With("operation", "hash password").
			Wrap(err)
	}

	account, err := NewAccount(username, hash, s.now())
	if err != nil {
		return err
	}

	if err := s.accounts.Insert(ctx, account); err != nil {
		// A concurrent registration won the race for this username.
		if errors.Is(err, ErrDuplicateAccount) {
			return oops.Code(CodeDuplicateAccount).
				With("username", username).
				Wrap(err)
		}
		return oops.Code(CodeStoreUnavailable).
			With("operation", "insert account").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "account registered", "username", username, "account_id", account.ID.String())
	return nil
}

// Login verifies username and password. Unknown users and wrong passwords
// produce the same error, and both paths run one hash verification.
func (s *AccountService) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return oops.Code(CodeValidation).Errorf("username and password are required")
	}

	account, lookupErr := s.accounts.FindByUsername(ctx, username)
	if lookupErr != nil && !errors.Is(lookupErr, ErrNotFound) {
		return oops.Code(CodeStoreUnavailable).
			With("operation", "find account by username").
			Wrap(lookupErr)
	}

	targetHash := s.dummyHash
	if account != nil && lookupErr == nil {
		targetHash = account.CredentialHash
	}

	valid := s.hasher.Verify(password, targetHash)
	if lookupErr != nil || account == nil || !valid {
		return oops.Code(CodeInvalidCredentials).Errorf("invalid username or password")
	}

	if s.hasher.NeedsUpgrade(account.CredentialHash) {
		s.logger.WarnContext(ctx, "account credential uses outdated hash parameters; reset the password to rehash",
			"username", username)
	}
	return nil
}
