// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// AdminCredential is the administrator identity provisioned by deployment
// configuration. It is never stored in the account table.
type AdminCredential struct {
	Username     string
	PasswordHash string
}

// AdminAuthenticator checks the configured administrator credential.
type AdminAuthenticator struct {
	username [sha256.Size]byte
	hash     string
	hasher   PasswordHasher
}

// NewAdminAuthenticator validates cred and returns an authenticator for it.
func NewAdminAuthenticator(cred AdminCredential, hasher PasswordHasher) (*AdminAuthenticator, error) {
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if cred.Username == "" {
		return nil, oops.Code(CodeValidation).Errorf("admin username is required")
	}
	if err := ValidateHash(cred.PasswordHash); err != nil {
		return nil, oops.Code(CodeValidation).
			With("field", "admin password hash").
			Wrap(err)
	}
	return &AdminAuthenticator{
		username: sha256.Sum256([]byte(cred.Username)),
		hash:     cred.PasswordHash,
		hasher:   hasher,
	}, nil
}

// Authenticate reports whether username and password match the configured
// credential. Usernames are compared as fixed-size digests and the password
// is always verified, so a wrong username costs the same as a wrong password.
func (a *AdminAuthenticator) Authenticate(username, password string) bool {
	got := sha256.Sum256([]byte(username))
	userOK := subtle.ConstantTimeCompare(got[:], a.username[:]) == 1
	passOK := a.hasher.Verify(password, a.hash)
	return userOK && passOK
}

// AdminService exposes administrator login and the privileged account
// operations. Every account operation requires a grant from Gate.
type AdminService struct {
	authn    *AdminAuthenticator
	sessions *SessionManager
	accounts AccountRepository
	hasher   PasswordHasher
	logger   *slog.Logger
}

// NewAdminService creates a new AdminService. hasher must be the same hasher
// used for registration.
func NewAdminService(
	authn *AdminAuthenticator,
	sessions *SessionManager,
	accounts AccountRepository,
	hasher PasswordHasher,
	logger *slog.Logger,
) (*AdminService, error) {
	if authn == nil {
		return nil, oops.Errorf("admin authenticator is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session manager is required")
	}
	if accounts == nil {
		return nil, oops.Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{
		authn:    authn,
		sessions: sessions,
		accounts: accounts,
		hasher:   hasher,
		logger:   logger,
	}, nil
}

// Login checks the administrator credential and issues a session.
// Returns the plaintext token and the stored session.
func (s *AdminService) Login(ctx context.Context, username, password string, meta SessionMetadata) (string, *Session, error) {
	if !s.authn.Authenticate(username, password) {
		s.logger.WarnContext(ctx, "admin login rejected", "ip_address", meta.IPAddress)
		return "", nil, oops.Code(CodeInvalidAdminCredentials).Errorf("invalid admin credentials")
	}
	return s.sessions.CreateAdminSession(ctx, meta)
}

// Logout destroys the session for token.
func (s *AdminService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// ListAccounts returns every username ordered by creation time.
func (s *AdminService) ListAccounts(ctx context.Context, grant AdminGrant) ([]string, error) {
	if !grant.Valid() {
		return nil, errForbidden()
	}
	accounts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return nil, oops.Code(CodeStoreUnavailable).
			With("operation", "list accounts").
			Wrap(err)
	}
	usernames := make([]string, 0, len(accounts))
	for _, a := range accounts {
		usernames = append(usernames, a.Username)
	}
	return usernames, nil
}

// UpdatePassword rehashes newPassword and overwrites the credential of
// username.
func (s *AdminService) UpdatePassword(ctx context.Context, grant AdminGrant, username, newPassword string) error {
	if !grant.Valid() {
		return errForbidden()
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code(CodeStoreUnavailable).
			With("operation", "hash password").
			Wrap(err)
	}

	if err := s.accounts.UpdateCredential(ctx, username, hash); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeNotFound).
				With("username", username).
				Wrap(err)
		}
		return oops.Code(CodeStoreUnavailable).
			With("operation", "update credential").
			With("username", username).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "account password updated by admin", "username", username)
	return nil
}

// DeleteAccount permanently removes username.
func (s *AdminService) DeleteAccount(ctx context.Context, grant AdminGrant, username string) error {
	if !grant.Valid() {
		return errForbidden()
	}

	if err := s.accounts.Delete(ctx, username); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeNotFound).
				With("username", username).
				Wrap(err)
		}
		return oops.Code(CodeStoreUnavailable).
			With("operation", "delete account").
			With("username", username).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "account deleted by admin", "username", username)
	return nil
}
