// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

// Package memory provides in-process implementations of the auth
// repositories for single-node deployments and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/oops"

	"github.com/passgate/passgate/internal/auth"
)

type accountRecord struct {
	account auth.Account
	seq     uint64
}

// AccountRepository implements auth.AccountRepository with a map.
// Uniqueness is checked and applied under one lock.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]accountRecord
	seq      uint64
}

// NewAccountRepository creates an empty AccountRepository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]accountRecord)}
}

// FindByUsername retrieves an account by exact username.
func (r *AccountRepository) FindByUsername(_ context.Context, username string) (*auth.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.accounts[username]
	if !ok {
		return nil, oops.With("username", username).Wrap(auth.ErrNotFound)
	}
	account := rec.account
	return &account, nil
}

// Insert stores a new account.
func (r *AccountRepository) Insert(_ context.Context, account *auth.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.Username]; exists {
		return oops.With("username", account.Username).Wrap(auth.ErrDuplicateAccount)
	}
	r.seq++
	r.accounts[account.Username] = accountRecord{account: *account, seq: r.seq}
	return nil
}

// UpdateCredential replaces the credential hash of an account.
func (r *AccountRepository) UpdateCredential(_ context.Context, username, credentialHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.accounts[username]
	if !ok {
		return oops.With("username", username).Wrap(auth.ErrNotFound)
	}
	rec.account.CredentialHash = credentialHash
	r.accounts[username] = rec
	return nil
}

// Delete removes an account.
func (r *AccountRepository) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[username]; !ok {
		return oops.With("username", username).Wrap(auth.ErrNotFound)
	}
	delete(r.accounts, username)
	return nil
}

// ListAll returns all accounts by CreatedAt ascending. Insertion order
// breaks ties.
func (r *AccountRepository) ListAll(_ context.Context) ([]*auth.Account, error) {
	r.mu.RLock()
	records := make([]accountRecord, 0, len(r.accounts))
	for _, rec := range r.accounts {
		records = append(records, rec)
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.account.CreatedAt.Equal(b.account.CreatedAt) {
			return a.account.CreatedAt.Before(b.account.CreatedAt)
		}
		return a.seq < b.seq
	})

	accounts := make([]*auth.Account, len(records))
	for i := range records {
		account := records[i].account
		accounts[i] = &account
	}
	return accounts, nil
}

// Count returns the number of stored accounts.
func (r *AccountRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

// Compile-time interface check.
var _ auth.AccountRepository = (*AccountRepository)(nil)
