// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/passgate/passgate/internal/auth"
)

// AccountRepository implements auth.AccountRepository using PostgreSQL.
// Username uniqueness is enforced by the accounts_username_key constraint.
type AccountRepository struct {
	pool Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// FindByUsername retrieves an account by exact (case-sensitive) username.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, credential_hash, created_at
		FROM accounts
		WHERE username = $1
	`, username)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.With("username", username).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get account by username").
			With("username", username).
			Wrap(err)
	}
	return account, nil
}

// Insert stores a new account.
func (r *AccountRepository) Insert(ctx context.Context, account *auth.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (id, username, credential_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		account.ID.String(),
		account.Username,
		account.CredentialHash,
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.With("username", account.Username).Wrap(auth.ErrDuplicateAccount)
		}
		return oops.With("operation", "insert account").
			With("username", account.Username).
			Wrap(err)
	}
	return nil
}

// UpdateCredential replaces the credential hash of an account.
func (r *AccountRepository) UpdateCredential(ctx context.Context, username, credentialHash string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET credential_hash = $2 WHERE username = $1
	`, username, credentialHash)
	if err != nil {
		return oops.With("operation", "update credential").
			With("username", username).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.With("username", username).Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes an account.
func (r *AccountRepository) Delete(ctx context.Context, username string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE username = $1`, username)
	if err != nil {
		return oops.With("operation", "delete account").
			With("username", username).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.With("username", username).Wrap(auth.ErrNotFound)
	}
	return nil
}

// ListAll returns every account ordered by creation time. ULIDs break ties.
func (r *AccountRepository) ListAll(ctx context.Context) ([]*auth.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, credential_hash, created_at
		FROM accounts
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, oops.With("operation", "list accounts").Wrap(err)
	}
	defer rows.Close()

	var accounts []*auth.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate accounts").Wrap(err)
	}
	return accounts, nil
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		idStr     string
		account   auth.Account
		createdAt time.Time
	)
	if err := row.Scan(&idStr, &account.Username, &account.CredentialHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers add context
		}
		return nil, oops.With("operation", "scan account").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse account id").
			With("id", idStr).
			Wrap(err)
	}
	account.ID = id
	account.CreatedAt = createdAt.UTC()
	return &account, nil
}

// Compile-time interface check.
var _ auth.AccountRepository = (*AccountRepository)(nil)
