// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package auth

import "errors"

// Repository sentinels. Implementations wrap these so services can match
// them with errors.Is regardless of backend.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateAccount is returned by AccountRepository.Insert when the
	// username is already taken.
	ErrDuplicateAccount = errors.New("duplicate account")
)

// Error codes attached to oops errors returned by the services in this
// package. Each code maps to exactly one externally observable outcome.
const (
	CodeValidation              = "VALIDATION_FAILED"
	CodeEmptyPassword           = "AUTH_EMPTY_PASSWORD"
	CodePasswordTooLong         = "AUTH_PASSWORD_TOO_LONG"
	CodeDuplicateAccount        = "ACCOUNT_DUPLICATE"
	CodeInvalidCredentials      = "AUTH_INVALID_CREDENTIALS"
	CodeInvalidAdminCredentials = "ADMIN_INVALID_CREDENTIALS"
	CodeNotFound                = "ACCOUNT_NOT_FOUND"
	CodeForbidden               = "AUTH_FORBIDDEN"
	CodeStoreUnavailable        = "STORE_UNAVAILABLE"
)
