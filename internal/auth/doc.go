// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

// Package auth provides credential hashing, account registration and login,
// administrator sessions, and the gate guarding privileged account operations.
//
// # Domain Types
//
// Domain types should be created using their constructors:
//   - NewAccount - creates an Account with a validated username and hash
//   - NewAdminSession - creates a Session with a validated token hash and expiry
//
// Repository implementations receive pre-validated types from these constructors
// and report ErrNotFound and ErrDuplicateAccount through errors.Is.
//
// # Services
//
//   - AccountService - register and stateless login for ordinary accounts
//   - SessionManager - create, resolve and destroy administrator sessions
//   - Gate - AuthorizeAdmin, which mints the AdminGrant privileged calls require
//   - AdminService - administrator login plus list, update password and delete
//
// Errors carry oops codes (see the Code* constants) so transports can map
// each failure kind to exactly one outcome.
package auth
