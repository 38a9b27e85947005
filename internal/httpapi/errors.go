// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package httpapi

import (
	"net/http"

	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/pkg/errutil"
)

// Fixed response bodies.
const (
	msgUsernameTaken  = "Username already exists."
	msgInvalidLogin   = "Invalid username or password."
	msgInvalidAdmin   = "Invalid admin credentials."
	msgUserNotFound   = "User not found."
	msgForbidden      = "Forbidden"
	msgMalformedBody  = "Malformed request body."
	msgRegisterFailed = "Error registering user."
	msgLoginFailed    = "Server error during login."
	msgServerError    = "Server error."
	msgRegistered     = "User registered successfully."
	msgLoggedIn       = "Login successful."
	msgAdminLoggedIn  = "Admin login successful."
	msgLoggedOut      = "Logged out"
)

// codeMalformedRequest marks bodies that could not be decoded.
const codeMalformedRequest = "REQUEST_MALFORMED"

// statusFor maps an error code to its one HTTP status. Unknown codes are 500.
func statusFor(code string) int {
	switch code {
	case auth.CodeValidation, auth.CodeEmptyPassword, auth.CodePasswordTooLong, codeMalformedRequest,
		auth.CodeDuplicateAccount, auth.CodeInvalidCredentials:
		return http.StatusBadRequest
	case auth.CodeInvalidAdminCredentials:
		return http.StatusUnauthorized
	case auth.CodeForbidden:
		return http.StatusForbidden
	case auth.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the response body for err. Validation messages are
// authored by the validators and safe to echo; everything else is fixed
// text, with fallback used for server errors.
func publicMessage(err error, fallback string) string {
	switch errutil.Code(err) {
	case auth.CodeValidation, auth.CodeEmptyPassword, auth.CodePasswordTooLong:
		return err.Error()
	case codeMalformedRequest:
		return msgMalformedBody
	case auth.CodeDuplicateAccount:
		return msgUsernameTaken
	case auth.CodeInvalidCredentials:
		return msgInvalidLogin
	case auth.CodeInvalidAdminCredentials:
		return msgInvalidAdmin
	case auth.CodeForbidden:
		return msgForbidden
	case auth.CodeNotFound:
		return msgUserNotFound
	default:
		return fallback
	}
}

// respondError writes the mapped status and body. Server errors are logged
// with full context; the client only sees fallback.
func (a *API) respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) int {
	status := statusFor(errutil.Code(err))
	if status >= http.StatusInternalServerError {
		errutil.LogErrorContext(r.Context(), a.logger, "request failed", err,
			"method", r.Method, "path", r.URL.Path)
	}
	writeText(w, status, publicMessage(err, fallback))
	return status
}
