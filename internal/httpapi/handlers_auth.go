// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package httpapi

import (
	"net/http"

	"github.com/passgate/passgate/internal/observability"
)

// Auth attempt kinds.
const (
	kindRegister   = "register"
	kindLogin      = "login"
	kindAdminLogin = "admin_login"
)

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(w, r)
	if err == nil {
		err = a.accounts.Register(r.Context(), creds.Username, creds.Password)
	}
	if err != nil {
		status := a.respondError(w, r, err, msgRegisterFailed)
		a.metrics.RecordAuthAttempt(kindRegister, resultFor(status))
		return
	}

	a.metrics.RecordAuthAttempt(kindRegister, observability.ResultSuccess)
	writeText(w, http.StatusOK, msgRegistered)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(w, r)
	if err == nil {
		err = a.accounts.Login(r.Context(), creds.Username, creds.Password)
	}
	if err != nil {
		status := a.respondError(w, r, err, msgLoginFailed)
		a.metrics.RecordAuthAttempt(kindLogin, resultFor(status))
		return
	}

	a.metrics.RecordAuthAttempt(kindLogin, observability.ResultSuccess)
	writeText(w, http.StatusOK, msgLoggedIn)
}

// resultFor buckets a response status into a metric result label.
func resultFor(status int) string {
	switch {
	case status < http.StatusBadRequest:
		return observability.ResultSuccess
	case status == http.StatusForbidden:
		return observability.ResultForbidden
	case status < http.StatusInternalServerError:
		return observability.ResultFailure
	default:
		return observability.ResultError
	}
}
