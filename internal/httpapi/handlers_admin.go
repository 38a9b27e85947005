// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/passgate/passgate/internal/observability"
	"github.com/passgate/passgate/pkg/errutil"
)

// Admin operation names used in metrics and logs.
const (
	opListAccounts   = "list_accounts"
	opUpdatePassword = "update_password"
	opDeleteAccount  = "delete_account"
)

type statusResponse struct {
	LoggedIn bool `json:"loggedIn"`
}

type accountEntry struct {
	Username string `json:"username"`
}

func (a *API) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(w, r)
	if err != nil {
		status := a.respondError(w, r, err, msgServerError)
		a.metrics.RecordAuthAttempt(kindAdminLogin, resultFor(status))
		return
	}

	token, session, err := a.admin.Login(r.Context(), creds.Username, creds.Password, sessionMetadata(r))
	if err != nil {
		status := a.respondError(w, r, err, msgServerError)
		a.metrics.RecordAuthAttempt(kindAdminLogin, resultFor(status))
		return
	}

	// A fresh login replaces whatever session the browser carried.
	if previous := a.sessionToken(r); previous != "" {
		if err := a.admin.Logout(r.Context(), previous); err != nil {
			errutil.LogErrorContext(r.Context(), a.logger, "failed to revoke previous admin session", err)
		}
	}

	a.setSessionCookie(w, token, session.ExpiresAt)
	a.metrics.RecordAuthAttempt(kindAdminLogin, observability.ResultSuccess)
	a.logger.InfoContext(r.Context(), "admin session issued",
		"session_id", session.ID.String(),
		"ip_address", session.IPAddress,
		"expires_at", session.ExpiresAt)
	writeText(w, http.StatusOK, msgAdminLoggedIn)
}

func (a *API) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.admin.Logout(r.Context(), a.sessionToken(r)); err != nil {
		a.respondError(w, r, err, msgServerError)
		return
	}
	a.clearSessionCookie(w)
	writeText(w, http.StatusOK, msgLoggedOut)
}

func (a *API) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	grant, err := a.gate.AuthorizeAdmin(r.Context(), a.sessionToken(r))
	switch {
	case err == nil && grant.Valid():
		writeJSON(w, http.StatusOK, statusResponse{LoggedIn: true})
	case err == nil || statusFor(errutil.Code(err)) == http.StatusForbidden:
		writeJSON(w, http.StatusUnauthorized, statusResponse{LoggedIn: false})
	default:
		a.respondError(w, r, err, msgServerError)
	}
}

func (a *API) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	names, err := a.admin.ListAccounts(r.Context(), grantFrom(r.Context()))
	if err != nil {
		status := a.respondError(w, r, err, msgServerError)
		a.metrics.RecordAdminOperation(opListAccounts, resultFor(status))
		return
	}

	entries := make([]accountEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, accountEntry{Username: name})
	}
	a.metrics.RecordAdminOperation(opListAccounts, observability.ResultSuccess)
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	change, err := decodePasswordChange(w, r)
	if err == nil {
		err = a.admin.UpdatePassword(r.Context(), grantFrom(r.Context()), username, change.NewPassword)
	}
	if err != nil {
		status := a.respondError(w, r, err, msgServerError)
		a.metrics.RecordAdminOperation(opUpdatePassword, resultFor(status))
		return
	}

	a.metrics.RecordAdminOperation(opUpdatePassword, observability.ResultSuccess)
	writeText(w, http.StatusOK, fmt.Sprintf("Password for '%s' updated successfully.", username))
}

func (a *API) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if err := a.admin.DeleteAccount(r.Context(), grantFrom(r.Context()), username); err != nil {
		status := a.respondError(w, r, err, msgServerError)
		a.metrics.RecordAdminOperation(opDeleteAccount, resultFor(status))
		return
	}

	a.metrics.RecordAdminOperation(opDeleteAccount, observability.ResultSuccess)
	writeText(w, http.StatusOK, fmt.Sprintf("User '%s' deleted successfully.", username))
}
