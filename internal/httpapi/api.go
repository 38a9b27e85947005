// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

// Package httpapi exposes registration, login and the administrator
// account surface over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/oops"

	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/internal/observability"
)

// DefaultCookieName names the administrator session cookie.
const DefaultCookieName = "passgate_session"

// AccountService is the self-service half of the API.
type AccountService interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
}

// AdminService performs guarded account administration.
type AdminService interface {
	Login(ctx context.Context, username, password string, meta auth.SessionMetadata) (string, *auth.Session, error)
	Logout(ctx context.Context, token string) error
	ListAccounts(ctx context.Context, grant auth.AdminGrant) ([]string, error)
	UpdatePassword(ctx context.Context, grant auth.AdminGrant, username, newPassword string) error
	DeleteAccount(ctx context.Context, grant auth.AdminGrant, username string) error
}

// Authorizer turns a session token into an administrator grant.
type Authorizer interface {
	AuthorizeAdmin(ctx context.Context, token string) (auth.AdminGrant, error)
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// API holds the HTTP handlers.
type API struct {
	accounts AccountService
	admin    AdminService
	gate     Authorizer
	cookie   CookieConfig
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the logger for access and error records.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records request outcomes into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *API) { a.metrics = m }
}

// WithCookie overrides the session cookie settings. Zero fields keep
// their defaults.
func WithCookie(c CookieConfig) Option {
	return func(a *API) {
		if c.Name != "" {
			a.cookie.Name = c.Name
		}
		if c.TTL > 0 {
			a.cookie.TTL = c.TTL
		}
		a.cookie.Secure = c.Secure
	}
}

// New creates an API.
func New(accounts AccountService, admin AdminService, gate Authorizer, opts ...Option) (*API, error) {
	if accounts == nil {
		return nil, oops.Errorf("account service is required")
	}
	if admin == nil {
		return nil, oops.Errorf("admin service is required")
	}
	if gate == nil {
		return nil, oops.Errorf("authorizer is required")
	}

	a := &API{
		accounts: accounts,
		admin:    admin,
		gate:     gate,
		cookie:   CookieConfig{Name: DefaultCookieName, TTL: auth.DefaultSessionTTL},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Router returns the routed handler with access logging applied.
func (a *API) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(a.accessLog)

	r.HandleFunc("/register", a.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", a.handleLogin).Methods(http.MethodPost)

	r.HandleFunc("/admin/login", a.handleAdminLogin).Methods(http.MethodPost)
	r.HandleFunc("/admin/logout", a.handleAdminLogout).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/status", a.handleAdminStatus).Methods(http.MethodGet)

	r.Handle("/api/users", a.requireAdmin(opListAccounts, a.handleListAccounts)).Methods(http.MethodGet)
	r.Handle("/api/users/{username}", a.requireAdmin(opUpdatePassword, a.handleUpdatePassword)).Methods(http.MethodPut)
	r.Handle("/api/users/{username}", a.requireAdmin(opDeleteAccount, a.handleDeleteAccount)).Methods(http.MethodDelete)

	return r
}
