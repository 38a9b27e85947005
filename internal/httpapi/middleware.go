// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/passgate/passgate/internal/auth"
)

type grantKey struct{}

func withGrant(ctx context.Context, grant auth.AdminGrant) context.Context {
	return context.WithValue(ctx, grantKey{}, grant)
}

// grantFrom returns the grant requireAdmin stored, or the zero grant, which
// every admin operation rejects.
func grantFrom(ctx context.Context) auth.AdminGrant {
	grant, _ := ctx.Value(grantKey{}).(auth.AdminGrant)
	return grant
}

// requireAdmin admits the request only with a live administrator session.
func (a *API) requireAdmin(operation string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		grant, err := a.gate.AuthorizeAdmin(r.Context(), a.sessionToken(r))
		if err != nil {
			status := a.respondError(w, r, err, msgServerError)
			a.metrics.RecordAdminOperation(operation, resultFor(status))
			return
		}
		next(w, r.WithContext(withGrant(r.Context(), grant)))
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// accessLog logs one record per routed request. The route template is
// logged instead of the raw path.
func (a *API) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		a.logger.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
