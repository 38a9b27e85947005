// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package observability

import "github.com/prometheus/client_golang/prometheus"

// Result label values.
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultForbidden = "forbidden"
	ResultError     = "error"
)

// Metrics holds the application counters. A nil *Metrics records nothing,
// so handlers can be built without an observability server.
type Metrics struct {
	AuthAttempts    *prometheus.CounterVec
	AdminOperations *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passgate_auth_attempts_total",
				Help: "Registration and login attempts by kind and result",
			},
			[]string{"kind", "result"},
		),
		AdminOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passgate_admin_operations_total",
				Help: "Administrative account operations by operation and result",
			},
			[]string{"operation", "result"},
		),
	}

	reg.MustRegister(m.AuthAttempts)
	reg.MustRegister(m.AdminOperations)
	return m
}

// RecordAuthAttempt counts one attempt. kind is register, login or admin_login.
func (m *Metrics) RecordAuthAttempt(kind, result string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(kind, result).Inc()
}

// RecordAdminOperation counts one guarded admin call.
func (m *Metrics) RecordAdminOperation(operation, result string) {
	if m == nil {
		return
	}
	m.AdminOperations.WithLabelValues(operation, result).Inc()
}
