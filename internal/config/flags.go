// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package config

import (
	"time"

	"github.com/spf13/pflag"
)

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"http-addr":       "http.addr",
	"cookie-secure":   "http.cookie_secure",
	"store-backend":   "store.backend",
	"session-backend": "session.backend",
	"session-ttl":     "session.ttl",
	"admin-username":  "admin.username",
	"metrics-addr":    "metrics.addr",
	"log-format":      "log.format",
	"log-level":       "log.level",
}

// BindFlags registers the overridable settings on fs. The defaults shown in
// help text match the built-in defaults; unset flags never override a file.
func BindFlags(fs *pflag.FlagSet) {
	d := defaults()
	fs.String("http-addr", d["http.addr"].(string), "public API listen address")
	fs.Bool("cookie-secure", false, "mark the session cookie Secure")
	fs.String("store-backend", BackendMemory, "account store (memory or postgres)")
	fs.String("session-backend", BackendMemory, "session store (memory, postgres or redis)")
	fs.Duration("session-ttl", d["session.ttl"].(time.Duration), "administrator session lifetime")
	fs.String("admin-username", "", "administrator username")
	fs.String("metrics-addr", d["metrics.addr"].(string), "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", "json", "log format (json or text)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
}
