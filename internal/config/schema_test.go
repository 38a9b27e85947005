// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passgate/passgate/pkg/errutil"
)

func TestGenerateSchema(t *testing.T) {
	raw, err := GenerateSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, SchemaID, doc["$id"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"http", "store", "database", "session", "redis", "admin", "hasher", "log", "metrics"} {
		assert.Contains(t, props, key)
	}
	assert.NotContains(t, doc, "required", "every key has a default")
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{name: "empty document", yaml: ""},
		{name: "comments only", yaml: "# nothing here\n"},
		{
			name: "full file",
			yaml: `
http:
  addr: 0.0.0.0:8080
  cookie_secure: true
  read_header_timeout: 5s
store:
  backend: postgres
database:
  url: postgres://localhost/passgate
  auto_migrate: false
session:
  backend: redis
  ttl: 1h30m
redis:
  addr: localhost:6379
  db: 1
hasher:
  time: 3
  memory_kib: 65536
  threads: 2
log:
  format: text
  level: debug
metrics:
  addr: ""
`,
		},
		{name: "unknown top-level key", yaml: "htpp:\n  addr: localhost\n", wantErr: true},
		{name: "unknown nested key", yaml: "session:\n  tll: 1h\n", wantErr: true},
		{name: "bad duration", yaml: "session:\n  ttl: forever\n", wantErr: true},
		{name: "wrong type", yaml: "redis:\n  db: zero\n", wantErr: true},
		{name: "section is not a map", yaml: "log: debug\n", wantErr: true},
		{name: "malformed yaml", yaml: "http: [\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile([]byte(tt.yaml))
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoad_RejectsSchemaViolations(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "admin:\n  password: plaintext\n")

	_, err := Load(path, nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	errutil.AssertErrorContext(t, err, "path", path)
}
