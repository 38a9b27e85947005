// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passgate/passgate/pkg/errutil"
)

// fakeMigrate implements migrateIface for testing.
type fakeMigrate struct {
	upErr          error
	downErr        error
	version        uint
	dirty          bool
	versionErr     error
	forceErr       error
	forced         int
	closeSourceErr error
	closeDBErr     error
}

func (f *fakeMigrate) Up() error                    { return f.upErr }
func (f *fakeMigrate) Down() error                  { return f.downErr }
func (f *fakeMigrate) Version() (uint, bool, error) { return f.version, f.dirty, f.versionErr }
func (f *fakeMigrate) Close() (error, error)        { return f.closeSourceErr, f.closeDBErr }
func (f *fakeMigrate) Force(v int) error {
	f.forced = v
	return f.forceErr
}

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/passgate":   "pgx5://u:p@db:5432/passgate",
		"postgresql://u:p@db:5432/passgate": "pgx5://u:p@db:5432/passgate",
		"pgx5://u:p@db:5432/passgate":       "pgx5://u:p@db:5432/passgate",
		"mysql://db/passgate":               "mysql://db/passgate",
	}
	for in, want := range tests {
		assert.Equal(t, want, MigrateURL(in), in)
	}
}

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("badscheme://localhost:5432/passgate")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

func TestMigrator_Up(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		require.NoError(t, (&Migrator{m: &fakeMigrate{}}).Up())
	})
	t.Run("no change is success", func(t *testing.T) {
		require.NoError(t, (&Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange}}).Up())
	})
	t.Run("failure", func(t *testing.T) {
		err := (&Migrator{m: &fakeMigrate{upErr: errors.New("database locked")}}).Up()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
	})
}

func TestMigrator_Down(t *testing.T) {
	require.NoError(t, (&Migrator{m: &fakeMigrate{downErr: migrate.ErrNoChange}}).Down())

	err := (&Migrator{m: &fakeMigrate{downErr: errors.New("constraint violation")}}).Down()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_DOWN_FAILED")
}

func TestMigrator_Version(t *testing.T) {
	t.Run("dirty", func(t *testing.T) {
		v, dirty, err := (&Migrator{m: &fakeMigrate{version: 2, dirty: true}}).Version()
		require.NoError(t, err)
		assert.Equal(t, uint(2), v)
		assert.True(t, dirty)
	})
	t.Run("unmigrated database is version zero", func(t *testing.T) {
		v, dirty, err := (&Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}).Version()
		require.NoError(t, err)
		assert.Zero(t, v)
		assert.False(t, dirty)
	})
	t.Run("failure", func(t *testing.T) {
		_, _, err := (&Migrator{m: &fakeMigrate{versionErr: errors.New("connection lost")}}).Version()
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Force(t *testing.T) {
	fake := &fakeMigrate{}
	m := &Migrator{m: fake}

	require.NoError(t, m.Force(1))
	assert.Equal(t, 1, fake.forced)

	err := m.Force(-1)
	errutil.AssertErrorCode(t, err, "INVALID_VERSION")

	fake.forceErr = errors.New("locked")
	err = m.Force(2)
	errutil.AssertErrorCode(t, err, "MIGRATION_FORCE_FAILED")
	errutil.AssertErrorContext(t, err, "version", 2)
}

func TestMigrator_Pending(t *testing.T) {
	t.Run("fresh database has every migration pending", func(t *testing.T) {
		pending, err := (&Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}).Pending()
		require.NoError(t, err)
		assert.Equal(t, []uint{1, 2}, pending)
	})
	t.Run("current database has none", func(t *testing.T) {
		pending, err := (&Migrator{m: &fakeMigrate{version: 2}}).Pending()
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}

func TestMigrator_Close(t *testing.T) {
	tests := []struct {
		name      string
		fake      *fakeMigrate
		component string
	}{
		{"source", &fakeMigrate{closeSourceErr: errors.New("src")}, "source"},
		{"database", &fakeMigrate{closeDBErr: errors.New("db")}, "database"},
		{"both", &fakeMigrate{closeSourceErr: errors.New("src"), closeDBErr: errors.New("db")}, "both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Migrator{m: tt.fake}).Close()
			errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
			errutil.AssertErrorContext(t, err, "component", tt.component)
		})
	}

	require.NoError(t, (&Migrator{m: &fakeMigrate{}}).Close())
}
