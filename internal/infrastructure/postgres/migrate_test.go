package postgres

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMigrate struct {
	upErr          error
	downErr        error
	versionVal     uint
	versionErr     error
	dirty          bool
	closeSourceErr error
	closeDbErr     error
}

func (m *mockMigrate) Up() error                    { return m.upErr }
func (m *mockMigrate) Down() error                  { return m.downErr }
func (m *mockMigrate) Version() (uint, bool, error) { return m.versionVal, m.dirty, m.versionErr }
func (m *mockMigrate) Close() (error, error)        { return m.closeSourceErr, m.closeDbErr }

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/db", migrateURL("postgres://u:p@localhost:5432/db"))
	assert.Equal(t, "pgx5://localhost/db", migrateURL("postgresql://localhost/db"))
	assert.Equal(t, "pgx5://localhost/db", migrateURL("pgx5://localhost/db"))
}

func TestNewMigrator_InvalidScheme(t *testing.T) {
	_, err := NewMigrator("badscheme://localhost:5432/testdb")
	assert.ErrorContains(t, err, "initialize migrator")
}

func TestMigrator_Up(t *testing.T) {
	require.NoError(t, (&Migrator{m: &mockMigrate{}}).Up())
	require.NoError(t, (&Migrator{m: &mockMigrate{upErr: migrate.ErrNoChange}}).Up(), "ErrNoChange should be treated as success")
	assert.ErrorContains(t, (&Migrator{m: &mockMigrate{upErr: errors.New("database locked")}}).Up(), "database locked")
}

func TestMigrator_Down(t *testing.T) {
	require.NoError(t, (&Migrator{m: &mockMigrate{downErr: migrate.ErrNoChange}}).Down())
	assert.Error(t, (&Migrator{m: &mockMigrate{downErr: errors.New("constraint violation")}}).Down())
}

func TestMigrator_Version_NilVersion(t *testing.T) {
	v, dirty, err := (&Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}).Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)
}

func TestMigrator_Close_JoinsErrors(t *testing.T) {
	m := &Migrator{m: &mockMigrate{closeSourceErr: errors.New("src"), closeDbErr: errors.New("db")}}
	err := m.Close()
	assert.ErrorContains(t, err, "src")
	assert.ErrorContains(t, err, "db")
}

func TestMigrationsFS_Pairs(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs, "every up migration needs a down migration")
}
