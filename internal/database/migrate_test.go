package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFS_PairsUpAndDown(t *testing.T) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, n := range names {
		base := strings.TrimPrefix(n, "migrations/")
		switch {
		case strings.HasSuffix(base, ".up.sql"):
			ups[strings.TrimSuffix(base, ".up.sql")] = true
		case strings.HasSuffix(base, ".down.sql"):
			downs[strings.TrimSuffix(base, ".down.sql")] = true
		default:
			t.Fatalf("unexpected migration file %s", base)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestMigrationFS_StaysEnforceSingleActive(t *testing.T) {
	b, err := fs.ReadFile(migrationFS, "migrations/000003_create_stays.up.sql")
	require.NoError(t, err)
	sql := string(b)
	assert.Contains(t, sql, "active_guest_id")
	assert.Contains(t, sql, "UNIQUE KEY uq_stays_active_guest (active_guest_id)")
}

func TestMigrate_RejectsUnknownDirection(t *testing.T) {
	err := Migrate(nil, "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestDSN(t *testing.T) {
	dsn := DSN("inn", "s3cr:t", "db.local", "3306", "registry")
	assert.True(t, strings.HasPrefix(dsn, "inn:s3cr:t@tcp(db.local:3306)/registry?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}
