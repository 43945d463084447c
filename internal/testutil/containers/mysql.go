//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/iliyamo/inn-guest-registry/internal/database"
)

// NewMySQL starts mysql:8.0, applies every migration and returns an open
// pool.
func NewMySQL(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase("inn_registry"),
		tcmysql.WithUsername("inn"),
		tcmysql.WithPassword("inn"),
	)
	if err != nil {
		t.Fatalf("start mysql container: %v", err)
	}
	testcontainers.CleanupContainer(t, container)

	dsn, err := container.ConnectionString(ctx, "parseTime=true", "loc=UTC", "charset=utf8mb4")
	if err != nil {
		t.Fatalf("mysql connection string: %v", err)
	}
	db, err := database.OpenDSN(dsn)
	if err != nil {
		t.Fatalf("open mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db, database.Up); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
