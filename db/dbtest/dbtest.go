// Package dbtest opens throwaway, fully migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"bikebuild/config"
	"bikebuild/db"
)

// Open returns a migrated database in t's temp dir, closed on cleanup.
func Open(t testing.TB) *db.DB {
	t.Helper()
	conn := OpenEmpty(t)
	if _, err := conn.Migrate(context.Background(), zap.NewNop()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return conn
}

// OpenEmpty returns an unmigrated database in t's temp dir.
func OpenEmpty(t testing.TB) *db.DB {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "bikebuild.db"),
	}
	conn, err := db.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}
