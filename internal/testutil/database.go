// Package testutil holds helpers shared by package tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"menu-planner/internal/database"
)

// SetupDB returns a migrated SQLite database living in a temp dir.
func SetupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to set up database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db.SQL
}
