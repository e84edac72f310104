package testutil

import (
	"path/filepath"
	"testing"

	"tabtime/internal/database"
)

// NewTestSQLiteStore creates a migrated SQLite store in a temp directory.
// The store is automatically closed when the test completes.
func NewTestSQLiteStore(t *testing.T) *database.SQLiteStore {
	t.Helper()

	s, err := database.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}
