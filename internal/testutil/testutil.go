// Package testutil provides shared test helpers for markdown fixtures and
// history databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/mudkip/internal/history"
)

// HistoryDB creates a temporary history database that is automatically
// cleaned up.
func HistoryDB(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "mudkip-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TempMarkdown writes a markdown file with the given name into a fresh temp
// directory and returns its path.
func TempMarkdown(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
