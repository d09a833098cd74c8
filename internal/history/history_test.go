package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/mudkip/internal/launch"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "mudkip-history-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func fileTarget(path string) launch.Target {
	return launch.Target{Kind: launch.KindFile, Path: path}
}

func TestRecordAndRecent(t *testing.T) {
	db := testDB(t)

	if err := db.RecordOpen(fileTarget("/docs/a.md")); err != nil {
		t.Fatalf("RecordOpen: %v", err)
	}
	if err := db.RecordOpen(launch.Target{Kind: launch.KindFolder, Path: "/docs"}); err != nil {
		t.Fatalf("RecordOpen folder: %v", err)
	}

	entries, err := db.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent returned %d entries, want 2", len(entries))
	}
	// Most recent first.
	if entries[0].Path != "/docs" || entries[0].Kind != "folder" {
		t.Errorf("entries[0] = %+v, want /docs folder", entries[0])
	}
	if entries[1].Path != "/docs/a.md" || entries[1].Kind != "file" {
		t.Errorf("entries[1] = %+v, want /docs/a.md file", entries[1])
	}
}

func TestRecordOpenBumpsCount(t *testing.T) {
	db := testDB(t)
	target := fileTarget(filepath.Join("/docs", "a.md"))

	for i := 0; i < 3; i++ {
		if err := db.RecordOpen(target); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := db.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected single row after repeated opens, got %d", len(entries))
	}
	if entries[0].OpenCount != 3 {
		t.Errorf("openCount = %d, want 3", entries[0].OpenCount)
	}
}

func TestRecentLimit(t *testing.T) {
	db := testDB(t)
	for _, p := range []string{"/a.md", "/b.md", "/c.md"} {
		if err := db.RecordOpen(fileTarget(p)); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := db.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("Recent(2) returned %d entries", len(entries))
	}
}

func TestClear(t *testing.T) {
	db := testDB(t)
	if err := db.RecordOpen(fileTarget("/a.md")); err != nil {
		t.Fatal(err)
	}
	if err := db.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := db.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("entries after Clear = %v, want none", entries)
	}
}
