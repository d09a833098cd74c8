// Package history provides the SQLite-backed record of recently opened
// launch targets, powering the recent-documents listing.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/mudkip/internal/launch"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS recent_targets (
	path        TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	open_count  INTEGER NOT NULL DEFAULT 1,
	last_opened DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_recent_last_opened ON recent_targets(last_opened);
`

// Entry is one row of the recent-targets listing.
type Entry struct {
	Path       string    `json:"path"`
	Kind       string    `json:"kind"`
	OpenCount  int       `json:"openCount"`
	LastOpened time.Time `json:"lastOpened"`
}

// Store defines the recent-documents operations. Consumers should depend on
// this interface rather than the concrete *DB type to facilitate testing.
type Store interface {
	RecordOpen(target launch.Target) error
	Recent(limit int) ([]Entry, error)
	Clear() error
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// DB wraps a sql.DB with history-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// RecordOpen upserts the target, bumping its open count and timestamp.
func (db *DB) RecordOpen(target launch.Target) error {
	_, err := db.conn.Exec(`
		INSERT INTO recent_targets (path, kind, open_count, last_opened)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(path) DO UPDATE SET
			kind        = excluded.kind,
			open_count  = open_count + 1,
			last_opened = excluded.last_opened
	`, target.Path, target.Kind.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("history: record open %q: %w", target.Path, err)
	}
	return nil
}

// Recent returns up to limit entries, most recently opened first.
func (db *DB) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path, kind, open_count, last_opened
		FROM recent_targets
		ORDER BY last_opened DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Path, &e.Kind, &e.OpenCount, &e.LastOpened); err != nil {
			return nil, fmt.Errorf("history: scan recent row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate recent rows: %w", err)
	}
	return entries, nil
}

// Clear removes all history entries.
func (db *DB) Clear() error {
	if _, err := db.conn.Exec(`DELETE FROM recent_targets`); err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	return nil
}
