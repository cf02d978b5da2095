package reminder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteBackend persists the store document as a single versioned row in a
// SQLite database. Save is write-if-unchanged: it only applies when the row
// still carries the version seen by the preceding Load, so two processes
// sharing the database cannot lose each other's updates — the loser gets
// ErrConflict and retries on its next tick.
type SQLiteBackend struct {
	db      *sql.DB
	version int64
}

// NewSQLiteBackend opens (or creates) the SQLite database at dbPath and
// ensures the document table exists.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reminder_store (
			id      INTEGER PRIMARY KEY CHECK (id = 1),
			version INTEGER NOT NULL,
			doc     TEXT    NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Load(ctx context.Context) (*Document, error) {
	row := b.db.QueryRowContext(ctx, `SELECT version, doc FROM reminder_store WHERE id = 1`)

	var version int64
	var raw string
	if err := row.Scan(&version, &raw); err != nil {
		if err == sql.ErrNoRows {
			b.version = 0
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load store document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse store document: %w", err)
	}

	b.version = version
	return &doc, nil
}

func (b *SQLiteBackend) Save(ctx context.Context, doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode store document: %w", err)
	}

	if b.version == 0 {
		_, err := b.db.ExecContext(ctx,
			`INSERT INTO reminder_store (id, version, doc) VALUES (1, 1, ?)`, string(data))
		if err != nil {
			// Another writer inserted the first document before us.
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		b.version = 1
		return nil
	}

	result, err := b.db.ExecContext(ctx,
		`UPDATE reminder_store SET version = version + 1, doc = ? WHERE id = 1 AND version = ?`,
		string(data), b.version)
	if err != nil {
		return fmt.Errorf("failed to save store document: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check save result: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}

	b.version++
	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
