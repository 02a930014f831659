// Package series persists the heading-number ranges of notebooks processed
// as a series, so numbering can continue across files and resume after an
// interrupted batch.
package series

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Range records where one notebook's top-level numbering started and ended.
type Range struct {
	Path        string
	StartAt     int
	LastTop     int
	ProcessedAt time.Time
}

// Store keeps per-notebook numbering ranges in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the series database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS notebooks (
			path TEXT PRIMARY KEY,
			start_at INTEGER NOT NULL,
			last_top INTEGER NOT NULL,
			processed_at TEXT NOT NULL
		);`)
	return err
}

// Record upserts the numbering range of one notebook.
func (s *Store) Record(ctx context.Context, path string, startAt, lastTop int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notebooks (path, start_at, last_top, processed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			start_at=excluded.start_at,
			last_top=excluded.last_top,
			processed_at=excluded.processed_at
	`, path, startAt, lastTop, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Lookup returns the recorded range for a notebook path; ok is false when
// the path has never been processed.
func (s *Store) Lookup(ctx context.Context, path string) (r Range, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT path, start_at, last_top, processed_at FROM notebooks WHERE path = ?
	`, path)

	var stamp string
	if err := row.Scan(&r.Path, &r.StartAt, &r.LastTop, &stamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Range{}, false, nil
		}
		return Range{}, false, err
	}
	r.ProcessedAt, _ = time.Parse(time.RFC3339, stamp)
	return r, true, nil
}

// All returns every recorded range ordered by path, for reporting.
func (s *Store) All(ctx context.Context) ([]Range, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, start_at, last_top, processed_at FROM notebooks ORDER BY path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranges []Range
	for rows.Next() {
		var r Range
		var stamp string
		if err := rows.Scan(&r.Path, &r.StartAt, &r.LastTop, &stamp); err != nil {
			return nil, err
		}
		r.ProcessedAt, _ = time.Parse(time.RFC3339, stamp)
		ranges = append(ranges, r)
	}
	return ranges, rows.Err()
}
