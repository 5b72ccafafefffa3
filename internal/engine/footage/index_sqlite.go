package footage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// indexTimeLayout is fixed-width so placed_at sorts lexically.
const indexTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteIndex stores the asset index in a local SQLite file.
type SQLiteIndex struct {
	db *sql.DB
}

// OpenSQLiteIndex opens (or creates) the index database at path.
func OpenSQLiteIndex(path string) (*SQLiteIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("asset index: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("asset index: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS cached_assets (
		source       TEXT NOT NULL,
		candidate_id TEXT NOT NULL,
		name         TEXT,
		keyword      TEXT,
		path         TEXT NOT NULL,
		duration_ms  INTEGER NOT NULL DEFAULT 0,
		placed_at    TEXT NOT NULL,
		PRIMARY KEY (source, candidate_id)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("asset index: init schema: %w", err)
	}
	return &SQLiteIndex{db: db}, nil
}

// Record inserts a, keeping the first record for a repeated id.
func (s *SQLiteIndex) Record(ctx context.Context, a IndexedAsset) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cached_assets (source, candidate_id, name, keyword, path, duration_ms, placed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (source, candidate_id) DO NOTHING`,
		a.Source, a.CandidateID, a.Name, a.Keyword, a.Path, a.Duration.Milliseconds(),
		a.PlacedAt.UTC().Format(indexTimeLayout))
	if err != nil {
		return fmt.Errorf("asset index: insert: %w", err)
	}
	return nil
}

// Recent lists the newest entries first.
func (s *SQLiteIndex) Recent(ctx context.Context, limit int) ([]IndexedAsset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, candidate_id, name, keyword, path, duration_ms, placed_at
		 FROM cached_assets ORDER BY placed_at DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("asset index: query: %w", err)
	}
	defer rows.Close()

	var out []IndexedAsset
	for rows.Next() {
		var (
			a        IndexedAsset
			name     sql.NullString
			keyword  sql.NullString
			ms       int64
			placedAt string
		)
		if err := rows.Scan(&a.Source, &a.CandidateID, &name, &keyword, &a.Path, &ms, &placedAt); err != nil {
			return nil, fmt.Errorf("asset index: scan: %w", err)
		}
		a.Name = name.String
		a.Keyword = keyword.String
		a.Duration = time.Duration(ms) * time.Millisecond
		a.PlacedAt, _ = time.Parse(indexTimeLayout, placedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteIndex) Close() error { return s.db.Close() }
