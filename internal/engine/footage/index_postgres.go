package footage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresIndex stores the asset index in Postgres, for deployments where
// several workers share one durable cache volume.
type PostgresIndex struct {
	pool *pgxpool.Pool
}

// ConnectPostgresIndex creates a pgx pool and ensures the table exists.
func ConnectPostgresIndex(ctx context.Context, databaseURL string) (*PostgresIndex, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS footage_assets (
		source       TEXT NOT NULL,
		candidate_id TEXT NOT NULL,
		name         TEXT NOT NULL DEFAULT '',
		keyword      TEXT NOT NULL DEFAULT '',
		path         TEXT NOT NULL,
		duration_ms  BIGINT NOT NULL DEFAULT 0,
		placed_at    TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (source, candidate_id)
	)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("asset index: init schema: %w", err)
	}
	return &PostgresIndex{pool: pool}, nil
}

// Record inserts a, keeping the first record for a repeated id.
func (p *PostgresIndex) Record(ctx context.Context, a IndexedAsset) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO footage_assets (source, candidate_id, name, keyword, path, duration_ms, placed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (source, candidate_id) DO NOTHING`,
		a.Source, a.CandidateID, a.Name, a.Keyword, a.Path, a.Duration.Milliseconds(), a.PlacedAt)
	if err != nil {
		return fmt.Errorf("asset index: insert: %w", err)
	}
	return nil
}

// Recent lists the newest entries first.
func (p *PostgresIndex) Recent(ctx context.Context, limit int) ([]IndexedAsset, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT source, candidate_id, name, keyword, path, duration_ms, placed_at
		 FROM footage_assets ORDER BY placed_at DESC LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("asset index: query: %w", err)
	}
	defer rows.Close()

	var out []IndexedAsset
	for rows.Next() {
		var (
			a  IndexedAsset
			ms int64
		)
		if err := rows.Scan(&a.Source, &a.CandidateID, &a.Name, &a.Keyword, &a.Path, &ms, &a.PlacedAt); err != nil {
			return nil, fmt.Errorf("asset index: scan: %w", err)
		}
		a.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, a)
	}
	return out, rows.Err()
}

// Close releases the pool.
func (p *PostgresIndex) Close() error {
	p.pool.Close()
	return nil
}
