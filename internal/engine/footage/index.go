package footage

import (
	"context"
	"time"
)

// IndexedAsset is one durable-cache entry. The layout (one file per asset,
// candidate id in the file name) is what a later reuse lookup would key on.
type IndexedAsset struct {
	Source      string        `json:"source"`
	CandidateID string        `json:"candidate_id"`
	Name        string        `json:"name"`
	Keyword     string        `json:"keyword"`
	Path        string        `json:"path"`
	Duration    time.Duration `json:"duration"`
	PlacedAt    time.Time     `json:"placed_at"`
}

// AssetIndex records durable-cache placements.
type AssetIndex interface {
	Record(ctx context.Context, a IndexedAsset) error
	Recent(ctx context.Context, limit int) ([]IndexedAsset, error)
	Close() error
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}
