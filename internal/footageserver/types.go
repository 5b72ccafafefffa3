package footageserver

import "github.com/anatolykoptev/go_footage/internal/engine/footage"

// SegmentInput is one segment of a footage_resolve request.
type SegmentInput struct {
	ID             string   `json:"id" jsonschema:"Segment identifier, unique within the job"`
	Keywords       []string `json:"keywords" jsonschema:"Search keywords, most specific first. Comma-separated entries are split."`
	TargetDuration float64  `json:"target_duration,omitempty" jsonschema:"Desired clip length in seconds (informational)"`
}

// ResolveInput is the footage_resolve tool input.
type ResolveInput struct {
	JobID       string         `json:"job_id,omitempty" jsonschema:"Job identifier; generated when empty"`
	Segments    []SegmentInput `json:"segments" jsonschema:"Segments in timeline order"`
	Concurrency int            `json:"concurrency,omitempty" jsonschema:"Segments resolved in parallel (default: server setting, 1 = sequential and deterministic)"`
}

// ResolveOutput is the footage_resolve tool output.
type ResolveOutput struct {
	JobID  string                  `json:"job_id"`
	JobDir string                  `json:"job_dir"`
	Assets []footage.ResolvedAsset `json:"assets"`
	Ledger footage.LedgerSnapshot  `json:"ledger"`
}

// SearchInput is the footage_search tool input.
type SearchInput struct {
	Source  string `json:"source,omitempty" jsonschema:"Source name (default: top-ranked source)"`
	Keyword string `json:"keyword" jsonschema:"Search keyword"`
	Count   int    `json:"count,omitempty" jsonschema:"Max candidates (default: pool size, max 50)"`
}

// SearchOutput is the footage_search tool output.
type SearchOutput struct {
	Source     string              `json:"source"`
	Keyword    string              `json:"keyword"`
	Candidates []footage.Candidate `json:"candidates"`
}

// RecentInput is the footage_cache_recent tool input.
type RecentInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max entries (default 50, max 500)"`
}

// CachedAsset is one durable-cache entry as reported by footage_cache_recent.
type CachedAsset struct {
	Source      string  `json:"source"`
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name,omitempty"`
	Keyword     string  `json:"keyword,omitempty"`
	Path        string  `json:"path"`
	Duration    float64 `json:"duration_seconds"`
	PlacedAt    string  `json:"placed_at"`
}

// RecentOutput is the footage_cache_recent tool output.
type RecentOutput struct {
	Assets []CachedAsset `json:"assets"`
}
