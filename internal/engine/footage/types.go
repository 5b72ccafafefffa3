// Package footage resolves one stock-footage clip per video segment.
//
// A Resolver walks its sources in rank order, each segment keyword in
// specificity order and each returned candidate in relevance order. The
// first candidate that survives deduplication and validation is placed on
// disk and returned; if none does, the caller gets an *ExhaustionError that
// lists every (source, keyword) pair tried and why candidates were rejected.
package footage

import (
	"context"
	"io"
	"time"
)

// SegmentRequest asks for one clip. Keywords are ordered most specific first.
type SegmentRequest struct {
	ID             string        `json:"id"`
	Keywords       []string      `json:"keywords"`
	TargetDuration time.Duration `json:"target_duration,omitempty"`
}

// Candidate is one search hit, not yet downloaded.
type Candidate struct {
	ID         string        `json:"id"`   // source-assigned, globally unique per source
	Name       string        `json:"name"` // content-stable title, used for shadowing
	URL        string        `json:"url"`
	Duration   time.Duration `json:"duration,omitempty"` // as reported by the source
	Source     string        `json:"source"`
	SourceRank int           `json:"source_rank"`
}

// ResolvedAsset is a validated clip stored on local disk for one segment.
type ResolvedAsset struct {
	Path          string        `json:"path"`
	Duration      time.Duration `json:"duration"`
	SegmentID     string        `json:"segment_id"`
	Source        string        `json:"source"`
	SourceRank    int           `json:"source_rank"`
	CandidateID   string        `json:"candidate_id"`
	CandidateName string        `json:"candidate_name"`
}

// Source is one external clip provider.
type Source interface {
	Name() string
	// Search returns up to count candidates for keyword, most relevant first.
	Search(ctx context.Context, keyword string, count int) ([]Candidate, error)
	// Fetch opens the candidate's media bytes.
	Fetch(ctx context.Context, c Candidate) (io.ReadCloser, error)
	// PrimaryDedup reports whether names returned by this source shadow
	// same-named results from every other source.
	PrimaryDedup() bool
}
