package footage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrExhausted matches every *ExhaustionError via errors.Is.
var ErrExhausted = errors.New("footage: candidates exhausted")

// AdapterError is a failed search or fetch call against one source.
type AdapterError struct {
	Source     string
	Op         string // "search" or "fetch"
	Keyword    string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *AdapterError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Source, e.Op)
	if e.Keyword != "" {
		fmt.Fprintf(&b, " %q", e.Keyword)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *AdapterError) Unwrap() error { return e.Err }

// RateLimited reports whether the provider rejected the call for rate reasons.
func (e *AdapterError) RateLimited() bool { return e.StatusCode == 429 }

// DownloadError means a candidate's media could not be written to scratch.
type DownloadError struct {
	CandidateID string
	Err         error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.CandidateID, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// CorruptMediaError means the downloaded file does not decode or has no duration.
type CorruptMediaError struct {
	CandidateID string
	Reason      string
	Err         error
}

func (e *CorruptMediaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt media %s: %s: %v", e.CandidateID, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt media %s: %s", e.CandidateID, e.Reason)
}

func (e *CorruptMediaError) Unwrap() error { return e.Err }

// Reason classifies why a candidate was not used.
type Reason string

const (
	ReasonDedupID    Reason = "dedup-id"
	ReasonDedupName  Reason = "dedup-name"
	ReasonDownload   Reason = "download-failure"
	ReasonValidation Reason = "validation-failure"
	ReasonPlacement  Reason = "placement-failure"
)

// Attempt records one (source, keyword) search and what happened to its pool.
type Attempt struct {
	Source     string         `json:"source"`
	SourceRank int            `json:"source_rank"`
	Keyword    string         `json:"keyword"`
	Candidates int            `json:"candidates"`
	Rejections map[Reason]int `json:"rejections,omitempty"`
	SearchErr  string         `json:"search_error,omitempty"`
}

func (a *Attempt) reject(r Reason) {
	if a.Rejections == nil {
		a.Rejections = make(map[Reason]int)
	}
	a.Rejections[r]++
}

// ExhaustionError is returned when no (source, keyword, candidate)
// combination produced a usable asset.
type ExhaustionError struct {
	SegmentID string    `json:"segment_id"`
	Attempts  []Attempt `json:"attempts"`
}

func (e *ExhaustionError) Error() string {
	totals := e.Totals()
	reasons := make([]string, 0, len(totals))
	for r := range totals {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		parts = append(parts, fmt.Sprintf("%s=%d", r, totals[Reason(r)]))
	}
	failed := 0
	for _, a := range e.Attempts {
		if a.SearchErr != "" {
			failed++
		}
	}
	return fmt.Sprintf("footage: segment %q exhausted after %d searches (%d failed): %s",
		e.SegmentID, len(e.Attempts), failed, strings.Join(parts, " "))
}

func (e *ExhaustionError) Is(target error) bool { return target == ErrExhausted }

// Totals sums rejections per reason across all attempts.
func (e *ExhaustionError) Totals() map[Reason]int {
	out := make(map[Reason]int)
	for _, a := range e.Attempts {
		for r, n := range a.Rejections {
			out[r] += n
		}
	}
	return out
}

// Breakdown renders one line per (source, keyword) pair in search order:
// candidates returned, rejections by reason and any search error.
func (e *ExhaustionError) Breakdown() string {
	var b strings.Builder
	for i, a := range e.Attempts {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s/%q: candidates=%d", a.Source, a.Keyword, a.Candidates)
		reasons := make([]string, 0, len(a.Rejections))
		for r := range a.Rejections {
			reasons = append(reasons, string(r))
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Fprintf(&b, " %s=%d", r, a.Rejections[Reason(r)])
		}
		if a.SearchErr != "" {
			fmt.Fprintf(&b, " search_error=%q", a.SearchErr)
		}
	}
	return b.String()
}

// ValidationAttempts is the number of candidates that reached download.
func (e *ExhaustionError) ValidationAttempts() int {
	t := e.Totals()
	return t[ReasonDownload] + t[ReasonValidation] + t[ReasonPlacement]
}

// JobError reports the segment that aborted a job.
type JobError struct {
	SegmentID string
	Err       error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("footage: job aborted at segment %q: %v", e.SegmentID, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }
