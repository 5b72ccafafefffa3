package footageserver

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/anatolykoptev/go_footage/internal/engine/footage"
)

type stubSource struct{ name string }

func (s stubSource) Name() string       { return s.name }
func (s stubSource) PrimaryDedup() bool { return false }
func (s stubSource) Search(context.Context, string, int) ([]footage.Candidate, error) {
	return nil, nil
}
func (s stubSource) Fetch(context.Context, footage.Candidate) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func TestSegmentRequests(t *testing.T) {
	got, err := segmentRequests([]SegmentInput{
		{ID: "intro", Keywords: []string{"sunrise, mountains"}, TargetDuration: 4.5},
		{Keywords: []string{"river"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d segments", len(got))
	}
	if got[0].ID != "intro" || len(got[0].Keywords) != 2 || got[0].TargetDuration != 4500*time.Millisecond {
		t.Errorf("unexpected first segment: %+v", got[0])
	}
	if got[1].ID != "segment-2" {
		t.Errorf("generated id = %q", got[1].ID)
	}
}

func TestSegmentRequests_Errors(t *testing.T) {
	cases := map[string][]SegmentInput{
		"empty":       nil,
		"no keywords": {{ID: "a", Keywords: []string{" , "}}},
		"duplicate":   {{ID: "a", Keywords: []string{"x"}}, {ID: "a", Keywords: []string{"y"}}},
	}
	for name, in := range cases {
		if _, err := segmentRequests(in); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestPickSource(t *testing.T) {
	srcs := []footage.Source{stubSource{"ai_search"}, stubSource{"pexels"}}

	s, err := pickSource(srcs, "")
	if err != nil || s.Name() != "ai_search" {
		t.Errorf("default = %v, %v", s, err)
	}
	s, err = pickSource(srcs, " Pexels ")
	if err != nil || s.Name() != "pexels" {
		t.Errorf("named = %v, %v", s, err)
	}
	if _, err := pickSource(srcs, "envato"); err == nil || !strings.Contains(err.Error(), "ai_search, pexels") {
		t.Errorf("unknown source error = %v", err)
	}
	if _, err := pickSource(nil, ""); err == nil {
		t.Error("expected error with no sources")
	}
}

func TestCandidateTotal(t *testing.T) {
	e := &footage.ExhaustionError{Attempts: []footage.Attempt{{Candidates: 3}, {Candidates: 0}, {Candidates: 2}}}
	if n := candidateTotal(e); n != 5 {
		t.Errorf("candidateTotal = %d, want 5", n)
	}
}

func TestCachedAsset(t *testing.T) {
	got := cachedAsset(footage.IndexedAsset{
		Source:      "pexels",
		CandidateID: "pexels-1",
		Path:        "/cache/2026-01-02/pexels_pexels-1.mp4",
		Duration:    2500 * time.Millisecond,
		PlacedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	if got.Duration != 2.5 || got.PlacedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("unexpected conversion: %+v", got)
	}
}

func TestJobFailure_ListsEveryPair(t *testing.T) {
	exh := &footage.ExhaustionError{SegmentID: "s2", Attempts: []footage.Attempt{
		{Source: "pexels", Keyword: "ocean", Candidates: 2, Rejections: map[footage.Reason]int{footage.ReasonDedupID: 2}},
		{Source: "pixabay", Keyword: "ocean", SearchErr: "pixabay search: status 503"},
	}}
	err := jobFailure(&footage.JobError{SegmentID: "s2", Err: exh})

	if !errors.Is(err, footage.ErrExhausted) {
		t.Errorf("jobFailure() lost the exhaustion error: %v", err)
	}
	msg := err.Error()
	for _, want := range []string{
		`pexels/"ocean": candidates=2 dedup-id=2`,
		`pixabay/"ocean": candidates=0 search_error="pixabay search: status 503"`,
		"0 of 2 candidates reached validation",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("jobFailure() = %q, missing %q", msg, want)
		}
	}

	plain := errors.New("boom")
	if got := jobFailure(plain); got != plain {
		t.Errorf("jobFailure(plain) = %v, want unchanged", got)
	}
}
