package footage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExhaustionError(t *testing.T) {
	e := &ExhaustionError{SegmentID: "seg-3", Attempts: []Attempt{
		{Source: "ai_search", Keyword: "a", SearchErr: "timeout"},
		{Source: "pexels", Keyword: "a", Candidates: 3, Rejections: map[Reason]int{ReasonDedupID: 1, ReasonDownload: 2}},
		{Source: "pexels", Keyword: "b", Candidates: 1, Rejections: map[Reason]int{ReasonValidation: 1}},
	}}

	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", e), ErrExhausted)
	assert.Equal(t, map[Reason]int{ReasonDedupID: 1, ReasonDownload: 2, ReasonValidation: 1}, e.Totals())
	assert.Equal(t, 3, e.ValidationAttempts())
	assert.Equal(t,
		`footage: segment "seg-3" exhausted after 3 searches (1 failed): dedup-id=1 download-failure=2 validation-failure=1`,
		e.Error())
	assert.Equal(t, `ai_search/"a": candidates=0 search_error="timeout"
pexels/"a": candidates=3 dedup-id=1 download-failure=2
pexels/"b": candidates=1 validation-failure=1`, e.Breakdown())
}

func TestAdapterError(t *testing.T) {
	base := errors.New("boom")
	e := &AdapterError{Source: "pexels", Op: "search", Keyword: "sea", StatusCode: 429, Err: base}
	assert.True(t, e.RateLimited())
	assert.ErrorIs(t, e, base)
	assert.Equal(t, `pexels search "sea": status 429: boom`, e.Error())
}

func TestJobError(t *testing.T) {
	e := &JobError{SegmentID: "s1", Err: &ExhaustionError{SegmentID: "s1"}}
	assert.ErrorIs(t, e, ErrExhausted)
	assert.Contains(t, e.Error(), `"s1"`)
}
