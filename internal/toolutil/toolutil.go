// Package toolutil provides shared helper functions for go_footage MCP tools.
package toolutil

import (
	"strings"

	"github.com/google/uuid"
)

// NormKeywords trims keywords, splits comma-separated entries and drops
// blanks. Order is preserved.
func NormKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.Join(strings.Fields(k), " "); k != "" {
				out = append(out, k)
			}
		}
	}
	return out
}

// NewJobID returns a random job identifier.
func NewJobID() string {
	return "job-" + uuid.NewString()
}
