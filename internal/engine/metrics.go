package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests     atomic.Int64
	SearchErrors       atomic.Int64
	AISearchRequests   atomic.Int64
	PexelsRequests     atomic.Int64
	PixabayRequests    atomic.Int64
	Downloads          atomic.Int64
	DownloadErrors     atomic.Int64
	CorruptMedia       atomic.Int64
	SegmentsResolved   atomic.Int64
	SegmentsExhausted  atomic.Int64
	CandidatesRejected atomic.Int64
	GateWaitMs         atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"search_requests":     metrics.SearchRequests.Load(),
		"search_errors":       metrics.SearchErrors.Load(),
		"ai_search_requests":  metrics.AISearchRequests.Load(),
		"pexels_requests":     metrics.PexelsRequests.Load(),
		"pixabay_requests":    metrics.PixabayRequests.Load(),
		"downloads":           metrics.Downloads.Load(),
		"download_errors":     metrics.DownloadErrors.Load(),
		"corrupt_media":       metrics.CorruptMedia.Load(),
		"segments_resolved":   metrics.SegmentsResolved.Load(),
		"segments_exhausted":  metrics.SegmentsExhausted.Load(),
		"candidates_rejected": metrics.CandidatesRejected.Load(),
		"gate_wait_ms":        metrics.GateWaitMs.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"search_requests", "search_errors",
		"ai_search_requests", "pexels_requests", "pixabay_requests",
		"downloads", "download_errors", "corrupt_media",
		"segments_resolved", "segments_exhausted", "candidates_rejected",
		"gate_wait_ms", "cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the footage and sources sub-packages.
func IncrSearchRequests()     { metrics.SearchRequests.Add(1) }
func IncrSearchErrors()       { metrics.SearchErrors.Add(1) }
func IncrAISearchRequests()   { metrics.AISearchRequests.Add(1) }
func IncrPexelsRequests()     { metrics.PexelsRequests.Add(1) }
func IncrPixabayRequests()    { metrics.PixabayRequests.Add(1) }
func IncrDownloads()          { metrics.Downloads.Add(1) }
func IncrDownloadErrors()     { metrics.DownloadErrors.Add(1) }
func IncrCorruptMedia()       { metrics.CorruptMedia.Add(1) }
func IncrSegmentsResolved()   { metrics.SegmentsResolved.Add(1) }
func IncrSegmentsExhausted()  { metrics.SegmentsExhausted.Add(1) }
func IncrCandidatesRejected() { metrics.CandidatesRejected.Add(1) }

// AddGateWait accumulates time spent waiting for a source's rate gate.
func AddGateWait(d time.Duration) { metrics.GateWaitMs.Add(d.Milliseconds()) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 30*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
