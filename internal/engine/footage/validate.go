package footage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/anatolykoptev/go_footage/internal/engine"
)

// OutcomeKind tags the result of validating one candidate.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeDownloadFailed
	OutcomeCorrupt
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeDownloadFailed:
		return "download-failed"
	case OutcomeCorrupt:
		return "corrupt"
	}
	return fmt.Sprintf("outcome(%d)", int(k))
}

// Outcome is the tagged result of Validate. Path and Duration are set only
// for OutcomeOK; Err is a *DownloadError or *CorruptMediaError otherwise.
type Outcome struct {
	Kind     OutcomeKind
	Path     string
	Duration time.Duration
	Err      error
}

// Validator downloads candidates into a scratch directory and probes them.
type Validator struct {
	scratchDir string
	prober     Prober
	timeout    time.Duration // per download; 0 = bounded by ctx only
}

// NewValidator creates scratchDir if needed.
func NewValidator(scratchDir string, prober Prober, timeout time.Duration) (*Validator, error) {
	if strings.TrimSpace(scratchDir) == "" {
		return nil, errors.New("footage: scratch dir is required")
	}
	if prober == nil {
		return nil, errors.New("footage: prober is required")
	}
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("footage: ensure scratch dir: %w", err)
	}
	return &Validator{scratchDir: scratchDir, prober: prober, timeout: timeout}, nil
}

// Validate fetches c from src and checks it decodes with positive duration.
// No file is left behind in scratch unless the outcome is OutcomeOK.
func (v *Validator) Validate(ctx context.Context, src Source, c Candidate) Outcome {
	engine.IncrDownloads()
	p, err := v.download(ctx, src, c)
	if err != nil {
		engine.IncrDownloadErrors()
		return Outcome{Kind: OutcomeDownloadFailed, Err: &DownloadError{CandidateID: c.ID, Err: err}}
	}

	info, err := v.prober.Probe(ctx, p)
	switch {
	case err != nil:
		err = &CorruptMediaError{CandidateID: c.ID, Reason: "probe failed", Err: err}
	case !info.HasVideo:
		err = &CorruptMediaError{CandidateID: c.ID, Reason: "no video stream"}
	case info.Duration <= 0:
		err = &CorruptMediaError{CandidateID: c.ID, Reason: "zero duration"}
	}
	if err != nil {
		engine.IncrCorruptMedia()
		removeQuietly(p)
		return Outcome{Kind: OutcomeCorrupt, Err: err}
	}
	return Outcome{Kind: OutcomeOK, Path: p, Duration: info.Duration}
}

func (v *Validator) download(ctx context.Context, src Source, c Candidate) (string, error) {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	// Unique per call: two resolvers may validate the same candidate before
	// either reserves it.
	pattern := engine.SafeFileToken(c.Source+"_"+c.ID) + ".*" + mediaExt(c.URL) + ".part"
	f, err := os.CreateTemp(v.scratchDir, pattern)
	if err != nil {
		return "", err
	}
	part := f.Name()
	final := strings.TrimSuffix(part, ".part")

	fail := func(err error) (string, error) {
		f.Close()
		removeQuietly(part)
		return "", err
	}

	rc, err := src.Fetch(ctx, c)
	if err != nil {
		return fail(err)
	}
	n, err := io.Copy(f, &ctxReader{ctx: ctx, r: rc})
	rc.Close()
	if err != nil {
		return fail(err)
	}
	if n == 0 {
		return fail(errors.New("empty body"))
	}
	if err := f.Close(); err != nil {
		removeQuietly(part)
		return "", err
	}
	if err := os.Rename(part, final); err != nil {
		removeQuietly(part)
		return "", err
	}
	return final, nil
}

// ctxReader stops a copy promptly once ctx is cancelled, even for sources
// whose readers ignore the context.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// mediaExt keeps the extension of the remote file, defaulting to .mp4.
func mediaExt(locator string) string {
	if i := strings.IndexAny(locator, "?#"); i >= 0 {
		locator = locator[:i]
	}
	ext := strings.ToLower(path.Ext(locator))
	switch ext {
	case ".mp4", ".mov", ".webm", ".mkv", ".m4v":
		return ext
	}
	return ".mp4"
}

func removeQuietly(p string) {
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("footage: remove scratch file", slog.String("path", p), slog.Any("error", err))
	}
}
