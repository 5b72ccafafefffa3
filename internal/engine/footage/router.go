package footage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anatolykoptev/go_footage/internal/engine"
)

// Placement describes a validated scratch file ready to be stored.
type Placement struct {
	ScratchPath string
	Candidate   Candidate
	Keyword     string
	Duration    time.Duration
	Primary     bool // produced by the primary dedup source
}

// Router moves validated files to their final location. Primary-source
// assets go to a job-scoped ephemeral directory; everything else goes to a
// durable cache partitioned by day, one file per asset, never rewritten.
type Router struct {
	jobDir   string
	cacheDir string
	index    AssetIndex // nil = not recorded
	now      func() time.Time
}

// ErrJobExists is returned when a job's ephemeral directory is already taken.
var ErrJobExists = errors.New("footage: job directory already exists")

// NewRouter prepares cacheDir and creates <ephemeralBase>/<jobID>, which
// must not exist yet: the router owns it and removes it on Cleanup.
func NewRouter(ephemeralBase, cacheDir, jobID string, index AssetIndex) (*Router, error) {
	if strings.TrimSpace(ephemeralBase) == "" || strings.TrimSpace(cacheDir) == "" {
		return nil, errors.New("footage: ephemeral and cache dirs are required")
	}
	if strings.TrimSpace(jobID) == "" {
		return nil, errors.New("footage: job id is required")
	}
	for _, d := range []string{ephemeralBase, cacheDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("footage: ensure %s: %w", d, err)
		}
	}
	jobDir := filepath.Join(ephemeralBase, engine.UniqueFileToken(jobID))
	if err := os.Mkdir(jobDir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %q", ErrJobExists, jobID)
		}
		return nil, fmt.Errorf("footage: create job dir: %w", err)
	}
	return &Router{jobDir: jobDir, cacheDir: cacheDir, index: index, now: time.Now}, nil
}

// JobDir is the ephemeral directory owned by this job.
func (r *Router) JobDir() string { return r.jobDir }

// Place moves p.ScratchPath to its final path and returns that path.
func (r *Router) Place(ctx context.Context, p Placement) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := engine.UniqueFileToken(p.Candidate.Source+"_"+p.Candidate.ID) + mediaExt(p.ScratchPath)

	dir := r.jobDir
	if !p.Primary {
		dir = filepath.Join(r.cacheDir, r.now().Format("2006-01-02"))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("footage: ensure cache partition: %w", err)
		}
	}
	dst := filepath.Join(dir, name)

	err := moveNoClobber(p.ScratchPath, dst)
	switch {
	case errors.Is(err, fs.ErrExist):
		// Same candidate id means same content; keep the first copy.
		slog.Debug("footage: asset already placed", slog.String("path", dst))
		removeQuietly(p.ScratchPath)
	case err != nil:
		return "", fmt.Errorf("footage: place %s: %w", p.Candidate.ID, err)
	}

	if !p.Primary && r.index != nil {
		rec := IndexedAsset{
			Source:      p.Candidate.Source,
			CandidateID: p.Candidate.ID,
			Name:        p.Candidate.Name,
			Keyword:     p.Keyword,
			Path:        dst,
			Duration:    p.Duration,
			PlacedAt:    r.now().UTC(),
		}
		if err := r.index.Record(ctx, rec); err != nil {
			slog.Warn("footage: asset index record failed", slog.String("id", p.Candidate.ID), slog.Any("error", err))
		}
	}
	return dst, nil
}

// Cleanup removes the job's ephemeral directory. Call once the job ends.
func (r *Router) Cleanup() error {
	return os.RemoveAll(r.jobDir)
}

// moveNoClobber moves src to dst, failing with fs.ErrExist if dst exists.
func moveNoClobber(src, dst string) error {
	err := os.Link(src, dst)
	if err == nil {
		return os.Remove(src)
	}
	if errors.Is(err, fs.ErrExist) {
		return err
	}
	// Cross-device or no hard-link support: copy exclusively.
	if err := copyExclusive(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyExclusive(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
