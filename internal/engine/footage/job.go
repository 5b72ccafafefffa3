package footage

import (
	"context"
	"errors"
	"log/slog"
)

// Env holds the process-wide pieces shared by every job.
type Env struct {
	Sources      []Source
	Gates        *GateSet
	Validator    *Validator
	Index        AssetIndex
	EphemeralDir string
	CacheDir     string
	PoolSize     int
}

// Job is one render job: its own ledger, ephemeral directory and resolver.
type Job struct {
	ID       string
	Ledger   *Ledger
	Router   *Router
	Resolver *Resolver
}

// NewJob wires a fresh ledger and router for id.
func (e *Env) NewJob(id string) (*Job, error) {
	if e == nil || e.Validator == nil {
		return nil, errors.New("footage: env is not initialized")
	}
	router, err := NewRouter(e.EphemeralDir, e.CacheDir, id, e.Index)
	if err != nil {
		return nil, err
	}
	ledger := NewLedger()
	res, err := NewResolver(e.Sources, ledger, e.Validator, router, Options{
		PoolSize: e.PoolSize,
		Gates:    e.Gates,
	})
	if err != nil {
		router.Cleanup()
		return nil, err
	}
	return &Job{ID: id, Ledger: ledger, Router: router, Resolver: res}, nil
}

// Run resolves every segment. On failure the job's ephemeral directory is
// removed, since no partial result is usable.
func (j *Job) Run(ctx context.Context, segs []SegmentRequest, concurrency int) ([]ResolvedAsset, error) {
	assets, err := j.Resolver.ResolveJob(ctx, segs, concurrency)
	if err != nil {
		if cerr := j.Router.Cleanup(); cerr != nil {
			slog.Warn("footage: job cleanup failed", slog.String("job", j.ID), slog.Any("error", cerr))
		}
		return nil, err
	}
	return assets, nil
}
