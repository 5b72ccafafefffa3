package footage

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_footage/internal/engine"
	"golang.org/x/sync/errgroup"
)

// ErrNoKeywords is returned for a segment without usable keywords.
var ErrNoKeywords = errors.New("footage: segment has no keywords")

// CandidateValidator turns a candidate into a local file or a failure kind.
type CandidateValidator interface {
	Validate(ctx context.Context, src Source, c Candidate) Outcome
}

// AssetPlacer stores a validated file and returns its final path.
type AssetPlacer interface {
	Place(ctx context.Context, p Placement) (string, error)
}

// Options tunes a Resolver.
type Options struct {
	PoolSize int      // candidates requested per search; default 10
	Gates    *GateSet // nil = searches are not throttled
}

// Resolver finds one asset per segment for a single job.
type Resolver struct {
	sources   []Source
	ledger    *Ledger
	validator CandidateValidator
	placer    AssetPlacer
	gates     *GateSet
	poolSize  int
}

// NewResolver ranks sources by slice order, top first. Only the top source
// may be a primary dedup source.
func NewResolver(sources []Source, ledger *Ledger, v CandidateValidator, p AssetPlacer, opts Options) (*Resolver, error) {
	if len(sources) == 0 {
		return nil, errors.New("footage: at least one source is required")
	}
	if ledger == nil || v == nil || p == nil {
		return nil, errors.New("footage: ledger, validator and placer are required")
	}
	for rank, src := range sources {
		if rank > 0 && src.PrimaryDedup() {
			return nil, fmt.Errorf("footage: primary dedup source %q must be ranked first", src.Name())
		}
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = 10
	}
	return &Resolver{
		sources:   append([]Source(nil), sources...),
		ledger:    ledger,
		validator: v,
		placer:    p,
		gates:     opts.Gates,
		poolSize:  opts.PoolSize,
	}, nil
}

// Resolve returns the first candidate, in source rank, keyword and pool
// order, that passes deduplication and validation. It returns an
// *ExhaustionError when every combination fails, and a context error when
// ctx ends or a gate turn cannot be granted before its deadline.
func (r *Resolver) Resolve(ctx context.Context, req SegmentRequest) (ResolvedAsset, error) {
	keywords := cleanKeywords(req.Keywords)
	if len(keywords) == 0 {
		return ResolvedAsset{}, fmt.Errorf("%w: %q", ErrNoKeywords, req.ID)
	}

	sc := &scan{}
	for t := range r.candidates(ctx, keywords, sc) {
		if ctx.Err() != nil {
			break
		}
		if asset, ok := r.consider(ctx, req, t); ok {
			engine.IncrSegmentsResolved()
			slog.Info("footage: segment resolved",
				slog.String("segment", req.ID),
				slog.String("source", asset.Source),
				slog.String("keyword", t.attempt.Keyword),
				slog.String("candidate", asset.CandidateID),
				slog.String("path", asset.Path))
			return asset, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return ResolvedAsset{}, fmt.Errorf("footage: resolve %q: %w", req.ID, err)
	}
	if sc.halted != nil {
		return ResolvedAsset{}, fmt.Errorf("footage: resolve %q: %w", req.ID, sc.halted)
	}
	engine.IncrSegmentsExhausted()
	exh := &ExhaustionError{SegmentID: req.ID, Attempts: make([]Attempt, 0, len(sc.tried))}
	for _, a := range sc.tried {
		exh.Attempts = append(exh.Attempts, *a)
	}
	slog.Warn("footage: segment exhausted", slog.String("segment", req.ID), slog.Any("error", exh))
	return ResolvedAsset{}, exh
}

// ResolveJob resolves segs and returns assets in segment order. Any failure
// aborts the job. With concurrency > 1 segments run in parallel and the
// first failure cancels the rest; results then depend on scheduling.
func (r *Resolver) ResolveJob(ctx context.Context, segs []SegmentRequest, concurrency int) ([]ResolvedAsset, error) {
	out := make([]ResolvedAsset, len(segs))
	if concurrency <= 1 {
		for i, s := range segs {
			a, err := r.Resolve(ctx, s)
			if err != nil {
				return nil, &JobError{SegmentID: s.ID, Err: err}
			}
			out[i] = a
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, s := range segs {
		g.Go(func() error {
			a, err := r.Resolve(gctx, s)
			if err != nil {
				return &JobError{SegmentID: s.ID, Err: err}
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// try is one candidate from one (source, keyword) search.
type try struct {
	src       Source
	primary   bool
	attempt   *Attempt
	candidate Candidate
}

// scan collects what one pass over the candidate sequence saw.
type scan struct {
	tried  []*Attempt
	halted error // gate refused a turn; the pass stopped early
}

// candidates flattens sources × keywords × pool into one sequence. Each
// (source, keyword) pair costs exactly one gated search; its Attempt is
// appended to sc.tried before any of its candidates are yielded. A gate
// that cannot grant a turn in time stops the sequence and sets sc.halted.
func (r *Resolver) candidates(ctx context.Context, keywords []string, sc *scan) iter.Seq[try] {
	return func(yield func(try) bool) {
		for rank, src := range r.sources {
			primary := src.PrimaryDedup()
			for _, kw := range keywords {
				if ctx.Err() != nil {
					return
				}
				if err := r.turn(ctx, src); err != nil {
					sc.halted = err
					return
				}
				att := &Attempt{Source: src.Name(), SourceRank: rank, Keyword: kw}
				pool, err := r.search(ctx, src, kw)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					att.SearchErr = engine.TruncateRunes(err.Error(), 300, "...")
					slog.Warn("footage: search failed",
						slog.String("source", att.Source),
						slog.String("keyword", kw),
						slog.Any("error", err))
				}
				att.Candidates = len(pool)
				sc.tried = append(sc.tried, att)

				for _, c := range pool {
					c.Source = att.Source
					c.SourceRank = rank
					if !yield(try{src: src, primary: primary, attempt: att, candidate: c}) {
						return
					}
				}
			}
		}
	}
}

// turn waits for the source's gate, if any.
func (r *Resolver) turn(ctx context.Context, src Source) error {
	if r.gates == nil {
		return nil
	}
	return r.gates.For(src.Name()).Turn(ctx)
}

// search issues one search call.
func (r *Resolver) search(ctx context.Context, src Source, keyword string) ([]Candidate, error) {
	engine.IncrSearchRequests()
	pool, err := src.Search(ctx, keyword, r.poolSize)
	if err != nil {
		engine.IncrSearchErrors()
		var ae *AdapterError
		if !errors.As(err, &ae) {
			err = &AdapterError{Source: src.Name(), Op: "search", Keyword: keyword, Err: err}
		}
		return nil, err
	}
	return pool, nil
}

// consider runs the dedup checks and validation for one candidate.
func (r *Resolver) consider(ctx context.Context, req SegmentRequest, t try) (ResolvedAsset, bool) {
	c := t.candidate
	reject := func(reason Reason, attrs ...any) (ResolvedAsset, bool) {
		engine.IncrCandidatesRejected()
		t.attempt.reject(reason)
		slog.Debug("footage: candidate rejected", append([]any{
			slog.String("segment", req.ID),
			slog.String("source", c.Source),
			slog.String("candidate", c.ID),
			slog.String("reason", string(reason)),
		}, attrs...)...)
		return ResolvedAsset{}, false
	}

	if r.ledger.IsConsumed(c.ID) {
		return reject(ReasonDedupID)
	}
	if !t.primary && r.ledger.IsShadowed(c.Name) {
		return reject(ReasonDedupName, slog.String("name", c.Name))
	}

	out := r.validator.Validate(ctx, t.src, c)
	switch out.Kind {
	case OutcomeDownloadFailed:
		slog.Warn("footage: download failed", slog.String("candidate", c.ID), slog.Any("error", out.Err))
		return reject(ReasonDownload)
	case OutcomeCorrupt:
		slog.Warn("footage: candidate failed validation", slog.String("candidate", c.ID), slog.Any("error", out.Err))
		return reject(ReasonValidation)
	}

	if reason, ok := r.ledger.Claim(c.ID, c.Name, t.primary); !ok {
		removeQuietly(out.Path)
		return reject(reason)
	}

	final, err := r.placer.Place(ctx, Placement{
		ScratchPath: out.Path,
		Candidate:   c,
		Keyword:     t.attempt.Keyword,
		Duration:    out.Duration,
		Primary:     t.primary,
	})
	if err != nil {
		removeQuietly(out.Path)
		return reject(ReasonPlacement, slog.Any("error", err))
	}

	return ResolvedAsset{
		Path:          final,
		Duration:      out.Duration,
		SegmentID:     req.ID,
		Source:        c.Source,
		SourceRank:    c.SourceRank,
		CandidateID:   c.ID,
		CandidateName: c.Name,
	}, true
}

// cleanKeywords copies keywords in order, dropping blanks.
func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
