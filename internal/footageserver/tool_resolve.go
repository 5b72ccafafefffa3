package footageserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_footage/internal/engine"
	"github.com/anatolykoptev/go_footage/internal/engine/footage"
	"github.com/anatolykoptev/go_footage/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResolve(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "footage_resolve",
		Description: "Resolve one validated stock-footage clip per segment. Sources are tried in rank order (AI library search first, then Pexels, Pixabay), each keyword in order, each candidate by relevance. No clip is used twice within a job. Returns local file paths in segment order, or an error naming the segment that could not be resolved.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ResolveInput) (*mcp.CallToolResult, ResolveOutput, error) {
		segs, err := segmentRequests(input.Segments)
		if err != nil {
			return nil, ResolveOutput{}, err
		}
		jobID := input.JobID
		if jobID == "" {
			jobID = toolutil.NewJobID()
		}
		concurrency := input.Concurrency
		if concurrency <= 0 {
			concurrency = d.Concurrency
		}

		job, err := d.Env.NewJob(jobID)
		if err != nil {
			return nil, ResolveOutput{}, err
		}

		var assets []footage.ResolvedAsset
		err = engine.TrackOperation(ctx, "footage_resolve", func(ctx context.Context) error {
			var runErr error
			assets, runErr = job.Run(ctx, segs, concurrency)
			return runErr
		})
		if err != nil {
			slog.Warn("footage_resolve: job failed", slog.String("job", jobID), slog.Any("error", err))
			return nil, ResolveOutput{}, jobFailure(err)
		}

		slog.Info("footage_resolve: job done",
			slog.String("job", jobID),
			slog.Int("segments", len(assets)))
		return nil, ResolveOutput{
			JobID:  jobID,
			JobDir: job.Router.JobDir(),
			Assets: assets,
			Ledger: job.Ledger.Snapshot(),
		}, nil
	})
}

// segmentRequests validates tool input and normalizes keywords.
func segmentRequests(in []SegmentInput) ([]footage.SegmentRequest, error) {
	if len(in) == 0 {
		return nil, errors.New("segments are required")
	}
	seen := make(map[string]bool, len(in))
	out := make([]footage.SegmentRequest, 0, len(in))
	for i, s := range in {
		id := s.ID
		if id == "" {
			id = fmt.Sprintf("segment-%d", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate segment id %q", id)
		}
		seen[id] = true
		kw := toolutil.NormKeywords(s.Keywords)
		if len(kw) == 0 {
			return nil, fmt.Errorf("segment %q has no keywords", id)
		}
		out = append(out, footage.SegmentRequest{
			ID:             id,
			Keywords:       kw,
			TargetDuration: time.Duration(s.TargetDuration * float64(time.Second)),
		})
	}
	return out, nil
}

func candidateTotal(e *footage.ExhaustionError) int {
	n := 0
	for _, a := range e.Attempts {
		n += a.Candidates
	}
	return n
}

// jobFailure adds the per-(source, keyword) breakdown to an exhausted job's
// error so the caller sees why each search came up empty.
func jobFailure(err error) error {
	var exh *footage.ExhaustionError
	if !errors.As(err, &exh) {
		return err
	}
	return fmt.Errorf("%w (%d of %d candidates reached validation)\n%s",
		err, exh.ValidationAttempts(), candidateTotal(exh), exh.Breakdown())
}
