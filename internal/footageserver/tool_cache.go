package footageserver

import (
	"context"
	"errors"
	"time"

	"github.com/anatolykoptev/go_footage/internal/engine/footage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerCacheRecent(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "footage_cache_recent",
		Description: "List the most recently cached stock clips (durable cache, newest first) with source, candidate id, keyword and local path.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input RecentInput) (*mcp.CallToolResult, RecentOutput, error) {
		if d.Env.Index == nil {
			return nil, RecentOutput{}, errors.New("asset index is not configured")
		}
		assets, err := d.Env.Index.Recent(ctx, input.Limit)
		if err != nil {
			return nil, RecentOutput{}, err
		}
		out := RecentOutput{Assets: make([]CachedAsset, 0, len(assets))}
		for _, a := range assets {
			out.Assets = append(out.Assets, cachedAsset(a))
		}
		return nil, out, nil
	})
}

func cachedAsset(a footage.IndexedAsset) CachedAsset {
	return CachedAsset{
		Source:      a.Source,
		CandidateID: a.CandidateID,
		Name:        a.Name,
		Keyword:     a.Keyword,
		Path:        a.Path,
		Duration:    a.Duration.Seconds(),
		PlacedAt:    a.PlacedAt.UTC().Format(time.RFC3339),
	}
}
