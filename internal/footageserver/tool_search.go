package footageserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_footage/internal/engine/footage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerSearch(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "footage_search",
		Description: "Run a single search against one footage source and list its candidates without downloading anything. Subject to the same per-source rate limit as footage_resolve.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
		keyword := strings.TrimSpace(input.Keyword)
		if keyword == "" {
			return nil, SearchOutput{}, errors.New("keyword is required")
		}
		src, err := pickSource(d.Env.Sources, input.Source)
		if err != nil {
			return nil, SearchOutput{}, err
		}
		count := input.Count
		if count <= 0 {
			count = d.Env.PoolSize
		}
		count = min(count, 50)

		if d.Env.Gates != nil {
			if err := d.Env.Gates.For(src.Name()).Turn(ctx); err != nil {
				return nil, SearchOutput{}, err
			}
		}
		cands, err := src.Search(ctx, keyword, count)
		if err != nil {
			return nil, SearchOutput{}, err
		}
		for i := range cands {
			cands[i].Source = src.Name()
		}
		return nil, SearchOutput{Source: src.Name(), Keyword: keyword, Candidates: cands}, nil
	})
}

// pickSource finds name among sources; empty name picks the top-ranked one.
func pickSource(sources []footage.Source, name string) (footage.Source, error) {
	if len(sources) == 0 {
		return nil, errors.New("no footage source is enabled")
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return sources[0], nil
	}
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		if s.Name() == name {
			return s, nil
		}
		names = append(names, s.Name())
	}
	return nil, fmt.Errorf("unknown source %q (enabled: %s)", name, strings.Join(names, ", "))
}
