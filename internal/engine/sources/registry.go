package sources

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_footage/internal/engine"
	"github.com/anatolykoptev/go_footage/internal/engine/footage"
)

// Build returns the configured sources in rank order. Sources without
// credentials are skipped with a warning; unknown names are an error.
func Build(c engine.Config) ([]footage.Source, error) {
	var out []footage.Source
	seen := map[string]bool{}
	for _, raw := range c.Sources {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case "ai_search":
			if c.AISearchURL == "" {
				slog.Warn("sources: ai_search disabled, AI_SEARCH_URL not set")
				continue
			}
			out = append(out, NewAISearch(c.AISearchURL, c.AISearchAPIKey))
		case "pexels":
			if c.PexelsAPIKey == "" {
				slog.Warn("sources: pexels disabled, PEXELS_API_KEY not set")
				continue
			}
			out = append(out, NewPexels(c.PexelsAPIKey, c.PexelsAPIHost))
		case "pixabay":
			if c.PixabayAPIKey == "" {
				slog.Warn("sources: pixabay disabled, PIXABAY_API_KEY not set")
				continue
			}
			out = append(out, NewPixabay(c.PixabayAPIKey, c.PixabayAPIHost))
		default:
			return nil, fmt.Errorf("sources: unknown source %q", raw)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("sources: no source is enabled")
	}
	names := make([]string, len(out))
	for i, s := range out {
		names[i] = s.Name()
	}
	slog.Info("sources: enabled", slog.String("ranked", strings.Join(names, ",")))
	return out, nil
}
