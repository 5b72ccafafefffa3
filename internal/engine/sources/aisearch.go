package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go_footage/internal/engine"
	"github.com/anatolykoptev/go_footage/internal/engine/footage"
	"github.com/tidwall/gjson"
)

// aiSearchThreshold is the similarity floor sent with every query.
const aiSearchThreshold = 35

// AISearch queries a text-to-video similarity index over a private clip
// library. Its clip names shadow same-named stock results.
type AISearch struct {
	endpoint string
	apiKey   string
}

// NewAISearch returns an AI search source posting to endpoint.
func NewAISearch(endpoint, apiKey string) *AISearch {
	return &AISearch{endpoint: endpoint, apiKey: apiKey}
}

func (a *AISearch) Name() string       { return "ai_search" }
func (a *AISearch) PrimaryDedup() bool { return true }

// Search posts keyword as the positive query.
func (a *AISearch) Search(ctx context.Context, keyword string, count int) ([]footage.Candidate, error) {
	return cachedSearch(ctx, a.Name(), keyword, count, func() ([]footage.Candidate, error) {
		engine.IncrAISearchRequests()
		payload, err := json.Marshal(map[string]any{
			"positive":           keyword,
			"top_n":              count,
			"positive_threshold": aiSearchThreshold,
			"negative_threshold": aiSearchThreshold,
		})
		if err != nil {
			return nil, err
		}
		body, err := apiCall{
			source:  a.Name(),
			keyword: keyword,
			build: func(ctx context.Context) (*http.Request, error) {
				req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
				if err != nil {
					return nil, err
				}
				req.Header.Set("Content-Type", "application/json")
				if a.apiKey != "" {
					req.Header.Set("Authorization", "Bearer "+a.apiKey)
				}
				return req, nil
			},
		}.do(ctx)
		if err != nil {
			return nil, err
		}
		out, err := parseAISearchResponse(body)
		if err != nil {
			return nil, &footage.AdapterError{Source: a.Name(), Op: "search", Keyword: keyword, Err: err}
		}
		if len(out) > count {
			out = out[:count]
		}
		slog.Debug("ai_search: search complete", slog.String("keyword", keyword), slog.Int("results", len(out)))
		return out, nil
	})
}

// Fetch opens a library path directly, or downloads a URL.
func (a *AISearch) Fetch(ctx context.Context, c footage.Candidate) (io.ReadCloser, error) {
	if isRemote(c.URL) {
		return openRemote(ctx, a.Name(), c)
	}
	return openLocal(a.Name(), c.URL)
}

// parseAISearchResponse reads results[].{id, video_name, download_url}.
// Entries without a locator, or pointing at a missing local file, are dropped.
func parseAISearchResponse(body []byte) ([]footage.Candidate, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("invalid JSON from ai search")
	}
	results := gjson.GetBytes(body, "results")
	out := make([]footage.Candidate, 0, len(results.Array()))
	results.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		locator := item.Get("download_url").String()
		if locator == "" {
			slog.Warn("ai_search: result without download_url", slog.String("item", engine.TruncateRunes(item.Raw, 200, "...")))
			return true
		}
		if !isRemote(locator) {
			if _, err := os.Stat(localPath(locator)); err != nil {
				slog.Warn("ai_search: result file missing", slog.String("path", locator))
				return true
			}
		}
		name := item.Get("video_name").String()
		if name == "" {
			name = baseName(locator)
		}
		id := item.Get("id").String()
		if id == "" {
			id = name
		}
		out = append(out, footage.Candidate{
			ID:       "ai-" + id,
			Name:     name,
			URL:      locator,
			Duration: time.Duration(item.Get("duration").Float() * float64(time.Second)),
			Source:   "ai_search",
		})
		return true
	})
	return out, nil
}
