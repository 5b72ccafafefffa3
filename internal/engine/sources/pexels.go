package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/anatolykoptev/go_footage/internal/engine"
	"github.com/anatolykoptev/go_footage/internal/engine/footage"
)

// PexelsDefaultHost is the public Pexels API.
const PexelsDefaultHost = "https://api.pexels.com"

// Pexels searches landscape stock video on Pexels.
type Pexels struct {
	apiKey string
	host   string
}

// NewPexels returns a Pexels source. An empty host uses PexelsDefaultHost.
func NewPexels(apiKey, host string) *Pexels {
	if host == "" {
		host = PexelsDefaultHost
	}
	return &Pexels{apiKey: apiKey, host: host}
}

func (p *Pexels) Name() string       { return "pexels" }
func (p *Pexels) PrimaryDedup() bool { return false }

// Search queries /videos/search for keyword.
func (p *Pexels) Search(ctx context.Context, keyword string, count int) ([]footage.Candidate, error) {
	return cachedSearch(ctx, p.Name(), keyword, count, func() ([]footage.Candidate, error) {
		engine.IncrPexelsRequests()
		body, err := apiCall{
			source:  p.Name(),
			keyword: keyword,
			build: func(ctx context.Context) (*http.Request, error) {
				q := url.Values{}
				q.Set("query", keyword)
				q.Set("per_page", strconv.Itoa(count))
				q.Set("orientation", "landscape")
				q.Set("size", "medium")
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinHost(p.host, "/videos/search")+"?"+q.Encode(), nil)
				if err != nil {
					return nil, err
				}
				req.Header.Set("Authorization", p.apiKey)
				req.Header.Set("User-Agent", engine.RandomUserAgent())
				return req, nil
			},
		}.do(ctx)
		if err != nil {
			return nil, err
		}
		out, err := parsePexelsResponse(body)
		if err != nil {
			return nil, &footage.AdapterError{Source: p.Name(), Op: "search", Keyword: keyword, Err: err}
		}
		slog.Debug("pexels: search complete", slog.String("keyword", keyword), slog.Int("results", len(out)))
		return out, nil
	})
}

// Fetch downloads the candidate's widest rendition.
func (p *Pexels) Fetch(ctx context.Context, c footage.Candidate) (io.ReadCloser, error) {
	return openRemote(ctx, p.Name(), c)
}

type pexelsResponse struct {
	Videos []struct {
		ID         int64 `json:"id"`
		Duration   int   `json:"duration"`
		VideoFiles []struct {
			Link  string `json:"link"`
			Width int    `json:"width"`
		} `json:"video_files"`
	} `json:"videos"`
}

// parsePexelsResponse keeps API order and picks the widest file per video.
func parsePexelsResponse(body []byte) ([]footage.Candidate, error) {
	var data pexelsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode pexels response: %w", err)
	}
	out := make([]footage.Candidate, 0, len(data.Videos))
	for _, v := range data.Videos {
		best, bestWidth := "", -1
		for _, f := range v.VideoFiles {
			if f.Link != "" && f.Width > bestWidth {
				best, bestWidth = f.Link, f.Width
			}
		}
		if best == "" {
			continue
		}
		id := fmt.Sprintf("pexels-%d", v.ID)
		name := baseName(best)
		if name == "" {
			name = id + ".mp4"
		}
		out = append(out, footage.Candidate{
			ID:       id,
			Name:     name,
			URL:      best,
			Duration: time.Duration(v.Duration) * time.Second,
			Source:   "pexels",
		})
	}
	return out, nil
}
