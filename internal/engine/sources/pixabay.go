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

// PixabayDefaultHost is the public Pixabay site.
const PixabayDefaultHost = "https://pixabay.com"

// Pixabay searches horizontal film footage on Pixabay.
type Pixabay struct {
	apiKey string
	host   string
}

// NewPixabay returns a Pixabay source. An empty host uses PixabayDefaultHost.
func NewPixabay(apiKey, host string) *Pixabay {
	if host == "" {
		host = PixabayDefaultHost
	}
	return &Pixabay{apiKey: apiKey, host: host}
}

func (p *Pixabay) Name() string       { return "pixabay" }
func (p *Pixabay) PrimaryDedup() bool { return false }

// Search queries /api/videos/ for keyword.
func (p *Pixabay) Search(ctx context.Context, keyword string, count int) ([]footage.Candidate, error) {
	// The API rejects per_page outside 3..200.
	perPage := min(max(count, 3), 200)
	return cachedSearch(ctx, p.Name(), keyword, count, func() ([]footage.Candidate, error) {
		engine.IncrPixabayRequests()
		body, err := apiCall{
			source:  p.Name(),
			keyword: keyword,
			build: func(ctx context.Context) (*http.Request, error) {
				q := url.Values{}
				q.Set("key", p.apiKey)
				q.Set("q", keyword)
				q.Set("per_page", strconv.Itoa(perPage))
				q.Set("video_type", "film")
				q.Set("orientation", "horizontal")
				q.Set("safesearch", "true")
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinHost(p.host, "/api/videos/")+"?"+q.Encode(), nil)
				if err != nil {
					return nil, err
				}
				req.Header.Set("User-Agent", engine.RandomUserAgent())
				return req, nil
			},
		}.do(ctx)
		if err != nil {
			return nil, err
		}
		out, err := parsePixabayResponse(body)
		if err != nil {
			return nil, &footage.AdapterError{Source: p.Name(), Op: "search", Keyword: keyword, Err: err}
		}
		if len(out) > count {
			out = out[:count]
		}
		slog.Debug("pixabay: search complete", slog.String("keyword", keyword), slog.Int("results", len(out)))
		return out, nil
	})
}

// Fetch downloads the candidate's large (or medium) rendition.
func (p *Pixabay) Fetch(ctx context.Context, c footage.Candidate) (io.ReadCloser, error) {
	return openRemote(ctx, p.Name(), c)
}

type pixabayRendition struct {
	URL string `json:"url"`
}

type pixabayResponse struct {
	Hits []struct {
		ID       int64 `json:"id"`
		Duration int   `json:"duration"`
		Videos   struct {
			Large  pixabayRendition `json:"large"`
			Medium pixabayRendition `json:"medium"`
		} `json:"videos"`
	} `json:"hits"`
}

func parsePixabayResponse(body []byte) ([]footage.Candidate, error) {
	var data pixabayResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode pixabay response: %w", err)
	}
	out := make([]footage.Candidate, 0, len(data.Hits))
	for _, h := range data.Hits {
		link := h.Videos.Large.URL
		if link == "" {
			link = h.Videos.Medium.URL
		}
		if link == "" {
			continue
		}
		id := fmt.Sprintf("pixabay-%d", h.ID)
		name := baseName(link)
		if name == "" {
			name = id + ".mp4"
		}
		out = append(out, footage.Candidate{
			ID:       id,
			Name:     name,
			URL:      link,
			Duration: time.Duration(h.Duration) * time.Second,
			Source:   "pixabay",
		})
	}
	return out, nil
}
