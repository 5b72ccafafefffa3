// Package sources implements footage.Source for each clip provider.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_footage/internal/engine"
	"github.com/anatolykoptev/go_footage/internal/engine/footage"
)

// searchRetry covers transient network and 5xx failures on search calls.
// Media downloads are never retried.
var searchRetry = engine.DefaultRetryConfig

// errRateLimited is returned from inside a retry loop so that a 429 ends
// the call instead of being retried past the rate gate.
var errRateLimited = errors.New("rate limited")

// apiCall is one search request against a provider API.
type apiCall struct {
	source  string
	keyword string
	build   func(ctx context.Context) (*http.Request, error)
}

// do sends the call with retries and returns the body of a 200 response.
// Failures come back as *footage.AdapterError.
func (c apiCall) do(ctx context.Context) ([]byte, error) {
	fail := func(status int, err error) error {
		return &footage.AdapterError{Source: c.source, Op: "search", Keyword: c.keyword, StatusCode: status, Err: err}
	}

	if engine.Cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, engine.Cfg.FetchTimeout)
		defer cancel()
	}

	resp, err := engine.RetryHTTP(ctx, searchRetry, func() (*http.Response, error) {
		req, err := c.build(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := engine.Cfg.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			return nil, errRateLimited
		}
		return resp, nil
	})
	if errors.Is(err, errRateLimited) {
		return nil, fail(http.StatusTooManyRequests, err)
	}
	if err != nil {
		return nil, fail(0, err)
	}
	defer resp.Body.Close()

	body, err := engine.ReadAPIBody(resp)
	if err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fail(resp.StatusCode, errors.New(engine.TruncateRunes(strings.TrimSpace(string(body)), 200, "...")))
	}
	return body, nil
}

// cachedSearch serves a search from the result cache, or runs it and
// stores a non-empty result.
func cachedSearch(ctx context.Context, source, keyword string, count int, run func() ([]footage.Candidate, error)) ([]footage.Candidate, error) {
	key := engine.CacheKey("search", source, strings.ToLower(keyword), strconv.Itoa(count))
	if cached, ok := engine.CacheLoadJSON[[]footage.Candidate](ctx, key); ok {
		slog.Debug("sources: search cache hit", slog.String("source", source), slog.String("keyword", keyword))
		return cached, nil
	}
	out, err := run()
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		engine.CacheStoreJSON(ctx, key, out)
	}
	return out, nil
}

// openRemote downloads c over HTTP, tagging failures with the source.
func openRemote(ctx context.Context, source string, c footage.Candidate) (io.ReadCloser, error) {
	rc, err := engine.OpenMediaStream(ctx, c.URL)
	if err != nil {
		ae := &footage.AdapterError{Source: source, Op: "fetch", Err: err}
		var se *engine.StatusError
		if errors.As(err, &se) {
			ae.StatusCode = se.StatusCode
		}
		return nil, ae
	}
	return rc, nil
}

// openLocal opens a clip that the provider exposes as a file path.
func openLocal(source, locator string) (io.ReadCloser, error) {
	p := localPath(locator)
	f, err := os.Open(p)
	if err != nil {
		return nil, &footage.AdapterError{Source: source, Op: "fetch", Err: err}
	}
	return f, nil
}

// isRemote reports whether locator is an http(s) URL.
func isRemote(locator string) bool {
	u, err := url.Parse(locator)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// localPath strips a file:// scheme.
func localPath(locator string) string {
	if u, err := url.Parse(locator); err == nil && u.Scheme == "file" {
		return u.Path
	}
	return locator
}

// baseName is the last path element of a URL or path, without query.
func baseName(locator string) string {
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		locator = u.Path
	}
	b := path.Base(locator)
	if b == "." || b == "/" {
		return ""
	}
	return b
}

// joinHost builds an endpoint URL from a configurable host and a fixed path.
func joinHost(host, p string) string {
	return strings.TrimRight(host, "/") + p
}
