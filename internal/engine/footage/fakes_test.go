package footage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeSource serves canned pools per keyword and canned media per id.
// Media "ok:<secs>" probes fine, "corrupt" fails to probe, and a missing
// entry fails the fetch.
type fakeSource struct {
	name    string
	primary bool
	pools   map[string][]Candidate
	errs    map[string]error
	media   map[string]string

	mu       sync.Mutex
	searches []string
	stamps   []time.Time
	fetches  []string
}

func (f *fakeSource) Name() string       { return f.name }
func (f *fakeSource) PrimaryDedup() bool { return f.primary }

func (f *fakeSource) Search(ctx context.Context, keyword string, count int) ([]Candidate, error) {
	f.mu.Lock()
	f.searches = append(f.searches, keyword)
	f.stamps = append(f.stamps, time.Now())
	f.mu.Unlock()
	if err := f.errs[keyword]; err != nil {
		return nil, err
	}
	pool := f.pools[keyword]
	if len(pool) > count {
		pool = pool[:count]
	}
	return append([]Candidate(nil), pool...), nil
}

func (f *fakeSource) Fetch(ctx context.Context, c Candidate) (io.ReadCloser, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, c.ID)
	f.mu.Unlock()
	body, ok := f.media[c.ID]
	if !ok {
		return nil, &AdapterError{Source: f.name, Op: "fetch", StatusCode: 404, Err: errors.New("not found")}
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeSource) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

// fakeProber reads the "ok:<secs>" marker written by fakeSource media.
type fakeProber struct{}

func (fakeProber) Probe(_ context.Context, path string) (MediaInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MediaInfo{}, err
	}
	secs, ok := bytes.CutPrefix(data, []byte("ok:"))
	if !ok {
		return MediaInfo{}, errors.New("invalid data found when processing input")
	}
	f, err := strconv.ParseFloat(string(secs), 64)
	if err != nil {
		return MediaInfo{}, err
	}
	return MediaInfo{Duration: time.Duration(f * float64(time.Second)), HasVideo: true, Width: 1920, Height: 1080}, nil
}

func cand(id, name string) Candidate {
	return Candidate{ID: id, Name: name, URL: "https://media.example/" + id + ".mp4"}
}

type harness struct {
	scratch  string
	ephem    string
	cache    string
	ledger   *Ledger
	router   *Router
	resolver *Resolver
}

func newHarness(t *testing.T, gates *GateSet, sources ...Source) *harness {
	t.Helper()
	root := t.TempDir()
	h := &harness{
		scratch: filepath.Join(root, "scratch"),
		ephem:   filepath.Join(root, "ephemeral"),
		cache:   filepath.Join(root, "cache"),
		ledger:  NewLedger(),
	}
	v, err := NewValidator(h.scratch, fakeProber{}, 5*time.Second)
	require.NoError(t, err)
	h.router, err = NewRouter(h.ephem, h.cache, "job-1", nil)
	require.NoError(t, err)
	h.resolver, err = NewResolver(sources, h.ledger, v, h.router, Options{PoolSize: 10, Gates: gates})
	require.NoError(t, err)
	return h
}

// scratchFiles lists whatever is left in the scratch dir.
func (h *harness) scratchFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(h.scratch)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
