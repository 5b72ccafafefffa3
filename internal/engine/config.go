package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	Sources         []string      // ranked source names, top first
	PoolSize        int           // candidates requested per search call
	SearchInterval  time.Duration // default minimum gap between searches to one source
	SourceIntervals map[string]time.Duration
	Concurrency     int // segments resolved at once within a job (1 = sequential)

	AISearchURL    string
	AISearchAPIKey string
	PexelsAPIKey   string
	PexelsAPIHost  string
	PixabayAPIKey  string
	PixabayAPIHost string

	ScratchDir      string
	EphemeralDir    string
	CacheDir        string
	FFProbePath     string
	FetchTimeout    time.Duration // search calls
	DownloadTimeout time.Duration // one candidate download

	DatabaseURL string // optional Postgres asset index
	IndexPath   string // SQLite asset index, used when DatabaseURL is empty

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (footage, sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 20 * time.Second
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	cfg = c
	Cfg = &cfg
}

// IntervalFor returns the minimum search interval configured for source.
func (c Config) IntervalFor(source string) time.Duration {
	if d, ok := c.SourceIntervals[source]; ok {
		return d
	}
	return c.SearchInterval
}
