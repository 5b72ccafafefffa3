// go_footage — stock footage resolution MCP server.
//
// Exposes footage_resolve, footage_search and footage_cache_recent.
// Each segment of a render job gets one validated clip, searched across
// ranked sources (AI library search, Pexels, Pixabay) under per-source
// rate limits, deduplicated within the job and stored on local disk.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_footage/internal/engine"
	"github.com/anatolykoptev/go_footage/internal/engine/footage"
	"github.com/anatolykoptev/go_footage/internal/engine/sources"
	"github.com/anatolykoptev/go_footage/internal/footageserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	c := initEngine()

	srcs, err := sources.Build(c)
	if err != nil {
		slog.Error("sources init failed", slog.Any("error", err))
		os.Exit(1)
	}

	prober, err := footage.NewFFProbe(c.FFProbePath)
	if err != nil {
		slog.Error("ffprobe init failed", slog.Any("error", err))
		os.Exit(1)
	}
	validator, err := footage.NewValidator(c.ScratchDir, prober, c.DownloadTimeout)
	if err != nil {
		slog.Error("validator init failed", slog.Any("error", err))
		os.Exit(1)
	}

	index := openIndex(c)
	if index != nil {
		defer index.Close()
	}

	gates := footage.NewGateSet(c.IntervalFor)
	gates.OnTurn(func(source string, waited time.Duration, _ time.Time) {
		slog.Debug("footage: gate turn", slog.String("source", source), slog.Duration("waited", waited))
	})

	fenv := &footage.Env{
		Sources:      srcs,
		Gates:        gates,
		Validator:    validator,
		Index:        index,
		EphemeralDir: c.EphemeralDir,
		CacheDir:     c.CacheDir,
		PoolSize:     c.PoolSize,
	}

	slog.Info("starting go_footage",
		slog.String("port", mcpPort),
		slog.Int("sources", len(srcs)),
		slog.Duration("search_interval", c.SearchInterval),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_footage",
		Version: version,
	}, nil)

	footageserver.RegisterTools(server, footageserver.Deps{Env: fenv, Concurrency: c.Concurrency})
	slog.Info("tools registered", slog.Int("count", 3))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_footage",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 1800 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() engine.Config {
	dataDir := env.Str("FOOTAGE_DATA_DIR", filepath.Join(os.TempDir(), "go_footage"))
	c := engine.Config{
		Sources:         env.List("FOOTAGE_SOURCES", "ai_search,pexels,pixabay"),
		PoolSize:        env.Int("FOOTAGE_POOL_SIZE", 10),
		SearchInterval:  env.Duration("FOOTAGE_SEARCH_INTERVAL", 3*time.Second),
		SourceIntervals: map[string]time.Duration{},
		Concurrency:     env.Int("FOOTAGE_CONCURRENCY", 1),

		AISearchURL:    env.Str("AI_SEARCH_URL", ""),
		AISearchAPIKey: env.Str("AI_SEARCH_API_KEY", ""),
		PexelsAPIKey:   env.Str("PEXELS_API_KEY", ""),
		PexelsAPIHost:  env.Str("PEXELS_API_HOST", sources.PexelsDefaultHost),
		PixabayAPIKey:  env.Str("PIXABAY_API_KEY", ""),
		PixabayAPIHost: env.Str("PIXABAY_API_HOST", sources.PixabayDefaultHost),

		ScratchDir:      env.Str("FOOTAGE_SCRATCH_DIR", filepath.Join(dataDir, "scratch")),
		EphemeralDir:    env.Str("FOOTAGE_EPHEMERAL_DIR", filepath.Join(dataDir, "jobs")),
		CacheDir:        env.Str("FOOTAGE_CACHE_DIR", filepath.Join(dataDir, "assets")),
		FFProbePath:     env.Str("FFPROBE_PATH", ""),
		FetchTimeout:    env.Duration("FETCH_TIMEOUT", 20*time.Second),
		DownloadTimeout: env.Duration("FOOTAGE_DOWNLOAD_TIMEOUT", 5*time.Minute),

		DatabaseURL: env.Str("DATABASE_URL", ""),
		IndexPath:   env.Str("FOOTAGE_INDEX_PATH", filepath.Join(dataDir, "index.db")),

		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	for _, name := range []string{"ai_search", "pexels", "pixabay"} {
		key := strings.ToUpper(name) + "_SEARCH_INTERVAL"
		if d := env.Duration(key, -1); d >= 0 {
			c.SourceIntervals[name] = d
		}
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 6*time.Hour)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
	return c
}

// openIndex prefers Postgres when DATABASE_URL is set, else SQLite.
// The index is optional: a failure only disables footage_cache_recent.
func openIndex(c engine.Config) footage.AssetIndex {
	if c.DatabaseURL != "" {
		pg, err := footage.ConnectPostgresIndex(context.Background(), c.DatabaseURL)
		if err == nil {
			slog.Info("asset index: postgres")
			return pg
		}
		slog.Warn("asset index: postgres init failed, falling back to sqlite", slog.Any("error", err))
	}
	if c.IndexPath == "" {
		return nil
	}
	idx, err := footage.OpenSQLiteIndex(c.IndexPath)
	if err != nil {
		slog.Warn("asset index: sqlite init failed, index disabled", slog.Any("error", err))
		return nil
	}
	slog.Info("asset index: sqlite", slog.String("path", c.IndexPath))
	return idx
}
