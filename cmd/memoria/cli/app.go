package cli

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/clewlabs/memoria/internal/capture"
	"github.com/clewlabs/memoria/internal/config"
	"github.com/clewlabs/memoria/internal/githubctx"
	"github.com/clewlabs/memoria/internal/patterns"
	"github.com/clewlabs/memoria/internal/ratelimit"
	"github.com/clewlabs/memoria/internal/recall"
	"github.com/clewlabs/memoria/internal/storage"
	"github.com/clewlabs/memoria/internal/summarizer"
)

// app bundles the wired services shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    storage.Store
	provider summarizer.Provider
	cache    *recall.SnapshotCache
	engine   *recall.Engine
	capture  *capture.Service
	github   *githubctx.Service
	pattern  *patterns.Service
	limiter  *ratelimit.Limiter
}

// buildApp loads config and wires the service graph. The summarizer
// provider is optional: capture and patterns degrade to their
// heuristic fallbacks when no LLM is configured.
func buildApp() (*app, error) {
	path := configPath
	if path == "" {
		if def, err := config.DefaultPath(); err == nil {
			path = def
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	// stdout is reserved for MCP protocol traffic
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	provider, err := summarizer.NewFromEnv()
	if err != nil {
		if !errors.Is(err, summarizer.ErrNoProviderEnabled) {
			_ = store.Close()
			return nil, err
		}
		logger.Warn("no LLM provider configured, summaries degrade to fallbacks")
		provider = nil
	}

	clock := time.Now
	cache := recall.NewSnapshotCache(store.ListRecentItems, recall.CacheConfig{Clock: clock}, logger)
	limiter := ratelimit.New(logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		provider: provider,
		cache:    cache,
		engine:   recall.NewEngine(cache, clock, logger),
		capture:  capture.NewService(store, provider, cache, clock, logger),
		github:   githubctx.NewService(store, clock, logger),
		pattern:  patterns.NewService(store, provider, clock, logger),
		limiter:  limiter,
	}
	return a, nil
}

func (a *app) close() {
	if a.provider != nil {
		_ = a.provider.Close()
	}
	_ = a.store.Close()
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
