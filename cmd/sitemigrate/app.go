package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pevans/sitemigrate"
	"github.com/pevans/sitemigrate/config"
	"github.com/pevans/sitemigrate/fetch"
	"github.com/pevans/sitemigrate/logging"
	"github.com/pevans/sitemigrate/pipeline"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// app holds what a command needs for one run.
type app struct {
	runner *pipeline.Runner
	log    *zap.Logger
	cache  *fetch.CacheStore
}

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("failed to close fetch cache", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

// loadConfig applies defaults, the config file, the --root flag and the
// environment, in that order.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		base := rootDir
		if base == "" {
			base = "."
		}
		path = filepath.Join(base, config.DefaultFileName)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if rootDir != "" {
		cfg.Root = rootDir
	}
	cfg.CacheDSN = getEnv("SITEMIGRATE_CACHE_DSN", cfg.CacheDSN)
	cfg.SearchIndexURL = getEnv("SITEMIGRATE_INDEX_URL", cfg.SearchIndexURL)
	return cfg, nil
}

// newApp builds the runner. The network client and its cache are only set
// up when online is true.
func newApp(online bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	logger, err := logging.New(verbose)
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("run", runID.String()))

	a := &app{
		log: logger,
		runner: &pipeline.Runner{
			Config: cfg,
			Log:    logger,
			Now:    time.Now,
			RunID:  runID,
		},
	}
	if !online {
		return a, nil
	}

	dsn := cfg.Path(cfg.CacheDSN)
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	cache, err := fetch.NewCacheStore(dsn)
	if err != nil {
		logger.Warn("running without fetch cache", zap.Error(err))
		cache = nil
	}
	a.cache = cache
	a.runner.Fetcher = fetch.NewClient(cfg.FetchTimeout, cache, runID, a.log)
	return a, nil
}

func withRunner(ctx context.Context, online bool, fn func(*app) error) error {
	a, err := newApp(online)
	if err != nil {
		return err
	}
	defer a.close()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(a)
}

func printReport(r *pipeline.Report) {
	if r == nil {
		return
	}

	fmt.Printf("Run %s\n", r.RunID)
	if r.Pages > 0 {
		fmt.Printf("  Pages:      %d (%d unclassified, %d duplicate)\n", r.Pages, r.Dropped, r.Duplicates)
	}
	for _, kind := range sitemigrate.Kinds {
		extracted, ok := r.Extracted[kind]
		written := r.Written[kind]
		summaries, hasSummaries := r.Summaries[kind]
		if !ok && written == 0 && !hasSummaries {
			continue
		}
		fmt.Printf("  %-12s extracted %d, written %d", kind.Collection()+":", extracted, written)
		if hasSummaries {
			fmt.Printf(", summaries updated %d", summaries.Updated)
		}
		fmt.Println()
	}
	for _, s := range r.Skipped {
		fmt.Printf("  Skipped %s (%s): %v\n", s.Slug, s.Kind, s.Err)
	}
	if r.ConfigChanged {
		fmt.Println("  CMS config updated")
	}
	if r.Wired+r.WireSkipped+r.WireFailed > 0 {
		fmt.Printf("  Pages wired %d, without shell %d, failed %d\n", r.Wired, r.WireSkipped, r.WireFailed)
	}
}
