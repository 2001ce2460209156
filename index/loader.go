package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pevans/sitemigrate/logging"
)

// ErrNoIndex is returned when no resolver could produce an index. It is
// fatal for a run.
var ErrNoIndex = errors.New("search index unavailable from every source")

// Resolver is one source of the search index.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context) (Index, error)
}

// Fetcher is the network surface the HTTP and cache resolvers need.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Cached(url string) ([]byte, error)
}

// Load tries each resolver in order and returns the first index obtained.
func Load(ctx context.Context, log *zap.Logger, resolvers ...Resolver) (Index, error) {
	log = logging.OrNop(log)

	for _, r := range resolvers {
		idx, err := r.Resolve(ctx)
		if err != nil {
			log.Warn("search index source failed", zap.String("source", r.Name()), zap.Error(err))
			continue
		}
		log.Info("loaded search index", zap.String("source", r.Name()), zap.Int("entries", len(idx)))
		return idx, nil
	}

	return nil, ErrNoIndex
}

// FileResolver reads a local snapshot of the index.
type FileResolver struct {
	Path string
}

func (r FileResolver) Name() string { return "file:" + r.Path }

func (r FileResolver) Resolve(ctx context.Context) (Index, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read search index: %w", err)
	}
	return Parse(data)
}

// HTTPResolver downloads the index. When SnapshotPath is set, a successful
// download is also written there for the next run.
type HTTPResolver struct {
	URL          string
	Fetcher      Fetcher
	SnapshotPath string
}

func (r HTTPResolver) Name() string { return "http:" + r.URL }

func (r HTTPResolver) Resolve(ctx context.Context) (Index, error) {
	if r.URL == "" {
		return nil, errors.New("no search index URL configured")
	}

	data, err := r.Fetcher.Fetch(ctx, r.URL)
	if err != nil {
		return nil, err
	}

	idx, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if r.SnapshotPath != "" {
		if err := os.MkdirAll(filepath.Dir(r.SnapshotPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		if err := os.WriteFile(r.SnapshotPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write search index snapshot: %w", err)
		}
	}

	return idx, nil
}

// CacheResolver reads the copy recorded by an earlier successful download.
type CacheResolver struct {
	URL     string
	Fetcher Fetcher
}

func (r CacheResolver) Name() string { return "cache:" + r.URL }

func (r CacheResolver) Resolve(ctx context.Context) (Index, error) {
	data, err := r.Fetcher.Cached(r.URL)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
