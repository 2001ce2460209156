// Package fetch performs the few network reads a migration run needs: the
// search index, listing pages, live page fallbacks and attachment downloads.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pevans/sitemigrate/logging"
)

// UserAgent identifies the migration tool to the origin server.
const UserAgent = "sitemigrate/1.0 (static site to CMS migration)"

// Client fetches URLs sequentially. When a cache is attached, successful
// responses are recorded and page reads prefer the cached copy.
type Client struct {
	http  *http.Client
	cache *CacheStore
	runID uuid.UUID
	now   func() time.Time
	log   *zap.Logger
}

// NewClient creates a client with the given timeout. cache and log may be
// nil.
func NewClient(timeout time.Duration, cache *CacheStore, runID uuid.UUID, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:  &http.Client{Timeout: timeout},
		cache: cache,
		runID: runID,
		now:   time.Now,
		log:   logging.OrNop(log),
	}
}

// Fetch performs a GET and returns the body. Non-200 responses are errors.
// Successful bodies are written to the cache when one is attached.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.cache != nil {
		err := c.cache.Put(CacheEntry{
			URL:         url,
			Body:        body,
			ContentType: resp.Header.Get("Content-Type"),
			FetchedAt:   c.now(),
			RunID:       c.runID,
		})
		if err != nil {
			c.log.Warn("failed to cache response", zap.String("url", url), zap.Error(err))
		}
	}

	return body, nil
}

// Cached returns the cached body for url without touching the network.
func (c *Client) Cached(url string) ([]byte, error) {
	if c.cache == nil {
		return nil, ErrNotCached
	}
	entry, err := c.cache.Get(url)
	if err != nil {
		return nil, err
	}
	return entry.Body, nil
}

// FetchHTML returns the markup of a page, preferring a cached copy so that
// repeated runs read the same bytes.
func (c *Client) FetchHTML(ctx context.Context, url string) (string, error) {
	if body, err := c.Cached(url); err == nil {
		return string(body), nil
	}

	body, err := c.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Download saves url to path. An existing non-empty file is kept and
// reported as not downloaded. Empty responses are errors and leave no file.
func (c *Client) Download(ctx context.Context, url, path string) (bool, error) {
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return false, nil
	}

	body, err := c.Fetch(ctx, url)
	if err != nil {
		return false, err
	}
	if len(body) == 0 {
		return false, errors.New("empty response body")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create download directory: %w", err)
	}

	tmp := path + ".part"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return false, fmt.Errorf("failed to write download: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return false, fmt.Errorf("failed to move download into place: %w", err)
	}

	return true, nil
}
