package fetch

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotCached is returned when a URL has never been fetched successfully.
var ErrNotCached = errors.New("url not cached")

// CacheStore keeps the last successful response body per URL using SQLite,
// so later runs can fall back to it when the network is unavailable.
type CacheStore struct {
	db *sql.DB
}

// CacheEntry is one cached response.
type CacheEntry struct {
	URL         string
	Body        []byte
	ContentType string
	FetchedAt   time.Time
	RunID       uuid.UUID
}

// NewCacheStore creates a new cache store with the given database path.
func NewCacheStore(dbPath string) (*CacheStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &CacheStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the cache table if it doesn't exist.
func (c *CacheStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fetch_cache (
		url TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		content_type TEXT NOT NULL DEFAULT '',
		fetched_at TEXT NOT NULL,
		run_id TEXT NOT NULL
	);
	`

	_, err := c.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (c *CacheStore) Close() error {
	return c.db.Close()
}

// Get returns the cached entry for url, or ErrNotCached.
func (c *CacheStore) Get(url string) (*CacheEntry, error) {
	query := "SELECT body, content_type, fetched_at, run_id FROM fetch_cache WHERE url = ?"

	var (
		entry     = CacheEntry{URL: url}
		fetchedAt string
		runID     string
	)
	err := c.db.QueryRow(query, url).Scan(&entry.Body, &entry.ContentType, &fetchedAt, &runID)
	if err == sql.ErrNoRows {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		entry.FetchedAt = t
	}
	if id, err := uuid.Parse(runID); err == nil {
		entry.RunID = id
	}

	return &entry, nil
}

// Put stores or replaces the cached body for url.
func (c *CacheStore) Put(entry CacheEntry) error {
	query := "INSERT OR REPLACE INTO fetch_cache (url, body, content_type, fetched_at, run_id) VALUES (?, ?, ?, ?, ?)"
	_, err := c.db.Exec(query,
		entry.URL,
		entry.Body,
		entry.ContentType,
		entry.FetchedAt.UTC().Format(time.RFC3339),
		entry.RunID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update cache: %w", err)
	}
	return nil
}
