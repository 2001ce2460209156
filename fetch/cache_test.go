package fetch

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a test cache store
func createTestCacheStore(t *testing.T) *CacheStore {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "cache.db")
	store, err := NewCacheStore(dbPath)
	require.NoError(t, err, "should create cache store")
	t.Cleanup(func() { store.Close() })
	return store
}

// TestCacheGet_NotCached verifies a miss reports ErrNotCached
func TestCacheGet_NotCached(t *testing.T) {
	store := createTestCacheStore(t)

	entry, err := store.Get("https://example.com/missing")
	assert.ErrorIs(t, err, ErrNotCached)
	assert.Nil(t, entry)
}

// TestCachePut_RoundTrip verifies stored entries are returned intact
func TestCachePut_RoundTrip(t *testing.T) {
	store := createTestCacheStore(t)
	runID := uuid.New()
	fetchedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	err := store.Put(CacheEntry{
		URL:         "https://example.com/a",
		Body:        []byte("<html>a</html>"),
		ContentType: "text/html",
		FetchedAt:   fetchedAt,
		RunID:       runID,
	})
	require.NoError(t, err)

	entry, err := store.Get("https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>a</html>"), entry.Body)
	assert.Equal(t, "text/html", entry.ContentType)
	assert.True(t, fetchedAt.Equal(entry.FetchedAt))
	assert.Equal(t, runID, entry.RunID)
}

// TestCachePut_Overwrites verifies a newer fetch replaces the old body
func TestCachePut_Overwrites(t *testing.T) {
	store := createTestCacheStore(t)

	require.NoError(t, store.Put(CacheEntry{URL: "u", Body: []byte("old"), FetchedAt: time.Now()}))
	require.NoError(t, store.Put(CacheEntry{URL: "u", Body: []byte("new"), FetchedAt: time.Now()}))

	entry, err := store.Get("u")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), entry.Body)
}
