package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pevans/sitemigrate"
	"github.com/pevans/sitemigrate/frontmatter"
)

// RecordsPath returns the flat JSON array file for kind under dataDir.
func RecordsPath(dataDir string, kind sitemigrate.Kind) string {
	return filepath.Join(dataDir, kind.Collection()+"-all-fields.json")
}

// CollectionDir returns the Markdown directory for kind under dataDir.
func CollectionDir(dataDir string, kind sitemigrate.Kind) string {
	return filepath.Join(dataDir, kind.Collection())
}

// WriteRecords writes records as an indented JSON array. A nil slice is
// written as []. The file is left untouched when its content is unchanged.
func WriteRecords[T any](path string, records []T) (bool, error) {
	if records == nil {
		records = []T{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return false, fmt.Errorf("failed to marshal records: %w", err)
	}

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, buf.Bytes()) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("failed to write records: %w", err)
	}
	return true, nil
}

// ReadRecords reads a JSON array written by WriteRecords. A missing file
// yields nil records and no error.
func ReadRecords[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records from %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// Render converts a record into its Markdown document.
func Render(record any) (*frontmatter.Document, error) {
	switch r := record.(type) {
	case *sitemigrate.Publication:
		return frontmatter.FromPublication(r)
	case *sitemigrate.Person:
		return frontmatter.FromPerson(r)
	case *sitemigrate.NewsItem:
		return frontmatter.FromNews(r)
	}
	return nil, fmt.Errorf("unsupported record type %T", record)
}
