// Package content stores migrated records: one front-matter Markdown file
// per record in a collection directory, plus flat JSON arrays per kind.
package content

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pevans/sitemigrate/frontmatter"
)

// Store is a collection of Markdown records stored in a directory
type Store struct {
	dir string
}

// Entry is one parsed Markdown record.
type Entry struct {
	Slug string
	Doc  *frontmatter.Document
}

// ReadError describes a failure to read a single Markdown file.
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ListResult contains the records of a collection, including any per-file
// errors that occurred while reading it.
type ListResult struct {
	Entries []Entry
	Errors  []ReadError
}

// NewStore creates a store, creating dir if it doesn't exist.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create collection directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// OpenStore returns a store over dir without creating it. Listing a store
// whose directory is missing yields no entries.
func OpenStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the collection directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file a record with slug is stored in.
func (s *Store) Path(slug string) string {
	return filepath.Join(s.dir, slug+".md")
}

// Write saves doc under slug. It reports whether the file content changed;
// identical content is not rewritten.
func (s *Store) Write(slug string, doc *frontmatter.Document) (bool, error) {
	if slug == "" || strings.ContainsAny(slug, `/\`) {
		return false, fmt.Errorf("invalid slug %q", slug)
	}

	data := frontmatter.Encode(doc)
	path := s.Path(slug)

	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("failed to write record %s: %w", slug, err)
	}
	return true, nil
}

// List returns every record in the collection sorted by slug. Unreadable
// or malformed files are collected in the result's Errors slice rather than
// failing the listing. A non-nil error return indicates the directory
// itself could not be read.
func (s *Store) List() (*ListResult, error) {
	result := &ListResult{}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read collection directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		doc, err := s.read(filepath.Join(s.dir, name))
		if err != nil {
			result.Errors = append(result.Errors, ReadError{
				Filename: name,
				Err:      err,
			})
			continue
		}

		result.Entries = append(result.Entries, Entry{
			Slug: strings.TrimSuffix(name, ".md"),
			Doc:  doc,
		})
	}

	return result, nil
}

// Get retrieves a record by slug. A missing record is not an error.
func (s *Store) Get(slug string) (*frontmatter.Document, error) {
	doc, err := s.read(s.Path(slug))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read record %s: %w", slug, err)
	}
	return doc, nil
}

func (s *Store) read(path string) (*frontmatter.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return frontmatter.Parse(data)
}
