// Package index loads the builder's search index: a JSON object mapping
// each page path to the headings, paragraphs and description found on it.
package index

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Entry is the text extracted for a single page.
type Entry struct {
	H1          []string `json:"h1"`
	H2          []string `json:"h2"`
	P           []string `json:"p"`
	Description string   `json:"description,omitempty"`
}

// Heading returns the first primary heading, or "".
func (e Entry) Heading() string {
	if len(e.H1) == 0 {
		return ""
	}
	return strings.TrimSpace(e.H1[0])
}

// Index maps page paths to their entries.
type Index map[string]Entry

// Parse decodes a search index document.
func Parse(data []byte) (Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse search index: %w", err)
	}
	if idx == nil {
		idx = Index{}
	}
	return idx, nil
}

// Paths returns every page path in sorted order.
func (idx Index) Paths() []string {
	paths := make([]string, 0, len(idx))
	for p := range idx {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ContentPaths returns the sorted paths under prefix, the only pages that
// can become records.
func (idx Index) ContentPaths(prefix string) []string {
	var paths []string
	for _, p := range idx.Paths() {
		if strings.Contains(p, prefix) {
			paths = append(paths, p)
		}
	}
	return paths
}

// Slug derives the record slug from a page path: the part after prefix
// without the .html extension.
func Slug(path, prefix string) string {
	slug := path
	if i := strings.Index(slug, prefix); i >= 0 {
		slug = slug[i+len(prefix):]
	}
	slug = strings.TrimSuffix(slug, ".html")
	return strings.Trim(slug, "/")
}
