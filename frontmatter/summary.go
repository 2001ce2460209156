package frontmatter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pevans/sitemigrate"
)

// SummaryFields are the fields joined into list_summary, per kind.
func SummaryFields(kind sitemigrate.Kind) []string {
	switch kind {
	case sitemigrate.KindPublication:
		return []string{"year", "title", "journal"}
	case sitemigrate.KindNews:
		return []string{"year", "title"}
	case sitemigrate.KindPerson:
		return []string{"title", "position"}
	}
	return nil
}

// ListSummary joins the non-empty summary fields of doc with " | ".
func ListSummary(kind sitemigrate.Kind, doc *Document) string {
	var parts []string
	for _, key := range SummaryFields(kind) {
		if v := strings.TrimSpace(doc.Value(key)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " | ")
}

// InferYear derives a missing year: from the url and file references for
// publications, from the date and then the url for news.
func InferYear(kind sitemigrate.Kind, doc *Document, now time.Time) string {
	switch kind {
	case sitemigrate.KindPublication:
		if y := sitemigrate.YearFromURL(doc.Value("url"), now); y != "" {
			return y
		}
		for _, ref := range fileRefs(doc) {
			if y := sitemigrate.YearFromURL(ref, now); y != "" {
				return y
			}
		}
	case sitemigrate.KindNews:
		if y := sitemigrate.DateYear(doc.Value("date")); y != "" {
			return y
		}
		return sitemigrate.YearFromURL(doc.Value("url"), now)
	}
	return ""
}

func fileRefs(doc *Document) []string {
	f, ok := doc.Field("files")
	if !ok || f.Kind != JSON {
		return nil
	}
	var files []sitemigrate.File
	if err := json.Unmarshal([]byte(f.Value), &files); err != nil {
		return nil
	}
	refs := make([]string, 0, len(files))
	for _, file := range files {
		refs = append(refs, file.Ref)
	}
	return refs
}

// Populate fills a missing year and sets list_summary. It reports whether
// the document changed.
func Populate(kind sitemigrate.Kind, doc *Document, now time.Time) bool {
	before := string(Encode(doc))
	order := Order(kind)

	if kind != sitemigrate.KindPerson && strings.TrimSpace(doc.Value("year")) == "" {
		if y := InferYear(kind, doc, now); y != "" {
			doc.Set(Field{Key: "year", Value: y, Kind: Quoted}, order)
		}
	}

	if summary := ListSummary(kind, doc); summary != "" {
		doc.Set(Field{Key: SummaryKey, Value: summary, Kind: Quoted}, order)
	}

	return string(Encode(doc)) != before
}

// PopulateResult counts the files a summary pass visited.
type PopulateResult struct {
	Updated   int
	Unchanged int
}

// PopulateListSummary runs Populate over every Markdown file in dir and
// rewrites only the files that changed. A missing directory is not an
// error.
func PopulateListSummary(dir string, kind sitemigrate.Kind, now time.Time) (PopulateResult, error) {
	var result PopulateResult

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, fmt.Errorf("failed to read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".md" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return result, fmt.Errorf("failed to read %s: %w", name, err)
		}
		doc, err := Parse(data)
		if err != nil {
			return result, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		if !Populate(kind, doc, now) {
			result.Unchanged++
			continue
		}
		if err := os.WriteFile(path, Encode(doc), 0o644); err != nil {
			return result, fmt.Errorf("failed to write %s: %w", name, err)
		}
		result.Updated++
	}

	return result, nil
}
