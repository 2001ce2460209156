package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field ids the builder uses for people records in its handover data.
const (
	sidecarSlugKey     = "TAIvpALDu"
	sidecarNameKey     = "Hohw1kgab"
	sidecarPositionKey = "MY38jWI86"

	maxSidecarDepth = 15
)

// SidecarRecord is one people record found in the handover data.
type SidecarRecord struct {
	Slug     string
	Name     string
	Position string
}

// Sidecar is the structured data embedded in a shell.
type Sidecar struct {
	Records []SidecarRecord
}

// Find returns the record for slug.
func (s Sidecar) Find(slug string) (SidecarRecord, bool) {
	for _, r := range s.Records {
		if r.Slug == slug {
			return r, true
		}
	}
	return SidecarRecord{}, false
}

var errNoSidecar = errors.New("no embedded data")

// ParseSidecar decodes the handover data in markup. Values in the data are
// either inline or numeric references to other entries of the top-level
// array, possibly wrapped in {type, value} objects.
func ParseSidecar(markup string, sel Selectors) (Sidecar, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Sidecar{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var raw string
	for _, selector := range sel.Sidecar {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			raw = text
			break
		}
	}
	if raw == "" {
		return Sidecar{}, errNoSidecar
	}

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return Sidecar{}, fmt.Errorf("failed to decode embedded data: %w", err)
	}

	var sidecar Sidecar
	seen := make(map[string]bool)
	walkSidecar(data, data, 0, func(obj map[string]any) {
		slug := resolveRef(data, obj[sidecarSlugKey], 0)
		name := resolveRef(data, obj[sidecarNameKey], 0)
		if !strings.Contains(slug, "-") || len(name) <= 2 || seen[slug] {
			return
		}
		seen[slug] = true
		sidecar.Records = append(sidecar.Records, SidecarRecord{
			Slug:     slug,
			Name:     name,
			Position: resolveRef(data, obj[sidecarPositionKey], 0),
		})
	})

	return sidecar, nil
}

func walkSidecar(root, node any, depth int, visit func(map[string]any)) {
	if depth > maxSidecarDepth {
		return
	}
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			walkSidecar(root, item, depth+1, visit)
		}
	case map[string]any:
		_, hasSlug := v[sidecarSlugKey]
		_, hasName := v[sidecarNameKey]
		if hasSlug && hasName {
			visit(v)
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkSidecar(root, v[k], depth+1, visit)
		}
	}
}

func resolveRef(root, ref any, depth int) string {
	if depth > maxSidecarDepth {
		return ""
	}
	switch v := ref.(type) {
	case string:
		return v
	case float64:
		items, ok := root.([]any)
		if !ok || v != math.Trunc(v) || v < 0 || int(v) >= len(items) {
			return ""
		}
		return resolveRef(root, items[int(v)], depth+1)
	case map[string]any:
		if value, ok := v["value"]; ok {
			return resolveRef(root, value, depth+1)
		}
	}
	return ""
}
