// Package cmsconfig derives the CMS collection configuration from the
// migrated Markdown records.
package cmsconfig

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pevans/sitemigrate/frontmatter"
)

// Widget names understood by the CMS.
const (
	WidgetString   = "string"
	WidgetText     = "text"
	WidgetMarkdown = "markdown"
	WidgetDatetime = "datetime"
	WidgetImage    = "image"
	WidgetList     = "list"
	WidgetFileList = "file-list"
	WidgetFile     = "file"
	WidgetBoolean  = "boolean"
	WidgetNumber   = "number"
	WidgetObject   = "object"
)

// LongText is the length above which a string is inferred as long text.
const LongText = 200

const maxSortable = 5

// ImageMarkers identify URLs served by the image host.
var ImageMarkers = []string{"framerusercontent.com/images/"}

// Overrides map field names to a fixed widget regardless of inference.
var Overrides = map[string]string{
	"title":       WidgetString,
	"slug":        WidgetString,
	"name":        WidgetString,
	"description": WidgetText,
	"body":        WidgetMarkdown,
	"content":     WidgetMarkdown,
	"date":        WidgetDatetime,
	"image":       WidgetImage,
	"url":         WidgetString,
	"link":        WidgetString,
	"position":    WidgetString,
	"category":    WidgetString,
	"journal":     WidgetString,
	"authors":     WidgetList,
	"files":       WidgetFileList,
}

// Optional fields are never required, whatever the data shows.
var Optional = map[string]bool{
	"url":         true,
	"link":        true,
	"description": true,
	"category":    true,
	"image":       true,
	"files":       true,
	"journal":     true,
	"date":        true,
}

// SummaryPriority lists the fields considered for the collection summary.
var SummaryPriority = []string{"title", "date", "position", "journal", "description"}

var (
	isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	isoTimeRe = regexp.MustCompile(`T\d{2}:\d{2}:\d{2}`)
	urlRe     = regexp.MustCompile(`^https?://`)
)

// FieldInfo is what the records show about one field.
type FieldInfo struct {
	Name     string
	Type     string
	Required bool
}

// Analyze returns the fields of docs in first-appearance order. The type is
// inferred from the first value seen. A field is required only when every
// document carries a non-empty value for it. Bodies appear as field "body"
// when any document has one; "id" is skipped.
func Analyze(docs []*frontmatter.Document) []FieldInfo {
	var fields []FieldInfo
	seen := map[string]int{}
	present := map[string]int{}

	observe := func(name string, value any) {
		i, ok := seen[name]
		if !ok {
			i = len(fields)
			seen[name] = i
			fields = append(fields, FieldInfo{Name: name, Type: InferType(value), Required: true})
		}
		if isEmpty(value) {
			fields[i].Required = false
			return
		}
		present[name]++
	}

	for _, doc := range docs {
		for _, f := range doc.Fields {
			if f.Key == "id" {
				continue
			}
			observe(f.Key, Decode(f))
		}
		if strings.TrimSpace(doc.Body) != "" {
			observe("body", doc.Body)
		}
	}

	for i := range fields {
		if present[fields[i].Name] < len(docs) {
			fields[i].Required = false
		}
	}
	return fields
}

// Decode returns the typed value of a front matter field: JSON values are
// decoded, bare true/false and numbers become bool and float64.
func Decode(f frontmatter.Field) any {
	switch f.Kind {
	case frontmatter.JSON:
		var v any
		if err := json.Unmarshal([]byte(f.Value), &v); err == nil {
			return v
		}
	case frontmatter.Bare:
		if f.Value == "true" || f.Value == "false" {
			return f.Value == "true"
		}
		if n, err := strconv.ParseFloat(f.Value, 64); err == nil {
			return n
		}
	}
	return f.Value
}

// InferType maps an observed value to a widget name.
func InferType(value any) string {
	switch v := value.(type) {
	case nil:
		return WidgetString
	case []any:
		if len(v) > 0 {
			if obj, ok := v[0].(map[string]any); ok && obj["file"] != nil {
				return WidgetFileList
			}
		}
		return WidgetList
	case bool:
		return WidgetBoolean
	case float64, int:
		return WidgetNumber
	case string:
		return inferString(v)
	case map[string]any:
		if v["file"] != nil || v["url"] != nil {
			return WidgetFile
		}
		return WidgetObject
	}
	return WidgetString
}

func inferString(s string) string {
	// URLs stay strings unless they point at the image host
	if urlRe.MatchString(s) {
		for _, marker := range ImageMarkers {
			if strings.Contains(s, marker) {
				return WidgetImage
			}
		}
		return WidgetString
	}
	if isoDateRe.MatchString(s) || isoTimeRe.MatchString(s) {
		return WidgetDatetime
	}
	if utf8.RuneCountInString(s) > LongText {
		return WidgetText
	}
	return WidgetString
}

// WidgetFor returns the override for name, or the inferred type.
func WidgetFor(name, inferred string) string {
	if w, ok := Overrides[name]; ok {
		return w
	}
	return inferred
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}
