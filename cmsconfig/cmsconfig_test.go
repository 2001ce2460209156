package cmsconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pevans/sitemigrate"
	"github.com/pevans/sitemigrate/frontmatter"
)

func publicationDocs(t *testing.T) []*frontmatter.Document {
	t.Helper()
	a, err := frontmatter.FromPublication(&sitemigrate.Publication{
		Slug:    "cooperation",
		Title:   "Cooperation and conflict",
		Authors: []string{"Cant M, Nichols H"},
		Journal: "Ecology Letters",
		Year:    "2021",
		URL:     "/pubs-news-ppl/cooperation.html",
		Files:   []sitemigrate.File{{Ref: "publications/pdfs/cooperation.pdf", Kind: sitemigrate.FileDocument}},
		Body:    "Abstract.",
	})
	require.NoError(t, err)
	b, err := frontmatter.FromPublication(&sitemigrate.Publication{
		Slug:  "helpers",
		Title: "Helpers at the den",
		URL:   "/pubs-news-ppl/helpers.html",
	})
	require.NoError(t, err)
	return []*frontmatter.Document{a, b}
}

// TestInferType verifies widget inference from value shapes
func TestInferType(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, WidgetString},
		{"file list", []any{map[string]any{"file": "a.pdf"}}, WidgetFileList},
		{"list", []any{"a"}, WidgetList},
		{"empty list", []any{}, WidgetList},
		{"bool", true, WidgetBoolean},
		{"number", 3.0, WidgetNumber},
		{"image url", "https://framerusercontent.com/images/abc.jpg", WidgetImage},
		{"other url", "https://doi.org/10.1/x", WidgetString},
		{"date", "2023-04-01", WidgetDatetime},
		{"timestamp", "at T10:00:00", WidgetDatetime},
		{"long", strings.Repeat("a", 201), WidgetText},
		{"boundary", strings.Repeat("a", 200), WidgetString},
		{"file object", map[string]any{"url": "x"}, WidgetFile},
		{"object", map[string]any{"k": "v"}, WidgetObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferType(tt.value))
		})
	}
}

// TestDecode verifies typed values are recovered from front matter
func TestDecode(t *testing.T) {
	assert.Equal(t, []any{"a"}, Decode(frontmatter.Field{Value: `["a"]`, Kind: frontmatter.JSON}))
	assert.Equal(t, true, Decode(frontmatter.Field{Value: "true", Kind: frontmatter.Bare}))
	assert.Equal(t, 12.0, Decode(frontmatter.Field{Value: "12", Kind: frontmatter.Bare}))
	assert.Equal(t, "2021", Decode(frontmatter.Field{Value: "2021", Kind: frontmatter.Quoted}))
	assert.Equal(t, "t", Decode(frontmatter.Field{Value: "t", Kind: frontmatter.Bare}))
}

// TestAnalyze verifies field order, types and requiredness
func TestAnalyze(t *testing.T) {
	fields := Analyze(publicationDocs(t))

	var names []string
	byName := map[string]FieldInfo{}
	for _, f := range fields {
		names = append(names, f.Name)
		byName[f.Name] = f
	}

	assert.Equal(t, []string{"title", "slug", "authors", "journal", "url", "year", "list_summary", "files", "body"}, names)
	assert.True(t, byName["title"].Required)
	assert.False(t, byName["journal"].Required)
	assert.False(t, byName["body"].Required)
	assert.Equal(t, WidgetFileList, byName["files"].Type)
	assert.Equal(t, WidgetList, byName["authors"].Type)
}

// TestAnalyze_SkipsID verifies the internal id is not a field
func TestAnalyze_SkipsID(t *testing.T) {
	doc := &frontmatter.Document{Fields: []frontmatter.Field{{Key: "id", Value: "1"}, {Key: "title", Value: "T"}}}
	fields := Analyze([]*frontmatter.Document{doc})
	require.Len(t, fields, 1)
	assert.Equal(t, "title", fields[0].Name)
}

// TestNewCollection verifies summary, sortable fields and widgets
func TestNewCollection(t *testing.T) {
	c := NewCollection("publications", "data/publications", publicationDocs(t))

	assert.Equal(t, "Publications", c.Label)
	assert.Equal(t, "{{title}} | {{journal}}", c.Summary)
	assert.Equal(t, []string{"title", "slug", "journal", "url", "year"}, c.SortableFields)

	widgets := map[string]Field{}
	for _, f := range c.Fields {
		widgets[f.Name] = f
	}
	assert.Equal(t, WidgetMarkdown, widgets["body"].Widget)
	assert.Equal(t, "List summary", widgets["list_summary"].Label)
	assert.True(t, widgets["authors"].ListDefault)
	assert.False(t, widgets["url"].Required)
	assert.True(t, widgets["slug"].Required)
	require.Len(t, widgets["files"].Fields, 1)
	assert.Equal(t, WidgetFile, widgets["files"].Fields[0].Widget)
}

// TestNewCollection_OptionalOverride verifies always-optional fields
func TestNewCollection_OptionalOverride(t *testing.T) {
	doc, err := frontmatter.FromPerson(&sitemigrate.Person{
		Slug:        "jane-doe",
		Name:        "Jane Doe",
		Description: "Studies mongooses.",
		URL:         "/pubs-news-ppl/jane-doe.html",
	})
	require.NoError(t, err)

	c := NewCollection("people", "data/people", []*frontmatter.Document{doc})
	for _, f := range c.Fields {
		if f.Name == "description" || f.Name == "url" {
			assert.False(t, f.Required, f.Name)
		}
	}
	assert.Equal(t, "{{title}} | {{description}}", c.Summary)
}

type renderedConfig struct {
	Backend      map[string]string `yaml:"backend"`
	MediaFolder  string            `yaml:"media_folder"`
	PublicFolder string            `yaml:"public_folder"`
	Collections  []struct {
		Name           string           `yaml:"name"`
		Folder         string           `yaml:"folder"`
		Create         bool             `yaml:"create"`
		Summary        string           `yaml:"summary"`
		SortableFields []string         `yaml:"sortable_fields"`
		Fields         []map[string]any `yaml:"fields"`
	} `yaml:"collections"`
}

// TestRender_Defaults verifies defaults when no config exists
func TestRender_Defaults(t *testing.T) {
	c := NewCollection("publications", "data/publications", publicationDocs(t))

	data, err := Render(nil, []Collection{c})
	require.NoError(t, err)

	var got renderedConfig
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "git-gateway", got.Backend["name"])
	assert.Equal(t, DefaultMediaFolder, got.MediaFolder)
	assert.Equal(t, DefaultPublicFolder, got.PublicFolder)
	require.Len(t, got.Collections, 1)
	assert.Equal(t, "data/publications", got.Collections[0].Folder)
	assert.True(t, got.Collections[0].Create)
	assert.Equal(t, c.SortableFields, got.Collections[0].SortableFields)

	first := got.Collections[0].Fields[0]
	assert.Equal(t, "Title", first["label"])
	assert.Equal(t, "string", first["widget"])
	assert.NotContains(t, first, "required")

	text := string(data)
	assert.Contains(t, text, `{label: "Title", name: "title", widget: "string"}`)
}

// TestRender_PreservesSettings verifies existing settings survive regeneration
func TestRender_PreservesSettings(t *testing.T) {
	existing := []byte(`backend:
  name: github
  repo: example/site
  branch: live
site_url: https://example.org
media_folder: "static/uploads"
public_folder: "/uploads"
collections:
  - name: stale
`)

	data, err := Render(existing, []Collection{NewCollection("news", "data/news", nil)})
	require.NoError(t, err)

	var got renderedConfig
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, map[string]string{"name": "github", "repo": "example/site", "branch": "live"}, got.Backend)
	assert.Equal(t, "static/uploads", got.MediaFolder)
	assert.Equal(t, "/uploads", got.PublicFolder)
	require.Len(t, got.Collections, 1)
	assert.Equal(t, "news", got.Collections[0].Name)

	text := string(data)
	assert.Less(t, strings.Index(text, "site_url"), strings.Index(text, "media_folder"))
	assert.NotContains(t, text, "stale")

	again, err := Render(data, []Collection{NewCollection("news", "data/news", nil)})
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

// TestRender_Invalid verifies unusable existing configs are rejected
func TestRender_Invalid(t *testing.T) {
	_, err := Render([]byte("backend: [unclosed"), nil)
	assert.Error(t, err)

	_, err = Render([]byte("- a\n- b\n"), nil)
	assert.Error(t, err)
}

// TestWrite verifies the config file is created and rewritten only on change
func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site", "admin", "config.yml")
	collections := []Collection{NewCollection("publications", "data/publications", publicationDocs(t))}

	changed, err := Write(path, collections)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = Write(path, collections)
	require.NoError(t, err)
	assert.False(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "collections:")
}
