// Package wireup rewrites the exported static pages so they show the
// migrated record instead of booting the site builder runtime.
package wireup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/pevans/sitemigrate/frontmatter"
	"github.com/pevans/sitemigrate/logging"
)

// RootID is the id of the generated content container.
const RootID = "cms-content-root"

// Options configure a Wirer.
type Options struct {
	SiteName string
	// HomeURL is the target of the back link.
	HomeURL string
	// ScriptSources and ScriptMarkers identify runtime scripts by src
	// attribute and by inline text.
	ScriptSources []string
	ScriptMarkers []string
}

// View is what the content container shows.
type View struct {
	HomeURL string
	Title   string
	Date    string
	Authors string
	Body    template.HTML
}

// Result is the outcome for one page.
type Result struct {
	Slug    string
	Path    string
	Changed bool
	Skipped bool
	Err     error
}

// Wirer rewrites pages.
type Wirer struct {
	opts Options
	md   goldmark.Markdown
	tmpl *template.Template
	log  *zap.Logger
}

var containerTemplate = template.Must(template.New("container").Parse(`
<div id="` + RootID + `">
<header>
<nav><a href="{{.HomeURL}}">← Back to Home</a></nav>
<h1>{{.Title}}</h1>
{{- if .Date}}
<div class="cms-date">{{.Date}}</div>
{{- end}}
{{- if .Authors}}
<div class="cms-authors">{{.Authors}}</div>
{{- end}}
</header>
<div class="prose">
{{.Body}}</div>
</div>
`))

// New creates a Wirer.
func New(opts Options, log *zap.Logger) *Wirer {
	if opts.HomeURL == "" {
		opts.HomeURL = "/"
	}
	return &Wirer{
		opts: opts,
		md:   goldmark.New(goldmark.WithExtensions(extension.Linkify)),
		tmpl: containerTemplate,
		log:  logging.OrNop(log),
	}
}

// ViewOf builds the container view of doc. News and publications show the
// date, or the year when there is no date.
func (w *Wirer) ViewOf(doc *frontmatter.Document) (View, error) {
	var body bytes.Buffer
	if err := w.md.Convert([]byte(doc.Body), &body); err != nil {
		return View{}, fmt.Errorf("failed to render body: %w", err)
	}

	date := doc.Value("date")
	if date == "" {
		date = doc.Value("year")
	}

	return View{
		HomeURL: w.opts.HomeURL,
		Title:   Title(doc),
		Date:    date,
		Authors: Authors(doc),
		Body:    template.HTML(body.String()),
	}, nil
}

// Title returns the display title of doc.
func Title(doc *frontmatter.Document) string {
	if t := doc.Value("title"); t != "" {
		return t
	}
	return doc.Value("name")
}

// Authors joins the author list of doc with ", ". A value that is not a
// JSON list is returned as is.
func Authors(doc *frontmatter.Document) string {
	raw := doc.Value("authors")
	if raw == "" {
		return ""
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return raw
	}
	return strings.Join(list, ", ")
}

// Rewrite returns markup with the title and preview metadata of doc, the
// runtime scripts removed and the body replaced by the content container.
func (w *Wirer) Rewrite(markup []byte, doc *frontmatter.Document) ([]byte, error) {
	page, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	// Title and preview metadata
	if title := Title(doc); title != "" {
		full := title
		if w.opts.SiteName != "" {
			full = title + " - " + w.opts.SiteName
		}
		titleTag := page.Find("title")
		if titleTag.Length() == 0 {
			page.Find("head").AppendHtml("<title></title>")
			titleTag = page.Find("title")
		}
		titleTag.SetText(full)
		page.Find(`meta[property="og:title"], meta[name="twitter:title"]`).SetAttr("content", title)
	}
	if desc := doc.Value("description"); desc != "" {
		page.Find(`meta[name="description"], meta[property="og:description"], meta[name="twitter:description"]`).SetAttr("content", desc)
	}

	// Runtime scripts
	page.Find("script").Each(func(_ int, s *goquery.Selection) {
		if w.isRuntime(s) {
			s.Remove()
		}
	})

	// Content container
	view, err := w.ViewOf(doc)
	if err != nil {
		return nil, err
	}
	var container bytes.Buffer
	if err := w.tmpl.Execute(&container, view); err != nil {
		return nil, fmt.Errorf("failed to render container: %w", err)
	}
	page.Find("body").SetHtml(container.String())

	out, err := page.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return []byte(out), nil
}

func (w *Wirer) isRuntime(s *goquery.Selection) bool {
	src, _ := s.Attr("src")
	for _, keyword := range w.opts.ScriptSources {
		if strings.Contains(src, keyword) {
			return true
		}
	}
	text := s.Text()
	for _, marker := range w.opts.ScriptMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// File rewrites the page at path in place and reports whether it changed.
func (w *Wirer) File(path string, doc *frontmatter.Document) (bool, error) {
	markup, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read page: %w", err)
	}

	out, err := w.Rewrite(markup, doc)
	if err != nil {
		return false, err
	}
	if bytes.Equal(out, markup) {
		return false, nil
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return false, fmt.Errorf("failed to write page: %w", err)
	}
	return true, nil
}

// Slug returns the page slug of doc, falling back to fallback.
func Slug(doc *frontmatter.Document, fallback string) string {
	if s := doc.Value("slug"); s != "" {
		return s
	}
	return fallback
}

// Page is one record to wire into the page directory.
type Page struct {
	Slug string
	Doc  *frontmatter.Document
}

// Pages rewrites the shell of every page in pageDir. Records without a
// shell are skipped; failures are reported per page.
func (w *Wirer) Pages(pageDir string, pages []Page) []Result {
	results := make([]Result, 0, len(pages))
	for _, p := range pages {
		slug := Slug(p.Doc, p.Slug)
		result := Result{Slug: slug, Path: filepath.Join(pageDir, slug+".html")}

		changed, err := w.File(result.Path, p.Doc)
		switch {
		case errors.Is(err, os.ErrNotExist):
			result.Skipped = true
			w.log.Debug("no page shell", zap.String("slug", slug))
		case err != nil:
			result.Err = err
			w.log.Warn("failed to wire page", zap.String("slug", slug), zap.Error(err))
		default:
			result.Changed = changed
		}
		results = append(results, result)
	}
	return results
}
