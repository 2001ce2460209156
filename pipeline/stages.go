package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pevans/sitemigrate"
	"github.com/pevans/sitemigrate/cmsconfig"
	"github.com/pevans/sitemigrate/content"
	"github.com/pevans/sitemigrate/frontmatter"
	"github.com/pevans/sitemigrate/wireup"
)

// Summaries fills in list_summary and missing years in the existing
// Markdown files.
func (r *Runner) Summaries() (*Report, error) {
	report := newReport(r.RunID)
	return report, r.summaries(report)
}

func (r *Runner) summaries(report *Report) error {
	for _, kind := range sitemigrate.Kinds {
		result, err := frontmatter.PopulateListSummary(content.CollectionDir(r.dataDir(), kind), kind, r.now())
		if err != nil {
			return err
		}
		report.Summaries[kind] = result
		r.log().Info("list summaries",
			zap.String("collection", kind.Collection()),
			zap.Int("updated", result.Updated),
			zap.Int("unchanged", result.Unchanged))
	}
	return nil
}

// CMSConfig regenerates the CMS configuration from the Markdown files.
func (r *Runner) CMSConfig() (*Report, error) {
	report := newReport(r.RunID)
	return report, r.cmsConfig(report)
}

func (r *Runner) cmsConfig(report *Report) error {
	var collections []cmsconfig.Collection
	for _, kind := range sitemigrate.Kinds {
		entries := r.listCollection(kind)
		if len(entries) == 0 {
			r.log().Info("no records for collection", zap.String("collection", kind.Collection()))
			continue
		}

		docs := make([]*frontmatter.Document, 0, len(entries))
		for _, e := range entries {
			docs = append(docs, e.Doc)
		}
		folder := path.Join(filepath.ToSlash(r.Config.DataDir), kind.Collection())
		collections = append(collections, cmsconfig.NewCollection(kind.Collection(), folder, docs))
	}

	changed, err := cmsconfig.Write(r.Config.Path(r.Config.AdminConfig), collections)
	if err != nil {
		return err
	}
	report.ConfigChanged = changed
	r.log().Info("cms config", zap.Int("collections", len(collections)), zap.Bool("changed", changed))
	return nil
}

// Wireup rewrites the static page of every Markdown record.
func (r *Runner) Wireup() (*Report, error) {
	report := newReport(r.RunID)
	return report, r.wireup(report)
}

func (r *Runner) wireup(report *Report) error {
	cfg := r.Config
	w := wireup.New(wireup.Options{
		SiteName:      cfg.SiteName,
		ScriptSources: cfg.RuntimeScriptSources,
		ScriptMarkers: cfg.RuntimeScriptMarkers,
	}, r.log())

	for _, kind := range sitemigrate.Kinds {
		var pages []wireup.Page
		for _, e := range r.listCollection(kind) {
			page := wireup.Page{Slug: e.Slug, Doc: e.Doc}
			if err := r.saveShell(wireup.Slug(page.Doc, page.Slug)); err != nil {
				return err
			}
			pages = append(pages, page)
		}

		for _, res := range w.Pages(cfg.PageDir(), pages) {
			switch {
			case res.Err != nil:
				report.WireFailed++
			case res.Skipped:
				report.WireSkipped++
			case res.Changed:
				report.Wired++
			}
		}
	}
	return nil
}

// saveShell copies the exported page of slug into ShellDir before it is
// wired, so later extractions read the exported markup. A page that is
// already wired keeps its saved copy.
func (r *Runner) saveShell(slug string) error {
	markup, err := os.ReadFile(filepath.Join(r.Config.PageDir(), slug+".html"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read page %s: %w", slug, err)
	}
	if isWired(markup) {
		return nil
	}

	saved := r.savedShellPath(slug)
	if existing, err := os.ReadFile(saved); err == nil && bytes.Equal(existing, markup) {
		return nil
	}

	if err := os.MkdirAll(r.ShellDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create shell directory: %w", err)
	}
	if err := os.WriteFile(saved, markup, 0o644); err != nil {
		return fmt.Errorf("failed to save page %s: %w", slug, err)
	}
	return nil
}

// listCollection returns the readable Markdown records of kind. Unreadable
// files are logged and left out.
func (r *Runner) listCollection(kind sitemigrate.Kind) []content.Entry {
	result, err := content.OpenStore(content.CollectionDir(r.dataDir(), kind)).List()
	if err != nil {
		r.log().Warn("failed to list collection", zap.String("collection", kind.Collection()), zap.Error(err))
		return nil
	}
	for _, re := range result.Errors {
		r.log().Warn("skipping unreadable record", zap.String("file", re.Filename), zap.Error(re.Err))
	}
	return result.Entries
}
