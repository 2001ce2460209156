// Package pipeline runs the stages of a migration: extraction, Markdown
// emission, list summaries, CMS configuration and page wire-up.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pevans/sitemigrate"
	"github.com/pevans/sitemigrate/classify"
	"github.com/pevans/sitemigrate/config"
	"github.com/pevans/sitemigrate/content"
	"github.com/pevans/sitemigrate/extract"
	"github.com/pevans/sitemigrate/frontmatter"
	"github.com/pevans/sitemigrate/index"
	"github.com/pevans/sitemigrate/logging"
	"github.com/pevans/sitemigrate/wireup"
)

// Fetcher is the network surface of a run. fetch.Client implements it.
type Fetcher interface {
	index.Fetcher
	extract.PageFetcher
	extract.Downloader
}

// Runner executes the stages of a run. Fetcher may be nil for an offline
// run, in which case the index must exist locally.
type Runner struct {
	Config  *config.Config
	Log     *zap.Logger
	Fetcher Fetcher
	Now     func() time.Time
	RunID   uuid.UUID
}

// Skip records a page that was classified but produced no record.
type Skip struct {
	Slug string
	Kind sitemigrate.Kind
	Err  error
}

// Report summarises a run.
type Report struct {
	RunID         uuid.UUID
	Pages         int
	Duplicates    int
	Dropped       int
	Extracted     map[sitemigrate.Kind]int
	Skipped       []Skip
	Written       map[sitemigrate.Kind]int
	Summaries     map[sitemigrate.Kind]frontmatter.PopulateResult
	ConfigChanged bool
	Wired         int
	WireSkipped   int
	WireFailed    int
}

func newReport(id uuid.UUID) *Report {
	return &Report{
		RunID:     id,
		Extracted: make(map[sitemigrate.Kind]int),
		Written:   make(map[sitemigrate.Kind]int),
		Summaries: make(map[sitemigrate.Kind]frontmatter.PopulateResult),
	}
}

// Records are the extracted records of a run, per kind.
type Records struct {
	Publications []sitemigrate.Publication
	People       []sitemigrate.Person
	News         []sitemigrate.NewsItem
}

func (r *Runner) log() *zap.Logger {
	return logging.OrNop(r.Log)
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) dataDir() string {
	return r.Config.Path(r.Config.DataDir)
}

// Run executes every stage in order. Wire-up is left out when skipWireup
// is set.
func (r *Runner) Run(ctx context.Context, skipWireup bool) (*Report, error) {
	report := newReport(r.RunID)

	if err := r.extract(ctx, report); err != nil {
		return report, err
	}
	if err := r.summaries(report); err != nil {
		return report, err
	}
	if err := r.cmsConfig(report); err != nil {
		return report, err
	}
	if !skipWireup {
		if err := r.wireup(report); err != nil {
			return report, err
		}
	}

	r.logReport(report)
	return report, nil
}

// Extract loads the index, extracts every classified page and writes the
// JSON records and Markdown files.
func (r *Runner) Extract(ctx context.Context) (*Report, error) {
	report := newReport(r.RunID)
	err := r.extract(ctx, report)
	return report, err
}

func (r *Runner) extract(ctx context.Context, report *Report) error {
	log := r.log()
	cfg := r.Config

	idx, err := index.Load(ctx, log, r.resolvers()...)
	if err != nil {
		return err
	}

	kinds := classify.New(classify.AllowLists{
		People: cfg.AllowLists.People,
		News:   cfg.AllowLists.News,
	}).ClassifyIndex(idx, cfg.ContentPrefix)

	stubs := r.stubs(idx, kinds, report)
	ex := extract.New(r.extractOptions(), extract.Deps{
		Fetcher:      r.Fetcher,
		Downloader:   r.Fetcher,
		People:       r.peopleListing(stubs),
		Publications: r.publicationsListing(),
		Log:          log,
	})

	records := &Records{}
	for _, stub := range stubs {
		if err := r.extractOne(ctx, ex, stub, records); err != nil {
			report.Skipped = append(report.Skipped, Skip{Slug: stub.Slug, Kind: stub.Kind, Err: err})
			log.Warn("skipping page", zap.String("slug", stub.Slug), zap.String("kind", string(stub.Kind)), zap.Error(err))
			continue
		}
		report.Extracted[stub.Kind]++
	}

	if err := r.writeRecords(records); err != nil {
		return err
	}
	return r.writeMarkdown(records, report)
}

func (r *Runner) resolvers() []index.Resolver {
	cfg := r.Config
	resolvers := []index.Resolver{index.FileResolver{Path: cfg.SearchIndexPath()}}
	if r.Fetcher != nil && cfg.SearchIndexURL != "" {
		resolvers = append(resolvers,
			index.HTTPResolver{URL: cfg.SearchIndexURL, Fetcher: r.Fetcher, SnapshotPath: cfg.SearchIndexPath()},
			index.CacheResolver{URL: cfg.SearchIndexURL, Fetcher: r.Fetcher},
		)
	}
	return resolvers
}

// stubs pairs every classified content page with its local shell. Pages
// are visited in sorted path order; later pages with a seen slug are
// dropped.
func (r *Runner) stubs(idx index.Index, kinds map[string]sitemigrate.Kind, report *Report) []extract.Stub {
	log := r.log()
	prefix := r.Config.ContentPrefix
	seen := make(map[string]bool)

	var stubs []extract.Stub
	for _, path := range idx.ContentPaths(prefix) {
		report.Pages++
		slug := index.Slug(path, prefix)
		if slug == "" || strings.Contains(slug, "/") {
			report.Dropped++
			log.Debug("dropping page without a usable slug", zap.String("path", path))
			continue
		}
		if seen[slug] {
			report.Duplicates++
			log.Info("dropping duplicate slug", zap.String("slug", slug), zap.String("path", path))
			continue
		}
		seen[slug] = true

		kind := kinds[slug]
		if kind == sitemigrate.KindNone || kind == "" {
			report.Dropped++
			log.Debug("unclassified page", zap.String("slug", slug))
			continue
		}

		markup, err := r.readShell(slug)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("unreadable page shell", zap.String("slug", slug), zap.Error(err))
		}

		stubs = append(stubs, extract.Stub{
			Slug:   slug,
			Kind:   kind,
			Path:   path,
			Entry:  idx[path],
			Markup: string(markup),
		})
	}
	return stubs
}

// ShellDir holds the pages as exported, saved before wire-up rewrites
// them.
func (r *Runner) ShellDir() string {
	return filepath.Join(r.dataDir(), "shells")
}

func (r *Runner) savedShellPath(slug string) string {
	return filepath.Join(r.ShellDir(), slug+".html")
}

// readShell returns the exported markup of slug. A page that has not been
// wired yet is a fresh export and is read as is; a wired page is replaced by
// its saved copy when one exists.
func (r *Runner) readShell(slug string) ([]byte, error) {
	markup, err := os.ReadFile(filepath.Join(r.Config.PageDir(), slug+".html"))
	if err != nil {
		return nil, err
	}
	if !isWired(markup) {
		return markup, nil
	}

	saved, err := os.ReadFile(r.savedShellPath(slug))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return markup, nil
		}
		return nil, err
	}
	return saved, nil
}

func isWired(markup []byte) bool {
	return bytes.Contains(markup, []byte(wireup.RootID))
}

func (r *Runner) extractOptions() extract.Options {
	cfg := r.Config
	return extract.Options{
		BaseURL:           cfg.BaseURL,
		DataDir:           r.dataDir(),
		Disclaimer:        cfg.Disclaimer,
		Boilerplate:       cfg.Boilerplate,
		PlaceholderImages: cfg.PlaceholderImages,
		ScholarlyHosts:    cfg.ScholarlyHosts,
		ProfileHosts:      cfg.ProfileHosts,
		Positions:         cfg.Positions,
		LiveFetch:         cfg.LiveFetchEnabled(),
		Now:               r.now,
	}
}

// peopleListing parses the people page for the person slugs of the run. A
// missing or unparsable page leaves the listing empty.
func (r *Runner) peopleListing(stubs []extract.Stub) *extract.PeopleListing {
	markup, ok := r.readSitePage("people.html")
	if !ok {
		return nil
	}

	var slugs []string
	for _, s := range stubs {
		if s.Kind == sitemigrate.KindPerson {
			slugs = append(slugs, s.Slug)
		}
	}

	listing, err := extract.ParsePeopleListing(markup, slugs, extract.DefaultSelectors())
	if err != nil {
		r.log().Warn("ignoring people listing", zap.Error(err))
		return nil
	}
	return listing
}

func (r *Runner) publicationsListing() *extract.PublicationsListing {
	markup, ok := r.readSitePage("publications.html")
	if !ok {
		return nil
	}
	return extract.ParsePublicationsListing(markup)
}

func (r *Runner) readSitePage(name string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(r.Config.Path(r.Config.SiteDir), name))
	if err != nil {
		r.log().Info("listing page unavailable", zap.String("page", name), zap.Error(err))
		return "", false
	}
	return string(data), true
}

func (r *Runner) extractOne(ctx context.Context, ex *extract.Extractor, stub extract.Stub, records *Records) error {
	switch stub.Kind {
	case sitemigrate.KindPublication:
		pub, err := ex.Publication(ctx, stub)
		if err != nil {
			return err
		}
		records.Publications = append(records.Publications, *pub)
	case sitemigrate.KindPerson:
		person, err := ex.Person(ctx, stub)
		if err != nil {
			return err
		}
		records.People = append(records.People, *person)
	case sitemigrate.KindNews:
		item, err := ex.News(ctx, stub)
		if err != nil {
			return err
		}
		records.News = append(records.News, *item)
	default:
		return fmt.Errorf("unsupported kind %q", stub.Kind)
	}
	return nil
}

func (r *Runner) writeRecords(records *Records) error {
	dir := r.dataDir()
	if _, err := content.WriteRecords(content.RecordsPath(dir, sitemigrate.KindPublication), records.Publications); err != nil {
		return err
	}
	if _, err := content.WriteRecords(content.RecordsPath(dir, sitemigrate.KindPerson), records.People); err != nil {
		return err
	}
	if _, err := content.WriteRecords(content.RecordsPath(dir, sitemigrate.KindNews), records.News); err != nil {
		return err
	}
	return nil
}

// ReadRecords loads the JSON records written by a previous extraction.
func (r *Runner) ReadRecords() (*Records, error) {
	dir := r.dataDir()
	var (
		records Records
		err     error
	)
	if records.Publications, err = content.ReadRecords[sitemigrate.Publication](content.RecordsPath(dir, sitemigrate.KindPublication)); err != nil {
		return nil, err
	}
	if records.People, err = content.ReadRecords[sitemigrate.Person](content.RecordsPath(dir, sitemigrate.KindPerson)); err != nil {
		return nil, err
	}
	if records.News, err = content.ReadRecords[sitemigrate.NewsItem](content.RecordsPath(dir, sitemigrate.KindNews)); err != nil {
		return nil, err
	}
	return &records, nil
}

// Markdown regenerates the Markdown files from the JSON records.
func (r *Runner) Markdown() (*Report, error) {
	report := newReport(r.RunID)
	records, err := r.ReadRecords()
	if err != nil {
		return report, err
	}
	return report, r.writeMarkdown(records, report)
}

func (r *Runner) writeMarkdown(records *Records, report *Report) error {
	dir := r.dataDir()

	n, err := writeCollection(content.CollectionDir(dir, sitemigrate.KindPublication), records.Publications,
		func(p *sitemigrate.Publication) string { return p.Slug })
	if err != nil {
		return err
	}
	report.Written[sitemigrate.KindPublication] = n

	if n, err = writeCollection(content.CollectionDir(dir, sitemigrate.KindPerson), records.People,
		func(p *sitemigrate.Person) string { return p.Slug }); err != nil {
		return err
	}
	report.Written[sitemigrate.KindPerson] = n

	if n, err = writeCollection(content.CollectionDir(dir, sitemigrate.KindNews), records.News,
		func(n *sitemigrate.NewsItem) string { return n.Slug }); err != nil {
		return err
	}
	report.Written[sitemigrate.KindNews] = n

	return nil
}

// writeCollection writes one Markdown file per record and returns how many
// files changed.
func writeCollection[T any](dir string, items []T, slugOf func(*T) string) (int, error) {
	store, err := content.NewStore(dir)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range items {
		doc, err := content.Render(&items[i])
		if err != nil {
			return changed, err
		}
		ok, err := store.Write(slugOf(&items[i]), doc)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

func (r *Runner) logReport(report *Report) {
	fields := []zap.Field{
		zap.Int("pages", report.Pages),
		zap.Int("dropped", report.Dropped),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("skipped", len(report.Skipped)),
	}
	for _, k := range sitemigrate.Kinds {
		fields = append(fields, zap.Int(k.Collection(), report.Extracted[k]))
	}
	fields = append(fields,
		zap.Bool("config_changed", report.ConfigChanged),
		zap.Int("wired", report.Wired),
		zap.Int("wire_failed", report.WireFailed),
	)
	r.log().Info("run complete", fields...)
}
