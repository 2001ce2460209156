// Package extract turns classified pages into populated records. Every
// field is resolved through a fixed priority chain of sources; a source
// that is missing or malformed is skipped in favour of the next.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pevans/sitemigrate"
	"github.com/pevans/sitemigrate/index"
	"github.com/pevans/sitemigrate/logging"
	"github.com/pevans/sitemigrate/sanitize"
)

var (
	// ErrNoShell is returned when a classified page has no local HTML.
	ErrNoShell = errors.New("no local HTML shell")

	// ErrUnnamed is returned for a page that yields no title or name.
	ErrUnnamed = errors.New("no title or name found")
)

// PageFetcher reads a live page for the last-resort fallbacks.
type PageFetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// Downloader saves an attachment to disk.
type Downloader interface {
	Download(ctx context.Context, url, path string) (bool, error)
}

// Stub is a classified page waiting for extraction.
type Stub struct {
	Slug   string
	Kind   sitemigrate.Kind
	Path   string
	Entry  index.Entry
	Markup string
}

// Options configures an Extractor.
type Options struct {
	BaseURL           string
	DataDir           string
	Disclaimer        string
	Boilerplate       []string
	PlaceholderImages []string
	ScholarlyHosts    []string
	ProfileHosts      []string
	Positions         map[string]string
	LiveFetch         bool
	Selectors         Selectors
	Now               func() time.Time
}

// Deps are the collaborators of an Extractor. All are optional.
type Deps struct {
	Fetcher      PageFetcher
	Downloader   Downloader
	People       *PeopleListing
	Publications *PublicationsListing
	Log          *zap.Logger
}

// Extractor populates records from stubs.
type Extractor struct {
	opts  Options
	deps  Deps
	clean *sanitize.Sanitizer
	log   *zap.Logger
}

// New creates an extractor.
func New(opts Options, deps Deps) *Extractor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Selectors.Title == "" {
		opts.Selectors = DefaultSelectors()
	}
	if deps.People == nil {
		deps.People = &PeopleListing{}
	}
	return &Extractor{
		opts:  opts,
		deps:  deps,
		clean: sanitize.New(opts.Boilerplate, sanitize.PositionTitles),
		log:   logging.OrNop(deps.Log),
	}
}

// parsed is the per-stub state shared by the field chains.
type parsed struct {
	stub    Stub
	page    *Page
	sidecar Sidecar
}

func (e *Extractor) parse(stub Stub) (*parsed, error) {
	if strings.TrimSpace(stub.Markup) == "" {
		return nil, ErrNoShell
	}

	page, err := ParsePage(stub.Markup, e.opts.Selectors)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", stub.Slug, err)
	}

	sidecar, err := ParseSidecar(stub.Markup, e.opts.Selectors)
	if err != nil && !errors.Is(err, errNoSidecar) {
		e.log.Debug("ignoring embedded data", zap.String("slug", stub.Slug), zap.Error(err))
	}

	return &parsed{stub: stub, page: page, sidecar: sidecar}, nil
}

// Publication extracts a publication record.
func (e *Extractor) Publication(ctx context.Context, stub Stub) (*sitemigrate.Publication, error) {
	p, err := e.parse(stub)
	if err != nil {
		return nil, err
	}

	title := First(
		Value(p.page.Title),
		e.sidecarName(p),
		Value(stub.Entry.Heading()),
	)
	if title == "" {
		return nil, ErrUnnamed
	}

	pub := &sitemigrate.Publication{
		Slug:    stub.Slug,
		Title:   title,
		Authors: Authors(stub.Entry.H2, p.page.Headings2),
		URL:     stub.Path,
	}

	pub.Files = e.files(ctx, p, title)

	pub.Date = First(
		Value(p.page.ExplicitDate()),
		func() string { return DateFrom(stub.Entry.P, p.page.Paragraphs) },
	)
	pub.Year = First(
		Value(sitemigrate.DateYear(pub.Date)),
		func() string { return YearFrom(stub.Entry.P, p.page.Paragraphs) },
		func() string { return e.yearFromFiles(pub.Files) },
	)

	body := e.body(p)
	pub.Journal = Journal(e.paragraphs(p), body)
	pub.Description = e.description(p)
	pub.Body = body

	return pub, nil
}

// Person extracts a profile record.
func (e *Extractor) Person(ctx context.Context, stub Stub) (*sitemigrate.Person, error) {
	p, err := e.parse(stub)
	if err != nil {
		return nil, err
	}
	people := e.deps.People

	name := First(
		Value(people.Names[stub.Slug]),
		Value(p.page.Title),
		e.sidecarName(p),
		Value(stub.Entry.Heading()),
	)
	if name == "" {
		return nil, ErrUnnamed
	}

	person := &sitemigrate.Person{
		Slug:     stub.Slug,
		Name:     name,
		Category: people.Categories[stub.Slug],
		URL:      stub.Path,
		Link:     ProfileLink(p.page.Links, e.opts.BaseURL, e.opts.ProfileHosts),
	}

	position := First(
		Value(people.Positions[stub.Slug]),
		Value(e.opts.Positions[stub.Slug]),
		func() string { return positionWindow(p.page.BodyText, e.opts.Boilerplate) },
	)
	person.Position = e.clean.DedupePositions(position)

	bio := StripRolePrefix(e.body(p))
	listed := e.listingDescription(stub.Slug)

	person.Description = First(
		Value(listed),
		Value(bio),
		func() string { return e.description(p) },
	)
	person.Body = First(Value(listed), Value(bio))
	person.Image = e.image(ctx, p)

	return person, nil
}

// News extracts a news record.
func (e *Extractor) News(ctx context.Context, stub Stub) (*sitemigrate.NewsItem, error) {
	p, err := e.parse(stub)
	if err != nil {
		return nil, err
	}

	title := First(
		Value(p.page.Title),
		e.sidecarName(p),
		Value(stub.Entry.Heading()),
	)
	if title == "" {
		return nil, ErrUnnamed
	}

	item := &sitemigrate.NewsItem{
		Slug:  stub.Slug,
		Title: title,
		URL:   stub.Path,
	}
	item.Date = First(
		Value(p.page.ExplicitDate()),
		func() string { return DateFrom(stub.Entry.P, p.page.Paragraphs) },
	)
	item.Year = First(
		Value(sitemigrate.DateYear(item.Date)),
		func() string { return YearFrom(stub.Entry.P, p.page.Paragraphs) },
	)
	item.Description = e.description(p)
	item.Body = e.body(p)
	item.Image = e.image(ctx, p)

	return item, nil
}

func (e *Extractor) sidecarName(p *parsed) Candidate {
	return func() string {
		if r, ok := p.sidecar.Find(p.stub.Slug); ok {
			return r.Name
		}
		return ""
	}
}

// paragraphs returns the qualifying paragraphs of the page, or of the index
// entry when the page has none.
func (e *Extractor) paragraphs(p *parsed) []string {
	if kept := QualifyingParagraphs(p.page.Paragraphs, e.opts.Boilerplate); len(kept) > 0 {
		return kept
	}
	return QualifyingParagraphs(p.stub.Entry.P, e.opts.Boilerplate)
}

func (e *Extractor) body(p *parsed) string {
	if kept := e.paragraphs(p); len(kept) > 0 {
		return e.clean.Clean(strings.Join(kept, "\n\n"))
	}
	return e.clean.Clean(Sentences(p.page.BodyText, e.opts.Boilerplate))
}

// rawDescription is the first description that is not the disclaimer,
// before cleaning.
func (e *Extractor) rawDescription(p *parsed) string {
	notDisclaimer := func(s string) Candidate {
		return func() string {
			if sanitize.IsDisclaimer(s, e.opts.Disclaimer) {
				return ""
			}
			return s
		}
	}
	return First(
		notDisclaimer(p.page.MetaDescription),
		notDisclaimer(p.stub.Entry.Description),
	)
}

func (e *Extractor) description(p *parsed) string {
	return e.clean.Clean(e.rawDescription(p))
}

func (e *Extractor) listingDescription(slug string) string {
	desc := e.deps.People.Descriptions[slug]
	if desc == "" || sanitize.IsDisclaimer(desc, e.opts.Disclaimer) {
		return ""
	}
	return e.clean.Clean(desc)
}

func (e *Extractor) image(ctx context.Context, p *parsed) string {
	placeholders := e.opts.PlaceholderImages
	return First(
		func() string { return FirstImage(ImageURLs(e.rawDescription(p)), placeholders) },
		func() string { return FirstImage(ImageURLs(p.page.BodyText), placeholders) },
		func() string { return PreferredImage(MarkupImages(p.page), placeholders) },
		func() string { return e.liveImage(ctx, p) },
	)
}

func (e *Extractor) liveImage(ctx context.Context, p *parsed) string {
	if !e.opts.LiveFetch || e.deps.Fetcher == nil {
		return ""
	}

	pageURL := AbsoluteURL(e.opts.BaseURL, p.stub.Path)
	markup, err := e.deps.Fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		e.log.Warn("live page fetch failed",
			zap.String("slug", p.stub.Slug),
			zap.String("url", pageURL),
			zap.Error(err))
		return ""
	}

	page, err := ParsePage(markup, e.opts.Selectors)
	if err != nil {
		e.log.Warn("live page unparseable", zap.String("slug", p.stub.Slug), zap.Error(err))
		return ""
	}
	return PreferredImage(MarkupImages(page), e.opts.PlaceholderImages)
}

// files downloads the publication document and collects reference links.
func (e *Extractor) files(ctx context.Context, p *parsed, title string) []sitemigrate.File {
	var files []sitemigrate.File

	candidates := DocumentLinks(p.page)
	if near := e.deps.Publications.PDFNear(title); near != "" {
		candidates = append([]string{near}, candidates...)
	}
	if doc, ok := e.download(ctx, p.stub.Slug, candidates); ok {
		files = append(files, doc)
	}

	return append(files, ReferenceFiles(p.page.Links, e.opts.BaseURL, e.opts.ScholarlyHosts)...)
}

func (e *Extractor) download(ctx context.Context, slug string, candidates []string) (sitemigrate.File, bool) {
	if len(candidates) == 0 || e.deps.Downloader == nil {
		return sitemigrate.File{}, false
	}

	ref := filepath.ToSlash(filepath.Join(DocumentDir, slug+".pdf"))
	dest := filepath.Join(e.opts.DataDir, filepath.FromSlash(ref))

	for _, c := range candidates {
		u := AbsoluteURL(e.opts.BaseURL, c)
		fetched, err := e.deps.Downloader.Download(ctx, u, dest)
		if err != nil {
			e.log.Warn("document download failed",
				zap.String("slug", slug),
				zap.String("url", u),
				zap.Error(err))
			continue
		}
		if fetched {
			e.log.Info("downloaded document", zap.String("slug", slug), zap.String("path", ref))
		}
		return sitemigrate.File{Ref: ref, Kind: sitemigrate.FileDocument}, true
	}
	return sitemigrate.File{}, false
}

func (e *Extractor) yearFromFiles(files []sitemigrate.File) string {
	now := e.opts.Now()
	for _, f := range files {
		if f.Kind == sitemigrate.FileDocument {
			continue
		}
		if y := sitemigrate.YearFromURL(f.Ref, now); y != "" {
			return y
		}
	}
	return ""
}
