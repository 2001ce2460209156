package frontmatter

import (
	"strings"

	"github.com/pevans/sitemigrate"
)

// SummaryKey is the derived single-line display field.
const SummaryKey = "list_summary"

// Field orders per kind, matching the target CMS collections.
var (
	PublicationOrder = []string{"title", "slug", "authors", "journal", "url", "date", "year", SummaryKey, "files", "description"}
	PersonOrder      = []string{"title", "slug", "link", "position", "category", "description", "image", "url", SummaryKey}
	NewsOrder        = []string{"title", "slug", "description", "date", "year", "image", "url", SummaryKey}
)

// Order returns the field order for kind.
func Order(kind sitemigrate.Kind) []string {
	switch kind {
	case sitemigrate.KindPublication:
		return PublicationOrder
	case sitemigrate.KindPerson:
		return PersonOrder
	case sitemigrate.KindNews:
		return NewsOrder
	}
	return nil
}

type builder struct {
	doc *Document
	err error
}

// quoted adds value verbatim unless it is blank.
func (b *builder) quoted(key, value string) {
	if strings.TrimSpace(value) != "" {
		b.doc.Fields = append(b.doc.Fields, Field{Key: key, Value: value, Kind: Quoted})
	}
}

func (b *builder) json(key string, v any) {
	raw, err := EncodeJSON(v)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return
	}
	b.doc.Fields = append(b.doc.Fields, Field{Key: key, Value: raw, Kind: JSON})
}

func (b *builder) summary(kind sitemigrate.Kind) {
	b.quoted(SummaryKey, ListSummary(kind, b.doc))
}

// FromPublication renders a publication. Authors are always written, as a
// possibly empty list.
func FromPublication(p *sitemigrate.Publication) (*Document, error) {
	b := &builder{doc: &Document{Body: p.Body}}
	b.quoted("title", p.Title)
	b.quoted("slug", p.Slug)

	authors := p.Authors
	if authors == nil {
		authors = []string{}
	}
	b.json("authors", authors)

	b.quoted("journal", p.Journal)
	b.quoted("url", p.URL)
	b.quoted("date", p.Date)
	b.quoted("year", p.Year)
	b.summary(sitemigrate.KindPublication)
	if len(p.Files) > 0 {
		b.json("files", p.Files)
	}
	b.quoted("description", p.Description)

	return b.doc, b.err
}

// FromPerson renders a profile.
func FromPerson(p *sitemigrate.Person) (*Document, error) {
	b := &builder{doc: &Document{Body: p.Body}}
	b.quoted("title", p.Name)
	b.quoted("slug", p.Slug)
	b.quoted("link", p.Link)
	b.quoted("position", p.Position)
	b.quoted("category", p.Category)
	b.quoted("description", p.Description)
	b.quoted("image", p.Image)
	b.quoted("url", p.URL)
	b.summary(sitemigrate.KindPerson)

	return b.doc, b.err
}

// FromNews renders a news item.
func FromNews(n *sitemigrate.NewsItem) (*Document, error) {
	b := &builder{doc: &Document{Body: n.Body}}
	b.quoted("title", n.Title)
	b.quoted("slug", n.Slug)
	b.quoted("description", n.Description)
	b.quoted("date", n.Date)

	year := n.Year
	if year == "" {
		year = sitemigrate.DateYear(n.Date)
	}
	b.quoted("year", year)
	b.quoted("image", n.Image)
	b.quoted("url", n.URL)
	b.summary(sitemigrate.KindNews)

	return b.doc, b.err
}
