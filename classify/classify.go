// Package classify decides which collection a scraped page belongs to.
//
// Rules are evaluated in a fixed order and the first one that claims a page
// wins. Curated allow-lists come first; textual shape rules follow, from the
// most to the least specific. Pages no rule claims are dropped.
package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pevans/sitemigrate"
	"github.com/pevans/sitemigrate/index"
)

// AuthorGlyphs are the angle quotes the builder wraps author lines in.
const AuthorGlyphs = "‹›"

// MaxPersonHeading is the exclusive upper bound on a person's heading
// length, in characters.
const MaxPersonHeading = 50

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Input is the normalized view of one search index entry.
type Input struct {
	Slug              string
	Heading           string
	SecondaryHeadings []string
	Paragraphs        []string
}

// NewInput builds the classifier input for an index entry.
func NewInput(slug string, e index.Entry) Input {
	return Input{
		Slug:              slug,
		Heading:           e.Heading(),
		SecondaryHeadings: e.H2,
		Paragraphs:        e.P,
	}
}

// AllowLists are curated slug tables that outrank every textual rule.
type AllowLists struct {
	People []string
	News   []string
}

// Rule claims a page for a kind, or returns KindNone.
type Rule struct {
	Name  string
	Match func(Input) sitemigrate.Kind
}

// Classifier evaluates its rules in order.
type Classifier struct {
	rules []Rule
}

// New returns a classifier with the standard rule order.
func New(lists AllowLists) *Classifier {
	news := toSet(lists.News)
	people := toSet(lists.People)

	return &Classifier{rules: []Rule{
		{Name: "news-allow-list", Match: func(in Input) sitemigrate.Kind {
			if news[in.Slug] {
				return sitemigrate.KindNews
			}
			return sitemigrate.KindNone
		}},
		{Name: "person", Match: func(in Input) sitemigrate.Kind {
			if people[in.Slug] || LooksLikePerson(in) {
				return sitemigrate.KindPerson
			}
			return sitemigrate.KindNone
		}},
		{Name: "publication", Match: func(in Input) sitemigrate.Kind {
			if HasAuthorLine(in.SecondaryHeadings) && utf8.RuneCountInString(in.Heading) >= 1 {
				return sitemigrate.KindPublication
			}
			return sitemigrate.KindNone
		}},
	}}
}

// Rules returns the rule names in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// Classify returns the kind of the first matching rule, or KindNone.
func (c *Classifier) Classify(in Input) sitemigrate.Kind {
	for _, r := range c.rules {
		if kind := r.Match(in); kind != sitemigrate.KindNone {
			return kind
		}
	}
	return sitemigrate.KindNone
}

// ClassifyIndex classifies every content page once and returns the
// slug to kind table for the run. When two paths share a slug, the first in
// sorted order wins.
func (c *Classifier) ClassifyIndex(idx index.Index, prefix string) map[string]sitemigrate.Kind {
	kinds := make(map[string]sitemigrate.Kind)
	for _, p := range idx.ContentPaths(prefix) {
		slug := index.Slug(p, prefix)
		if _, seen := kinds[slug]; seen {
			continue
		}
		kinds[slug] = c.Classify(NewInput(slug, idx[p]))
	}
	return kinds
}

// LooksLikePerson is the shape rule for profile pages: a short heading, no
// author line and no year anywhere in the paragraphs.
func LooksLikePerson(in Input) bool {
	return utf8.RuneCountInString(in.Heading) < MaxPersonHeading &&
		!HasAuthorLine(in.SecondaryHeadings) &&
		!HasYear(in.Paragraphs)
}

// HasAuthorLine reports whether any heading carries an author glyph.
func HasAuthorLine(headings []string) bool {
	for _, h := range headings {
		if strings.ContainsAny(h, AuthorGlyphs) {
			return true
		}
	}
	return false
}

// HasYear reports whether any paragraph contains a 4-digit year.
func HasYear(paragraphs []string) bool {
	for _, p := range paragraphs {
		if yearPattern.MatchString(p) {
			return true
		}
	}
	return false
}

// StripAuthorGlyphs removes the author glyphs and surrounding space.
func StripAuthorGlyphs(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(AuthorGlyphs, r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
