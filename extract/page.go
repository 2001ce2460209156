package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pevans/sitemigrate"
)

// Page is the text and link content of one HTML shell.
type Page struct {
	Title           string
	Headings2       []string
	Paragraphs      []string
	MetaDescription string
	Date            string
	Links           []string
	Sources         []string
	Images          []string
	BodyText        string
	Markup          string
}

var spaceRe = regexp.MustCompile(`\s+`)

// ParsePage parses a shell with the given selectors.
func ParsePage(markup string, sel Selectors) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &Page{Markup: markup}

	// Title: first primary heading, whitespace normalized
	page.Title = squeeze(doc.Find(sel.Title).First().Text())

	doc.Find(sel.Authors).Each(func(i int, s *goquery.Selection) {
		if text := squeeze(s.Text()); text != "" {
			page.Headings2 = append(page.Headings2, text)
		}
	})

	doc.Find(sel.Paragraph).Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			page.Paragraphs = append(page.Paragraphs, text)
		}
	})

	if content, ok := doc.Find(sel.Description).First().Attr("content"); ok {
		page.MetaDescription = strings.TrimSpace(content)
	}

	// Explicit date: the first selector that yields a value wins
	for _, selector := range sel.Dates {
		s := doc.Find(selector).First()
		if s.Length() == 0 {
			continue
		}
		value, ok := s.Attr("datetime")
		if !ok {
			value, ok = s.Attr("content")
		}
		if !ok {
			value = s.Text()
		}
		if value = strings.TrimSpace(value); value != "" {
			page.Date = value
			break
		}
	}

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href = strings.TrimSpace(href); href != "" {
			page.Links = append(page.Links, href)
		}
	})

	doc.Find("[src]").Each(func(i int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src = strings.TrimSpace(src); src != "" {
			page.Sources = append(page.Sources, src)
		}
	})

	// Images: social preview first, then inline images and their srcsets
	if og, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok && og != "" {
		page.Images = append(page.Images, strings.TrimSpace(og))
	}
	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && src != "" {
			page.Images = append(page.Images, strings.TrimSpace(src))
		}
		if srcset, ok := s.Attr("srcset"); ok {
			page.Images = append(page.Images, srcsetURLs(srcset)...)
		}
	})

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	page.BodyText = squeeze(body.Text())

	return page, nil
}

// ExplicitDate returns the markup date normalised to YYYY-MM-DD, or "".
func (p *Page) ExplicitDate() string {
	return normalizeDate(p.Date)
}

func normalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) >= 10 {
		if t, err := time.Parse("2006-01-02", value[:10]); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format("2006-01-02")
	}
	return sitemigrate.FindDate(value)
}

func srcsetURLs(srcset string) []string {
	var urls []string
	for _, part := range strings.Split(srcset, ",") {
		fields := strings.Fields(part)
		if len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}

func squeeze(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
