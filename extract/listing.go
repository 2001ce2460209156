package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// CategoryAlumni is assigned to people listed in the alumni cards.
const CategoryAlumni = "Alumni"

// Window sizes used when scanning listing markup.
const (
	descriptionWindow  = 3000
	maxSelfDescription = 2000
	pdfWindow          = 2000
	pdfMaxDistance     = 1500
)

var (
	roleKeywords = []string{
		"student", "professor", "researcher", "fellow", "manager", "director",
		"associate", "phd", "mres", "mbyres", "chair", "lecturer",
	}
	iAmRe         = regexp.MustCompile(`(?i)I am[^<]{50,}`)
	jsonObjectRe  = regexp.MustCompile(`\{[^}]*\}`)
	jsonArrayRe   = regexp.MustCompile(`\[[^\]]*\]`)
	jsonStringRe  = regexp.MustCompile(`"[^"]*"`)
	lowercaseRe   = regexp.MustCompile(`[a-z]`)
	pdfHrefRe     = regexp.MustCompile(`href="([^"]+\.pdf)"`)
	listingHrefRe = regexp.MustCompile(`pubs-news-ppl/([^"?#/]+?)(?:\.html)?(?:[?#].*)?$`)
)

// PeopleListing holds what the people page says about each person, keyed
// by slug.
type PeopleListing struct {
	Names        map[string]string
	Positions    map[string]string
	Categories   map[string]string
	Descriptions map[string]string
}

// ParsePeopleListing reads the people page. Descriptions are searched for
// every slug given.
func ParsePeopleListing(markup string, slugs []string, sel Selectors) (*PeopleListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse people page: %w", err)
	}

	listing := &PeopleListing{
		Names:        make(map[string]string),
		Positions:    make(map[string]string),
		Categories:   make(map[string]string),
		Descriptions: make(map[string]string),
	}

	// Handover data first; card markup overrides it
	if sidecar, err := ParseSidecar(markup, sel); err == nil {
		for _, r := range sidecar.Records {
			if ValidRole(r.Position, r.Name) {
				listing.Positions[r.Slug] = r.Position
			}
		}
	}

	doc.Find(`a[href*="pubs-news-ppl/"]`).Each(func(i int, card *goquery.Selection) {
		href, _ := card.Attr("href")
		slug := ListingSlug(href)
		if slug == "" {
			return
		}

		// Team cards: h1 name, h4 role
		if name := squeeze(card.Find("h1").First().Text()); name != "" {
			if _, ok := listing.Names[slug]; !ok && looksLikeName(name) {
				listing.Names[slug] = name
			}
			role := squeeze(card.Find("h4").First().Text())
			if ValidRole(role, name) {
				listing.Positions[slug] = role
			}
			return
		}

		// Alumni cards: h6 name, optional dash, h6 role
		var texts []string
		card.Find("h6").Each(func(i int, s *goquery.Selection) {
			texts = append(texts, squeeze(s.Text()))
		})
		if len(texts) < 2 {
			return
		}
		if _, ok := listing.Names[slug]; !ok && looksLikeName(texts[0]) {
			listing.Names[slug] = texts[0]
		}
		listing.Categories[slug] = CategoryAlumni
		if _, ok := listing.Positions[slug]; ok {
			return
		}
		if role := alumniRole(texts); ValidRole(role, texts[0]) {
			listing.Positions[slug] = role
		}
	})

	for _, slug := range slugs {
		if desc := listingDescription(markup, slug); desc != "" {
			listing.Descriptions[slug] = desc
		}
	}

	return listing, nil
}

// ListingSlug extracts the record slug from a card link.
func ListingSlug(href string) string {
	m := listingHrefRe.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}

// ValidRole reports whether text reads as a job title rather than a name,
// an address or a separator.
func ValidRole(role, name string) bool {
	n := utf8.RuneCountInString(role)
	if n <= 2 || n >= 100 || role == name {
		return false
	}
	if strings.Contains(role, "@") {
		return false
	}
	lower := strings.ToLower(role)
	for _, k := range roleKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func alumniRole(texts []string) string {
	isDash := texts[1] == "–" || texts[1] == "-"
	if !isDash && ValidRole(texts[1], texts[0]) {
		return texts[1]
	}
	if len(texts) >= 3 {
		return texts[2]
	}
	return ""
}

func looksLikeName(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 3 || n > 50 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r >= 'A' && r <= 'Z'
}

// listingDescription finds the closest "I am ..." self-description before
// the first mention of slug.
func listingDescription(markup, slug string) string {
	idx := strings.Index(markup, `"`+slug+`"`)
	if idx < 0 {
		idx = strings.Index(markup, `'`+slug+`'`)
	}
	if idx < 0 {
		idx = strings.Index(markup, slug)
	}
	if idx <= 0 {
		return ""
	}

	window := markup[max(0, idx-descriptionWindow):idx]
	matches := selfDescriptions(window)
	if len(matches) == 0 {
		return ""
	}

	desc := matches[len(matches)-1]
	desc = strings.ReplaceAll(desc, "&nbsp;", " ")
	desc = squeeze(desc)
	desc = jsonObjectRe.ReplaceAllString(desc, "")
	desc = jsonArrayRe.ReplaceAllString(desc, "")
	desc = jsonStringRe.ReplaceAllString(desc, "")
	desc = squeeze(desc)

	if len(desc) <= 50 || !lowercaseRe.MatchString(desc) {
		return ""
	}
	if len(matches) > 1 && !mentionsSlug(desc, slug) {
		return ""
	}
	return desc
}

// selfDescriptions returns the "I am ..." runs of window, each cut to at
// most maxSelfDescription characters after the opening words. Scanning
// resumes after the cut.
func selfDescriptions(window string) []string {
	var out []string
	for window != "" {
		loc := iAmRe.FindStringIndex(window)
		if loc == nil {
			break
		}
		match := window[loc[0]:loc[1]]
		end := loc[1]
		if limit := len("I am") + maxSelfDescription; utf8.RuneCountInString(match) > limit {
			match = string([]rune(match)[:limit])
			end = loc[0] + len(match)
		}
		out = append(out, match)
		window = window[end:]
	}
	return out
}

func mentionsSlug(desc, slug string) bool {
	lower := strings.ToLower(desc)
	name := strings.ToLower(strings.ReplaceAll(slug, "-", " "))
	if strings.Contains(lower, name) {
		return true
	}
	for _, word := range strings.Split(slug, "-") {
		if word != "" && strings.Contains(lower, strings.ToLower(word)) {
			return true
		}
	}
	return false
}

// PublicationsListing is the publications page, kept as raw markup for
// proximity searches.
type PublicationsListing struct {
	markup string
	pdfs   []pdfLink
}

type pdfLink struct {
	url    string
	offset int
}

// ParsePublicationsListing indexes the document links of the publications
// page.
func ParsePublicationsListing(markup string) *PublicationsListing {
	listing := &PublicationsListing{markup: markup}
	for _, loc := range pdfHrefRe.FindAllStringSubmatchIndex(markup, -1) {
		listing.pdfs = append(listing.pdfs, pdfLink{
			url:    markup[loc[2]:loc[3]],
			offset: loc[0],
		})
	}
	return listing
}

// PDFNear returns the document link closest to the first occurrence of the
// title's first significant word, or "" when none is close enough.
func (l *PublicationsListing) PDFNear(title string) string {
	if l == nil || len(l.pdfs) == 0 {
		return ""
	}

	var word string
	for _, w := range strings.Fields(title) {
		if utf8.RuneCountInString(w) > 4 {
			word = w
			break
		}
	}
	if word == "" {
		return ""
	}

	loc := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word)).FindStringIndex(l.markup)
	if loc == nil || loc[0] == 0 {
		return ""
	}
	titleIdx := loc[0]

	best, bestDist := "", -1
	for _, pdf := range l.pdfs {
		if pdf.offset < titleIdx-pdfWindow || pdf.offset >= titleIdx+pdfWindow {
			continue
		}
		dist := pdf.offset - titleIdx
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = pdf.url, dist
		}
	}
	if bestDist < 0 || bestDist >= pdfMaxDistance {
		return ""
	}
	return best
}
