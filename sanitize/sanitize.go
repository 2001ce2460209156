// Package sanitize cleans text scraped from builder markup before it is
// stored in a record.
package sanitize

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// PositionTitles are the role titles DedupePositions knows about.
var PositionTitles = []string{
	"Chair of Evolutionary Population Genetics",
	"Postdoctoral Research Fellow",
	"Postdoctoral Researcher",
	"Research Fellow",
	"Research Assistant",
	"Assistant Professor",
	"Associate Professor",
	"Professor",
	"Senior Lecturer",
	"Lecturer",
	"Field Manager",
	"Project Manager",
	"PhD Student",
	"MRes Student",
	"MbyRes Student",
	"Director",
	"Researcher",
}

var (
	entities     = strings.NewReplacer("&nbsp;", " ", "&lt;", "<", "&gt;", ">", "&amp;", "&")
	horizontalWS = regexp.MustCompile(`[ \t\f\r\x{00a0}]+`)
	manyNewlines = regexp.MustCompile(`\n{3,}`)
	imageURL     = regexp.MustCompile(`(?i)https?://[^\s"'<>()]+?\.(?:jpe?g|png|gif|webp|avif|svg)(?:\?[^\s"'<>()]*)?|https?://framerusercontent\.com/images/[^\s"'<>()]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Sanitizer applies the cleaning steps in a fixed order.
type Sanitizer struct {
	boilerplate *regexp.Regexp
	positions   *regexp.Regexp
}

// New returns a sanitizer removing the given boilerplate phrases and
// collapsing repeats of the given position titles.
func New(boilerplate, positions []string) *Sanitizer {
	return &Sanitizer{
		boilerplate: boilerplatePattern(boilerplate),
		positions:   positionPattern(positions),
	}
}

// Clean strips tags, decodes entities, removes boilerplate, collapses
// whitespace, drops image URLs and collapses doubled position titles.
func (s *Sanitizer) Clean(text string) string {
	text = StripTags(text)
	text = DecodeEntities(text)
	text = s.RemoveBoilerplate(text)
	text = CollapseWhitespace(text)
	text = StripImageURLs(text)
	return s.DedupePositions(text)
}

// StripTags removes markup, keeping text. Block elements and line breaks
// become newlines and the content of script and style elements is dropped.
// Entities are left encoded for DecodeEntities.
func StripTags(text string) string {
	if !strings.ContainsRune(text, '<') {
		return text
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(text))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Raw())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skip++
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		}
	}
}

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true,
	"blockquote": true, "tr": true, "table": true,
}

// DecodeEntities decodes &nbsp; &amp; &lt; and &gt; only.
func DecodeEntities(text string) string {
	return entities.Replace(text)
}

// RemoveBoilerplate deletes every configured phrase, ignoring case.
func (s *Sanitizer) RemoveBoilerplate(text string) string {
	if s.boilerplate == nil {
		return text
	}
	return s.boilerplate.ReplaceAllString(text, "")
}

// CollapseWhitespace squeezes runs of spaces, trims every line and limits
// blank lines to one.
func CollapseWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = horizontalWS.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	text = manyNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// StripImageURLs removes raw image links left in the text.
func StripImageURLs(text string) string {
	if !imageURL.MatchString(text) {
		return text
	}
	text = imageURL.ReplaceAllString(text, "")
	return CollapseWhitespace(text)
}

// DedupePositions collapses two adjacent position titles that name the same
// role into the more specific one, e.g. "Professor Assistant Professor".
func (s *Sanitizer) DedupePositions(text string) string {
	if s.positions == nil {
		return text
	}
	return s.positions.ReplaceAllStringFunc(text, func(m string) string {
		sub := s.positions.FindStringSubmatch(m)
		if len(sub) < 3 {
			return m
		}
		a, b := sub[1], sub[2]
		la, lb := strings.ToLower(a), strings.ToLower(b)
		if !strings.Contains(la, lb) && !strings.Contains(lb, la) {
			return m
		}
		return MoreSpecific(a, b)
	})
}

// MoreSpecific returns whichever title qualifies the other. When neither
// contains the other the first is returned.
func MoreSpecific(a, b string) string {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	switch {
	case la == lb:
		return a
	case strings.Contains(lb, la):
		return b
	default:
		return a
	}
}

// IsDisclaimer reports whether s is the disclaimer, ignoring differences
// in whitespace.
func IsDisclaimer(s, disclaimer string) bool {
	if disclaimer == "" {
		return false
	}
	return normalizeSpace(s) == normalizeSpace(disclaimer)
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func alternation(phrases []string) string {
	sorted := append([]string(nil), phrases...)
	// Longest first so a phrase never leaves part of a longer one behind.
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, 0, len(sorted))
	for _, p := range sorted {
		if p == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(p))
	}
	if len(quoted) == 0 {
		return ""
	}
	return `(?:` + strings.Join(quoted, "|") + `)`
}

func boilerplatePattern(phrases []string) *regexp.Regexp {
	alt := alternation(phrases)
	if alt == "" {
		return nil
	}
	return regexp.MustCompile(`(?i)` + alt)
}

func positionPattern(titles []string) *regexp.Regexp {
	alt := alternation(titles)
	if alt == "" {
		return nil
	}
	title := `(` + alt + `)`
	return regexp.MustCompile(`(?i)\b` + title + `\b[\s,;|/·-]*\b` + title + `\b`)
}
