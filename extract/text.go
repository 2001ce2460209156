package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pevans/sitemigrate"
	"github.com/pevans/sitemigrate/classify"
	"github.com/pevans/sitemigrate/sanitize"
)

// MinParagraph is the exclusive lower bound on a paragraph kept in a body.
const MinParagraph = 20

var (
	navWordRe      = regexp.MustCompile(`(?i)^(About|People|Research|News|Publications|Contact)$`)
	navWordsInline = regexp.MustCompile(`(?i)\b(About|People|Research|News|Publications|Contact)\b`)
	sentenceRe     = regexp.MustCompile(`[^.!?]{50,}[.!?]`)
	rolePrefixRe   = regexp.MustCompile(`(?i)^(Professor|Assistant Professor|Lecturer|Field Manager|PhD Student|MRes Student|MbyRes Student|Chair of|Postdoctoral|Associate|Director|Manager)[^.!?]{0,50}[.!?]\s*`)

	journalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Nature\s+(Ecology\s+&)?\s*Evolution`),
		regexp.MustCompile(`(?i)Philosophical\s+Transactions`),
		regexp.MustCompile(`(?i)Proceedings\s+of\s+the\s+Royal\s+Society`),
		regexp.MustCompile(`(?i)Royal\s+Society`),
		regexp.MustCompile(`Journal\s+of\s+[A-Z][a-z]+`),
		regexp.MustCompile(`[A-Z][a-z]+\s+[A-Z][a-z]+\s+Journal`),
		regexp.MustCompile(`[A-Z][a-z]+\s+Ecology`),
		regexp.MustCompile(`[A-Z][a-z]+\s+Evolution`),
		regexp.MustCompile(`(?i)Science\s+Advances`),
		regexp.MustCompile(`(?i)Current\s+Biology`),
		regexp.MustCompile(`(?i)Behavioral\s+Ecology`),
		regexp.MustCompile(`(?i)Animal\s+Behaviour`),
	}
	journalPrefixRe   = regexp.MustCompile(`(?i)^(?:Published in\s+|In\s+|Journal:\s*)`)
	trailingYearRe    = regexp.MustCompile(`\s+(?:19|20)\d{2}\s*$`)
	leadingYearRe     = regexp.MustCompile(`^(?:19|20)\d{2}\s+`)
	journalLeadJunkRe = regexp.MustCompile(`^[^A-Z]*`)
	journalTailJunkRe = regexp.MustCompile(`[^A-Za-z0-9\s&,.\-:;].*$`)
)

// Authors returns the author lines among headings with the glyphs removed.
func Authors(headings ...[]string) []string {
	for _, hs := range headings {
		var authors []string
		for _, h := range hs {
			if !classify.HasAuthorLine([]string{h}) {
				continue
			}
			if a := classify.StripAuthorGlyphs(h); a != "" {
				authors = append(authors, a)
			}
		}
		if len(authors) > 0 {
			return authors
		}
	}
	return nil
}

// QualifyingParagraphs keeps paragraphs long enough to be content that are
// neither navigation labels nor boilerplate.
func QualifyingParagraphs(paragraphs, boilerplate []string) []string {
	var kept []string
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if len(p) <= MinParagraph || navWordRe.MatchString(p) || containsAny(p, boilerplate) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// Sentences returns the long sentences of free text, with boilerplate and
// navigation labels removed first.
func Sentences(text string, boilerplate []string) string {
	for _, phrase := range boilerplate {
		if phrase != "" {
			text = replaceFold(text, phrase, " ")
		}
	}
	text = navWordsInline.ReplaceAllString(text, "")
	text = squeeze(text)
	return strings.TrimSpace(strings.Join(sentenceRe.FindAllString(text, -1), " "))
}

// StripRolePrefix removes a leading sentence that only states a role.
func StripRolePrefix(text string) string {
	return strings.TrimSpace(rolePrefixRe.ReplaceAllString(text, ""))
}

// Journal finds the journal name in short paragraphs, then in a window of
// the body text.
func Journal(paragraphs []string, body string) string {
	for _, p := range paragraphs {
		if len(p) < 30 || len(p) > 200 {
			continue
		}
		for _, pattern := range journalPatterns {
			if !pattern.MatchString(p) {
				continue
			}
			journal := journalPrefixRe.ReplaceAllString(strings.TrimSpace(p), "")
			journal = strings.TrimSuffix(strings.TrimSpace(journal), ".")
			journal = stripYears(journal)
			if len(journal) > 5 && len(journal) < 150 {
				return journal
			}
		}
	}

	for _, pattern := range journalPatterns {
		loc := pattern.FindStringIndex(body)
		if loc == nil {
			continue
		}
		context := body[max(0, loc[0]-50):min(len(body), loc[0]+100)]
		journal := journalLeadJunkRe.ReplaceAllString(strings.TrimSpace(context), "")
		journal = journalTailJunkRe.ReplaceAllString(journal, "")
		journal = stripYears(strings.TrimSpace(journal))
		if len(journal) > 5 && len(journal) < 150 {
			return journal
		}
	}
	return ""
}

func stripYears(journal string) string {
	journal = strings.TrimSpace(trailingYearRe.ReplaceAllString(journal, ""))
	return strings.TrimSpace(leadingYearRe.ReplaceAllString(journal, ""))
}

// DateFrom returns the first paragraph date, normalised.
func DateFrom(paragraphs ...[]string) string {
	for _, ps := range paragraphs {
		for _, p := range ps {
			if d := sitemigrate.FindDate(p); d != "" {
				return d
			}
		}
	}
	return ""
}

// YearFrom returns the first year mentioned in the paragraphs.
func YearFrom(paragraphs ...[]string) string {
	for _, ps := range paragraphs {
		for _, p := range ps {
			if y := sitemigrate.FindYear(p); y != "" {
				return y
			}
		}
	}
	return ""
}

func containsAny(s string, phrases []string) bool {
	lower := strings.ToLower(s)
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func replaceFold(s, old, repl string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(old))
	return re.ReplaceAllString(s, repl)
}

var positionTitleRe = func() *regexp.Regexp {
	titles := append([]string(nil), sanitize.PositionTitles...)
	sort.SliceStable(titles, func(i, j int) bool { return len(titles[i]) > len(titles[j]) })
	for i, t := range titles {
		titles[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(titles, "|") + `)\b`)
}()

// positionWindow returns the first known role title in free text, after
// boilerplate is removed.
func positionWindow(text string, boilerplate []string) string {
	for _, phrase := range boilerplate {
		if phrase != "" {
			text = replaceFold(text, phrase, " ")
		}
	}
	return positionTitleRe.FindString(text)
}
