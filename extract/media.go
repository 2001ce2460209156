package extract

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/pevans/sitemigrate"
)

// DocumentDir is where downloaded publication documents are stored,
// relative to the data directory.
const DocumentDir = "publications/pdfs"

var (
	rawImageRe = regexp.MustCompile(`(?i)https?://[^\s"'<>()]+?\.(?:jpe?g|png|gif|webp|avif)(?:\?[^\s"'<>()]*)?|https?://framerusercontent\.com/images/[^\s"'<>(),]+`)
	iconWords  = []string{"favicon", "icon", "logo"}
)

// ImageURLs returns the raw image URLs in text, in order.
func ImageURLs(text string) []string {
	return rawImageRe.FindAllString(text, -1)
}

// IsIcon reports whether u is a site icon, a logo or one of the configured
// placeholder images.
func IsIcon(u string, placeholders []string) bool {
	lower := strings.ToLower(u)
	for _, w := range iconWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	ext := path.Ext(stripQuery(lower))
	if ext == ".svg" || ext == ".ico" {
		return true
	}
	for _, p := range placeholders {
		if p != "" && strings.Contains(u, p) {
			return true
		}
	}
	return false
}

// FirstImage returns the first non-icon URL.
func FirstImage(urls []string, placeholders []string) string {
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" && !IsIcon(u, placeholders) {
			return u
		}
	}
	return ""
}

// PreferredImage orders urls JPEG first, then PNG, then anything else, and
// returns the first non-icon one.
func PreferredImage(urls []string, placeholders []string) string {
	ranked := append([]string(nil), urls...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return imageRank(ranked[i]) < imageRank(ranked[j])
	})
	return FirstImage(ranked, placeholders)
}

func imageRank(u string) int {
	switch path.Ext(strings.ToLower(stripQuery(u))) {
	case ".jpg", ".jpeg":
		return 0
	case ".png":
		return 1
	}
	return 2
}

// MarkupImages lists the image candidates of a page: parsed image
// references first, then raw URLs anywhere in the markup.
func MarkupImages(page *Page) []string {
	urls := append([]string(nil), page.Images...)
	return append(urls, ImageURLs(page.Markup)...)
}

// DocumentLinks returns hrefs and sources ending in .pdf, in page order,
// without duplicates.
func DocumentLinks(page *Page) []string {
	var docs []string
	seen := make(map[string]bool)
	for _, refs := range [][]string{page.Links, page.Sources} {
		for _, ref := range refs {
			if !strings.HasSuffix(strings.ToLower(stripQuery(ref)), ".pdf") || seen[ref] {
				continue
			}
			seen[ref] = true
			docs = append(docs, ref)
		}
	}
	return docs
}

// ReferenceFiles returns the DOI link as an external identifier and links
// to scholarly hosts as plain links.
func ReferenceFiles(links []string, base string, scholarlyHosts []string) []sitemigrate.File {
	var files []sitemigrate.File
	seen := make(map[string]bool)
	haveDOI := false

	for _, link := range links {
		abs := AbsoluteURL(base, link)
		if seen[abs] {
			continue
		}
		u, err := url.Parse(abs)
		if err != nil || u.Host == "" {
			continue
		}
		host := strings.ToLower(u.Host)

		switch {
		case strings.HasSuffix(host, "doi.org"):
			if haveDOI {
				continue
			}
			haveDOI = true
			seen[abs] = true
			files = append(files, sitemigrate.File{Ref: abs, Kind: sitemigrate.FileExternalID})
		case matchesHost(host, scholarlyHosts):
			seen[abs] = true
			files = append(files, sitemigrate.File{Ref: abs, Kind: sitemigrate.FileLink})
		}
	}
	return files
}

// ProfileLink returns the first link to one of the profile hosts.
func ProfileLink(links []string, base string, profileHosts []string) string {
	for _, link := range links {
		abs := AbsoluteURL(base, link)
		u, err := url.Parse(abs)
		if err != nil || u.Host == "" {
			continue
		}
		if matchesHost(strings.ToLower(u.Host), profileHosts) {
			return abs
		}
	}
	return ""
}

// AbsoluteURL resolves ref against base. Unparseable input is returned
// unchanged.
func AbsoluteURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	b, err := url.Parse(base)
	if err != nil || base == "" {
		return ref
	}
	r, err := url.Parse(strings.TrimPrefix(ref, "./"))
	if err != nil {
		return ref
	}
	if !strings.HasPrefix(r.Path, "/") && r.Host == "" {
		r.Path = "/" + r.Path
	}
	return b.ResolveReference(r).String()
}

func matchesHost(host string, hosts []string) bool {
	for _, h := range hosts {
		h = strings.ToLower(h)
		if h != "" && (host == h || strings.HasSuffix(host, "."+h)) {
			return true
		}
	}
	return false
}

func stripQuery(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}
