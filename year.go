package sitemigrate

import (
	"regexp"
	"strconv"
	"time"
)

// MinYear is the earliest year accepted from a URL.
const MinYear = 1990

var (
	yearRe     = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	dateRe     = regexp.MustCompile(`\b((?:19|20)\d{2})[/-](\d{1,2})[/-](\d{1,2})\b`)
	leadYearRe = regexp.MustCompile(`^(\d{4})`)
	urlYear4Re = regexp.MustCompile(`[./](\d{4})[./]`)
	urlYear2Re = regexp.MustCompile(`[-/]0?(\d{2})[-/]`)
)

// FindYear returns the first 4-digit 19xx or 20xx year in s, or "".
func FindYear(s string) string {
	return yearRe.FindString(s)
}

// FindDate returns the first YYYY/MM/DD or YYYY-MM-DD date in s normalised
// to YYYY-MM-DD, or "" when there is none or it is not a calendar date.
func FindDate(s string) string {
	for _, m := range dateRe.FindAllStringSubmatch(s, -1) {
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		year, _ := strconv.Atoi(m[1])
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Month() != time.Month(month) || t.Day() != day {
			continue
		}
		return t.Format("2006-01-02")
	}
	return ""
}

// DateYear returns the leading year of a date string, or "".
func DateYear(date string) string {
	if m := leadYearRe.FindStringSubmatch(date); m != nil {
		return m[1]
	}
	return ""
}

// YearFromURL infers a publication year from a DOI or article URL. Explicit
// 4-digit path segments win over 2-digit Nature-style DOI fragments. Values
// outside [MinYear, now.Year()+1] are rejected and "" is returned.
func YearFromURL(url string, now time.Time) string {
	if url == "" {
		return ""
	}
	maxYear := now.Year() + 1

	for _, m := range urlYear4Re.FindAllStringSubmatch(url, -1) {
		y, err := strconv.Atoi(m[1])
		if err == nil && y >= MinYear && y <= maxYear {
			return strconv.Itoa(y)
		}
	}

	for _, m := range urlYear2Re.FindAllStringSubmatch(url, -1) {
		digits, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		y := 2000 + digits
		if digits >= 90 {
			y = 1900 + digits
		}
		if y >= MinYear && y <= maxYear {
			return strconv.Itoa(y)
		}
	}

	return ""
}
