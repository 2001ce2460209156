package sitemigrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// TestYearFromURL verifies year inference from DOI and article URLs
func TestYearFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"royal society doi", "https://doi.org/10.1098/rsbl.2014.0898", "2014"},
		{"cell press doi", "https://doi.org/10.1016/j.cub.2018.05.001", "2018"},
		{"frontiers doi", "https://doi.org/10.3389/fevo.2016.00058", "2016"},
		{"nature two digit", "https://www.nature.com/articles/s41598-023-44950-x", "2023"},
		{"nineties two digit", "https://example.org/x-97-1", "1997"},
		{"empty", "", ""},
		{"no year", "https://example.org/paper", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, YearFromURL(tt.url, testNow))
		})
	}
}

// TestYearFromURL_Bounds verifies out-of-range numbers are rejected
func TestYearFromURL_Bounds(t *testing.T) {
	assert.Equal(t, "", YearFromURL("https://doi.org/10.1000/abc.1989.12", testNow))
	assert.Equal(t, "1990", YearFromURL("https://doi.org/10.1000/abc.1990.12", testNow))
	assert.Equal(t, "2026", YearFromURL("https://doi.org/10.1000/abc.2026.12", testNow))
	assert.Equal(t, "", YearFromURL("https://doi.org/10.1000/abc.2027.12", testNow))
	// 4-digit non-years fall through to nothing
	assert.Equal(t, "", YearFromURL("https://doi.org/10.1000/abc.5555.12", testNow))
}

// TestFindDate verifies paragraph dates are normalised
func TestFindDate(t *testing.T) {
	assert.Equal(t, "2023-04-01", FindDate("2023/04/01 We are delighted"))
	assert.Equal(t, "2021-12-09", FindDate("Posted 2021-12-9"))
	assert.Equal(t, "", FindDate("2023/02/30 is not a day"))
	assert.Equal(t, "", FindDate("In 2023 we"))
}

// TestFindYear verifies the first plausible year is returned
func TestFindYear(t *testing.T) {
	assert.Equal(t, "2021", FindYear("Published 2021 in Ecology Letters, 2022"))
	assert.Equal(t, "", FindYear("Room 3021"))
}

// TestDateYear verifies the leading year of a date
func TestDateYear(t *testing.T) {
	assert.Equal(t, "2023", DateYear("2023-04-01"))
	assert.Equal(t, "", DateYear("April 2023"))
}
