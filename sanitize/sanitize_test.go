package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testDisclaimer = "The Banded Mongoose Research Project consists of a team of researchers."

func testSanitizer() *Sanitizer {
	return New([]string{testDisclaimer, "All rights reserved.", "BMPR. All rights reserved.", "Mongoose videos by"}, PositionTitles)
}

// TestStripTags verifies markup removal keeps text and line structure
func TestStripTags(t *testing.T) {
	got := StripTags(`<div><p>First &amp; best</p><p>Second<br>line</p><script>var x = "<p>";</script></div>`)
	assert.Equal(t, "\n\nFirst &amp; best\n\nSecond\nline\n\n", got)
}

// TestStripTags_PlainText verifies text without markup is returned untouched
func TestStripTags_PlainText(t *testing.T) {
	assert.Equal(t, "a &amp; b", StripTags("a &amp; b"))
}

// TestDecodeEntities verifies only the fixed entity set is decoded
func TestDecodeEntities(t *testing.T) {
	assert.Equal(t, "a b & <c> &quot;", DecodeEntities("a&nbsp;b &amp; &lt;c&gt; &quot;"))
	// Single pass, no double decoding
	assert.Equal(t, "&lt;", DecodeEntities("&amp;lt;"))
}

// TestRemoveBoilerplate verifies phrases are removed case-insensitively
func TestRemoveBoilerplate(t *testing.T) {
	s := testSanitizer()
	assert.Equal(t, "Footer 2024 ", s.RemoveBoilerplate("Footer 2024 bmpr. all rights reserved."))
	assert.Equal(t, "Intro. ", s.RemoveBoilerplate("Intro. "+testDisclaimer))
}

// TestCollapseWhitespace verifies spaces, line trimming and blank lines
func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  one   two \t three \n\n\n\n  four  \n")
	assert.Equal(t, "one two three\n\nfour", got)
}

// TestStripImageURLs verifies raw image links are dropped
func TestStripImageURLs(t *testing.T) {
	got := StripImageURLs("Photo https://framerusercontent.com/images/abc123.jpg?scale-down-to=512 taken 2019")
	assert.Equal(t, "Photo taken 2019", got)

	assert.Equal(t, "See https://doi.org/10.1/x", StripImageURLs("See https://doi.org/10.1/x"))
}

// TestDedupePositions verifies doubled titles collapse to the qualified one
func TestDedupePositions(t *testing.T) {
	s := testSanitizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"generic then qualified", "Professor Assistant Professor", "Assistant Professor"},
		{"qualified then generic", "Assistant Professor, Professor", "Assistant Professor"},
		{"exact repeat", "Field Manager Field Manager", "Field Manager"},
		{"unrelated titles", "Professor, Director", "Professor, Director"},
		{"inside sentence", "She is Professor Assistant Professor at Exeter", "She is Assistant Professor at Exeter"},
		{"single title", "Lecturer", "Lecturer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.DedupePositions(tt.in))
		})
	}
}

// TestMoreSpecific verifies the qualified title wins
func TestMoreSpecific(t *testing.T) {
	assert.Equal(t, "Assistant Professor", MoreSpecific("Professor", "Assistant Professor"))
	assert.Equal(t, "Assistant Professor", MoreSpecific("Assistant Professor", "Professor"))
	assert.Equal(t, "Lecturer", MoreSpecific("Lecturer", "Director"))
}

// TestClean verifies the full pipeline order
func TestClean(t *testing.T) {
	s := testSanitizer()
	got := s.Clean("<p>I study&nbsp;mongooses.</p>\n\n\n<p>https://framerusercontent.com/images/x.png</p><p>" +
		testDisclaimer + "</p><p>Mongoose videos by someone</p>")
	assert.Equal(t, "I study mongooses.\n\nsomeone", got)
}

// TestClean_Idempotent verifies cleaning clean text changes nothing
func TestClean_Idempotent(t *testing.T) {
	s := testSanitizer()
	once := s.Clean("<h1>Title</h1><p>Body &amp; more   text</p>")
	assert.Equal(t, once, s.Clean(once))
}

// TestIsDisclaimer verifies whitespace-insensitive matching
func TestIsDisclaimer(t *testing.T) {
	assert.True(t, IsDisclaimer(testDisclaimer, testDisclaimer))
	assert.True(t, IsDisclaimer("  The Banded Mongoose Research Project\nconsists of a team   of researchers.  ", testDisclaimer))
	assert.False(t, IsDisclaimer("Something else", testDisclaimer))
	assert.False(t, IsDisclaimer("", ""))
}

// TestNew_Empty verifies a sanitizer without tables still cleans
func TestNew_Empty(t *testing.T) {
	s := New(nil, nil)
	assert.Equal(t, "a b", s.Clean("<b>a</b>   b"))
}
