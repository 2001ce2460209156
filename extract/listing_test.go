package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleHTML = `<html><body>
<div>I am a PhD student studying cooperation in banded mongooses with Jane and colleagues.</div>
<a href="./pubs-news-ppl/jane-doe"><h1>Jane Doe</h1><h4>PhD Student</h4></a>
<a href="./pubs-news-ppl/john-smith"><h6>John Smith</h6><h6>–</h6><h6>Postdoctoral Research Fellow</h6></a>
<a href="./pubs-news-ppl/mary-major"><h1>Mary Major</h1><h4>Mary Major</h4></a>
<a href="./pubs-news-ppl/sam-jones"><h6>Sam Jones</h6><h6>sam@example.org</h6></a>
<script type="framer/handover">["x",{"TAIvpALDu":2,"Hohw1kgab":3,"MY38jWI86":{"type":"string","value":4}},"kate-lee","Kate Lee","Field Manager"]</script>
</body></html>`

// TestParsePeopleListing verifies names, roles, categories and descriptions
func TestParsePeopleListing(t *testing.T) {
	listing, err := ParsePeopleListing(peopleHTML, []string{"jane-doe"}, DefaultSelectors())
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", listing.Names["jane-doe"])
	assert.Equal(t, "PhD Student", listing.Positions["jane-doe"])
	assert.Equal(t, "", listing.Categories["jane-doe"])

	assert.Equal(t, "John Smith", listing.Names["john-smith"])
	assert.Equal(t, "Postdoctoral Research Fellow", listing.Positions["john-smith"])
	assert.Equal(t, CategoryAlumni, listing.Categories["john-smith"])

	// A role equal to the name is not a role
	assert.NotContains(t, listing.Positions, "mary-major")
	// Addresses are not roles
	assert.NotContains(t, listing.Positions, "sam-jones")

	assert.Equal(t, "Field Manager", listing.Positions["kate-lee"])

	assert.Equal(t, "I am a PhD student studying cooperation in banded mongooses with Jane and colleagues.",
		listing.Descriptions["jane-doe"])
}

// TestListingDescription_NeedsContext verifies that with several candidate
// windows only one mentioning the person is accepted
func TestListingDescription_NeedsContext(t *testing.T) {
	markup := `<p>I am an ecologist working on warthogs and their foraging across the savannah.</p>
<p>I am a behavioural ecologist studying banded mongoose conflict in Uganda.</p>
<a href="./pubs-news-ppl/ann-bell">Ann</a>`

	assert.Equal(t, "", listingDescription(markup, "ann-bell"))

	markup = strings.Replace(markup, "conflict in Uganda", "conflict with Ann in Uganda", 1)
	assert.Equal(t, "I am a behavioural ecologist studying banded mongoose conflict with Ann in Uganda.",
		listingDescription(markup, "ann-bell"))
}

// TestListingDescription_Short verifies short windows are rejected
func TestListingDescription_Short(t *testing.T) {
	assert.Equal(t, "", listingDescription(`<p>I am here.</p><a href="x/pat-green">`, "pat-green"))
}

// TestListingDescription_Long verifies self-descriptions beyond a thousand
// characters are found and cut at the length bound
func TestListingDescription_Long(t *testing.T) {
	long := "I am " + strings.Repeat("a mongoose researcher ", 70)
	markup := `<p>` + long + `</p><a href="./pubs-news-ppl/lee-ray">Lee</a>`

	desc := listingDescription(markup, "lee-ray")
	assert.Equal(t, strings.TrimSpace(long), desc)
	assert.Greater(t, len(desc), 1000)

	longer := "I am " + strings.Repeat("a mongoose researcher ", 120)
	markup = `<p>` + longer + `</p><a href="./pubs-news-ppl/lee-ray">Lee</a>`

	desc = listingDescription(markup, "lee-ray")
	assert.True(t, strings.HasPrefix(desc, "I am a mongoose researcher"))
	assert.LessOrEqual(t, len(desc), len("I am")+maxSelfDescription)
	assert.Less(t, len(desc), len(strings.TrimSpace(longer)))
}

// TestListingSlug verifies card link forms
func TestListingSlug(t *testing.T) {
	assert.Equal(t, "jane-doe", ListingSlug("./pubs-news-ppl/jane-doe"))
	assert.Equal(t, "jane-doe", ListingSlug("/pubs-news-ppl/jane-doe.html"))
	assert.Equal(t, "jane-doe", ListingSlug("https://mongooseproject.org/pubs-news-ppl/jane-doe?x=1"))
	assert.Equal(t, "", ListingSlug("/people"))
}

// TestValidRole verifies role text screening
func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole("Assistant Professor", "Jane Doe"))
	assert.True(t, ValidRole("Field Manager", "Jane Doe"))
	assert.True(t, ValidRole("Research Fellow", "Jane Doe"))
	assert.True(t, ValidRole("Senior Lecturer", "Jane Doe"))
	assert.False(t, ValidRole("Jane Doe", "Jane Doe"))
	assert.False(t, ValidRole("Kate Lee", "Jane Doe"))
	assert.False(t, ValidRole("student@exeter.ac.uk", "Jane Doe"))
	assert.False(t, ValidRole("Uganda", "Jane Doe"))
	assert.False(t, ValidRole("–", "Jane Doe"))
}

// TestPDFNear verifies proximity matching on the publications page
func TestPDFNear(t *testing.T) {
	markup := `<div><h3>Cooperation and conflict</h3>
<a href="https://framerusercontent.com/assets/near.pdf">PDF</a></div>` +
		strings.Repeat(" ", 2500) +
		`<a href="https://framerusercontent.com/assets/far.pdf">PDF</a>`
	listing := ParsePublicationsListing(markup)

	assert.Equal(t, "https://framerusercontent.com/assets/near.pdf", listing.PDFNear("Cooperation and conflict in banded mongooses"))
	assert.Equal(t, "", listing.PDFNear("Unrelated paper"))
	assert.Equal(t, "", listing.PDFNear("A b c"))
}

// TestPDFNear_TooFar verifies links beyond the distance bound are ignored
func TestPDFNear_TooFar(t *testing.T) {
	markup := `<div><h3>Cooperation</h3>` + strings.Repeat(" ", 1600) +
		`<a href="https://framerusercontent.com/assets/far.pdf">PDF</a></div>`

	assert.Equal(t, "", ParsePublicationsListing(markup).PDFNear("Cooperation"))
}

// TestPDFNear_NilListing verifies a missing listing page is harmless
func TestPDFNear_NilListing(t *testing.T) {
	var listing *PublicationsListing
	assert.Equal(t, "", listing.PDFNear("Cooperation"))
}
