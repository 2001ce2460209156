package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pevans/sitemigrate"
	"github.com/pevans/sitemigrate/frontmatter"
)

func newsDoc(t *testing.T, slug, title string) *frontmatter.Document {
	t.Helper()
	doc, err := Render(&sitemigrate.NewsItem{Slug: slug, Title: title, Date: "2023-04-01"})
	require.NoError(t, err)
	return doc
}

// TestNewStore verifies the collection directory is created
func TestNewStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "news")

	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
	assert.DirExists(t, dir)
}

// TestStore_WriteAndGet verifies records round-trip through the store
func TestStore_WriteAndGet(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	doc := newsDoc(t, "new-grant", "Grant renewal")
	changed, err := store.Write("new-grant", doc)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := store.Get("new-grant")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Grant renewal", got.Value("title"))
	assert.Equal(t, "2023-04-01", got.Value("date"))
}

// TestStore_WriteUnchanged verifies identical content is not rewritten
func TestStore_WriteUnchanged(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	doc := newsDoc(t, "a", "A")
	_, err = store.Write("a", doc)
	require.NoError(t, err)

	changed, err := store.Write("a", doc)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = store.Write("a", newsDoc(t, "a", "A2"))
	require.NoError(t, err)
	assert.True(t, changed)
}

// TestStore_WriteInvalidSlug verifies slugs cannot escape the directory
func TestStore_WriteInvalidSlug(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, slug := range []string{"", "../x", `a\b`} {
		_, err := store.Write(slug, newsDoc(t, "x", "X"))
		assert.Error(t, err, slug)
	}
}

// TestStore_GetMissing verifies a missing record is nil without error
func TestStore_GetMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	doc, err := store.Get("missing")
	assert.NoError(t, err)
	assert.Nil(t, doc)
}

// TestStore_List verifies sorted listing with per-file errors
func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	_, err = store.Write("b", newsDoc(t, "b", "B"))
	require.NoError(t, err)
	_, err = store.Write("a", newsDoc(t, "a", "A"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.md"), []byte("no header"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("skip"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "pdfs"), 0o755))

	result, err := store.List()
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	assert.Equal(t, "a", result.Entries[0].Slug)
	assert.Equal(t, "b", result.Entries[1].Slug)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "broken.md", result.Errors[0].Filename)
	assert.ErrorIs(t, &result.Errors[0], frontmatter.ErrNoFrontMatter)
}

// TestOpenStore_Missing verifies listing an absent directory is empty
func TestOpenStore_Missing(t *testing.T) {
	store := OpenStore(filepath.Join(t.TempDir(), "none"))

	result, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, result.Entries)
	assert.Empty(t, result.Errors)
}

// TestRecords verifies JSON arrays are written once and read back
func TestRecords(t *testing.T) {
	dataDir := t.TempDir()
	path := RecordsPath(dataDir, sitemigrate.KindPerson)
	assert.Equal(t, filepath.Join(dataDir, "people-all-fields.json"), path)

	people := []sitemigrate.Person{
		{Slug: "jane-doe", Name: "Jane Doe", Position: "PhD Student", URL: "/pubs-news-ppl/jane-doe.html"},
	}

	changed, err := WriteRecords(path, people)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = WriteRecords(path, people)
	require.NoError(t, err)
	assert.False(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Jane Doe"`)

	got, err := ReadRecords[sitemigrate.Person](path)
	require.NoError(t, err)
	assert.Equal(t, people, got)
}

// TestWriteRecords_Empty verifies an empty kind is written as an empty array
func TestWriteRecords_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news-all-fields.json")

	_, err := WriteRecords[sitemigrate.NewsItem](path, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

// TestReadRecords verifies missing and malformed files
func TestReadRecords(t *testing.T) {
	dir := t.TempDir()

	got, err := ReadRecords[sitemigrate.Publication](filepath.Join(dir, "missing.json"))
	assert.NoError(t, err)
	assert.Nil(t, got)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = ReadRecords[sitemigrate.Publication](bad)
	assert.Error(t, err)
}

// TestRender verifies each record type maps to its front matter
func TestRender(t *testing.T) {
	doc, err := Render(&sitemigrate.Person{Slug: "jane-doe", Name: "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", doc.Value("title"))

	doc, err = Render(&sitemigrate.Publication{Slug: "p", Title: "P"})
	require.NoError(t, err)
	assert.Equal(t, "[]", doc.Value("authors"))

	_, err = Render(sitemigrate.Person{})
	assert.Error(t, err)
}
