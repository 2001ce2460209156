package sitemigrate

// Kind identifies which content collection a scraped page belongs to.
type Kind string

const (
	KindPublication Kind = "publication"
	KindPerson      Kind = "person"
	KindNews        Kind = "news"
	KindNone        Kind = "none"
)

// Kinds lists the record kinds in the order the pipeline processes them.
var Kinds = []Kind{KindPublication, KindPerson, KindNews}

// Collection returns the directory and collection name used for the kind in
// the target CMS.
func (k Kind) Collection() string {
	switch k {
	case KindPublication:
		return "publications"
	case KindPerson:
		return "people"
	case KindNews:
		return "news"
	}
	return ""
}

// KindFromCollection is the inverse of Kind.Collection.
func KindFromCollection(name string) Kind {
	for _, k := range Kinds {
		if k.Collection() == name {
			return k
		}
	}
	return KindNone
}

// FileKind describes what a publication file reference points to.
type FileKind string

const (
	FileDocument   FileKind = "document"
	FileLink       FileKind = "link"
	FileExternalID FileKind = "external-id"
)

// File is a single attachment or external reference of a publication.
type File struct {
	Ref  string   `json:"file"`
	Kind FileKind `json:"type"`
}

// Publication is a scraped paper page.
type Publication struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Journal     string   `json:"journal,omitempty"`
	Year        string   `json:"year,omitempty"`
	Date        string   `json:"date,omitempty"`
	URL         string   `json:"url"`
	Files       []File   `json:"files,omitempty"`
	Description string   `json:"description,omitempty"`
	Body        string   `json:"body"`
}

// Person is a scraped profile page. The target CMS schema stores the
// person's name under "title", so Name keeps that key in every serialized
// form.
type Person struct {
	Slug        string `json:"slug"`
	Name        string `json:"title"`
	Position    string `json:"position,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Body        string `json:"body"`
	Image       string `json:"image,omitempty"`
	Link        string `json:"link,omitempty"`
	URL         string `json:"url"`
}

// NewsItem is a scraped news page. Year is derived from Date and exists for
// list display only.
type NewsItem struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Date        string `json:"date,omitempty"`
	Year        string `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
	Body        string `json:"body"`
	URL         string `json:"url"`
	Image       string `json:"image,omitempty"`
}
