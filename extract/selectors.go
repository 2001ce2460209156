package extract

// Selectors defines where a content page keeps each field.
type Selectors struct {
	Title       string   `yaml:"title"`
	Authors     string   `yaml:"authors"`
	Paragraph   string   `yaml:"paragraph"`
	Description string   `yaml:"description"`
	Dates       []string `yaml:"dates"`
	Sidecar     []string `yaml:"sidecar"`
}

// DefaultSelectors returns the selectors matching the builder's export.
func DefaultSelectors() Selectors {
	return Selectors{
		Title:       "h1",
		Authors:     "h2",
		Paragraph:   "p",
		Description: `meta[name="description"]`,
		Dates: []string{
			"time[datetime]",
			`meta[property="article:published_time"]`,
			`meta[name="date"]`,
		},
		Sidecar: []string{
			`script[type="framer/handover"]`,
			"#__framer__handoverData",
		},
	}
}
