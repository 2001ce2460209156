package cmsconfig

import (
	"strings"

	"github.com/pevans/sitemigrate/frontmatter"
)

// Field is one widget declaration of a collection.
type Field struct {
	Label    string
	Name     string
	Widget   string
	Required bool
	// ListDefault adds an empty list default.
	ListDefault bool
	Fields      []Field
}

// Collection is one folder collection of Markdown records.
type Collection struct {
	Name           string
	Label          string
	Folder         string
	Create         bool
	Slug           string
	Format         string
	Extension      string
	Summary        string
	SortableFields []string
	Fields         []Field
}

// NewCollection builds the collection block for the records of one kind
// stored in folder.
func NewCollection(name, folder string, docs []*frontmatter.Document) Collection {
	fields := Analyze(docs)

	c := Collection{
		Name:      name,
		Label:     Label(name),
		Folder:    folder,
		Create:    true,
		Slug:      "{{slug}}",
		Format:    "frontmatter",
		Extension: "md",
		Summary:   summary(fields),
	}

	for _, f := range fields {
		switch f.Type {
		case WidgetString, WidgetDatetime, WidgetNumber:
			if len(c.SortableFields) < maxSortable {
				c.SortableFields = append(c.SortableFields, f.Name)
			}
		}
	}

	for _, f := range fields {
		c.Fields = append(c.Fields, newField(f))
	}
	return c
}

func newField(info FieldInfo) Field {
	f := Field{
		Label:    Label(info.Name),
		Name:     info.Name,
		Widget:   WidgetFor(info.Name, info.Type),
		Required: info.Required && !Optional[info.Name],
	}

	switch f.Widget {
	case WidgetList:
		f.ListDefault = true
	case WidgetFileList:
		f.ListDefault = true
		f.Fields = []Field{{Label: "File", Name: "file", Widget: WidgetFile, Required: true}}
	}
	return f
}

// summary uses the first two present fields of SummaryPriority.
func summary(fields []FieldInfo) string {
	var parts []string
	for _, name := range SummaryPriority {
		for _, f := range fields {
			if f.Name == name {
				parts = append(parts, "{{"+name+"}}")
				break
			}
		}
		if len(parts) == 2 {
			break
		}
	}
	return strings.Join(parts, " | ")
}

// Label capitalises name and turns underscores into spaces.
func Label(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + strings.ReplaceAll(name[1:], "_", " ")
}
