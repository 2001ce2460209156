// Package frontmatter reads and writes Markdown files that start with a
// block of key: value lines between --- fences.
package frontmatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoFrontMatter is returned by Parse for text without an opening fence.
var ErrNoFrontMatter = errors.New("no front matter")

const fence = "---"

// ValueKind is how a field value is written.
type ValueKind int

const (
	// Quoted values are double-quoted strings.
	Quoted ValueKind = iota
	// JSON values are written verbatim as JSON arrays or objects.
	JSON
	// Bare values are written verbatim, e.g. numbers.
	Bare
)

// Field is one front matter line. Value holds the decoded string for
// Quoted fields and the raw text otherwise.
type Field struct {
	Key   string
	Value string
	Kind  ValueKind
}

// Document is a parsed Markdown file.
type Document struct {
	Fields []Field
	Body   string
}

// Get returns the value of key.
func (d *Document) Get(key string) (string, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the value of key, or "".
func (d *Document) Value(key string) string {
	v, _ := d.Get(key)
	return v
}

// Field returns the field for key.
func (d *Document) Field(key string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Set replaces the value of key in place. A new key is inserted before the
// first existing field that follows it in order, or appended when order
// does not name it.
func (d *Document) Set(f Field, order []string) {
	for i := range d.Fields {
		if d.Fields[i].Key == f.Key {
			d.Fields[i] = f
			return
		}
	}

	rank := indexOf(order, f.Key)
	if rank >= 0 {
		for i, existing := range d.Fields {
			if r := indexOf(order, existing.Key); r > rank {
				d.Fields = append(d.Fields[:i], append([]Field{f}, d.Fields[i:]...)...)
				return
			}
		}
	}
	d.Fields = append(d.Fields, f)
}

// Quote writes s as a double-quoted value.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Unquote is the inverse of Quote.
func Unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("value is not quoted: %s", s)
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			return "", errors.New("dangling escape in quoted value")
		}
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

// EncodeJSON renders v as single-line JSON without HTML escaping.
func EncodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Encode renders the document.
func Encode(d *Document) []byte {
	var b strings.Builder
	b.WriteString(fence + "\n")
	for _, f := range d.Fields {
		b.WriteString(f.Key)
		b.WriteString(": ")
		if f.Kind == Quoted {
			b.WriteString(Quote(f.Value))
		} else {
			b.WriteString(f.Value)
		}
		b.WriteByte('\n')
	}
	b.WriteString(fence + "\n\n")
	b.WriteString(d.Body)
	return []byte(b.String())
}

// Parse reads a document written by Encode. Lines that are not key: value
// pairs are an error.
func Parse(data []byte) (*Document, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, fence+"\n") {
		return nil, ErrNoFrontMatter
	}
	rest := text[len(fence)+1:]

	end := strings.Index(rest, "\n"+fence+"\n")
	var header, body string
	switch {
	case strings.HasPrefix(rest, fence+"\n"):
		header, body = "", rest[len(fence)+1:]
	case end >= 0:
		header, body = rest[:end], rest[end+len(fence)+2:]
	case strings.HasSuffix(rest, "\n"+fence):
		header, body = strings.TrimSuffix(rest, "\n"+fence), ""
	default:
		return nil, errors.New("unterminated front matter")
	}
	body = strings.TrimPrefix(body, "\n")

	doc := &Document{Body: body}
	if header == "" {
		return doc, nil
	}

	for n, line := range strings.Split(header, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, raw, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid front matter line %d: %q", n+1, line)
		}
		key = strings.TrimSpace(key)
		raw = strings.TrimSpace(raw)

		field := Field{Key: key, Value: raw, Kind: Bare}
		switch {
		case strings.HasPrefix(raw, `"`):
			v, err := Unquote(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid value for %s: %w", key, err)
			}
			field.Value, field.Kind = v, Quoted
		case strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{"):
			field.Kind = JSON
		}
		doc.Fields = append(doc.Fields, field)
	}

	return doc, nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
