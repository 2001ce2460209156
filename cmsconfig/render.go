package cmsconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults for settings missing from an existing configuration.
const (
	DefaultMediaFolder  = "site/images/uploads"
	DefaultPublicFolder = "/images/uploads"
)

// Render produces the configuration document. Top-level settings of
// existing other than collections are kept in their order and style;
// backend, media_folder and public_folder get defaults when absent.
func Render(existing []byte, collections []Collection) ([]byte, error) {
	preserved, err := topLevel(existing)
	if err != nil {
		return nil, err
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	if !hasKey(preserved, "backend") {
		root.Content = append(root.Content, key("backend"), defaultBackend())
	}
	root.Content = append(root.Content, preserved...)
	if !hasKey(preserved, "media_folder") {
		root.Content = append(root.Content, key("media_folder"), quoted(DefaultMediaFolder))
	}
	if !hasKey(preserved, "public_folder") {
		root.Content = append(root.Content, key("public_folder"), quoted(DefaultPublicFolder))
	}

	list := &yaml.Node{Kind: yaml.SequenceNode}
	for _, c := range collections {
		list.Content = append(list.Content, collectionNode(c))
	}
	root.Content = append(root.Content, key("collections"), list)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders the configuration at path, reusing the settings of the
// file already there. It reports whether the file changed.
func Write(path string, collections []Collection) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to read existing config: %w", err)
	}

	data, err := Render(existing, collections)
	if err != nil {
		return false, err
	}
	if bytes.Equal(existing, data) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}

// topLevel returns the key/value node pairs of existing except collections.
func topLevel(existing []byte) ([]*yaml.Node, error) {
	if len(bytes.TrimSpace(existing)) == 0 {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(existing, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse existing config: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("existing config is not a mapping")
	}

	var pairs []*yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "collections" {
			continue
		}
		pairs = append(pairs, root.Content[i], root.Content[i+1])
	}
	return pairs, nil
}

func hasKey(pairs []*yaml.Node, name string) bool {
	for i := 0; i < len(pairs); i += 2 {
		if pairs[i].Value == name {
			return true
		}
	}
	return false
}

func defaultBackend() *yaml.Node {
	return mapping(0,
		key("name"), plain("git-gateway"),
		key("branch"), plain("main"),
	)
}

func collectionNode(c Collection) *yaml.Node {
	n := mapping(0,
		key("name"), quoted(c.Name),
		key("label"), quoted(c.Label),
		key("folder"), quoted(c.Folder),
		key("create"), boolean(c.Create),
		key("slug"), quoted(c.Slug),
		key("format"), quoted(c.Format),
		key("extension"), quoted(c.Extension),
	)
	if c.Summary != "" {
		n.Content = append(n.Content, key("summary"), quoted(c.Summary))
	}
	if len(c.SortableFields) > 0 {
		names := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, name := range c.SortableFields {
			names.Content = append(names.Content, quoted(name))
		}
		n.Content = append(n.Content, key("sortable_fields"), names)
	}

	fields := &yaml.Node{Kind: yaml.SequenceNode}
	for _, f := range c.Fields {
		fields.Content = append(fields.Content, fieldNode(f))
	}
	n.Content = append(n.Content, key("fields"), fields)
	return n
}

func fieldNode(f Field) *yaml.Node {
	n := mapping(yaml.FlowStyle,
		key("label"), quoted(f.Label),
		key("name"), quoted(f.Name),
		key("widget"), quoted(f.Widget),
	)
	if !f.Required {
		n.Content = append(n.Content, key("required"), boolean(false))
	}
	if f.ListDefault {
		n.Content = append(n.Content, key("default"), &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle})
	}
	if len(f.Fields) > 0 {
		sub := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, s := range f.Fields {
			sub.Content = append(sub.Content, fieldNode(s))
		}
		n.Content = append(n.Content, key("fields"), sub)
	}
	return n
}

func mapping(style yaml.Style, pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Style: style, Content: pairs}
}

func key(name string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
}

func plain(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func quoted(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v, Style: yaml.DoubleQuotedStyle}
}

func boolean(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprint(v)}
}
