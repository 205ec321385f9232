// Package document reads rule documents: YAML files whose top-level keys are
// named sections holding ordered trees of key/value nodes.
package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingSection is returned when a required section or sub-section is absent.
var ErrMissingSection = errors.New("missing section")

// Node is one key of a document. A node carries either a scalar Value or an
// ordered list of child Nodes.
type Node struct {
	Key   string
	Value string
	Nodes []*Node
}

// Document holds the top-level sections in file order.
type Document struct {
	Nodes []*Node
}

// ReadFile parses the document stored at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	return Parse(data)
}

// ReadFS parses the document stored under name in fsys.
func ReadFS(fsys fs.FS, name string) (*Document, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", name, err)
	}
	return Parse(data)
}

// Parse builds a document from YAML. Key order and repeated keys are kept as
// written, which a plain map decode would lose.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	doc := &Document{}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}

	top := resolveAlias(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse document: line %d: top level must be a mapping", top.Line)
	}

	nodes, err := convertMapping(top)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	doc.Nodes = nodes
	return doc, nil
}

// Section returns the first top-level section called name.
func (d *Document) Section(name string) (*Node, error) {
	for _, n := range d.Nodes {
		if n.Key == name {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrMissingSection, name)
}

// Child returns the first direct child called key.
func (n *Node) Child(key string) (*Node, bool) {
	for _, c := range n.Nodes {
		if c.Key == key {
			return c, true
		}
	}
	return nil, false
}

// Section is Child for sub-sections that must be present, even if empty.
func (n *Node) Section(key string) (*Node, error) {
	if c, ok := n.Child(key); ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q in %q", ErrMissingSection, key, n.Key)
}

func convertMapping(m *yaml.Node) ([]*Node, error) {
	nodes := make([]*Node, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		keyNode := resolveAlias(m.Content[i])
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}

		n, err := convertValue(keyNode.Value, resolveAlias(m.Content[i+1]))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func convertValue(key string, v *yaml.Node) (*Node, error) {
	n := &Node{Key: key}
	switch v.Kind {
	case yaml.ScalarNode:
		if v.Tag != "!!null" {
			n.Value = v.Value
		}
	case yaml.MappingNode:
		children, err := convertMapping(v)
		if err != nil {
			return nil, err
		}
		n.Nodes = children
	case yaml.SequenceNode:
		items := make([]string, 0, len(v.Content))
		for _, item := range v.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: %s: sequences may only hold scalars", item.Line, key)
			}
			items = append(items, item.Value)
		}
		n.Value = strings.Join(items, ", ")
	default:
		return nil, fmt.Errorf("line %d: %s: unsupported value", v.Line, key)
	}
	return n, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
