package document

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"gopkg.in/yaml.v3"
)

// NewNode returns an empty node called key.
func NewNode(key string) *Node {
	return &Node{Key: key}
}

// Set appends a scalar child, or replaces the value of an existing one.
func (n *Node) Set(key, value string) *Node {
	if c, ok := n.Child(key); ok {
		c.Value = value
		c.Nodes = nil
		return n
	}
	n.Nodes = append(n.Nodes, &Node{Key: key, Value: value})
	return n
}

// FormatBool writes booleans the way rule files spell them.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// FormatPoint writes p as "x,y".
func FormatPoint(p image.Point) string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// FormatColor writes opaque colors as "r,g,b" and everything else as "a,r,g,b".
func FormatColor(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
	}
	return fmt.Sprintf("%d,%d,%d,%d", c.A, c.R, c.G, c.B)
}

// FormatUint16 writes u in decimal.
func FormatUint16(u uint16) string {
	return strconv.FormatUint(uint64(u), 10)
}

// Marshal encodes the node as a single-key YAML mapping.
func (n *Node) Marshal() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	root.Content = append(root.Content, scalarNode(n.Key), n.yamlValue())
	return yaml.Marshal(root)
}

// Marshal encodes the whole document.
func (d *Document) Marshal() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, n := range d.Nodes {
		root.Content = append(root.Content, scalarNode(n.Key), n.yamlValue())
	}
	return yaml.Marshal(root)
}

func (n *Node) yamlValue() *yaml.Node {
	if len(n.Nodes) == 0 {
		return scalarNode(n.Value)
	}
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, c := range n.Nodes {
		m.Content = append(m.Content, scalarNode(c.Key), c.yamlValue())
	}
	return m
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
