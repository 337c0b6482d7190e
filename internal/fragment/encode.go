package fragment

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML converts n to a yaml.Node ready for encoding.
//
// Strings marked quoted are double-quoted when quoteStrings is set. All other
// strings, and quoted strings when quoteStrings is off, use the plain style, or
// the literal block style when they span several lines.
func (n *Node) YAML(quoteStrings bool) *yaml.Node {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagNull, Value: "null"}
	}

	switch n.Kind {
	case KindString:
		return StringNode(n.Value, n.Quoted && quoteStrings)

	case KindSequence:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.Items {
			seq.Content = append(seq.Content, item.YAML(quoteStrings))
		}
		return seq

	case KindMapping:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range n.Fields {
			m.Content = append(m.Content, StringNode(f.Key, false), f.Value.YAML(quoteStrings))
		}
		return m

	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagNull, Value: "null"}

	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: n.Tag, Value: n.Value}
	}
}

// StringNode returns a string scalar, double-quoted when quoted is set.
func StringNode(s string, quoted bool) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: s}
	switch {
	case quoted:
		node.Style = yaml.DoubleQuotedStyle
	case strings.Contains(s, "\n"):
		node.Style = yaml.LiteralStyle
	}
	return node
}
