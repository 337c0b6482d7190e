package fragment

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Limits applied while converting a document. Aliases are expanded by copy,
// so maxNodes also bounds the output of nested alias fan-out.
const (
	maxDepth = 256
	maxNodes = 100_000
)

const (
	tagNull  = "!!null"
	tagBool  = "!!bool"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagStr   = "!!str"
)

// Parse decodes fragment text into a Node tree. Empty text yields a null node.
// Only the first YAML document is read.
func Parse(text string) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &MalformedFragmentError{Message: err.Error(), Err: err}
	}
	if doc.Kind == 0 {
		return Null(), nil
	}
	var c converter
	return c.convert(&doc, 0)
}

// converter counts the nodes produced for one document.
type converter struct {
	nodes int
}

func (c *converter) convert(y *yaml.Node, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, &MalformedFragmentError{Message: fmt.Sprintf("nesting deeper than %d levels", maxDepth)}
	}
	c.nodes++
	if c.nodes > maxNodes {
		return nil, &MalformedFragmentError{Message: fmt.Sprintf("more than %d nodes after alias expansion", maxNodes)}
	}

	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return Null(), nil
		}
		return c.convert(y.Content[0], depth+1)

	case yaml.AliasNode:
		if y.Alias == nil {
			return Null(), nil
		}
		return c.convert(y.Alias, depth+1)

	case yaml.ScalarNode:
		return convertScalar(y), nil

	case yaml.SequenceNode:
		items := make([]*Node, 0, len(y.Content))
		for _, child := range y.Content {
			item, err := c.convert(child, depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return &Node{Kind: KindSequence, Items: items}, nil

	case yaml.MappingNode:
		fields := make([]Field, 0, len(y.Content)/2)
		for i := 0; i+1 < len(y.Content); i += 2 {
			key := y.Content[i]
			if key.Kind == yaml.AliasNode && key.Alias != nil {
				key = key.Alias
			}
			value, err := c.convert(y.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Key: key.Value, Value: value})
		}
		return &Node{Kind: KindMapping, Fields: fields}, nil

	default:
		return nil, &MalformedFragmentError{Message: fmt.Sprintf("unsupported yaml node kind %d", y.Kind)}
	}
}

// convertScalar maps a resolved YAML scalar onto the tree. Tags other than
// null, bool, int and float (timestamps, binary, custom tags) are kept as
// their source text.
func convertScalar(y *yaml.Node) *Node {
	switch y.ShortTag() {
	case tagNull:
		return Null()
	case tagBool:
		return &Node{Kind: KindBool, Value: y.Value, Tag: tagBool}
	case tagInt:
		return &Node{Kind: KindNumber, Value: y.Value, Tag: tagInt}
	case tagFloat:
		return &Node{Kind: KindNumber, Value: y.Value, Tag: tagFloat}
	default:
		return &Node{Kind: KindString, Value: y.Value}
	}
}

// MalformedFragmentError reports fragment text that is not a valid document.
type MalformedFragmentError struct {
	File    string
	Message string
	Err     error
}

func (e *MalformedFragmentError) Error() string {
	msg := "malformed dbt block: " + e.Message
	if e.File != "" {
		return e.File + ": " + msg
	}
	return msg
}

func (e *MalformedFragmentError) Unwrap() error {
	return e.Err
}
