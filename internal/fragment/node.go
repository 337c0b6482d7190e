// Package fragment decodes the structured block embedded in a doc comment
// ("```dbt ... ```") into a generic tree and prepares it for the property file.
package fragment

// Kind identifies the variant held by a Node.
type Kind int

// Node kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindMapping
	KindSequence
)

// String returns the kind name used in logs and errors.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Node is one value of a decoded fragment.
//
// Scalars keep their source text in Value. Booleans and numbers also keep the
// YAML tag they resolved to so they are written back unchanged.
type Node struct {
	Kind   Kind
	Value  string
	Tag    string
	Quoted bool
	Items  []*Node
	Fields []Field
}

// Field is a mapping entry. Mappings keep their source key order.
type Field struct {
	Key   string
	Value *Node
}

// Null returns a null node.
func Null() *Node { return &Node{Kind: KindNull, Value: "null"} }

// String returns an unquoted string node.
func String(s string) *Node { return &Node{Kind: KindString, Value: s} }

// Bool returns a boolean node.
func Bool(b bool) *Node {
	if b {
		return &Node{Kind: KindBool, Value: "true", Tag: tagBool}
	}
	return &Node{Kind: KindBool, Value: "false", Tag: tagBool}
}

// Int returns an integer number node from its decimal text.
func Int(text string) *Node { return &Node{Kind: KindNumber, Value: text, Tag: tagInt} }

// Float returns a float number node from its text.
func Float(text string) *Node { return &Node{Kind: KindNumber, Value: text, Tag: tagFloat} }

// Seq returns a sequence node.
func Seq(items ...*Node) *Node { return &Node{Kind: KindSequence, Items: items} }

// Map returns a mapping node.
func Map(fields ...Field) *Node { return &Node{Kind: KindMapping, Fields: fields} }

// F builds a mapping field.
func F(key string, value *Node) Field { return Field{Key: key, Value: value} }

// IsNull reports whether n is absent or null.
func (n *Node) IsNull() bool {
	return n == nil || n.Kind == KindNull
}

// Get returns the value stored under key in a mapping node.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindMapping {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Select returns the fields of a mapping node whose keys appear in keys.
// Fields come back in the order of keys, not in source order; keys absent
// from the mapping are skipped. Non-mapping nodes yield nothing.
func (n *Node) Select(keys ...string) []Field {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	var out []Field
	for _, key := range keys {
		if v, ok := n.Get(key); ok {
			out = append(out, Field{Key: key, Value: v})
		}
	}
	return out
}
