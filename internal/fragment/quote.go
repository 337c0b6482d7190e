package fragment

// Quote returns a copy of n in which every string scalar, at any depth, is
// marked quoted. Mappings and sequences are walked completely; null, boolean
// and number scalars are copied unmarked. The input is not modified and
// Quote(Quote(n)) equals Quote(n).
func Quote(n *Node) *Node {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case KindString:
		return &Node{Kind: KindString, Value: n.Value, Quoted: true}

	case KindSequence:
		items := make([]*Node, len(n.Items))
		for i, item := range n.Items {
			items[i] = Quote(item)
		}
		return &Node{Kind: KindSequence, Items: items}

	case KindMapping:
		fields := make([]Field, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = Field{Key: f.Key, Value: Quote(f.Value)}
		}
		return &Node{Kind: KindMapping, Fields: fields}

	default:
		return &Node{Kind: n.Kind, Value: n.Value, Tag: n.Tag}
	}
}

// Strings returns every string leaf of n in depth-first order.
func Strings(n *Node) []*Node {
	var out []*Node
	walk(n, func(leaf *Node) {
		if leaf.Kind == KindString {
			out = append(out, leaf)
		}
	})
	return out
}

func walk(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindSequence:
		for _, item := range n.Items {
			walk(item, fn)
		}
	case KindMapping:
		for _, f := range n.Fields {
			walk(f.Value, fn)
		}
	default:
		fn(n)
	}
}
