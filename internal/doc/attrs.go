package doc

// Attr accessors tolerate the two numeric representations an attr value can
// have: native Go values set by the editor and float64 values produced by
// JSON deserialization.

// AttrString returns the string attr or "" when absent.
func AttrString(n *Node, name string) string {
	if n.Attrs == nil {
		return ""
	}
	s, _ := n.Attrs[name].(string)
	return s
}

// AttrInt returns the numeric attr as int, or def when absent.
func AttrInt(n *Node, name string, def int) int {
	if n.Attrs == nil {
		return def
	}
	switch v := n.Attrs[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// AttrBool returns the bool attr, or def when absent.
func AttrBool(n *Node, name string, def bool) bool {
	if n.Attrs == nil {
		return def
	}
	if v, ok := n.Attrs[name].(bool); ok {
		return v
	}
	return def
}

// Equal reports structural equality of two nodes: same types, text, children,
// and attr sets. Numeric attr values compare across int and float64 so a
// freshly built tree equals its deserialized form.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.Text != b.Text || len(a.Children) != len(b.Children) {
		return false
	}
	if !attrsEqual(a.Attrs, b.Attrs) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

func attrsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		// Treat nil and empty as equal; otherwise key sets must match.
		if countNonNil(a) != countNonNil(b) {
			return false
		}
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			if av == nil {
				continue
			}
			return false
		}
		if !valueEqual(av, bv) {
			return false
		}
	}
	for k, bv := range b {
		if _, ok := a[k]; !ok && bv != nil {
			return false
		}
	}
	return true
}

func countNonNil(m map[string]any) int {
	n := 0
	for _, v := range m {
		if v != nil {
			n++
		}
	}
	return n
}

func valueEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	switch av := a.(type) {
	case map[string]any:
		bm, ok := b.(map[string]any)
		return ok && attrsEqual(av, bm)
	default:
		return a == b
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
