package doc

import "fmt"

// Resolved is the tree location of a flat document position.
type Resolved struct {
	Pos int
	// Path runs from the root to the innermost element whose content
	// contains Pos.
	Path []*Node
	// Index is the child index within Parent() at or immediately after Pos.
	Index int
	// TextNode is set when Pos falls strictly inside a text leaf, with
	// TextOffset the rune offset into it. At leaf boundaries TextNode is nil.
	TextNode   *Node
	TextOffset int
}

// Parent returns the innermost element containing Pos.
func (r Resolved) Parent() *Node {
	return r.Path[len(r.Path)-1]
}

// NodeBefore returns the sibling ending at Pos, or nil at the start of the
// parent's content or when Pos sits inside a text leaf.
func (r Resolved) NodeBefore() *Node {
	if r.TextNode != nil || r.Index == 0 {
		return nil
	}
	return r.Parent().Children[r.Index-1]
}

// NodeAfter returns the sibling starting at Pos, or nil at the end of the
// parent's content or when Pos sits inside a text leaf.
func (r Resolved) NodeAfter() *Node {
	if r.TextNode != nil || r.Index >= len(r.Parent().Children) {
		return nil
	}
	return r.Parent().Children[r.Index]
}

// ResolvePos translates pos into a tree location. Atomic and leaf nodes are
// single-width units: positions exist before and after them, never inside.
func (d *Document) ResolvePos(pos int) (Resolved, error) {
	if pos < 0 || pos > d.Size() {
		return Resolved{}, fmt.Errorf("position %d out of range [0, %d]", pos, d.Size())
	}

	r := Resolved{Pos: pos, Path: []*Node{d.Root}}
	node := d.Root
	rel := pos

	for {
		off := 0
		descended := false
		for i, c := range node.Children {
			sz := d.nodeSize(c)
			if rel == off {
				r.Index = i
				return r, nil
			}
			if rel < off+sz {
				if c.IsText() {
					r.Index = i
					r.TextNode = c
					r.TextOffset = rel - off
					return r, nil
				}
				// Strictly inside an element: step through its opening token.
				node = c
				r.Path = append(r.Path, c)
				rel = rel - off - 1
				descended = true
				break
			}
			off += sz
		}
		if !descended {
			r.Index = len(node.Children)
			return r, nil
		}
	}
}

// TextBefore returns up to maxLen runes of plain text immediately preceding
// pos within the same inline run. It never crosses a block boundary or a
// non-text inline node, which keeps suggestion trigger detection scoped to
// the current textblock.
func (d *Document) TextBefore(pos, maxLen int) string {
	r, err := d.ResolvePos(pos)
	if err != nil {
		return ""
	}
	if !d.inlineContent(r.Parent()) {
		return ""
	}

	var runes []rune
	if r.TextNode != nil {
		runes = append(runes, []rune(r.TextNode.Text)[:r.TextOffset]...)
	}
	for i := r.Index - 1; i >= 0; i-- {
		c := r.Parent().Children[i]
		if !c.IsText() {
			break
		}
		runes = append([]rune(c.Text), runes...)
		if len(runes) >= maxLen {
			break
		}
	}
	if len(runes) > maxLen {
		runes = runes[len(runes)-maxLen:]
	}
	return string(runes)
}
