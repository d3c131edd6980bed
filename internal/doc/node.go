// Package doc implements the block-structured document tree: integer
// positions over typed nodes, transactional mutation with structural sharing,
// and position resolution used by every other editor component.
//
// Position algebra: a text leaf occupies one position per rune, any other
// leaf (divider, mention) occupies exactly one position, and an element
// occupies an opening token, its content, and a closing token. The root doc
// node contributes no tokens of its own, so document positions run from 0 to
// ContentSize of the root.
package doc

import (
	"strings"

	"github.com/jobpad/jobpad/internal/schema"
)

// Node is one typed element of the document tree. Nodes are immutable once
// part of a Document; all mutation happens through Transaction, which copies
// the touched path and shares untouched subtrees.
type Node struct {
	Type     string
	Attrs    map[string]any
	Children []*Node
	Text     string // set only for text leaves
}

// NewText returns an inline text leaf.
func NewText(text string) *Node {
	return &Node{Type: schema.TypeText, Text: text}
}

// NewNode returns an element (or leaf) node of the given type.
func NewNode(typ string, attrs map[string]any, children ...*Node) *Node {
	return &Node{Type: typ, Attrs: attrs, Children: children}
}

// Paragraph returns a paragraph holding the given text, or an empty
// paragraph when text is "".
func Paragraph(text string) *Node {
	if text == "" {
		return NewNode(schema.TypeParagraph, nil)
	}
	return NewNode(schema.TypeParagraph, nil, NewText(text))
}

// IsText reports whether n is a text leaf.
func (n *Node) IsText() bool {
	return n.Type == schema.TypeText
}

// InlineText returns the concatenated text of n's inline children
// (or n's own text for a text leaf).
func (n *Node) InlineText() string {
	if n.IsText() {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		if c.IsText() {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

// Document owns a node tree and the registry that governs it.
type Document struct {
	Reg  *schema.Registry
	Root *Node
}

// New returns a document with the given top-level blocks. An empty document
// gets a single empty paragraph so there is always a valid cursor position.
func New(reg *schema.Registry, blocks ...*Node) *Document {
	if len(blocks) == 0 {
		blocks = []*Node{Paragraph("")}
	}
	return &Document{Reg: reg, Root: NewNode(schema.TypeDoc, nil, blocks...)}
}

// Size returns the total number of positions in the document.
func (d *Document) Size() int {
	return d.contentSize(d.Root)
}

// NodeSize returns how many positions n occupies in its parent, open and
// close tokens included for elements.
func (d *Document) NodeSize(n *Node) int {
	return d.nodeSize(n)
}

func (d *Document) nodeSize(n *Node) int {
	if n.IsText() {
		return len([]rune(n.Text))
	}
	spec, ok := d.Reg.Lookup(n.Type)
	if ok && spec.Content == schema.ContentNone {
		return 1
	}
	return 2 + d.contentSize(n)
}

// contentSize returns the summed size of n's children.
func (d *Document) contentSize(n *Node) int {
	total := 0
	for _, c := range n.Children {
		total += d.nodeSize(c)
	}
	return total
}

// isLeaf reports whether n occupies a single position (divider, mention).
func (d *Document) isLeaf(n *Node) bool {
	if n.IsText() {
		return false
	}
	spec, ok := d.Reg.Lookup(n.Type)
	return ok && spec.Content == schema.ContentNone
}

// IsAtomic reports whether n is an atomic unit for cursor and deletion.
func (d *Document) IsAtomic(n *Node) bool {
	return d.Reg.Atomic(n.Type)
}

// inlineContent reports whether n's children are inline nodes.
func (d *Document) inlineContent(n *Node) bool {
	spec, ok := d.Reg.Lookup(n.Type)
	return ok && spec.Content == schema.ContentInline
}

// HasInlineContent reports whether n is a textblock, one whose children are
// inline nodes.
func (d *Document) HasInlineContent(n *Node) bool {
	return d.inlineContent(n)
}

// withChildren returns a copy of n with the given children, merging adjacent
// text leaves when n holds inline content. Untouched children keep their
// original pointers (structural sharing).
func (d *Document) withChildren(n *Node, children []*Node) *Node {
	if d.inlineContent(n) {
		children = mergeText(children)
	}
	return &Node{Type: n.Type, Attrs: n.Attrs, Children: children, Text: n.Text}
}

// mergeText joins runs of adjacent text leaves into single leaves and drops
// empty ones, so inline content has one canonical form.
func mergeText(children []*Node) []*Node {
	out := make([]*Node, 0, len(children))
	for _, c := range children {
		if c.IsText() {
			if c.Text == "" {
				continue
			}
			if len(out) > 0 && out[len(out)-1].IsText() {
				out[len(out)-1] = NewText(out[len(out)-1].Text + c.Text)
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// Blocks returns the document's top-level blocks.
func (d *Document) Blocks() []*Node {
	return d.Root.Children
}

// BlockSpan describes where a top-level block sits in the document.
type BlockSpan struct {
	Index int
	Start int
	End   int
	Node  *Node
}

// BlockSpans returns the position span of every top-level block in order.
func (d *Document) BlockSpans() []BlockSpan {
	spans := make([]BlockSpan, 0, len(d.Root.Children))
	off := 0
	for i, c := range d.Root.Children {
		sz := d.nodeSize(c)
		spans = append(spans, BlockSpan{Index: i, Start: off, End: off + sz, Node: c})
		off += sz
	}
	return spans
}

// BlockAt returns the span of the top-level block containing pos.
// Positions at a boundary belong to the following block; the document end
// belongs to the last block.
func (d *Document) BlockAt(pos int) (BlockSpan, bool) {
	spans := d.BlockSpans()
	for _, s := range spans {
		if pos >= s.Start && pos < s.End {
			return s, true
		}
	}
	if len(spans) > 0 && pos == spans[len(spans)-1].End {
		return spans[len(spans)-1], true
	}
	return BlockSpan{}, false
}

// BlockBefore returns the top-level block whose span ends exactly at pos.
func (d *Document) BlockBefore(pos int) (BlockSpan, bool) {
	for _, s := range d.BlockSpans() {
		if s.End == pos {
			return s, true
		}
	}
	return BlockSpan{}, false
}
