package doc

import "fmt"

// Step is one primitive document mutation. Steps are applied in order by
// Apply; positions in each step refer to the document state produced by the
// previous step.
type Step interface {
	apply(d *Document) (*Node, error)
}

// InsertStep places content at a single position.
type InsertStep struct {
	Pos     int
	Content []*Node
}

// DeleteStep removes the range [From, To).
type DeleteStep struct {
	From, To int
}

// ReplaceStep removes [From, To) and places content at From.
type ReplaceStep struct {
	From, To int
	Content  []*Node
}

// MoveStep relocates the node exactly spanning [From, To) to Target.
// Both operations are computed against the same base state: when Target is
// before the source the delete runs first (the target boundary is unaffected),
// when Target is after the source the insert runs first (the source span is
// unaffected). Mixing orders would invalidate one of the two positions.
type MoveStep struct {
	From, To, Target int
}

// Transaction is an ordered list of steps applied atomically: it either
// fully applies or the document is left untouched.
type Transaction struct {
	Steps []Step
}

// NewTransaction returns an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{}
}

// Insert appends an insert step and returns the transaction for chaining.
func (t *Transaction) Insert(pos int, content ...*Node) *Transaction {
	t.Steps = append(t.Steps, InsertStep{Pos: pos, Content: content})
	return t
}

// DeleteRange appends a delete step.
func (t *Transaction) DeleteRange(from, to int) *Transaction {
	t.Steps = append(t.Steps, DeleteStep{From: from, To: to})
	return t
}

// ReplaceRange appends a replace step.
func (t *Transaction) ReplaceRange(from, to int, content ...*Node) *Transaction {
	t.Steps = append(t.Steps, ReplaceStep{From: from, To: to, Content: content})
	return t
}

// Move appends a move step.
func (t *Transaction) Move(from, to, target int) *Transaction {
	t.Steps = append(t.Steps, MoveStep{From: from, To: to, Target: target})
	return t
}

// Empty reports whether the transaction has no steps.
func (t *Transaction) Empty() bool {
	return len(t.Steps) == 0
}

// Apply runs the transaction against d and returns the resulting document.
// d itself is never mutated; the result shares every untouched subtree with
// d. On any failing step the whole transaction is rejected with
// *InvalidTransactionError and d remains the current state.
func (d *Document) Apply(t *Transaction) (*Document, error) {
	work := &Document{Reg: d.Reg, Root: d.Root}
	for i, step := range t.Steps {
		root, err := step.apply(work)
		if err != nil {
			return d, &InvalidTransactionError{Step: i, Err: err}
		}
		work.Root = root
	}
	return work, nil
}

func (s InsertStep) apply(d *Document) (*Node, error) {
	if len(s.Content) == 0 {
		return d.Root, nil
	}
	if s.Pos < 0 || s.Pos > d.Size() {
		return nil, fmt.Errorf("insert at %d out of range [0, %d]", s.Pos, d.Size())
	}
	return d.insertNodes(d.Root, s.Pos, s.Content)
}

func (s DeleteStep) apply(d *Document) (*Node, error) {
	if err := d.checkRange(s.From, s.To); err != nil {
		return nil, err
	}
	if s.From == s.To {
		return d.Root, nil
	}
	return d.deleteIn(d.Root, s.From, s.To)
}

func (s ReplaceStep) apply(d *Document) (*Node, error) {
	if err := d.checkRange(s.From, s.To); err != nil {
		return nil, err
	}
	root := d.Root
	if s.From < s.To {
		var err error
		root, err = d.deleteIn(root, s.From, s.To)
		if err != nil {
			return nil, err
		}
	}
	if len(s.Content) == 0 {
		return root, nil
	}
	work := &Document{Reg: d.Reg, Root: root}
	return work.insertNodes(root, s.From, s.Content)
}

func (s MoveStep) apply(d *Document) (*Node, error) {
	if err := d.checkRange(s.From, s.To); err != nil {
		return nil, err
	}
	if s.Target < 0 || s.Target > d.Size() {
		return nil, fmt.Errorf("move target %d out of range [0, %d]", s.Target, d.Size())
	}
	if s.Target == s.From || s.Target == s.To {
		return d.Root, nil
	}
	if s.Target > s.From && s.Target < s.To {
		return nil, fmt.Errorf("move target %d is inside the moved range [%d, %d)", s.Target, s.From, s.To)
	}

	node, err := d.nodeSpanning(s.From, s.To)
	if err != nil {
		return nil, err
	}

	if s.Target < s.From {
		root, err := d.deleteIn(d.Root, s.From, s.To)
		if err != nil {
			return nil, err
		}
		work := &Document{Reg: d.Reg, Root: root}
		return work.insertNodes(root, s.Target, []*Node{node})
	}

	root, err := d.insertNodes(d.Root, s.Target, []*Node{node})
	if err != nil {
		return nil, err
	}
	work := &Document{Reg: d.Reg, Root: root}
	return work.deleteIn(root, s.From, s.To)
}

func (d *Document) checkRange(from, to int) error {
	if from < 0 || to > d.Size() || from > to {
		return fmt.Errorf("range [%d, %d) out of bounds [0, %d]", from, to, d.Size())
	}
	return nil
}

// insertNodes places content at pos within n's content and returns the
// rebuilt node. pos is relative to n's content (0..contentSize).
func (d *Document) insertNodes(n *Node, pos int, content []*Node) (*Node, error) {
	off := 0
	for i, c := range n.Children {
		sz := d.nodeSize(c)
		if pos == off {
			return d.spliceChildren(n, i, i, content)
		}
		if pos < off+sz {
			if c.IsText() {
				return d.insertIntoText(n, i, pos-off, content)
			}
			if d.isLeaf(c) {
				// size-1 leaves have no interior; unreachable with int positions
				return nil, fmt.Errorf("cannot insert inside leaf node %q", c.Type)
			}
			child, err := d.insertNodes(c, pos-off-1, content)
			if err != nil {
				return nil, err
			}
			return d.replaceChild(n, i, child), nil
		}
		off += sz
	}
	if pos == off {
		return d.spliceChildren(n, len(n.Children), len(n.Children), content)
	}
	return nil, fmt.Errorf("insert position %d out of range in %q", pos, n.Type)
}

// insertIntoText splits the text leaf at child index i and splices content
// between the halves. spliceChildren rejects content the parent disallows,
// so block nodes can never land inside a text run.
func (d *Document) insertIntoText(n *Node, i, runeOffset int, content []*Node) (*Node, error) {
	runes := []rune(n.Children[i].Text)
	before, after := string(runes[:runeOffset]), string(runes[runeOffset:])

	splice := make([]*Node, 0, len(content)+2)
	if before != "" {
		splice = append(splice, NewText(before))
	}
	splice = append(splice, content...)
	if after != "" {
		splice = append(splice, NewText(after))
	}
	return d.spliceChildren(n, i, i+1, splice)
}

// spliceChildren replaces children [i, j) of n with content, validating that
// every inserted node is allowed under n.
func (d *Document) spliceChildren(n *Node, i, j int, content []*Node) (*Node, error) {
	for _, c := range content {
		if err := d.Reg.Allowed(n.Type, c.Type); err != nil {
			return nil, err
		}
	}
	children := make([]*Node, 0, len(n.Children)-(j-i)+len(content))
	children = append(children, n.Children[:i]...)
	children = append(children, content...)
	children = append(children, n.Children[j:]...)
	return d.withChildren(n, children), nil
}

func (d *Document) replaceChild(n *Node, i int, child *Node) *Node {
	children := make([]*Node, len(n.Children))
	copy(children, n.Children)
	children[i] = child
	return d.withChildren(n, children)
}

// deleteIn removes [from, to) from n's content. Children fully covered are
// dropped, text leaves at the edges are trimmed, and a range strictly inside
// one element recurses into it. A range that covers an element's opening or
// closing token without covering the whole element is ragged and rejected.
func (d *Document) deleteIn(n *Node, from, to int) (*Node, error) {
	out := make([]*Node, 0, len(n.Children))
	off := 0
	for _, c := range n.Children {
		sz := d.nodeSize(c)
		start, end := off, off+sz
		off = end

		switch {
		case end <= from || start >= to:
			out = append(out, c)
		case from <= start && to >= end:
			// fully covered: drop
		case c.IsText():
			runes := []rune(c.Text)
			lo := max(from-start, 0)
			hi := min(to-start, sz)
			kept := string(runes[:lo]) + string(runes[hi:])
			if kept != "" {
				out = append(out, NewText(kept))
			}
		case d.isLeaf(c):
			// single-width leaves are either fully covered or untouched
			out = append(out, c)
		case from > start && to < end:
			child, err := d.deleteIn(c, max(from-start-1, 0), to-start-1)
			if err != nil {
				return nil, err
			}
			out = append(out, child)
		default:
			return nil, fmt.Errorf("range [%d, %d) partially covers %q node boundary", from, to, c.Type)
		}
	}
	return d.withChildren(n, out), nil
}

// nodeSpanning returns the node whose span is exactly [from, to).
func (d *Document) nodeSpanning(from, to int) (*Node, error) {
	n := d.Root
	base := 0
	for {
		off := base
		var next *Node
		for _, c := range n.Children {
			sz := d.nodeSize(c)
			if off == from && off+sz == to {
				return c, nil
			}
			if from >= off && to <= off+sz && !c.IsText() && !d.isLeaf(c) {
				next = c
				base = off + 1
				break
			}
			off += sz
		}
		if next == nil {
			return nil, fmt.Errorf("no node spans exactly [%d, %d)", from, to)
		}
		n = next
	}
}
