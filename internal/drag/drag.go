// Package drag turns a press/move/release pointer gesture on block handles
// into a single reorder transaction. The document is untouched until the
// release; moving the pointer only retargets the drop indicator.
package drag

import (
	"github.com/jobpad/jobpad/internal/doc"
)

// Controller tracks one in-flight block drag. The zero value is idle.
type Controller struct {
	active bool
	source doc.BlockSpan
	target int // boundary position the block would land at
}

// Dragging reports whether a drag gesture is in flight.
func (c *Controller) Dragging() bool { return c.active }

// Source returns the span of the block being dragged.
func (c *Controller) Source() doc.BlockSpan { return c.source }

// Target returns the boundary position the drop indicator points at.
func (c *Controller) Target() int { return c.target }

// Press starts a drag on the block containing pos. Pressing outside any
// block is ignored and reports false.
func (c *Controller) Press(d *doc.Document, pos int) bool {
	span, ok := d.BlockAt(pos)
	if !ok {
		return false
	}
	c.active = true
	c.source = span
	c.target = span.Start
	return true
}

// MoveTo retargets the drop indicator to the block boundary nearest pos.
// The indicator snaps to the start of the hovered block, or to the end of
// the document when the pointer is past the last block.
func (c *Controller) MoveTo(d *doc.Document, pos int) {
	if !c.active {
		return
	}
	span, ok := d.BlockAt(pos)
	if !ok {
		c.target = d.Size()
		return
	}
	// Snap to whichever edge of the hovered block is closer.
	if pos-span.Start <= span.End-pos {
		c.target = span.Start
	} else {
		c.target = span.End
	}
}

// Drop ends the gesture and returns the reorder transaction, or nil when
// the block would land where it already is.
func (c *Controller) Drop() *doc.Transaction {
	if !c.active {
		return nil
	}
	src, target := c.source, c.target
	c.reset()
	if target >= src.Start && target <= src.End {
		return nil
	}
	return doc.NewTransaction().Move(src.Start, src.End, target)
}

// Cancel abandons the gesture without producing a transaction.
func (c *Controller) Cancel() {
	c.reset()
}

func (c *Controller) reset() {
	c.active = false
	c.source = doc.BlockSpan{}
	c.target = 0
}
