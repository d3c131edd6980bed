// Package decor is the presentation-only range layer: it never mutates the
// document, and its output is recomputed from scratch on every document
// change because edits shift absolute positions.
package decor

// Range is a half-open document range.
type Range struct {
	From, To int
}

// Decoration is one renderable range annotation.
type Decoration struct {
	From, To  int
	ClassName string
}

// HighlightClass marks the range captured for an AI in-place edit.
const HighlightClass = "ai-edit-highlight"

// Highlighter holds the single current highlight range. A nil range means no
// highlight.
type Highlighter struct {
	current *Range
}

// SetHighlight replaces the current highlight range. Pass nil to clear.
func (h *Highlighter) SetHighlight(r *Range) {
	if r == nil {
		h.current = nil
		return
	}
	c := *r
	h.current = &c
}

// Active reports whether a highlight range is set.
func (h *Highlighter) Active() bool {
	return h.current != nil
}

// DecorationsFor returns the decorations for a document of the given size.
// The stored range is clamped into [0, size]; a range that collapses or falls
// entirely outside the document yields nothing. Pure function of
// (current range, size) so concurrent edits shrinking the document are safe.
func (h *Highlighter) DecorationsFor(size int) []Decoration {
	if h.current == nil {
		return nil
	}
	from := clamp(h.current.From, 0, size)
	to := clamp(h.current.To, 0, size)
	if from >= to {
		return nil
	}
	return []Decoration{{From: from, To: to, ClassName: HighlightClass}}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
