package editor

import (
	"sort"
	"strings"

	"github.com/jobpad/jobpad/internal/doc"
)

// validPositions returns every position the cursor may occupy, sorted:
// interior positions of textblocks, plus the boundaries around atomic
// blocks so they can be selected and deleted without entering them.
func validPositions(d *doc.Document) []int {
	var out []int
	var walkChildren func(children []*doc.Node, off int)
	walkChildren = func(children []*doc.Node, off int) {
		for _, c := range children {
			sz := d.NodeSize(c)
			switch {
			case c.IsText():
				// Handled by the enclosing textblock.
			case d.IsAtomic(c):
				out = append(out, off, off+sz)
			case d.HasInlineContent(c):
				for p := off + 1; p <= off+sz-1; p++ {
					out = append(out, p)
				}
			default:
				walkChildren(c.Children, off+1)
			}
			off += sz
		}
	}
	walkChildren(d.Root.Children, 0)

	sort.Ints(out)
	dedup := out[:0]
	for i, p := range out {
		if i == 0 || p != out[i-1] {
			dedup = append(dedup, p)
		}
	}
	return dedup
}

// firstCursorPos returns the initial cursor position for a document.
func firstCursorPos(d *doc.Document) int {
	valid := validPositions(d)
	if len(valid) == 0 {
		return 0
	}
	return valid[0]
}

// nearestValid snaps pos onto the closest valid cursor position.
func nearestValid(valid []int, pos int) int {
	if len(valid) == 0 {
		return 0
	}
	i := sort.SearchInts(valid, pos)
	if i == len(valid) {
		return valid[len(valid)-1]
	}
	if i == 0 {
		return valid[0]
	}
	if pos-valid[i-1] < valid[i]-pos {
		return valid[i-1]
	}
	return valid[i]
}

// setCursor moves the cursor, snapping to a valid position. With extend the
// anchor stays put so the selection grows; otherwise it collapses.
func (m *Model) setCursor(pos int, extend bool) {
	m.cursor = nearestValid(validPositions(m.d), pos)
	if !extend {
		m.anchor = m.cursor
	}
}

func (m *Model) clearSelection() {
	m.anchor = m.cursor
}

// selection returns the ordered selection range; from == to means none.
func (m *Model) selection() (from, to int) {
	if m.anchor <= m.cursor {
		return m.anchor, m.cursor
	}
	return m.cursor, m.anchor
}

// prevPos returns the valid position before pos, or pos at the start.
func (m *Model) prevPos(pos int) int {
	valid := validPositions(m.d)
	i := sort.SearchInts(valid, pos)
	if i > 0 {
		return valid[i-1]
	}
	return pos
}

// nextPos returns the valid position after pos, or pos at the end.
func (m *Model) nextPos(pos int) int {
	valid := validPositions(m.d)
	i := sort.SearchInts(valid, pos)
	if i < len(valid) && valid[i] == pos {
		i++
	}
	if i < len(valid) {
		return valid[i]
	}
	return pos
}

// blockPos returns a cursor position in the block dir steps away from the
// one holding the cursor.
func (m *Model) blockPos(dir int) int {
	spans := m.d.BlockSpans()
	if len(spans) == 0 {
		return m.cursor
	}
	cur := 0
	for i, s := range spans {
		if m.cursor >= s.Start && m.cursor <= s.End {
			cur = i
			break
		}
	}
	target := cur + dir
	if target < 0 || target >= len(spans) {
		return m.cursor
	}
	s := spans[target]
	if m.d.IsAtomic(s.Node) {
		return s.Start
	}
	return s.Start + 1
}

// lineStart returns the first cursor position inside the current block.
func (m *Model) lineStart() int {
	if span, ok := m.d.BlockAt(m.cursor); ok {
		if m.d.IsAtomic(span.Node) {
			return span.Start
		}
		return span.Start + 1
	}
	return m.cursor
}

// lineEnd returns the last cursor position inside the current block.
func (m *Model) lineEnd() int {
	if span, ok := m.d.BlockAt(m.cursor); ok {
		if m.d.IsAtomic(span.Node) {
			return span.End
		}
		return span.End - 1
	}
	return m.cursor
}

// textBetween extracts the plain text covered by [from, to), used to feed
// selections to the edit assistant. Block breaks become newlines.
func (m *Model) textBetween(from, to int) string {
	var parts []string
	for _, s := range m.d.BlockSpans() {
		if s.End <= from || s.Start >= to {
			continue
		}
		text := []rune(s.Node.InlineText())
		lo := from - s.Start - 1
		hi := to - s.Start - 1
		if lo < 0 {
			lo = 0
		}
		if hi > len(text) {
			hi = len(text)
		}
		if lo < hi {
			parts = append(parts, string(text[lo:hi]))
		}
	}
	return strings.Join(parts, "\n")
}

// plainText flattens the whole document to text, one block per line.
func (m *Model) plainText() string {
	var parts []string
	for _, b := range m.d.Blocks() {
		parts = append(parts, b.InlineText())
	}
	return strings.Join(parts, "\n")
}
