package doc

// SpliceText appends the steps that remove [from, to) and place text at the
// join, returning the cursor position after the edit. Within one textblock
// this is a plain inline edit. Across blocks the edge textblocks are trimmed,
// fully covered blocks are dropped and the remnants merge into a single block
// of the leading edge's type, so a range edit never produces a ragged step.
// A top-level block without inline content is indivisible here: once the
// range reaches into it, the whole block goes.
func (d *Document) SpliceText(tr *Transaction, from, to int, text string) int {
	if from == to {
		if text == "" {
			return from
		}
		if r, err := d.ResolvePos(from); err == nil && d.inlineContent(r.Parent()) {
			tr.Insert(from, NewText(text))
			return from + len([]rune(text))
		}
		// Block-level position (next to an atomic block or the document
		// edge): typed text starts a fresh paragraph.
		tr.Insert(from, Paragraph(text))
		return from + 1 + len([]rune(text))
	}

	var covered []BlockSpan
	for _, s := range d.BlockSpans() {
		if s.End <= from || s.Start >= to {
			continue
		}
		covered = append(covered, s)
	}
	if len(covered) == 0 {
		return from
	}

	first, last := covered[0], covered[len(covered)-1]
	if len(covered) == 1 && d.inlineContent(first.Node) && from > first.Start && to < first.End {
		if text == "" {
			tr.DeleteRange(from, to)
			return from
		}
		tr.ReplaceRange(from, to, NewText(text))
		return from + len([]rune(text))
	}

	var head, tail string
	var keep *Node
	if d.inlineContent(first.Node) && from > first.Start {
		head = string([]rune(first.Node.InlineText())[:from-first.Start-1])
		keep = first.Node
	}
	if d.inlineContent(last.Node) && to < last.End {
		tail = string([]rune(last.Node.InlineText())[to-last.Start-1:])
		if keep == nil {
			keep = last.Node
		}
	}

	merged := head + text + tail
	switch {
	case keep != nil:
		var content []*Node
		if merged != "" {
			content = append(content, NewText(merged))
		}
		tr.ReplaceRange(first.Start, last.End, NewNode(keep.Type, keep.Attrs, content...))
		return first.Start + 1 + len([]rune(head+text))
	case text != "":
		tr.ReplaceRange(first.Start, last.End, Paragraph(text))
		return first.Start + 1 + len([]rune(text))
	default:
		tr.DeleteRange(first.Start, last.End)
		return first.Start
	}
}
