package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jobpad/jobpad/internal/decor"
	"github.com/jobpad/jobpad/internal/doc"
	"github.com/jobpad/jobpad/internal/mention"
	"github.com/jobpad/jobpad/internal/schema"
	"github.com/jobpad/jobpad/internal/suggest"
)

var (
	titleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("24"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	headingStyles = map[int]lipgloss.Style{
		1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		2: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		3: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245")),
	}

	quoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")).
			Background(lipgloss.Color("235"))

	calloutStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("215"))

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	mentionCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)

	mentionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("24"))

	highlightStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("58"))

	cursorStyle = lipgloss.NewStyle().
			Reverse(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	menuBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	menuItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	menuSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")).
				Padding(0, 1)

	panelLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(12)

	staleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dropMarkerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// renderedLine maps one screen row of document content back to a cursor
// position for mouse handling.
type renderedLine struct {
	text string
	pos  int // representative cursor position, -1 for filler rows
}

func (m *Model) recalcLayout() {
	h := max(m.height-2, 3)
	if !m.ready {
		m.vp = viewport.New(m.width, h)
		m.ready = true
	} else {
		m.vp.Width = m.width
		m.vp.Height = h
	}
	m.recalcContent()
}

func (m *Model) recalcContent() {
	m.lines = m.renderDoc()
	texts := make([]string, len(m.lines))
	for i, l := range m.lines {
		texts[i] = l.text
	}
	m.vp.SetContent(strings.Join(texts, "\n"))
	m.ensureCursorVisible()
}

// cursorRow returns the content row holding the cursor.
func (m *Model) cursorRow() int {
	row := 0
	for i, l := range m.lines {
		if l.pos >= 0 && l.pos <= m.cursor {
			row = i
		}
	}
	return row
}

func (m *Model) ensureCursorVisible() {
	row := m.cursorRow()
	if row < m.vp.YOffset {
		m.vp.SetYOffset(row)
	} else if row >= m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(row - m.vp.Height + 1)
	}
}

// posAtRow maps a screen row to a document position for mouse handling.
func (m *Model) posAtRow(y int) (int, bool) {
	idx := y - 1 + m.vp.YOffset
	if idx < 0 || idx >= len(m.lines) {
		return 0, false
	}
	for i := idx; i >= 0; i-- {
		if m.lines[i].pos >= 0 {
			return m.lines[i].pos, true
		}
	}
	return 0, false
}

func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.overlay != nil || m.overlayLoading {
		return m.viewOverlay()
	}
	if m.phase == aiStreaming || m.phase == aiReview {
		return m.viewAIPanel()
	}

	title := titleBarStyle.Width(m.width).Render(m.titleText())
	content := m.vp.View()
	if p := m.palettes.Open(); p != nil {
		content = m.overlayMenu(content, p)
	}

	var bottom string
	if m.phase == aiPrompt {
		bottom = statusBarStyle.Width(m.width).Render(" edit: " + m.prompt.View())
	} else {
		bottom = statusBarStyle.Width(m.width).Render(m.statusText())
	}

	return title + "\n" + content + "\n" + bottom
}

func (m *Model) titleText() string {
	title := m.meta.Title
	if title == "" {
		title = "Untitled"
	}
	if m.dirty {
		title += " ·"
	}
	return " " + title
}

func (m *Model) statusText() string {
	if m.status != "" {
		return " " + errorStyle.Render(m.status)
	}
	return " / commands  @ mentions  ctrl+o record  ctrl+e edit assistant  ctrl+s save  ctrl+q quit"
}

// renderDoc renders every top-level block into rows.
func (m *Model) renderDoc() []renderedLine {
	var lines []renderedLine
	dimAll := m.aiEdit.WholeDoc() && (m.phase == aiStreaming || m.phase == aiReview)

	for _, span := range m.d.BlockSpans() {
		if m.dragger.Dragging() && m.dragger.Target() == span.Start {
			lines = append(lines, renderedLine{text: dropMarkerStyle.Render("▸" + strings.Repeat("─", max(m.width-2, 8))), pos: -1})
		}
		if dimAll {
			// Plain dimmed text while the assistant reworks the whole
			// document; per-rune styling would fight the dim layer.
			lines = append(lines, renderedLine{text: dimStyle.Render(span.Node.InlineText()), pos: span.Start})
		} else {
			lines = append(lines, m.renderBlock(span.Node, span.Start, "")...)
		}
		lines = append(lines, renderedLine{text: "", pos: -1})
	}
	if m.dragger.Dragging() && m.dragger.Target() >= m.d.Size() {
		lines = append(lines, renderedLine{text: dropMarkerStyle.Render("▸" + strings.Repeat("─", max(m.width-2, 8))), pos: -1})
	} else if len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// renderBlock renders one block (possibly nested) into rows. base is the
// block's absolute start position, prefix the indentation for nested blocks.
func (m *Model) renderBlock(n *doc.Node, base int, prefix string) []renderedLine {
	switch n.Type {
	case schema.TypeParagraph:
		return []renderedLine{{text: prefix + m.renderInline(n, base), pos: base + 1}}

	case schema.TypeHeading:
		level := doc.AttrInt(n, "level", 1)
		st, ok := headingStyles[level]
		if !ok {
			st = headingStyles[3]
		}
		marker := strings.Repeat("#", level) + " "
		return []renderedLine{{text: prefix + st.Render(marker) + m.renderInlineStyled(n, base, st), pos: base + 1}}

	case schema.TypeQuote:
		return m.renderWrapped(n, base, prefix+quoteStyle.Render("│ "))

	case schema.TypeCallout:
		return m.renderWrapped(n, base, prefix+calloutStyle.Render("▍ "))

	case schema.TypeToggle:
		return m.renderWrapped(n, base, prefix+"▾ ")

	case schema.TypeCodeBlock:
		return []renderedLine{{text: prefix + codeStyle.Render(" "+n.InlineText()+" "), pos: base + 1}}

	case schema.TypeBulletList:
		var lines []renderedLine
		off := base + 1
		for _, item := range n.Children {
			lines = append(lines, m.renderBlock(item, off, prefix)...)
			off += m.d.NodeSize(item)
		}
		return lines

	case schema.TypeListItem:
		var lines []renderedLine
		off := base + 1
		for i, child := range n.Children {
			p := prefix + "  "
			if i == 0 {
				p = prefix + "• "
			}
			lines = append(lines, m.renderBlock(child, off, p)...)
			off += m.d.NodeSize(child)
		}
		return lines

	case schema.TypeDivider:
		return []renderedLine{{text: prefix + dividerStyle.Render(strings.Repeat("─", max(m.width-2, 8))), pos: base}}

	case schema.TypeMention:
		return []renderedLine{{text: prefix + m.renderMentionCard(n, base), pos: base}}

	case schema.TypeTable:
		return m.renderTable(n, base, prefix)

	case schema.TypeColumns:
		var lines []renderedLine
		off := base + 1
		for i, col := range n.Children {
			colPrefix := fmt.Sprintf("%s┆%d ", prefix, i+1)
			lines = append(lines, m.renderBlock(col, off, colPrefix)...)
			off += m.d.NodeSize(col)
		}
		return lines

	case schema.TypeColumn:
		var lines []renderedLine
		off := base + 1
		for _, child := range n.Children {
			lines = append(lines, m.renderBlock(child, off, prefix)...)
			off += m.d.NodeSize(child)
		}
		return lines
	}

	// Unknown structural node: render its children.
	var lines []renderedLine
	off := base + 1
	for _, child := range n.Children {
		lines = append(lines, m.renderBlock(child, off, prefix)...)
		off += m.d.NodeSize(child)
	}
	if len(lines) == 0 {
		return []renderedLine{{text: prefix, pos: base}}
	}
	return lines
}

func (m *Model) renderWrapped(n *doc.Node, base int, prefix string) []renderedLine {
	if m.d.HasInlineContent(n) {
		return []renderedLine{{text: prefix + m.renderInline(n, base), pos: base + 1}}
	}
	var lines []renderedLine
	off := base + 1
	for _, child := range n.Children {
		lines = append(lines, m.renderBlock(child, off, prefix)...)
		off += m.d.NodeSize(child)
	}
	return lines
}

func (m *Model) renderTable(n *doc.Node, base int, prefix string) []renderedLine {
	var lines []renderedLine
	off := base + 1
	for _, row := range n.Children {
		var cells []string
		for _, cell := range row.Children {
			cells = append(cells, cell.InlineText())
		}
		lines = append(lines, renderedLine{
			text: prefix + "│ " + strings.Join(cells, " │ ") + " │",
			pos:  off + 2,
		})
		off += m.d.NodeSize(row)
	}
	return lines
}

func (m *Model) renderMentionCard(n *doc.Node, base int) string {
	e := mention.FromNode(n)
	card := mentionCardStyle.Render("@ " + e.Title)
	meta := ""
	if e.Status != "" {
		meta += " [" + e.Status + "]"
	}
	if e.Subtitle != "" {
		meta += " " + e.Subtitle
	}
	text := card + mentionMetaStyle.Render(meta)
	from, to := m.selection()
	if from <= base && base < to {
		return selectionStyle.Render("@ " + e.Title + meta)
	}
	if m.cursor == base || m.cursor == base+1 {
		return cursorStyle.Render("@ "+e.Title) + mentionMetaStyle.Render(meta)
	}
	return text
}

// renderInline renders a textblock's content with cursor, selection and
// decoration spans applied per rune.
func (m *Model) renderInline(n *doc.Node, base int) string {
	return m.renderInlineStyled(n, base, lipgloss.NewStyle())
}

func (m *Model) renderInlineStyled(n *doc.Node, base int, baseStyle lipgloss.Style) string {
	text := []rune(n.InlineText())
	from, to := m.selection()
	decs := m.hl.DecorationsFor(m.d.Size())

	var b strings.Builder
	for i := 0; i <= len(text); i++ {
		pos := base + 1 + i
		isCursor := pos == m.cursor && m.phase == aiIdle && !m.dragger.Dragging()

		var ch string
		if i < len(text) {
			ch = string(text[i])
		} else if isCursor {
			ch = " "
		} else {
			break
		}

		st := baseStyle
		switch {
		case isCursor:
			st = cursorStyle
		case from != to && pos >= from && pos < to:
			st = selectionStyle
		case decorated(decs, pos):
			st = highlightStyle
		}
		b.WriteString(st.Render(ch))
	}
	return b.String()
}

func decorated(decs []decor.Decoration, pos int) bool {
	for _, d := range decs {
		if pos >= d.From && pos < d.To {
			return true
		}
	}
	return false
}

// overlayMenu splices the open palette's menu into the rendered content at
// the row computed by PlaceMenu.
func (m *Model) overlayMenu(content string, p *suggest.Palette) string {
	rows := strings.Split(content, "\n")
	menu := m.renderMenu(p)
	menuRows := strings.Split(menu, "\n")

	anchor := m.cursorRow() - m.vp.YOffset
	placement := suggest.PlaceMenu(anchor, len(menuRows), 0, m.vp.Height)

	for i, mr := range menuRows {
		row := placement.Row + i
		if row < 0 || row >= len(rows) {
			continue
		}
		rows[row] = mr
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderMenu(p *suggest.Palette) string {
	cands := p.Candidates()
	if len(cands) == 0 {
		empty := menuItemStyle.Render("no matches")
		return menuBorderStyle.Render(empty)
	}

	shown := cands
	if len(shown) > 6 {
		shown = shown[:6]
	}
	var items []string
	for i, c := range shown {
		line := c.Title
		if c.Subtitle != "" {
			line += "  " + mentionMetaStyle.Render(c.Subtitle)
		}
		if i == p.Selected() {
			items = append(items, menuSelectedStyle.Render(line))
		} else {
			items = append(items, menuItemStyle.Render(line))
		}
	}
	return menuBorderStyle.Render(strings.Join(items, "\n"))
}

// viewOverlay renders the mention detail modal.
func (m *Model) viewOverlay() string {
	title := titleBarStyle.Width(m.width).Render(" Record")

	var b strings.Builder
	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(panelLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	if m.overlayLoading {
		b.WriteString("loading record...\n")
	} else if m.overlay != nil {
		e := m.overlay.EmbedData
		addField("Title", e.Title)
		addField("Kind", string(e.Kind))
		addField("Subtitle", e.Subtitle)
		addField("Status", e.Status)
		if e.Score != nil {
			addField("Score", fmt.Sprintf("%.1f", *e.Score))
		}
		addField("Date", e.Date)
		if m.overlay.Stale {
			b.WriteByte('\n')
			b.WriteString(staleStyle.Render("⚠ showing saved snapshot; the record could not be refreshed"))
			b.WriteByte('\n')
		}
	}

	panel := panelBorderStyle.Width(max(m.width-4, 20)).Render(b.String())
	status := statusBarStyle.Width(m.width).Render(" o/enter open full view  esc close")
	return title + "\n" + panel + "\n" + status
}

// viewAIPanel renders the streaming/review panel for the edit assistant.
func (m *Model) viewAIPanel() string {
	header := " Edit Assistant"
	if m.phase == aiStreaming {
		header += "  (writing...)"
	}
	title := titleBarStyle.Width(m.width).Render(header)

	preview := m.aiEdit.Preview()
	if preview == "" {
		preview = dimStyle.Render("waiting for the first words...")
	}
	panel := panelBorderStyle.Width(max(m.width-4, 20)).Render(wordWrap(preview, max(m.width-8, 16)))

	var statusText string
	if m.phase == aiReview {
		statusText = " a/enter accept (replace)  i insert after  r/esc discard"
	} else {
		statusText = " esc cancel"
	}
	status := statusBarStyle.Width(m.width).Render(statusText)
	return title + "\n" + panel + "\n" + status
}

func wordWrap(text string, width int) string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) <= width {
				line += " " + w
			} else {
				out = append(out, line)
				line = w
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
