// Package editor is the interactive terminal host for jobpad documents: a
// block editor with slash commands, record mentions, drag reordering and an
// AI edit assistant, built on bubbletea.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jobpad/jobpad/internal/ai"
	"github.com/jobpad/jobpad/internal/config"
	"github.com/jobpad/jobpad/internal/decor"
	"github.com/jobpad/jobpad/internal/doc"
	"github.com/jobpad/jobpad/internal/drag"
	"github.com/jobpad/jobpad/internal/edit"
	"github.com/jobpad/jobpad/internal/mention"
	"github.com/jobpad/jobpad/internal/model"
	"github.com/jobpad/jobpad/internal/schema"
	"github.com/jobpad/jobpad/internal/suggest"
)

type aiPhase int

const (
	aiIdle aiPhase = iota
	aiPrompt
	aiStreaming
	aiReview
)

// mentionSearchMsg fires when the search debounce window elapses.
type mentionSearchMsg struct {
	seq   uint64
	query string
}

// searchResultsMsg carries an async record search response.
type searchResultsMsg struct {
	seq  uint64
	hits []model.SearchResult
	err  error
}

// saveTickMsg fires when the autosave debounce window elapses.
type saveTickMsg struct {
	gen int
}

// savedMsg reports the outcome of an async save.
type savedMsg struct {
	err error
}

// detailFetchedMsg is sent when an async mention detail fetch completes.
type detailFetchedMsg struct {
	recordID string
	detail   mention.Detail
}

// streamEventMsg relays one AI stream event into the update loop.
type streamEventMsg struct {
	ev ai.StreamEvent
}

// streamClosedMsg is sent when the AI stream channel closes.
type streamClosedMsg struct{}

// Deps bundles everything the editor session needs from the outside.
type Deps struct {
	Config   config.EditorConfig
	Docs     model.DocumentStore
	Searcher *mention.Aggregator
	Getter   model.RecordGetter
	Nav      model.Navigator
	Streamer ai.Streamer
	Logger   *slog.Logger
}

// Model is the bubbletea model for one editing session.
type Model struct {
	deps Deps

	d      *doc.Document
	meta   model.DocumentMeta
	cursor int
	anchor int // selection anchor; equals cursor when nothing is selected

	palettes    *suggest.Manager
	cmdMatches  []suggest.Command
	mentionHits []model.SearchResult

	hl     *decor.Highlighter
	aiEdit *edit.Controller
	phase  aiPhase
	prompt textinput.Model

	dragger drag.Controller

	overlay        *mention.Detail
	overlayLoading bool
	overlayEmbed   mention.EmbedData

	vp      viewport.Model
	width   int
	height  int
	ready   bool
	lines   []renderedLine
	status  string
	dirty   bool
	saveGen int
}

// New builds a session for the given document.
func New(deps Deps, meta model.DocumentMeta, d *doc.Document) *Model {
	prompt := textinput.New()
	prompt.Placeholder = "describe the edit, enter to run, esc to cancel"
	prompt.CharLimit = 300

	hl := &decor.Highlighter{}
	return &Model{
		deps:     deps,
		d:        d,
		meta:     meta,
		cursor:   firstCursorPos(d),
		anchor:   firstCursorPos(d),
		palettes: suggest.NewManager(),
		hl:       hl,
		aiEdit:   edit.NewController(deps.Streamer, hl, deps.Logger),
		prompt:   prompt,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case mentionSearchMsg:
		return m, m.runSearch(msg)

	case searchResultsMsg:
		m.applySearchResults(msg)
		return m, nil

	case saveTickMsg:
		if msg.gen == m.saveGen && m.dirty {
			m.dirty = false
			return m, m.saveCmd()
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.deps.Logger.Warn("autosave failed", "error", msg.err)
			m.status = "autosave failed, retrying on next edit"
			m.dirty = true
		}
		return m, nil

	case detailFetchedMsg:
		if m.overlayLoading && msg.recordID == m.overlayEmbed.RecordID {
			m.overlayLoading = false
			d := msg.detail
			m.overlay = &d
		}
		return m, nil

	case streamEventMsg:
		done, err := m.aiEdit.OnEvent(msg.ev)
		if err != nil {
			m.phase = aiIdle
			m.status = fmt.Sprintf("edit assistant failed: %v", err)
			return m, nil
		}
		if done {
			m.phase = aiReview
			return m, nil
		}
		return m, waitStream(m.aiEdit.Events())

	case streamClosedMsg:
		if m.phase == aiStreaming {
			m.phase = aiReview
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit works from any mode.
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.phase {
	case aiPrompt:
		return m.updatePromptKey(msg)
	case aiStreaming, aiReview:
		return m.updateReviewKey(msg)
	}

	if m.overlay != nil || m.overlayLoading {
		return m.updateOverlayKey(msg)
	}

	if p := m.palettes.Open(); p != nil {
		if handled, model, cmd := m.updatePaletteKey(p, msg); handled {
			return model, cmd
		}
	}

	return m.updateEditKey(msg)
}

// updateEditKey handles plain text editing and navigation.
func (m *Model) updateEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+q":
		return m, tea.Quit
	case "ctrl+s":
		m.dirty = false
		return m, m.saveCmd()
	case "ctrl+e":
		return m.startAIPrompt()
	case "left":
		m.setCursor(m.prevPos(m.cursor), false)
		return m, m.syncPalettes()
	case "right":
		m.setCursor(m.nextPos(m.cursor), false)
		return m, m.syncPalettes()
	case "shift+left":
		m.setCursor(m.prevPos(m.cursor), true)
		return m, m.syncPalettes()
	case "shift+right":
		m.setCursor(m.nextPos(m.cursor), true)
		return m, m.syncPalettes()
	case "up":
		m.setCursor(m.blockPos(-1), false)
		return m, m.syncPalettes()
	case "down":
		m.setCursor(m.blockPos(+1), false)
		return m, m.syncPalettes()
	case "home":
		m.setCursor(m.lineStart(), false)
		return m, m.syncPalettes()
	case "end":
		m.setCursor(m.lineEnd(), false)
		return m, m.syncPalettes()
	case "enter":
		return m.splitBlock()
	case "ctrl+o":
		if span, ok := m.d.BlockAt(m.cursor); ok && span.Node.Type == schema.TypeMention {
			return m.openOverlay(span.Node)
		}
		return m, nil
	case "backspace":
		return m.backspace()
	case "delete":
		return m.deleteForward()
	case "esc":
		m.clearSelection()
		return m, nil
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		text := string(msg.Runes)
		if msg.Type == tea.KeySpace {
			text = " "
		}
		return m.insertText(text)
	}

	// Forward scrolling keys to the viewport.
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// updatePaletteKey handles navigation and confirm while a palette is open.
// Unhandled keys fall through to normal editing, which re-syncs triggers.
func (m *Model) updatePaletteKey(p *suggest.Palette, msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "ctrl+p":
		p.MoveSelection(-1)
		return true, m, nil
	case "down", "ctrl+n":
		p.MoveSelection(+1)
		return true, m, nil
	case "esc":
		p.Close()
		return true, m, nil
	case "enter", "tab":
		model, cmd := m.confirmPalette(p)
		return true, model, cmd
	}
	return false, m, nil
}

func (m *Model) confirmPalette(p *suggest.Palette) (tea.Model, tea.Cmd) {
	sel := p.Selected()
	if len(p.Candidates()) == 0 {
		p.Close()
		return m, nil
	}

	var tr *doc.Transaction
	var err error
	var cursorAfter int
	if p == m.palettes.Command {
		if sel >= len(m.cmdMatches) {
			p.Close()
			return m, nil
		}
		cmd := m.cmdMatches[sel]
		tr, err = suggest.ConfirmCommand(m.d, p, m.cursor, cmd)
		cursorAfter = p.TriggerPos()
	} else {
		if sel >= len(m.mentionHits) {
			p.Close()
			return m, nil
		}
		embed := mention.SnapshotOf(m.mentionHits[sel])
		tr, err = suggest.ConfirmMention(m.d, p, m.cursor, embed.Node())
		cursorAfter = p.TriggerPos()
	}
	m.palettes.CloseAll()
	if err != nil {
		m.deps.Logger.Warn("palette confirm rejected", "error", err)
		m.status = "could not apply the selection here"
		return m, nil
	}
	return m.apply(tr, cursorAfter)
}

func (m *Model) updateOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "backspace":
		m.overlay = nil
		m.overlayLoading = false
		return m, nil
	case "o", "enter":
		if m.overlay == nil {
			return m, nil
		}
		route, err := mention.Route(m.overlay.EmbedData)
		if err != nil {
			m.status = "this record has no full view to open"
			return m, nil
		}
		if m.deps.Nav != nil {
			if err := m.deps.Nav.NavigateTo(route); err != nil {
				m.deps.Logger.Warn("navigation failed", "route", route, "error", err)
			}
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) updatePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.phase = aiIdle
		m.aiEdit.Reject()
		m.prompt.Blur()
		return m, nil
	case "enter":
		instruction := strings.TrimSpace(m.prompt.Value())
		if instruction == "" {
			return m, nil
		}
		m.prompt.Blur()
		return m.startStream(instruction)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) updateReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "r":
		m.phase = aiIdle
		m.aiEdit.Reject()
		m.status = "edit discarded"
		return m, nil
	case "a", "enter":
		return m.acceptAI(edit.AcceptReplace)
	case "i":
		return m.acceptAI(edit.AcceptInsert)
	}
	return m, nil
}

func (m *Model) acceptAI(mode edit.AcceptMode) (tea.Model, tea.Cmd) {
	tr, err := m.aiEdit.Accept(m.d, mode)
	m.phase = aiIdle
	if err != nil {
		m.status = fmt.Sprintf("nothing to accept: %v", err)
		return m, nil
	}
	return m.apply(tr, m.cursor)
}

func (m *Model) startAIPrompt() (tea.Model, tea.Cmd) {
	from, to := m.selection()
	if err := m.aiEdit.Capture(from, to); err != nil {
		m.status = "an edit is already in progress"
		return m, nil
	}
	m.phase = aiPrompt
	m.prompt.SetValue("")
	m.prompt.Focus()
	return m, textinput.Blink
}

func (m *Model) startStream(instruction string) (tea.Model, tea.Cmd) {
	from, to := m.aiEdit.Range()
	input := ai.RewriteInput{Instruction: instruction}
	if m.aiEdit.WholeDoc() {
		input.Document = m.plainText()
	} else {
		input.Selection = m.textBetween(from, to)
	}
	var b strings.Builder
	if err := ai.RewriteTemplate.Execute(&b, input); err != nil {
		m.phase = aiIdle
		m.aiEdit.Reject()
		m.status = fmt.Sprintf("building prompt failed: %v", err)
		return m, nil
	}
	if err := m.aiEdit.Start(context.Background(), b.String()); err != nil {
		m.phase = aiIdle
		m.status = fmt.Sprintf("edit assistant unavailable: %v", err)
		return m, nil
	}
	m.phase = aiStreaming
	return m, waitStream(m.aiEdit.Events())
}

func waitStream(events <-chan ai.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return streamEventMsg{ev: ev}
	}
}

func (m *Model) openOverlay(n *doc.Node) (tea.Model, tea.Cmd) {
	embed := mention.FromNode(n)
	m.overlayEmbed = embed
	m.overlayLoading = true
	m.overlay = nil
	getter := m.deps.Getter
	logger := m.deps.Logger
	return m, func() tea.Msg {
		detail := mention.LoadDetail(context.Background(), getter, embed, logger)
		return detailFetchedMsg{recordID: embed.RecordID, detail: detail}
	}
}

// apply runs a transaction, refreshes dependent state and schedules a save.
// An invalid transaction leaves the document untouched and surfaces a status
// line instead of failing the session.
func (m *Model) apply(tr *doc.Transaction, cursorAfter int) (tea.Model, tea.Cmd) {
	if tr == nil || tr.Empty() {
		return m, nil
	}
	next, err := m.d.Apply(tr)
	if err != nil {
		m.deps.Logger.Warn("transaction rejected", "error", err)
		m.status = "edit could not be applied"
		return m, nil
	}
	m.d = next
	m.status = ""
	m.setCursor(cursorAfter, false)
	m.recalcContent()
	return m, tea.Batch(m.scheduleSave(), m.syncPalettes())
}

// syncPalettes runs trigger detection after every document or cursor change
// and schedules the debounced search when the mention palette needs one.
func (m *Model) syncPalettes() tea.Cmd {
	cmdEv, mentionEv := m.palettes.Sync(m.d, m.cursor)

	switch cmdEv {
	case suggest.EventOpened, suggest.EventQueryChanged:
		m.cmdMatches = suggest.FilterCommands(suggest.Commands(), m.palettes.Command.Query())
		m.palettes.Command.SetCandidates(commandCandidates(m.cmdMatches))
	case suggest.EventClosed:
		m.cmdMatches = nil
	}

	switch mentionEv {
	case suggest.EventOpened, suggest.EventQueryChanged:
		seq := m.palettes.Mention.NextSeq()
		query := m.palettes.Mention.Query()
		return tea.Tick(m.deps.Config.SearchDebounce, func(time.Time) tea.Msg {
			return mentionSearchMsg{seq: seq, query: query}
		})
	case suggest.EventClosed:
		m.mentionHits = nil
	}
	return nil
}

// runSearch fires the actual record search once the debounce elapsed, unless
// a newer query superseded this one in the meantime.
func (m *Model) runSearch(msg mentionSearchMsg) tea.Cmd {
	p := m.palettes.Mention
	if !p.IsOpen() || msg.query != p.Query() {
		return nil
	}
	searcher := m.deps.Searcher
	owner := m.deps.Config.OwnerID
	limit := m.deps.Config.SearchLimit
	return func() tea.Msg {
		hits, err := searcher.Search(context.Background(), owner, model.SearchFilter{
			Query: msg.query,
			Kind:  model.KindAll,
			Limit: limit,
		})
		return searchResultsMsg{seq: msg.seq, hits: hits, err: err}
	}
}

func (m *Model) applySearchResults(msg searchResultsMsg) {
	if msg.err != nil {
		m.deps.Logger.Warn("record search failed", "error", msg.err)
		return
	}
	if m.palettes.Mention.ApplyResults(msg.seq, mentionCandidates(msg.hits)) {
		m.mentionHits = msg.hits
	}
}

func (m *Model) insertText(text string) (tea.Model, tea.Cmd) {
	from, to := m.selection()
	tr := doc.NewTransaction()
	after := m.d.SpliceText(tr, from, to, text)
	return m.apply(tr, after)
}

// backspace implements the atomic-adjacency protocol: deleting backwards
// into an atomic block first selects it; a second backspace (or any delete
// with a selection) removes it.
func (m *Model) backspace() (tea.Model, tea.Cmd) {
	from, to := m.selection()
	if from != to {
		return m.deleteSelection(from, to)
	}

	span, ok := m.d.BlockAt(m.cursor)
	atStart := ok && m.cursor == span.Start+1
	if !ok {
		// Cursor sits at a block boundary (next to an atomic block).
		if prev, found := m.d.BlockBefore(m.cursor); found && m.d.IsAtomic(prev.Node) {
			m.anchor = prev.Start
			m.cursor = prev.End
			return m, nil
		}
		return m, nil
	}

	if atStart {
		if prev, found := m.d.BlockBefore(span.Start); found {
			if m.d.IsAtomic(prev.Node) {
				m.anchor = prev.Start
				m.cursor = prev.End
				return m, nil
			}
			return m.mergeWithPrevious(span, prev)
		}
		return m, nil
	}

	return m.apply(doc.NewTransaction().DeleteRange(m.cursor-1, m.cursor), m.cursor-1)
}

// deleteSelection removes [from, to), normalizing selections that span block
// boundaries into non-ragged steps.
func (m *Model) deleteSelection(from, to int) (tea.Model, tea.Cmd) {
	tr := doc.NewTransaction()
	after := m.d.SpliceText(tr, from, to, "")
	return m.apply(tr, after)
}

func (m *Model) deleteForward() (tea.Model, tea.Cmd) {
	from, to := m.selection()
	if from != to {
		return m.deleteSelection(from, to)
	}
	span, ok := m.d.BlockAt(m.cursor)
	if !ok || m.cursor >= span.End-1 {
		// End of block: select a following atomic block rather than
		// deleting it outright.
		if next, found := m.d.BlockAt(m.cursor + 1); found && m.d.IsAtomic(next.Node) {
			m.anchor = next.Start
			m.cursor = next.End
			return m, nil
		}
		return m, nil
	}
	return m.apply(doc.NewTransaction().DeleteRange(m.cursor, m.cursor+1), m.cursor)
}

// mergeWithPrevious joins the current text block onto the end of the one
// before it, the usual backspace-at-start-of-paragraph behavior.
func (m *Model) mergeWithPrevious(cur, prev doc.BlockSpan) (tea.Model, tea.Cmd) {
	prevText := prev.Node.InlineText()
	curText := cur.Node.InlineText()
	if !m.d.HasInlineContent(prev.Node) || !m.d.HasInlineContent(cur.Node) {
		return m, nil
	}
	merged := doc.NewNode(prev.Node.Type, prev.Node.Attrs, doc.NewText(prevText+curText))
	tr := doc.NewTransaction().ReplaceRange(prev.Start, cur.End, merged)
	return m.apply(tr, prev.Start+1+len([]rune(prevText)))
}

// splitBlock breaks the current block at the cursor. The tail always becomes
// a paragraph; after an atomic block it inserts an empty paragraph so typing
// can continue.
func (m *Model) splitBlock() (tea.Model, tea.Cmd) {
	span, ok := m.d.BlockAt(m.cursor)
	if !ok {
		if prev, found := m.d.BlockBefore(m.cursor); found && m.d.IsAtomic(prev.Node) {
			tr := doc.NewTransaction().Insert(prev.End, doc.Paragraph(""))
			return m.apply(tr, prev.End+1)
		}
		return m, nil
	}
	if m.d.IsAtomic(span.Node) || !m.d.HasInlineContent(span.Node) {
		tr := doc.NewTransaction().Insert(span.End, doc.Paragraph(""))
		return m.apply(tr, span.End+1)
	}

	text := []rune(span.Node.InlineText())
	off := m.cursor - span.Start - 1
	if off < 0 {
		off = 0
	}
	if off > len(text) {
		off = len(text)
	}
	head := doc.NewNode(span.Node.Type, span.Node.Attrs, doc.NewText(string(text[:off])))
	tail := doc.Paragraph(string(text[off:]))
	tr := doc.NewTransaction().ReplaceRange(span.Start, span.End, head, tail)
	headSize := 2 + off
	return m.apply(tr, span.Start+headSize+1)
}

func (m *Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		pos, ok := m.posAtRow(msg.Y)
		if !ok {
			return m, nil
		}
		m.dragger.Press(m.d, pos)
		m.setCursor(pos, false)
		return m, nil

	case tea.MouseActionMotion:
		if pos, ok := m.posAtRow(msg.Y); ok {
			m.dragger.MoveTo(m.d, pos)
		}
		return m, nil

	case tea.MouseActionRelease:
		tr := m.dragger.Drop()
		if tr == nil {
			return m, nil
		}
		return m.apply(tr, m.cursor)
	}
	return m, nil
}

func (m *Model) scheduleSave() tea.Cmd {
	m.dirty = true
	m.saveGen++
	gen := m.saveGen
	return tea.Tick(m.deps.Config.SaveDebounce, func(time.Time) tea.Msg {
		return saveTickMsg{gen: gen}
	})
}

// saveCmd serializes and persists the document, fire and forget.
func (m *Model) saveCmd() tea.Cmd {
	data, err := doc.Serialize(m.d)
	if err != nil {
		m.deps.Logger.Error("serializing document", "error", err)
		return nil
	}
	meta := m.meta
	meta.Title = documentTitle(m.d, meta.Title)
	meta.UpdatedAt = time.Now().UTC()
	m.meta = meta
	docs := m.deps.Docs
	return func() tea.Msg {
		err := docs.SaveDocument(context.Background(), meta, data)
		return savedMsg{err: err}
	}
}

// documentTitle derives a display title from the first block's text.
func documentTitle(d *doc.Document, fallback string) string {
	for _, b := range d.Blocks() {
		if t := strings.TrimSpace(b.InlineText()); t != "" {
			if r := []rune(t); len(r) > 60 {
				t = string(r[:60])
			}
			return t
		}
	}
	return fallback
}

func commandCandidates(cmds []suggest.Command) []suggest.Candidate {
	out := make([]suggest.Candidate, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, suggest.Candidate{Title: c.Title, Subtitle: c.Description})
	}
	return out
}

func mentionCandidates(hits []model.SearchResult) []suggest.Candidate {
	out := make([]suggest.Candidate, 0, len(hits))
	for _, h := range hits {
		sub := string(h.Kind)
		if h.Subtitle != "" {
			sub += " · " + h.Subtitle
		}
		out = append(out, suggest.Candidate{Title: h.Title, Subtitle: sub})
	}
	return out
}

// Run starts the editor program over the given session.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
