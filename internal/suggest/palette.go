// Package suggest implements the floating suggestion palettes: trigger
// detection in the text before the cursor, candidate filtering, keyboard
// navigation with wraparound, and stale-result rejection for asynchronous
// mention searches.
package suggest

import (
	"regexp"

	"github.com/jobpad/jobpad/internal/doc"
)

// triggerScanLen caps how much text before the cursor is scanned for a
// trigger. Queries longer than this close the palette naturally.
const triggerScanLen = 64

// Candidate is one row of an open palette. The host keeps its own backing
// list in the same order and maps the selected index onto it.
type Candidate struct {
	Title    string
	Subtitle string
}

// Event reports what a Sync call did to the palette.
type Event int

const (
	EventNone Event = iota
	EventOpened
	EventQueryChanged
	EventClosed
)

// Palette is one suggestion state machine: Closed -> Open(query) ->
// Filtering -> Open/Closed. At most one palette is open at a time; the
// Manager enforces that.
type Palette struct {
	Trigger rune

	pattern    *regexp.Regexp
	open       bool
	query      string
	triggerPos int
	candidates []Candidate
	selected   int
	seq        uint64
	applied    uint64
}

// NewCommandPalette detects "/" followed by a single token (no spaces).
func NewCommandPalette() *Palette {
	return &Palette{
		Trigger: '/',
		pattern: regexp.MustCompile(`/([A-Za-z0-9-]*)$`),
	}
}

// NewMentionPalette detects "@" followed by a query that may contain spaces.
func NewMentionPalette() *Palette {
	return &Palette{
		Trigger: '@',
		pattern: regexp.MustCompile(`@([A-Za-z0-9 ._-]*)$`),
	}
}

// Sync runs trigger detection against the text immediately before cursor and
// opens, updates, or closes the palette accordingly. Call it on every
// document or cursor change.
func (p *Palette) Sync(d *doc.Document, cursor int) Event {
	text := d.TextBefore(cursor, triggerScanLen)
	m := p.pattern.FindStringSubmatch(text)
	if m == nil {
		if p.open {
			p.reset()
			return EventClosed
		}
		return EventNone
	}

	query := m[1]
	triggerPos := cursor - len([]rune(m[0]))
	if !p.open {
		p.open = true
		p.query = query
		p.triggerPos = triggerPos
		p.selected = 0
		return EventOpened
	}
	p.triggerPos = triggerPos
	if query != p.query {
		p.query = query
		return EventQueryChanged
	}
	return EventNone
}

// Close dismisses the palette without touching the document.
func (p *Palette) Close() {
	p.reset()
}

func (p *Palette) reset() {
	p.open = false
	p.query = ""
	p.candidates = nil
	p.selected = 0
}

// IsOpen reports whether the palette is showing.
func (p *Palette) IsOpen() bool { return p.open }

// Query returns the typed query text (without the trigger character).
func (p *Palette) Query() string { return p.query }

// TriggerPos returns the document position of the trigger character; the
// span [TriggerPos, cursor) is what a confirm deletes.
func (p *Palette) TriggerPos() int { return p.triggerPos }

// Candidates returns the currently filtered candidate rows.
func (p *Palette) Candidates() []Candidate { return p.candidates }

// Selected returns the index of the highlighted candidate.
func (p *Palette) Selected() int { return p.selected }

// SetCandidates replaces the filtered list and resets the selection to 0,
// as any change to the filtered list must.
func (p *Palette) SetCandidates(c []Candidate) {
	p.candidates = c
	p.selected = 0
}

// MoveSelection moves the highlight by delta with wraparound over the
// current filtered list.
func (p *Palette) MoveSelection(delta int) {
	n := len(p.candidates)
	if n == 0 {
		return
	}
	p.selected = ((p.selected+delta)%n + n) % n
}

// NextSeq issues a sequence number for an asynchronous search tied to the
// current query. Responses are applied through ApplyResults, which rejects
// anything older than the newest applied response.
func (p *Palette) NextSeq() uint64 {
	p.seq++
	return p.seq
}

// ApplyResults commits an async search response. It returns false — and
// changes nothing — when the palette has closed or a newer response already
// landed (last-write-wins, stale responses discarded).
func (p *Palette) ApplyResults(seq uint64, c []Candidate) bool {
	if !p.open || seq <= p.applied {
		return false
	}
	p.applied = seq
	p.SetCandidates(c)
	return true
}
