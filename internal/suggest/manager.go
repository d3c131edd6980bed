package suggest

import "github.com/jobpad/jobpad/internal/doc"

// Manager owns both palettes and guarantees at most one is open: opening one
// closes the other.
type Manager struct {
	Command *Palette
	Mention *Palette
}

// NewManager returns a manager with a command and a mention palette.
func NewManager() *Manager {
	return &Manager{
		Command: NewCommandPalette(),
		Mention: NewMentionPalette(),
	}
}

// Sync runs trigger detection for both palettes against the current cursor.
func (m *Manager) Sync(d *doc.Document, cursor int) (cmdEvent, mentionEvent Event) {
	cmdEvent = m.Command.Sync(d, cursor)
	mentionEvent = m.Mention.Sync(d, cursor)
	if cmdEvent == EventOpened && m.Mention.IsOpen() {
		m.Mention.Close()
		mentionEvent = EventClosed
	}
	if mentionEvent == EventOpened && m.Command.IsOpen() {
		m.Command.Close()
		cmdEvent = EventClosed
	}
	return cmdEvent, mentionEvent
}

// Open returns the palette currently showing, or nil.
func (m *Manager) Open() *Palette {
	if m.Command.IsOpen() {
		return m.Command
	}
	if m.Mention.IsOpen() {
		return m.Mention
	}
	return nil
}

// CloseAll dismisses both palettes.
func (m *Manager) CloseAll() {
	m.Command.Close()
	m.Mention.Close()
}
