// Package edit orchestrates AI-assisted in-place editing: capture a
// selection, decorate it, stream candidate text for display, and only on an
// explicit accept turn the accumulated text into a document transaction.
// Reject and cancel never touch the document.
package edit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jobpad/jobpad/internal/ai"
	"github.com/jobpad/jobpad/internal/decor"
	"github.com/jobpad/jobpad/internal/doc"
)

// State is the controller's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateCaptured
	StateStreaming
)

// AcceptMode selects what an accepted candidate does to the document.
type AcceptMode int

const (
	// AcceptReplace replaces the captured range with the candidate text.
	AcceptReplace AcceptMode = iota
	// AcceptInsert places the candidate after the range, keeping the original.
	AcceptInsert
)

// Controller is the in-place edit state machine. It is owned by the editing
// session and driven from the event loop; it never mutates a document
// itself, only builds transactions for the host to apply.
type Controller struct {
	streamer ai.Streamer
	hl       *decor.Highlighter
	logger   *slog.Logger

	state    State
	from, to int
	wholeDoc bool
	buf      strings.Builder
	events   <-chan ai.StreamEvent
	cancel   context.CancelFunc
}

// NewController wires the controller with its completion stream provider and
// the session's highlighter.
func NewController(streamer ai.Streamer, hl *decor.Highlighter, logger *slog.Logger) *Controller {
	return &Controller{streamer: streamer, hl: hl, logger: logger}
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// WholeDoc reports whether the capture covers the whole document (collapsed
// selection). The host dims existing content instead of highlighting.
func (c *Controller) WholeDoc() bool { return c.wholeDoc }

// Range returns the captured range.
func (c *Controller) Range() (from, to int) { return c.from, c.to }

// Preview returns the candidate text accumulated so far, display only.
func (c *Controller) Preview() string { return c.buf.String() }

// Capture stores the selection and decorates it. A collapsed selection means
// "edit the whole document": no highlight is set, the host dims instead.
func (c *Controller) Capture(from, to int) error {
	if c.state != StateIdle {
		return fmt.Errorf("capture while another edit is in progress")
	}
	c.from, c.to = from, to
	c.wholeDoc = from == to
	if !c.wholeDoc {
		c.hl.SetHighlight(&decor.Range{From: from, To: to})
	}
	c.state = StateCaptured
	return nil
}

// Start opens the completion stream for the captured selection.
func (c *Controller) Start(ctx context.Context, prompt string) error {
	if c.state != StateCaptured {
		return fmt.Errorf("start without a captured selection")
	}
	events, cancel, err := c.streamer.StreamCompletion(ctx, prompt)
	if err != nil {
		c.reset()
		return fmt.Errorf("open completion stream: %w", err)
	}
	c.events = events
	c.cancel = cancel
	c.state = StateStreaming
	return nil
}

// Events exposes the stream for the host's event loop to consume. Each
// received event must be fed back through OnEvent.
func (c *Controller) Events() <-chan ai.StreamEvent { return c.events }

// OnEvent folds one stream event into the controller. done reports the
// stream finished; a non-nil error means the stream failed and the
// controller already rejected (partial content discarded).
func (c *Controller) OnEvent(ev ai.StreamEvent) (done bool, err error) {
	if c.state != StateStreaming {
		return true, nil
	}
	switch {
	case ev.Err != nil:
		c.logger.Warn("completion stream failed", "error", ev.Err)
		c.Reject()
		return true, ev.Err
	case ev.Done:
		return true, nil
	default:
		c.buf.WriteString(ev.Chunk)
		return false, nil
	}
}

// Accept turns the accumulated candidate into one atomic transaction against
// d and resets to Idle. The decoration is cleared either way.
func (c *Controller) Accept(d *doc.Document, mode AcceptMode) (*doc.Transaction, error) {
	if c.state != StateCaptured && c.state != StateStreaming {
		return nil, fmt.Errorf("accept without an active edit")
	}
	text := c.buf.String()
	defer c.reset()

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no candidate text to accept")
	}

	tr := doc.NewTransaction()
	if c.wholeDoc {
		blocks := textToBlocks(text)
		if mode == AcceptReplace {
			tr.ReplaceRange(0, d.Size(), blocks...)
		} else {
			tr.Insert(d.Size(), blocks...)
		}
		return tr, nil
	}

	// SpliceText normalizes captures that span block boundaries into
	// non-ragged steps; the transaction stays atomic either way.
	if mode == AcceptReplace {
		d.SpliceText(tr, c.from, c.to, flattenText(text))
	} else {
		d.SpliceText(tr, c.to, c.to, flattenText(text))
	}
	return tr, nil
}

// Reject discards the candidate with no document mutation. Cancelling a
// stream mid-flight is the same plus signalling the provider to stop.
func (c *Controller) Reject() {
	if c.state == StateIdle {
		return
	}
	c.reset()
}

func (c *Controller) reset() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.events = nil
	c.buf.Reset()
	c.hl.SetHighlight(nil)
	c.wholeDoc = false
	c.state = StateIdle
}

// textToBlocks renders candidate text as paragraphs, one per non-empty line.
func textToBlocks(text string) []*doc.Node {
	var blocks []*doc.Node
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		blocks = append(blocks, doc.Paragraph(line))
	}
	if len(blocks) == 0 {
		blocks = append(blocks, doc.Paragraph(""))
	}
	return blocks
}

// flattenText collapses newlines for insertion into an inline run.
func flattenText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
