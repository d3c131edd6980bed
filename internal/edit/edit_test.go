package edit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jobpad/jobpad/internal/ai"
	"github.com/jobpad/jobpad/internal/decor"
	"github.com/jobpad/jobpad/internal/doc"
	"github.com/jobpad/jobpad/internal/schema"
)

// scriptedStreamer replays a fixed event sequence and records cancellation.
type scriptedStreamer struct {
	events    []ai.StreamEvent
	openErr   error
	cancelled bool
}

func (s *scriptedStreamer) StreamCompletion(_ context.Context, _ string) (<-chan ai.StreamEvent, context.CancelFunc, error) {
	if s.openErr != nil {
		return nil, nil, s.openErr
	}
	ch := make(chan ai.StreamEvent, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	close(ch)
	return ch, func() { s.cancelled = true }, nil
}

func newController(t *testing.T, s ai.Streamer) (*Controller, *decor.Highlighter) {
	t.Helper()
	hl := &decor.Highlighter{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewController(s, hl, logger), hl
}

// drain feeds every buffered event through the controller, returning the
// first stream error, if any.
func drain(c *Controller) error {
	for ev := range c.Events() {
		done, err := c.OnEvent(ev)
		if err != nil {
			return err
		}
		if done {
			break
		}
	}
	return nil
}

func TestRejectLeavesDocumentUntouched(t *testing.T) {
	d := doc.New(schema.DefaultRegistry(), doc.Paragraph("Hello world"))
	streamer := &scriptedStreamer{events: []ai.StreamEvent{
		{Chunk: "Greetings"},
		{Chunk: ", planet"},
		{Done: true},
	}}
	c, hl := newController(t, streamer)

	if err := c.Capture(5, 10); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if !hl.Active() {
		t.Fatal("expected highlight after capture")
	}
	if err := c.Start(context.Background(), "reword"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := drain(c); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got := c.Preview(); got != "Greetings, planet" {
		t.Fatalf("Preview = %q", got)
	}

	c.Reject()

	if c.State() != StateIdle {
		t.Fatalf("state after reject = %v, want idle", c.State())
	}
	if hl.Active() {
		t.Fatal("decoration not cleared after reject")
	}
	if !streamer.cancelled {
		t.Fatal("reject must cancel the stream")
	}
	want := doc.New(schema.DefaultRegistry(), doc.Paragraph("Hello world"))
	if !doc.Equal(d.Root, want.Root) {
		t.Fatal("document changed without an accept")
	}
}

func TestAcceptReplaceSelection(t *testing.T) {
	d := doc.New(schema.DefaultRegistry(), doc.Paragraph("Hello world"))
	streamer := &scriptedStreamer{events: []ai.StreamEvent{
		{Chunk: "there"},
		{Done: true},
	}}
	c, hl := newController(t, streamer)

	// "world" spans positions 7..12 inside the paragraph.
	if err := c.Capture(7, 12); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if err := c.Start(context.Background(), "reword"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := drain(c); err != nil {
		t.Fatalf("stream: %v", err)
	}

	tr, err := c.Accept(d, AcceptReplace)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	got, err := d.Apply(tr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := doc.New(schema.DefaultRegistry(), doc.Paragraph("Hello there"))
	if !doc.Equal(got.Root, want.Root) {
		t.Fatalf("accepted document = %s", mustJSON(t, got))
	}
	if hl.Active() {
		t.Fatal("decoration not cleared after accept")
	}
	if c.State() != StateIdle {
		t.Fatalf("state after accept = %v, want idle", c.State())
	}
}

func TestAcceptInsertKeepsOriginal(t *testing.T) {
	d := doc.New(schema.DefaultRegistry(), doc.Paragraph("Hello "))
	streamer := &scriptedStreamer{events: []ai.StreamEvent{
		{Chunk: "there"},
		{Done: true},
	}}
	c, _ := newController(t, streamer)

	if err := c.Capture(1, 7); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if err := c.Start(context.Background(), "extend"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := drain(c); err != nil {
		t.Fatalf("stream: %v", err)
	}

	tr, err := c.Accept(d, AcceptInsert)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	got, err := d.Apply(tr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := doc.New(schema.DefaultRegistry(), doc.Paragraph("Hello there"))
	if !doc.Equal(got.Root, want.Root) {
		t.Fatalf("inserted document = %s", mustJSON(t, got))
	}
}

func TestAcceptReplaceAcrossBlocks(t *testing.T) {
	d := doc.New(schema.DefaultRegistry(),
		doc.Paragraph("Hello there"),
		doc.Paragraph("General Kenobi"),
	)
	streamer := &scriptedStreamer{events: []ai.StreamEvent{
		{Chunk: "friend"},
		{Done: true},
	}}
	c, _ := newController(t, streamer)

	// From inside "there" (first block, [0,13)) into "General" (second
	// block, [13,29)): a capture spanning the block boundary.
	if err := c.Capture(7, 21); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if err := c.Start(context.Background(), "reword"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := drain(c); err != nil {
		t.Fatalf("stream: %v", err)
	}

	tr, err := c.Accept(d, AcceptReplace)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	got, err := d.Apply(tr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := doc.New(schema.DefaultRegistry(), doc.Paragraph("Hello friend Kenobi"))
	if !doc.Equal(got.Root, want.Root) {
		t.Fatalf("cross-block replace = %s", mustJSON(t, got))
	}
}

func TestWholeDocumentReplace(t *testing.T) {
	d := doc.New(schema.DefaultRegistry(),
		doc.Paragraph("old first"),
		doc.Paragraph("old second"),
	)
	streamer := &scriptedStreamer{events: []ai.StreamEvent{
		{Chunk: "fresh opening\n"},
		{Chunk: "fresh closing"},
		{Done: true},
	}}
	c, hl := newController(t, streamer)

	// Collapsed selection means the whole document.
	if err := c.Capture(3, 3); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if !c.WholeDoc() {
		t.Fatal("collapsed capture should target the whole document")
	}
	if hl.Active() {
		t.Fatal("whole-document capture must not set a range highlight")
	}
	if err := c.Start(context.Background(), "rewrite everything"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := drain(c); err != nil {
		t.Fatalf("stream: %v", err)
	}

	tr, err := c.Accept(d, AcceptReplace)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	got, err := d.Apply(tr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := doc.New(schema.DefaultRegistry(),
		doc.Paragraph("fresh opening"),
		doc.Paragraph("fresh closing"),
	)
	if !doc.Equal(got.Root, want.Root) {
		t.Fatalf("whole-document replace = %s", mustJSON(t, got))
	}
}

func TestStreamErrorDiscardsPartialContent(t *testing.T) {
	boom := errors.New("upstream hiccup")
	streamer := &scriptedStreamer{events: []ai.StreamEvent{
		{Chunk: "partial"},
		{Err: boom},
	}}
	c, hl := newController(t, streamer)

	if err := c.Capture(2, 4); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if err := c.Start(context.Background(), "reword"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	err := drain(c)
	if !errors.Is(err, boom) {
		t.Fatalf("stream error = %v, want %v", err, boom)
	}
	if c.State() != StateIdle {
		t.Fatalf("state after stream failure = %v, want idle", c.State())
	}
	if c.Preview() != "" {
		t.Fatal("partial content must be discarded on failure")
	}
	if hl.Active() {
		t.Fatal("decoration not cleared after stream failure")
	}
}

func TestStartFailureResets(t *testing.T) {
	streamer := &scriptedStreamer{openErr: errors.New("no route")}
	c, hl := newController(t, streamer)

	if err := c.Capture(1, 3); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if err := c.Start(context.Background(), "reword"); err == nil {
		t.Fatal("expected open error")
	}
	if c.State() != StateIdle {
		t.Fatalf("state after failed start = %v, want idle", c.State())
	}
	if hl.Active() {
		t.Fatal("decoration not cleared after failed start")
	}
}

func TestCaptureWhileActiveRejected(t *testing.T) {
	c, _ := newController(t, &scriptedStreamer{})
	if err := c.Capture(1, 3); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if err := c.Capture(4, 6); err == nil {
		t.Fatal("second capture should fail while an edit is active")
	}
}

func mustJSON(t *testing.T, d *doc.Document) string {
	t.Helper()
	data, err := doc.Serialize(d)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return string(data)
}
