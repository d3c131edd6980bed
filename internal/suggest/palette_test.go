package suggest

import (
	"testing"

	"github.com/jobpad/jobpad/internal/doc"
	"github.com/jobpad/jobpad/internal/schema"
)

func testDoc(t *testing.T, blocks ...*doc.Node) *doc.Document {
	t.Helper()
	return doc.New(schema.DefaultRegistry(), blocks...)
}

func TestCommandTriggerDetection(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantOpen  bool
		wantQuery string
	}{
		{name: "bare trigger", text: "Hello /", wantOpen: true, wantQuery: ""},
		{name: "trigger with query", text: "Hello /head", wantOpen: true, wantQuery: "head"},
		{name: "no trigger", text: "Hello head", wantOpen: false},
		{name: "space ends command token", text: "Hello /he ad", wantOpen: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDoc(t, doc.Paragraph(tt.text))
			cursor := d.Size() - 1
			p := NewCommandPalette()

			p.Sync(d, cursor)
			if p.IsOpen() != tt.wantOpen {
				t.Fatalf("open = %v, want %v", p.IsOpen(), tt.wantOpen)
			}
			if tt.wantOpen && p.Query() != tt.wantQuery {
				t.Errorf("query = %q, want %q", p.Query(), tt.wantQuery)
			}
		})
	}
}

func TestMentionQueryAllowsSpaces(t *testing.T) {
	d := testDoc(t, doc.Paragraph("see @Acme Corp"))
	p := NewMentionPalette()

	if ev := p.Sync(d, d.Size()-1); ev != EventOpened {
		t.Fatalf("event = %v, want EventOpened", ev)
	}
	if p.Query() != "Acme Corp" {
		t.Errorf("query = %q, want %q", p.Query(), "Acme Corp")
	}
}

func TestTriggerSpanAndClose(t *testing.T) {
	d := testDoc(t, doc.Paragraph("Hi /head"))
	cursor := d.Size() - 1 // 9: text is positions 1..9
	p := NewCommandPalette()

	p.Sync(d, cursor)
	if !p.IsOpen() {
		t.Fatal("palette should open")
	}
	// "/head" is 5 runes ending at cursor.
	if got := p.TriggerPos(); got != cursor-5 {
		t.Errorf("trigger pos = %d, want %d", got, cursor-5)
	}

	// Cursor moves before the trigger span: palette closes.
	if ev := p.Sync(d, 2); ev != EventClosed {
		t.Errorf("event = %v, want EventClosed", ev)
	}
	if p.IsOpen() {
		t.Error("palette should be closed after cursor left the span")
	}
}

func TestTriggerDeletionCloses(t *testing.T) {
	d := testDoc(t, doc.Paragraph("a /x"))
	p := NewCommandPalette()
	p.Sync(d, d.Size()-1)
	if !p.IsOpen() {
		t.Fatal("palette should open")
	}

	// Delete the trigger character and query ("/x" spans [3, 5)).
	next, err := d.Apply(doc.NewTransaction().DeleteRange(3, 5))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if ev := p.Sync(next, 3); ev != EventClosed {
		t.Errorf("event = %v, want EventClosed after trigger deleted", ev)
	}
}

func TestQueryChangeEventAndSelectionReset(t *testing.T) {
	d := testDoc(t, doc.Paragraph("x /h"))
	p := NewCommandPalette()
	p.Sync(d, d.Size()-1)
	p.SetCandidates([]Candidate{{Title: "a"}, {Title: "b"}, {Title: "c"}})
	p.MoveSelection(1)
	if p.Selected() != 1 {
		t.Fatalf("selected = %d, want 1", p.Selected())
	}

	d2 := testDoc(t, doc.Paragraph("x /he"))
	if ev := p.Sync(d2, d2.Size()-1); ev != EventQueryChanged {
		t.Fatalf("event = %v, want EventQueryChanged", ev)
	}
	p.SetCandidates([]Candidate{{Title: "a"}, {Title: "b"}})
	if p.Selected() != 0 {
		t.Error("selection must reset to 0 when the filtered list changes")
	}
}

func TestSelectionWraparound(t *testing.T) {
	p := NewCommandPalette()
	p.open = true
	k := 5
	cands := make([]Candidate, k)
	p.SetCandidates(cands)

	for i := 0; i < k; i++ {
		p.MoveSelection(1)
	}
	if p.Selected() != 0 {
		t.Errorf("down k times from 0 = %d, want 0", p.Selected())
	}
	p.MoveSelection(-1)
	if p.Selected() != k-1 {
		t.Errorf("up once from 0 = %d, want %d", p.Selected(), k-1)
	}
}

func TestStaleResultsRejected(t *testing.T) {
	p := NewMentionPalette()
	p.open = true

	seqA := p.NextSeq()
	seqB := p.NextSeq()

	// B's response lands first; A's late arrival must be discarded.
	if !p.ApplyResults(seqB, []Candidate{{Title: "from B"}}) {
		t.Fatal("newest response should apply")
	}
	if p.ApplyResults(seqA, []Candidate{{Title: "from A"}}) {
		t.Fatal("stale response must be rejected")
	}
	if len(p.Candidates()) != 1 || p.Candidates()[0].Title != "from B" {
		t.Errorf("visible list = %v, want B's results", p.Candidates())
	}
}

func TestResultsAfterCloseRejected(t *testing.T) {
	p := NewMentionPalette()
	p.open = true
	seq := p.NextSeq()
	p.Close()

	if p.ApplyResults(seq, []Candidate{{Title: "late"}}) {
		t.Error("results must not apply to a closed palette")
	}
}

func TestManagerExclusivity(t *testing.T) {
	m := NewManager()

	d := testDoc(t, doc.Paragraph("a /x"))
	m.Sync(d, d.Size()-1)
	if m.Open() != m.Command {
		t.Fatal("command palette should be open")
	}

	d2 := testDoc(t, doc.Paragraph("a @x"))
	m.Sync(d2, d2.Size()-1)
	if m.Open() != m.Mention {
		t.Fatal("mention palette should be open")
	}
	if m.Command.IsOpen() {
		t.Error("opening the mention palette must close the command palette")
	}
}

func TestFilterCommands(t *testing.T) {
	cmds := Commands()

	head := FilterCommands(cmds, "head")
	if len(head) != 3 {
		t.Errorf("filter %q = %d commands, want the 3 headings", "head", len(head))
	}
	all := FilterCommands(cmds, "")
	if len(all) != len(cmds) {
		t.Error("empty query must pass the whole catalog")
	}
	if got := FilterCommands(cmds, "HORIZONTAL"); len(got) != 1 || got[0].ID != "divider" {
		t.Error("matching is case-insensitive against title or description")
	}
}

func TestConfirmSlashCommandScenario(t *testing.T) {
	// Document "Hello " with "/head" typed at the end, Enter on "Heading 2".
	d := testDoc(t, doc.Paragraph("Hello /head"))
	cursor := d.Size() - 1
	p := NewCommandPalette()
	p.Sync(d, cursor)

	var heading2 Command
	for _, c := range FilterCommands(Commands(), p.Query()) {
		if c.ID == "heading2" {
			heading2 = c
		}
	}
	if heading2.ID == "" {
		t.Fatal("heading2 should survive the filter")
	}

	tr, err := ConfirmCommand(d, p, cursor, heading2)
	if err != nil {
		t.Fatalf("ConfirmCommand: %v", err)
	}
	next, err := d.Apply(tr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	first := next.Blocks()[0]
	if first.Type != schema.TypeHeading || doc.AttrInt(first, "level", 0) != 2 {
		t.Fatalf("first block = %q level %d, want heading level 2", first.Type, doc.AttrInt(first, "level", 0))
	}
	if first.InlineText() != "Hello " {
		t.Errorf("content = %q, want %q with no residual trigger text", first.InlineText(), "Hello ")
	}
}

func TestConfirmMentionReplacesEmptyParagraph(t *testing.T) {
	d := testDoc(t, doc.Paragraph("@Acme"))
	cursor := d.Size() - 1
	p := NewMentionPalette()
	p.Sync(d, cursor)

	embed := doc.NewNode(schema.TypeMention, map[string]any{
		"kind": "job-application", "recordId": "a1", "title": "Acme",
	})
	tr, err := ConfirmMention(d, p, cursor, embed)
	if err != nil {
		t.Fatalf("ConfirmMention: %v", err)
	}
	next, err := d.Apply(tr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(next.Blocks()) != 1 || next.Blocks()[0].Type != schema.TypeMention {
		t.Errorf("expected the emptied paragraph to become the embed, got %d blocks", len(next.Blocks()))
	}
}

func TestConfirmMentionInsertsAfterNonEmptyBlock(t *testing.T) {
	d := testDoc(t, doc.Paragraph("met with @Acme"))
	cursor := d.Size() - 1
	p := NewMentionPalette()
	p.Sync(d, cursor)

	embed := doc.NewNode(schema.TypeMention, map[string]any{
		"kind": "job-application", "recordId": "a1", "title": "Acme",
	})
	tr, err := ConfirmMention(d, p, cursor, embed)
	if err != nil {
		t.Fatalf("ConfirmMention: %v", err)
	}
	next, err := d.Apply(tr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(next.Blocks()) != 2 {
		t.Fatalf("blocks = %d, want paragraph + embed", len(next.Blocks()))
	}
	if next.Blocks()[0].InlineText() != "met with " {
		t.Errorf("paragraph = %q, want trigger span removed", next.Blocks()[0].InlineText())
	}
	if next.Blocks()[1].Type != schema.TypeMention {
		t.Error("embed should follow the paragraph")
	}
}

func TestPlaceMenuFlip(t *testing.T) {
	tests := []struct {
		name       string
		anchorRow  int
		menuHeight int
		viewTop    int
		viewHeight int
		wantRow    int
		wantAbove  bool
	}{
		{name: "fits below", anchorRow: 2, menuHeight: 5, viewTop: 0, viewHeight: 20, wantRow: 3},
		{name: "flips above near bottom", anchorRow: 18, menuHeight: 5, viewTop: 0, viewHeight: 20, wantRow: 13, wantAbove: true},
		{name: "scrolled viewport fits below", anchorRow: 42, menuHeight: 4, viewTop: 40, viewHeight: 10, wantRow: 43},
		{name: "neither fits pins to bottom", anchorRow: 3, menuHeight: 8, viewTop: 0, viewHeight: 10, wantRow: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlaceMenu(tt.anchorRow, tt.menuHeight, tt.viewTop, tt.viewHeight)
			if got.Row != tt.wantRow || got.Above != tt.wantAbove {
				t.Errorf("PlaceMenu = %+v, want row %d above %v", got, tt.wantRow, tt.wantAbove)
			}
		})
	}
}
