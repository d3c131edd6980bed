package doc

import (
	"testing"

	"github.com/jobpad/jobpad/internal/schema"
)

func TestSpliceTextMergesAcrossBlocks(t *testing.T) {
	d := testDoc(t, Paragraph("abcdef"), Paragraph("xyz"))

	// "abcdef" spans [0,8), "xyz" spans [8,13). Remove "def" and "x".
	tr := NewTransaction()
	cursor := d.SpliceText(tr, 4, 10, "")
	next, err := d.Apply(tr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	blocks := next.Blocks()
	if len(blocks) != 1 || blocks[0].InlineText() != "abcyz" {
		t.Fatalf("blocks = %d %q, want one paragraph %q", len(blocks), blocks[0].InlineText(), "abcyz")
	}
	if cursor != 4 {
		t.Errorf("cursor = %d, want 4 (the join point)", cursor)
	}
}

func TestSpliceTextTypeOverAcrossBlocks(t *testing.T) {
	d := testDoc(t, Paragraph("abcdef"), Paragraph("xyz"))

	tr := NewTransaction()
	cursor := d.SpliceText(tr, 4, 10, "Q")
	next, err := d.Apply(tr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := next.Blocks()[0].InlineText(); got != "abcQyz" {
		t.Errorf("got %q, want %q", got, "abcQyz")
	}
	if cursor != 5 {
		t.Errorf("cursor = %d, want 5 (after the typed rune)", cursor)
	}
}

func TestSpliceTextDropsFullyCoveredBlocks(t *testing.T) {
	d := testDoc(t, Paragraph("one"), mention("r1"), Paragraph("three"))

	// "one" [0,5), mention [5,6), "three" [6,13). Cover the mention fully.
	tr := NewTransaction()
	d.SpliceText(tr, 3, 9, "")
	next, err := d.Apply(tr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	blocks := next.Blocks()
	if len(blocks) != 1 || blocks[0].InlineText() != "onree" {
		t.Fatalf("blocks = %d %q, want one paragraph %q", len(blocks), blocks[0].InlineText(), "onree")
	}
}

func TestSpliceTextKeepsLeadingEdgeType(t *testing.T) {
	d := testDoc(t,
		NewNode(schema.TypeHeading, map[string]any{"level": 2}, NewText("Title")),
		Paragraph("body"))

	// heading [0,7), paragraph [7,13). Merge across the boundary.
	tr := NewTransaction()
	d.SpliceText(tr, 4, 9, "")
	next, err := d.Apply(tr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := next.Blocks()[0]
	if got.Type != schema.TypeHeading || got.InlineText() != "Titody" {
		t.Errorf("got %s %q, want heading %q", got.Type, got.InlineText(), "Titody")
	}
}

func TestSpliceTextAtBlockBoundaryStartsParagraph(t *testing.T) {
	d := testDoc(t, Paragraph("x"), mention("r1"))

	// Collapsed position after the trailing mention (document end).
	tr := NewTransaction()
	cursor := d.SpliceText(tr, d.Size(), d.Size(), "y")
	next, err := d.Apply(tr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	blocks := next.Blocks()
	if len(blocks) != 3 || blocks[2].InlineText() != "y" {
		t.Fatalf("expected a fresh trailing paragraph %q, got %d blocks", "y", len(blocks))
	}
	if cursor != d.Size()+2 {
		t.Errorf("cursor = %d, want %d (inside the new paragraph)", cursor, d.Size()+2)
	}
}

func TestSpliceTextTypeOverSelectedAtomic(t *testing.T) {
	d := testDoc(t, Paragraph("a"), mention("r1"), Paragraph("b"))

	// mention spans [3,4); type over the selected embed.
	tr := NewTransaction()
	d.SpliceText(tr, 3, 4, "z")
	next, err := d.Apply(tr)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	blocks := next.Blocks()
	if len(blocks) != 3 || blocks[1].Type != schema.TypeParagraph || blocks[1].InlineText() != "z" {
		t.Fatalf("middle block = %s %q, want paragraph %q", blocks[1].Type, blocks[1].InlineText(), "z")
	}
}
