package doc

import (
	"testing"

	"github.com/jobpad/jobpad/internal/schema"
)

func TestResolvePosInsideText(t *testing.T) {
	d := testDoc(t, Paragraph("Hello"))

	r, err := d.ResolvePos(3)
	if err != nil {
		t.Fatalf("ResolvePos: %v", err)
	}
	if r.Parent().Type != schema.TypeParagraph {
		t.Errorf("parent = %q, want paragraph", r.Parent().Type)
	}
	if r.TextNode == nil || r.TextOffset != 2 {
		t.Errorf("text offset = %d, want 2", r.TextOffset)
	}
}

func TestResolvePosAtBlockBoundary(t *testing.T) {
	d := testDoc(t, Paragraph("ab"), mention("r1"))

	// Paragraph spans [0,4); position 4 is the boundary before the mention.
	r, err := d.ResolvePos(4)
	if err != nil {
		t.Fatalf("ResolvePos: %v", err)
	}
	if r.Parent().Type != schema.TypeDoc {
		t.Errorf("parent = %q, want doc", r.Parent().Type)
	}
	if before := r.NodeBefore(); before == nil || before.Type != schema.TypeParagraph {
		t.Error("NodeBefore should be the paragraph")
	}
	if after := r.NodeAfter(); after == nil || after.Type != schema.TypeMention {
		t.Error("NodeAfter should be the mention")
	}
}

func TestResolvePosOutOfRange(t *testing.T) {
	d := testDoc(t, Paragraph("ab"))
	if _, err := d.ResolvePos(d.Size() + 1); err == nil {
		t.Error("expected error past document end")
	}
	if _, err := d.ResolvePos(-1); err == nil {
		t.Error("expected error for negative position")
	}
}

func TestTextBefore(t *testing.T) {
	tests := []struct {
		name   string
		blocks []*Node
		pos    int
		maxLen int
		want   string
	}{
		{
			name:   "within block",
			blocks: []*Node{Paragraph("Hello /head")},
			pos:    12,
			maxLen: 32,
			want:   "Hello /head",
		},
		{
			name:   "caps at maxLen keeping the tail",
			blocks: []*Node{Paragraph("abcdef")},
			pos:    7,
			maxLen: 3,
			want:   "def",
		},
		{
			name:   "does not cross block boundary",
			blocks: []*Node{Paragraph("first"), Paragraph("sec")},
			pos:    10, // inside "sec" after "s"; first paragraph must not leak
			maxLen: 32,
			want:   "se",
		},
		{
			name:   "block boundary yields empty",
			blocks: []*Node{Paragraph("ab"), Paragraph("cd")},
			pos:    4,
			maxLen: 32,
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDoc(t, tt.blocks...)
			if got := d.TextBefore(tt.pos, tt.maxLen); got != tt.want {
				t.Errorf("TextBefore(%d) = %q, want %q", tt.pos, got, tt.want)
			}
		})
	}
}

func TestBlockAtAndBefore(t *testing.T) {
	d := testDoc(t, Paragraph("ab"), mention("r1"), Paragraph("cd"))
	spans := d.BlockSpans()

	got, ok := d.BlockAt(spans[2].Start + 1)
	if !ok || got.Index != 2 {
		t.Errorf("BlockAt inside third block = %d, want 2", got.Index)
	}

	before, ok := d.BlockBefore(spans[1].End)
	if !ok || before.Node.Type != schema.TypeMention {
		t.Error("BlockBefore at mention end should return the mention")
	}
	if _, ok := d.BlockBefore(spans[1].End + 100); ok {
		t.Error("BlockBefore past end should report false")
	}
}
