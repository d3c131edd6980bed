package decor

import "testing"

func TestDecorationsClamping(t *testing.T) {
	tests := []struct {
		name     string
		rng      *Range
		size     int
		wantFrom int
		wantTo   int
		wantNone bool
	}{
		{name: "nil range", rng: nil, size: 10, wantNone: true},
		{name: "in bounds", rng: &Range{From: 2, To: 5}, size: 10, wantFrom: 2, wantTo: 5},
		{name: "clamped to size", rng: &Range{From: 5, To: 50}, size: 10, wantFrom: 5, wantTo: 10},
		{name: "clamped at zero", rng: &Range{From: -3, To: 4}, size: 10, wantFrom: 0, wantTo: 4},
		{name: "fully past end", rng: &Range{From: 20, To: 30}, size: 10, wantNone: true},
		{name: "collapses after clamp", rng: &Range{From: 10, To: 12}, size: 10, wantNone: true},
		{name: "collapsed input", rng: &Range{From: 4, To: 4}, size: 10, wantNone: true},
		{name: "inverted input", rng: &Range{From: 6, To: 2}, size: 10, wantNone: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h Highlighter
			h.SetHighlight(tt.rng)

			decos := h.DecorationsFor(tt.size)
			if tt.wantNone {
				if len(decos) != 0 {
					t.Fatalf("expected no decorations, got %v", decos)
				}
				return
			}
			if len(decos) != 1 {
				t.Fatalf("decorations = %d, want 1", len(decos))
			}
			d := decos[0]
			if d.From != tt.wantFrom || d.To != tt.wantTo {
				t.Errorf("got [%d, %d), want [%d, %d)", d.From, d.To, tt.wantFrom, tt.wantTo)
			}
			if d.From < 0 || d.To > tt.size || d.From > d.To {
				t.Errorf("invariant violated: 0 <= %d <= %d <= %d", d.From, d.To, tt.size)
			}
		})
	}
}

func TestSetHighlightCopiesInput(t *testing.T) {
	var h Highlighter
	r := Range{From: 1, To: 3}
	h.SetHighlight(&r)
	r.To = 99

	decos := h.DecorationsFor(10)
	if len(decos) != 1 || decos[0].To != 3 {
		t.Error("highlighter must not alias the caller's range")
	}
}
