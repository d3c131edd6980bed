package suggest

import (
	"fmt"

	"github.com/jobpad/jobpad/internal/doc"
	"github.com/jobpad/jobpad/internal/schema"
)

// ConfirmCommand builds the single transaction for confirming a slash
// command: step one deletes the trigger span [triggerPos, cursor), step two
// is the command's structural edit. The steps land together, so the confirm
// is atomic and undoable as one unit.
func ConfirmCommand(d *doc.Document, p *Palette, cursor int, cmd Command) (*doc.Transaction, error) {
	tr := doc.NewTransaction().DeleteRange(p.TriggerPos(), cursor)
	interm, err := d.Apply(tr)
	if err != nil {
		return nil, fmt.Errorf("delete trigger span: %w", err)
	}
	if err := cmd.Apply(interm, p.TriggerPos(), tr); err != nil {
		return nil, fmt.Errorf("apply command %s: %w", cmd.ID, err)
	}
	return tr, nil
}

// ConfirmMention builds the single transaction for confirming a mention:
// the trigger span is deleted and the atomic embed node placed as a block —
// replacing the current block when the deletion leaves it empty, otherwise
// right after it.
func ConfirmMention(d *doc.Document, p *Palette, cursor int, embed *doc.Node) (*doc.Transaction, error) {
	tr := doc.NewTransaction().DeleteRange(p.TriggerPos(), cursor)
	interm, err := d.Apply(tr)
	if err != nil {
		return nil, fmt.Errorf("delete trigger span: %w", err)
	}
	span, ok := interm.BlockAt(p.TriggerPos())
	if !ok {
		return nil, fmt.Errorf("no block at position %d", p.TriggerPos())
	}
	if span.Node.Type == schema.TypeParagraph && span.Node.InlineText() == "" {
		tr.ReplaceRange(span.Start, span.End, embed)
	} else {
		tr.Insert(span.End, embed)
	}
	return tr, nil
}
