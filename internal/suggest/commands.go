package suggest

import (
	"fmt"
	"strings"

	"github.com/jobpad/jobpad/internal/doc"
	"github.com/jobpad/jobpad/internal/schema"
)

// Command is one slash-palette entry. Apply appends the structural steps to
// tr, computed against d — the document state after the trigger span has
// been deleted — so the whole confirm lands as one atomic transaction.
type Command struct {
	ID          string
	Title       string
	Description string
	Apply       func(d *doc.Document, pos int, tr *doc.Transaction) error
}

// Commands returns the static slash-command catalog.
func Commands() []Command {
	return []Command{
		{ID: "text", Title: "Text", Description: "Plain paragraph",
			Apply: convertTo(schema.TypeParagraph, nil)},
		{ID: "heading1", Title: "Heading 1", Description: "Large section heading",
			Apply: convertTo(schema.TypeHeading, map[string]any{"level": 1})},
		{ID: "heading2", Title: "Heading 2", Description: "Medium section heading",
			Apply: convertTo(schema.TypeHeading, map[string]any{"level": 2})},
		{ID: "heading3", Title: "Heading 3", Description: "Small section heading",
			Apply: convertTo(schema.TypeHeading, map[string]any{"level": 3})},
		{ID: "bullet-list", Title: "Bullet list", Description: "List with bullet points",
			Apply: wrapBlock(func(block *doc.Node) *doc.Node {
				return doc.NewNode(schema.TypeBulletList, nil,
					doc.NewNode(schema.TypeListItem, nil, block))
			})},
		{ID: "quote", Title: "Quote", Description: "Block quote",
			Apply: wrapBlock(func(block *doc.Node) *doc.Node {
				return doc.NewNode(schema.TypeQuote, nil, block)
			})},
		{ID: "code", Title: "Code", Description: "Code block",
			Apply: convertTo(schema.TypeCodeBlock, map[string]any{"language": ""})},
		{ID: "callout", Title: "Callout", Description: "Highlighted note with an icon",
			Apply: wrapBlock(func(block *doc.Node) *doc.Node {
				return doc.NewNode(schema.TypeCallout, map[string]any{"icon": "💡"}, block)
			})},
		{ID: "toggle", Title: "Toggle", Description: "Collapsible section",
			Apply: wrapBlock(func(block *doc.Node) *doc.Node {
				return doc.NewNode(schema.TypeToggle, map[string]any{"open": true}, block)
			})},
		{ID: "columns", Title: "Columns", Description: "Two columns side by side",
			Apply: wrapBlock(func(block *doc.Node) *doc.Node {
				return doc.NewNode(schema.TypeColumns, nil,
					doc.NewNode(schema.TypeColumn, nil, block),
					doc.NewNode(schema.TypeColumn, nil, doc.Paragraph("")))
			})},
		{ID: "divider", Title: "Divider", Description: "Horizontal rule",
			Apply: insertAfterBlock(func() *doc.Node {
				return doc.NewNode(schema.TypeDivider, nil)
			})},
		{ID: "table", Title: "Table", Description: "2x2 table",
			Apply: insertAfterBlock(emptyTable)},
	}
}

// FilterCommands narrows the catalog by case-insensitive substring match
// against title or description. An empty query passes everything.
func FilterCommands(cmds []Command, query string) []Command {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return cmds
	}
	var out []Command
	for _, c := range cmds {
		if strings.Contains(strings.ToLower(c.Title), q) ||
			strings.Contains(strings.ToLower(c.Description), q) {
			out = append(out, c)
		}
	}
	return out
}

// convertTo rebuilds the block containing pos as a new type, preserving its
// inline content.
func convertTo(typ string, attrs map[string]any) func(*doc.Document, int, *doc.Transaction) error {
	return func(d *doc.Document, pos int, tr *doc.Transaction) error {
		span, ok := d.BlockAt(pos)
		if !ok {
			return fmt.Errorf("no block at position %d", pos)
		}
		var inline []*doc.Node
		if text := span.Node.InlineText(); text != "" {
			inline = append(inline, doc.NewText(text))
		}
		tr.ReplaceRange(span.Start, span.End, doc.NewNode(typ, attrs, inline...))
		return nil
	}
}

// wrapBlock replaces the block containing pos with wrap(block).
func wrapBlock(wrap func(block *doc.Node) *doc.Node) func(*doc.Document, int, *doc.Transaction) error {
	return func(d *doc.Document, pos int, tr *doc.Transaction) error {
		span, ok := d.BlockAt(pos)
		if !ok {
			return fmt.Errorf("no block at position %d", pos)
		}
		tr.ReplaceRange(span.Start, span.End, wrap(span.Node))
		return nil
	}
}

// insertAfterBlock places build() immediately after the block containing pos.
func insertAfterBlock(build func() *doc.Node) func(*doc.Document, int, *doc.Transaction) error {
	return func(d *doc.Document, pos int, tr *doc.Transaction) error {
		span, ok := d.BlockAt(pos)
		if !ok {
			return fmt.Errorf("no block at position %d", pos)
		}
		tr.Insert(span.End, build())
		return nil
	}
}

func emptyTable() *doc.Node {
	cell := func() *doc.Node {
		return doc.NewNode(schema.TypeTableCell,
			map[string]any{"columnType": "text", "cellValue": ""})
	}
	row := func() *doc.Node {
		return doc.NewNode(schema.TypeTableRow, nil, cell(), cell())
	}
	return doc.NewNode(schema.TypeTable, nil, row(), row())
}
