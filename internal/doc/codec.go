package doc

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jobpad/jobpad/internal/schema"
)

// jsonNode is the persisted JSON shape of a node. It is the only structure
// the engine owns on disk, and it must stay backward-readable: unknown types
// are dropped on load, unknown attrs pass through untouched.
type jsonNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []jsonNode     `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// Serialize renders the document tree as JSON.
func Serialize(d *Document) ([]byte, error) {
	data, err := json.Marshal(toJSON(d.Root))
	if err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}
	return data, nil
}

func toJSON(n *Node) jsonNode {
	out := jsonNode{Type: n.Type, Attrs: n.Attrs, Text: n.Text}
	for _, c := range n.Children {
		out.Content = append(out.Content, toJSON(c))
	}
	return out
}

// Deserialize parses data into a document governed by reg. Nodes of
// unregistered types are dropped with a warning rather than failing the
// whole document, so documents written by newer schema versions still open.
func Deserialize(reg *schema.Registry, data []byte, logger *slog.Logger) (*Document, error) {
	var root jsonNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if root.Type != schema.TypeDoc {
		return nil, fmt.Errorf("root node is %q, want %q", root.Type, schema.TypeDoc)
	}

	d := &Document{Reg: reg}
	node, ok := d.fromJSON(root, logger)
	if !ok || len(node.Children) == 0 {
		node = NewNode(schema.TypeDoc, nil, Paragraph(""))
	}
	d.Root = node
	return d, nil
}

// fromJSON rebuilds one node, reporting ok=false when the node must be
// dropped (unknown type or unsatisfiable required attrs).
func (d *Document) fromJSON(jn jsonNode, logger *slog.Logger) (*Node, bool) {
	spec, known := d.Reg.Lookup(jn.Type)
	if !known {
		logger.Warn("dropping node of unknown type", "type", jn.Type)
		return nil, false
	}

	if jn.Type == schema.TypeText {
		if jn.Text == "" {
			return nil, false
		}
		return NewText(jn.Text), true
	}

	attrs, err := d.Reg.FillDefaults(jn.Type, jn.Attrs)
	if err != nil {
		logger.Warn("dropping node with invalid attrs", "type", jn.Type, "error", err)
		return nil, false
	}

	n := &Node{Type: jn.Type, Attrs: attrs}
	if spec.Content == schema.ContentNone {
		return n, true
	}
	for _, jc := range jn.Content {
		c, ok := d.fromJSON(jc, logger)
		if !ok {
			continue
		}
		if err := d.Reg.Allowed(jn.Type, c.Type); err != nil {
			logger.Warn("dropping misplaced node", "type", c.Type, "parent", jn.Type, "error", err)
			continue
		}
		n.Children = append(n.Children, c)
	}
	if d.inlineContent(n) {
		n.Children = mergeText(n.Children)
	}
	return n, true
}
