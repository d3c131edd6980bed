// Package mention implements the record-embed subsystem: ranked search
// across the four record kinds, snapshot capture into an atomic document
// node, and the live-refresh detail protocol with graceful fallback to the
// snapshot when the record is gone.
package mention

import (
	"time"

	"github.com/jobpad/jobpad/internal/doc"
	"github.com/jobpad/jobpad/internal/model"
	"github.com/jobpad/jobpad/internal/schema"
)

// DateLayout is the display form dates take inside embed snapshots.
const DateLayout = "2006-01-02"

// EmbedData is the snapshot an embed carries: the record's display fields as
// they were at insertion time. It is intentionally allowed to go stale; the
// detail view re-fetches live data and falls back to these fields.
type EmbedData struct {
	Kind     model.RecordKind
	RecordID string
	Title    string
	Subtitle string
	Status   string
	Score    *float64
	Date     string
	Extra    map[string]string
}

// SnapshotOf captures a search hit into embed data (pure field copy).
func SnapshotOf(res model.SearchResult) EmbedData {
	return EmbedData{
		Kind:     res.Kind,
		RecordID: res.RecordID,
		Title:    res.Title,
		Subtitle: res.Subtitle,
		Status:   res.Status,
		Score:    res.Score,
		Date:     formatDate(res.Date),
		Extra:    res.Extra,
	}
}

// Node renders the snapshot as an atomic mention node ready for insertion.
func (e EmbedData) Node() *doc.Node {
	attrs := map[string]any{
		"kind":     string(e.Kind),
		"recordId": e.RecordID,
		"title":    e.Title,
		"subtitle": e.Subtitle,
		"status":   e.Status,
		"date":     e.Date,
	}
	if e.Score != nil {
		attrs["score"] = *e.Score
	}
	if len(e.Extra) > 0 {
		extra := make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			extra[k] = v
		}
		attrs["extra"] = extra
	}
	return doc.NewNode(schema.TypeMention, attrs)
}

// FromNode reads embed data back out of a mention node's attrs. Works on
// both freshly inserted and deserialized nodes.
func FromNode(n *doc.Node) EmbedData {
	e := EmbedData{
		Kind:     model.RecordKind(doc.AttrString(n, "kind")),
		RecordID: doc.AttrString(n, "recordId"),
		Title:    doc.AttrString(n, "title"),
		Subtitle: doc.AttrString(n, "subtitle"),
		Status:   doc.AttrString(n, "status"),
		Date:     doc.AttrString(n, "date"),
	}
	if n.Attrs != nil {
		if v, ok := n.Attrs["score"]; ok {
			switch s := v.(type) {
			case float64:
				e.Score = &s
			case int:
				f := float64(s)
				e.Score = &f
			}
		}
		if raw, ok := n.Attrs["extra"].(map[string]any); ok {
			e.Extra = make(map[string]string, len(raw))
			for k, v := range raw {
				if s, ok := v.(string); ok {
					e.Extra[k] = s
				}
			}
		}
	}
	return e
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
