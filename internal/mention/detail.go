package mention

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jobpad/jobpad/internal/model"
)

// linkageApplicationID is the extra field linking an interview to its parent
// application. Without it the interview has no navigable route.
const linkageApplicationID = "applicationId"

// Detail is what the detail view renders: the merged fields plus whether the
// live fetch failed and the snapshot is doing the talking.
type Detail struct {
	EmbedData
	Stale bool
}

// LoadDetail attempts a live fetch for the embed's record and overlays the
// result onto the snapshot. Any failure — network, deleted record, unknown
// id — degrades to the snapshot with Stale set; it never returns an error
// the caller has to branch on.
func LoadDetail(ctx context.Context, getter model.RecordGetter, snap EmbedData, logger *slog.Logger) Detail {
	rec, err := getter.GetRecord(ctx, snap.Kind, snap.RecordID)
	if err != nil {
		logger.Warn("live record fetch failed, showing snapshot",
			"kind", snap.Kind, "record_id", snap.RecordID, "error", err)
		return Detail{EmbedData: snap, Stale: true}
	}
	return Detail{EmbedData: Overlay(snap, rec)}
}

// Overlay merges a live record onto a snapshot: a fetched field wins when it
// is present and non-empty, the snapshot fills every gap.
func Overlay(snap EmbedData, live *model.Record) EmbedData {
	out := snap
	if live.Title != "" {
		out.Title = live.Title
	}
	if live.Subtitle != "" {
		out.Subtitle = live.Subtitle
	}
	if live.Status != "" {
		out.Status = live.Status
	}
	if live.Score != nil {
		out.Score = live.Score
	}
	if live.Date != nil {
		out.Date = formatDate(live.Date)
	}
	if len(live.Extra) > 0 {
		merged := make(map[string]string, len(snap.Extra)+len(live.Extra))
		for k, v := range snap.Extra {
			merged[k] = v
		}
		for k, v := range live.Extra {
			if v != "" {
				merged[k] = v
			}
		}
		out.Extra = merged
	}
	return out
}

// Route builds the navigation route for an embed from its kind, id, and
// linkage data. A missing required linkage returns *model.MissingLinkageError
// and the caller must not navigate.
func Route(e EmbedData) (string, error) {
	if e.RecordID == "" {
		return "", &model.MissingLinkageError{Kind: e.Kind, ID: e.RecordID, Field: "recordId"}
	}
	switch e.Kind {
	case model.KindJobApplication:
		return fmt.Sprintf("/applications/%s", e.RecordID), nil
	case model.KindResume:
		return fmt.Sprintf("/resumes/%s", e.RecordID), nil
	case model.KindCVAnalysis:
		return fmt.Sprintf("/cv-analyses/%s", e.RecordID), nil
	case model.KindInterview:
		appID := e.Extra[linkageApplicationID]
		if appID == "" {
			return "", &model.MissingLinkageError{Kind: e.Kind, ID: e.RecordID, Field: linkageApplicationID}
		}
		return fmt.Sprintf("/applications/%s/interviews/%s", appID, e.RecordID), nil
	default:
		return "", fmt.Errorf("no route for record kind %q", e.Kind)
	}
}
