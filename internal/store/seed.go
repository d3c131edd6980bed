package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jobpad/jobpad/internal/model"
)

// RecordPutter is the write side of a record store.
type RecordPutter interface {
	PutRecord(ctx context.Context, r model.Record) error
}

// DemoOwnerID is the owner assigned to seeded records.
const DemoOwnerID = "demo"

// Seed loads a small set of sample records so the editor's mention and
// command flows have something to find on a fresh install.
func Seed(ctx context.Context, s RecordPutter) error {
	score := func(v float64) *float64 { return &v }
	date := func(s string) *time.Time {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			panic("seed: bad date literal: " + s)
		}
		return &t
	}

	appAcme := model.Record{
		ID: NewID(), Kind: model.KindJobApplication, OwnerID: DemoOwnerID,
		Title: "Acme Corp — Backend Engineer", Subtitle: "Remote, EU",
		Status: "applied", Date: date("2026-08-12"),
	}
	appGlobex := model.Record{
		ID: NewID(), Kind: model.KindJobApplication, OwnerID: DemoOwnerID,
		Title: "Globex — Platform Engineer", Subtitle: "Berlin",
		Status: "interviewing", Date: date("2026-08-20"),
	}
	records := []model.Record{
		appAcme,
		appGlobex,
		{
			ID: NewID(), Kind: model.KindResume, OwnerID: DemoOwnerID,
			Title: "Backend resume v3", Subtitle: "Go, distributed systems",
			Status: "current",
		},
		{
			ID: NewID(), Kind: model.KindCVAnalysis, OwnerID: DemoOwnerID,
			Title: "Analysis: Backend resume v3 vs Acme posting", Subtitle: "strong match",
			Status: "done", Score: score(87.5), Date: date("2026-08-13"),
		},
		{
			ID: NewID(), Kind: model.KindInterview, OwnerID: DemoOwnerID,
			Title: "Globex — technical screen", Subtitle: "with platform team",
			Status: "scheduled", Date: date("2026-09-04"),
			Extra: map[string]string{"applicationId": appGlobex.ID},
		},
	}

	for _, r := range records {
		if err := s.PutRecord(ctx, r); err != nil {
			return fmt.Errorf("seeding record %q: %w", r.Title, err)
		}
	}
	return nil
}
