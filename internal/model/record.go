package model

import (
	"context"
	"time"
)

// RecordKind identifies which job-search collection a record belongs to.
type RecordKind string

const (
	KindJobApplication RecordKind = "job-application"
	KindResume         RecordKind = "resume"
	KindCVAnalysis     RecordKind = "cv-analysis"
	KindInterview      RecordKind = "interview"
)

// Kinds lists every record kind in display order.
var Kinds = []RecordKind{KindJobApplication, KindResume, KindCVAnalysis, KindInterview}

// Valid reports whether k names a known record kind.
func (k RecordKind) Valid() bool {
	switch k {
	case KindJobApplication, KindResume, KindCVAnalysis, KindInterview:
		return true
	}
	return false
}

// Record is the unified representation of a job-search record from any kind.
type Record struct {
	ID       string     // ULID, unique per kind
	Kind     RecordKind
	OwnerID  string     // owning user/session
	Title    string     // company+role, resume name, etc.
	Subtitle string     // secondary display line
	Status   string     // workflow status ("applied", "scheduled", ...)
	Score    *float64   // CV analysis score, nullable
	Date     *time.Time // kind-specific date (applied at, interview at)
	Extra    map[string]string
}

// SearchResult is one ranked hit from a record search. Field set mirrors
// Record so a hit can be snapshotted into a mention embed by pure field copy.
type SearchResult struct {
	Kind     RecordKind
	RecordID string
	Title    string
	Subtitle string
	Status   string
	Score    *float64
	Date     *time.Time
	Extra    map[string]string
}

// SearchFilter narrows a record search. Kind "all" (or empty) spans every kind.
type SearchFilter struct {
	Query string
	Kind  RecordKind // empty or KindAll searches all kinds
	Limit int
}

// KindAll is the SearchFilter sentinel for "search every kind".
const KindAll RecordKind = "all"

// RecordSearcher searches records of a single kind for an owner.
type RecordSearcher interface {
	SearchRecords(ctx context.Context, ownerID string, kind RecordKind, query string, limit int) ([]SearchResult, error)
}

// RecordGetter fetches one live record by kind and id.
// A stale or deleted id returns ErrNotFound, never a panic or a nil record.
type RecordGetter interface {
	GetRecord(ctx context.Context, kind RecordKind, recordID string) (*Record, error)
}

// DocumentMeta is the stored identity of a document, separate from its tree.
type DocumentMeta struct {
	ID        string
	Title     string
	UpdatedAt time.Time
}

// DocumentStore persists serialized document trees.
// Content is the schema codec's JSON form; the store never inspects it.
type DocumentStore interface {
	LoadDocument(ctx context.Context, id string) (*DocumentMeta, []byte, error)
	SaveDocument(ctx context.Context, meta DocumentMeta, content []byte) error
	ListDocuments(ctx context.Context) ([]DocumentMeta, error)
	DeleteDocument(ctx context.Context, id string) error
}

// Navigator opens a full record view outside the editor.
// Implementations must tolerate routes for records that no longer exist.
type Navigator interface {
	NavigateTo(route string) error
}
