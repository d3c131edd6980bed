package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jobpad/jobpad/internal/model"
)

type docEntry struct {
	meta    model.DocumentMeta
	content []byte
}

// MemoryStore is an in-memory DocumentStore/RecordSearcher/RecordGetter for
// demos and tests. Same ordering contract as SQLiteStore: record searches
// come back most recent first by ULID.
type MemoryStore struct {
	mu      sync.RWMutex
	docs    map[string]docEntry
	records map[model.RecordKind]map[string]model.Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:    make(map[string]docEntry),
		records: make(map[model.RecordKind]map[string]model.Record),
	}
}

func (s *MemoryStore) LoadDocument(_ context.Context, id string) (*model.DocumentMeta, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[id]
	if !ok {
		return nil, nil, fmt.Errorf("document %s: %w", id, model.ErrNotFound)
	}
	meta := e.meta
	content := make([]byte, len(e.content))
	copy(content, e.content)
	return &meta, content, nil
}

func (s *MemoryStore) SaveDocument(_ context.Context, meta model.DocumentMeta, content []byte) error {
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(content))
	copy(stored, content)
	s.docs[meta.ID] = docEntry{meta: meta, content: stored}
	return nil
}

func (s *MemoryStore) ListDocuments(_ context.Context) ([]model.DocumentMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	metas := make([]model.DocumentMeta, 0, len(s.docs))
	for _, e := range s.docs {
		metas = append(metas, e.meta)
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

// PutRecord upserts one record.
func (s *MemoryStore) PutRecord(_ context.Context, r model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.records[r.Kind]
	if !ok {
		byID = make(map[string]model.Record)
		s.records[r.Kind] = byID
	}
	byID[r.ID] = r
	return nil
}

func (s *MemoryStore) GetRecord(_ context.Context, kind model.RecordKind, recordID string) (*model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[kind][recordID]
	if !ok {
		return nil, fmt.Errorf("record %s/%s: %w", kind, recordID, model.ErrNotFound)
	}
	return &r, nil
}

func (s *MemoryStore) SearchRecords(_ context.Context, ownerID string, kind model.RecordKind, query string, limit int) ([]model.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	q := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []model.Record
	for _, r := range s.records[kind] {
		if r.OwnerID != ownerID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.Title), q) &&
			!strings.Contains(strings.ToLower(r.Subtitle), q) {
			continue
		}
		matched = append(matched, r)
	}
	// ULIDs sort by creation time, so descending id is most recent first.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	if len(matched) > limit {
		matched = matched[:limit]
	}

	results := make([]model.SearchResult, 0, len(matched))
	for _, r := range matched {
		results = append(results, model.SearchResult{
			Kind:     r.Kind,
			RecordID: r.ID,
			Title:    r.Title,
			Subtitle: r.Subtitle,
			Status:   r.Status,
			Score:    r.Score,
			Date:     r.Date,
			Extra:    r.Extra,
		})
	}
	return results, nil
}
