// Package store persists documents and job-search records in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/jobpad/jobpad/internal/model"
)

// NewID returns a fresh ULID. IDs sort lexicographically by creation time,
// so "ORDER BY id DESC" is most-recent-first.
func NewID() string {
	return ulid.Make().String()
}

// SQLiteStore keeps documents and records in a single SQLite database.
// It implements model.DocumentStore, model.RecordSearcher and
// model.RecordGetter.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the documents and records tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createDocuments := `CREATE TABLE IF NOT EXISTS documents (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL DEFAULT '',
		content    TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`
	if _, err := db.Exec(createDocuments); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	createRecords := `CREATE TABLE IF NOT EXISTS records (
		id       TEXT NOT NULL,
		kind     TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		title    TEXT NOT NULL,
		subtitle TEXT NOT NULL DEFAULT '',
		status   TEXT NOT NULL DEFAULT '',
		score    REAL,
		date     DATETIME,
		extra    TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (kind, id)
	)`
	if _, err := db.Exec(createRecords); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating records table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// LoadDocument fetches one document by id. A missing id returns
// model.ErrNotFound.
func (s *SQLiteStore) LoadDocument(ctx context.Context, id string) (*model.DocumentMeta, []byte, error) {
	var meta model.DocumentMeta
	var content []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, content, updated_at FROM documents WHERE id = ?", id,
	).Scan(&meta.ID, &meta.Title, &content, &meta.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("document %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading document %s: %w", id, err)
	}
	return &meta, content, nil
}

// SaveDocument upserts a document. UpdatedAt is set to now when zero.
func (s *SQLiteStore) SaveDocument(ctx context.Context, meta model.DocumentMeta, content []byte) error {
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, content, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, content = excluded.content, updated_at = excluded.updated_at`,
		meta.ID, meta.Title, string(content), meta.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving document %s: %w", meta.ID, err)
	}
	return nil
}

// ListDocuments returns all document metadata, most recently updated first.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]model.DocumentMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, updated_at FROM documents ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var metas []model.DocumentMeta
	for rows.Next() {
		var m model.DocumentMeta
		if err := rows.Scan(&m.ID, &m.Title, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}
	return metas, nil
}

// DeleteDocument removes a document. Deleting a missing id is a no-op.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	return nil
}

// PutRecord upserts one record.
func (s *SQLiteStore) PutRecord(ctx context.Context, r model.Record) error {
	extra, err := json.Marshal(r.Extra)
	if err != nil {
		return fmt.Errorf("encoding extra for record %s: %w", r.ID, err)
	}
	var score any
	if r.Score != nil {
		score = *r.Score
	}
	var date any
	if r.Date != nil {
		date = r.Date.UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, kind, owner_id, title, subtitle, status, score, date, extra)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(kind, id) DO UPDATE SET
		   owner_id = excluded.owner_id, title = excluded.title,
		   subtitle = excluded.subtitle, status = excluded.status,
		   score = excluded.score, date = excluded.date, extra = excluded.extra`,
		r.ID, string(r.Kind), r.OwnerID, r.Title, r.Subtitle, r.Status, score, date, string(extra),
	)
	if err != nil {
		return fmt.Errorf("saving record %s/%s: %w", r.Kind, r.ID, err)
	}
	return nil
}

// GetRecord fetches one live record. A stale or deleted id returns
// model.ErrNotFound.
func (s *SQLiteStore) GetRecord(ctx context.Context, kind model.RecordKind, recordID string) (*model.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, owner_id, title, subtitle, status, score, date, extra
		 FROM records WHERE kind = ? AND id = ?`, string(kind), recordID)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s/%s: %w", kind, recordID, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading record %s/%s: %w", kind, recordID, err)
	}
	return r, nil
}

// SearchRecords matches query against record titles and subtitles of one
// kind, most recent first. An empty query matches everything.
func (s *SQLiteStore) SearchRecords(ctx context.Context, ownerID string, kind model.RecordKind, query string, limit int) ([]model.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, owner_id, title, subtitle, status, score, date, extra
		 FROM records
		 WHERE kind = ? AND owner_id = ? AND (title LIKE ? OR subtitle LIKE ?)
		 ORDER BY id DESC LIMIT ?`,
		string(kind), ownerID, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching %s records: %w", kind, err)
	}
	defer rows.Close()

	var results []model.SearchResult
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s record row: %w", kind, err)
		}
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s record rows: %w", kind, err)
	}
	return results, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.Record, error) {
	var r model.Record
	var kind string
	var score sql.NullFloat64
	var date sql.NullTime
	var extra string
	if err := row.Scan(&r.ID, &kind, &r.OwnerID, &r.Title, &r.Subtitle, &r.Status, &score, &date, &extra); err != nil {
		return nil, err
	}
	r.Kind = model.RecordKind(kind)
	if score.Valid {
		v := score.Float64
		r.Score = &v
	}
	if date.Valid {
		t := date.Time
		r.Date = &t
	}
	if extra != "" {
		if err := json.Unmarshal([]byte(extra), &r.Extra); err != nil {
			return nil, fmt.Errorf("decoding extra: %w", err)
		}
	}
	return &r, nil
}
