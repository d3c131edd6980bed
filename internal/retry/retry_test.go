package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jobpad/jobpad/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockGetter calls a function on each invocation, tracking call count.
type mockGetter struct {
	calls int
	fn    func(attempt int) (*model.Record, error)
}

func (m *mockGetter) GetRecord(_ context.Context, _ model.RecordKind, _ string) (*model.Record, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestRetrySucceedsOnFirstAttempt(t *testing.T) {
	rec := &model.Record{ID: "r1", Kind: model.KindResume, Title: "Backend resume"}
	mock := &mockGetter{fn: func(int) (*model.Record, error) {
		return rec, nil
	}}

	rg := NewRetryGetter(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rg.GetRecord(context.Background(), model.KindResume, "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "r1" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetryRecoversFromTransientError(t *testing.T) {
	rec := &model.Record{ID: "r1"}
	mock := &mockGetter{fn: func(attempt int) (*model.Record, error) {
		if attempt == 1 {
			return nil, errors.New("database is locked")
		}
		return rec, nil
	}}

	rg := NewRetryGetter(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rg.GetRecord(context.Background(), model.KindResume, "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "r1" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	boom := errors.New("database is locked")
	mock := &mockGetter{fn: func(int) (*model.Record, error) {
		return nil, boom
	}}

	rg := NewRetryGetter(mock, 2, time.Millisecond, discardLogger())
	_, err := rg.GetRecord(context.Background(), model.KindResume, "r1")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetryDoesNotRetryNotFound(t *testing.T) {
	mock := &mockGetter{fn: func(int) (*model.Record, error) {
		return nil, fmt.Errorf("record resume/r1: %w", model.ErrNotFound)
	}}

	rg := NewRetryGetter(mock, 2, time.Millisecond, discardLogger())
	_, err := rg.GetRecord(context.Background(), model.KindResume, "r1")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if mock.calls != 1 {
		t.Fatalf("not-found must not be retried, got %d calls", mock.calls)
	}
}

func TestRetryStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mock := &mockGetter{fn: func(int) (*model.Record, error) {
		cancel()
		return nil, errors.New("database is locked")
	}}

	rg := NewRetryGetter(mock, 3, 10*time.Second, discardLogger())
	_, err := rg.GetRecord(ctx, model.KindResume, "r1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}
