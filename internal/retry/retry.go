// Package retry decorates record lookups with bounded retries, so a
// transient store hiccup does not mark a mention stale unnecessarily.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jobpad/jobpad/internal/model"
)

// RetryGetter is a decorator that retries transient failures with
// exponential backoff and jitter before delegating to the wrapped
// RecordGetter.
type RetryGetter struct {
	inner      model.RecordGetter
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetryGetter wraps a RecordGetter with retry logic.
// maxRetries is the number of additional attempts after the first failure,
// baseDelay the delay before the first retry, doubled on each subsequent one.
func NewRetryGetter(inner model.RecordGetter, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryGetter {
	return &RetryGetter{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// GetRecord fetches a record, retrying on transient errors. Not-found is
// authoritative and never retried.
func (g *RetryGetter) GetRecord(ctx context.Context, kind model.RecordKind, recordID string) (*model.Record, error) {
	rec, err := g.inner.GetRecord(ctx, kind, recordID)
	if err == nil {
		return rec, nil
	}
	if !isRetryable(err) {
		return nil, err
	}

	lastErr := err
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		delay := g.backoffDelay(attempt)

		g.logger.Warn("retrying record fetch after transient error",
			"attempt", attempt,
			"max_retries", g.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		rec, err = g.inner.GetRecord(ctx, kind, recordID)
		if err == nil {
			return rec, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
func (g *RetryGetter) backoffDelay(attempt int) time.Duration {
	// Exponential: baseDelay * 2^(attempt-1)
	delay := g.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	// Apply ±30% jitter
	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)

	return delay
}

// isRetryable returns true if the error represents a transient failure worth
// retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// A missing record is a definitive answer, not a failure.
	if errors.Is(err, model.ErrNotFound) {
		return false
	}

	// Context cancellation — never retry.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return true
}
