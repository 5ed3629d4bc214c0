package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrCancelled is returned when the context is cancelled while an operation
// is in flight or while waiting between attempts.
var ErrCancelled = errors.New("cancelled")

// Budget bounds the effort spent on one operation.
type Budget struct {
	MaxFails int           // Total attempts, including the first.
	Sleep    time.Duration // Fixed pause between attempts.
}

// ExhaustedError is returned after the last permitted attempt failed. It
// unwraps to the error of that attempt.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Harness re-runs failed operations according to a Budget. Only errors that
// report themselves as temporary are retried; everything else is returned
// on the spot.
type Harness struct {
	budget Budget

	// Retryable decides which errors earn another attempt.
	Retryable func(err error) bool

	// sleep blocks for d or until ctx is done. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a harness with the given budget. A budget allowing fewer than
// one attempt is treated as allowing exactly one.
func New(b Budget) *Harness {
	if b.MaxFails < 1 {
		b.MaxFails = 1
	}
	return &Harness{
		budget:    b,
		Retryable: IsTemporary,
		sleep:     sleepCtx,
	}
}

// Budget returns the harness's budget.
func (h *Harness) Budget() Budget {
	return h.budget
}

// IsTemporary reports whether err, or any error it wraps, has a Temporary
// method that returns true.
func IsTemporary(err error) bool {
	var t interface{ Temporary() bool }
	return errors.As(err, &t) && t.Temporary()
}

// Do runs op until it succeeds, fails with a non-retryable error, or the
// budget runs out. The first attempt happens immediately; each later one is
// preceded by the budget's sleep.
func Do[T any](ctx context.Context, h *Harness, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	for attempt := 1; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}

		if ctx.Err() != nil {
			return zero, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		if !h.Retryable(err) {
			return zero, err
		}
		if attempt >= h.budget.MaxFails {
			return zero, &ExhaustedError{Attempts: attempt, Err: err}
		}

		log.WithError(err).Warnf("attempt %d/%d failed; retrying in %s", attempt, h.budget.MaxFails, h.budget.Sleep)
		if err := h.sleep(ctx, h.budget.Sleep); err != nil {
			return zero, fmt.Errorf("%w: %w", ErrCancelled, err)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
