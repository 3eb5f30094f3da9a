package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"meeting_sync/internal/domain"
)

type trackerKey struct{}

// Tracker counts attempts made by Do calls under one context.
type Tracker struct {
	attempts atomic.Int64
}

func (t *Tracker) Attempts() int {
	if t == nil {
		return 0
	}
	return int(t.attempts.Load())
}

// Track returns a context whose Do calls are counted by the returned tracker.
func Track(ctx context.Context) (context.Context, *Tracker) {
	t := &Tracker{}
	return context.WithValue(ctx, trackerKey{}, t), t
}

func trackerFrom(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}

// Do runs fn until it succeeds, fails with a non-retryable kind, or the policy
// runs out of attempts. Rate-limited errors wait for Retry-After when given.
func Do(ctx context.Context, p Policy, logger *slog.Logger, op string, fn func(ctx context.Context) error) error {
	p = p.normalized()
	tracker := trackerFrom(ctx)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if tracker != nil {
			tracker.attempts.Add(1)
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info("request succeeded after retry", "op", op, "attempts", attempt)
			}
			return nil
		}

		if !domain.IsRetryable(err) {
			return err
		}
		if attempt >= p.MaxAttempts {
			return fmt.Errorf("after %d attempts: %w", attempt, err)
		}

		wait := p.Delay(attempt)
		if ra := domain.RetryAfterOf(err); ra > 0 && domain.KindOf(err) == domain.KindRateLimited {
			wait = min(ra, p.MaxDelay)
		}

		logger.Warn("request failed, retrying",
			"op", op,
			"attempt", attempt,
			"backoff", wait,
			"error", err,
		)

		if err := sleepContext(ctx, wait); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
