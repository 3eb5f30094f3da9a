package resilience

import (
	"context"
	"log/slog"

	"meeting_sync/internal/domain"
)

// Pool is a connection pool that can be health-checked and recycled.
type Pool interface {
	PingContext(ctx context.Context) error
	Recycle()
}

// StorageGuard runs writes against a pool, recycling connections and retrying
// when the failure is a lost connection. Integrity and other errors are
// returned untouched.
type StorageGuard struct {
	pool   Pool
	policy Policy
	logger *slog.Logger
}

func NewStorageGuard(pool Pool, policy Policy, logger *slog.Logger) *StorageGuard {
	return &StorageGuard{
		pool:   pool,
		policy: policy.normalized(),
		logger: logger.With("component", "storage_guard"),
	}
}

// Run executes fn. Writes are never interrupted by cancellation of ctx once
// started; callers check cancellation between writes.
func (g *StorageGuard) Run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	wctx := context.WithoutCancel(ctx)

	for attempt := 1; ; attempt++ {
		err := g.ping(wctx)
		if err == nil {
			err = fn(wctx)
		}
		if err == nil {
			return nil
		}

		if domain.KindOf(err) != domain.KindStorageConnection || attempt >= g.policy.MaxAttempts {
			return err
		}

		g.logger.Warn("storage connection lost, recycling pool",
			"op", op,
			"attempt", attempt,
			"error", err,
		)
		if g.pool != nil {
			g.pool.Recycle()
		}
		if err := sleepContext(wctx, g.policy.Delay(attempt)); err != nil {
			return err
		}
	}
}

func (g *StorageGuard) ping(ctx context.Context) error {
	if g.pool == nil {
		return nil
	}
	if err := g.pool.PingContext(ctx); err != nil {
		if domain.KindOf(err) == domain.KindUnknown {
			return domain.NewError(domain.KindStorageConnection, "ping", err)
		}
		return err
	}
	return nil
}
