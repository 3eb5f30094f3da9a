package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"meeting_sync/internal/config"
	"meeting_sync/internal/domain"
)

type MeetingLister interface {
	ListDueForSync(ctx context.Context, staleBefore, notBefore time.Time, limit int) ([]domain.Meeting, error)
}

type Enqueuer interface {
	EnqueueSync(ctx context.Context, task *domain.SyncTask) error
}

// Scheduler periodically queues full syncs for meetings that have occurred
// and were not synced within the last interval.
type Scheduler struct {
	meetings MeetingLister
	queue    Enqueuer
	interval time.Duration
	lookback time.Duration
	batch    int
	logger   *slog.Logger
	now      func() time.Time
}

func NewScheduler(meetings MeetingLister, queue Enqueuer, cfg config.SyncConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		meetings: meetings,
		queue:    queue,
		interval: cfg.Interval,
		lookback: time.Duration(cfg.MaxHistoricalDays) * 24 * time.Hour,
		batch:    cfg.BatchSize,
		logger:   logger.With("component", "scheduler"),
		now:      time.Now,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	if _, err := s.RunOnce(tickCtx); err != nil {
		s.logger.Error("scheduling failed", "error", err)
	}
}

// RunOnce queues one batch of due meetings and returns how many were queued.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.meetings.ListDueForSync(ctx, now.Add(-s.interval), now.Add(-s.lookback), s.batch)
	if err != nil {
		return 0, fmt.Errorf("list due meetings: %w", err)
	}

	queued := 0
	for _, m := range due {
		task := &domain.SyncTask{
			MeetingID:   m.ID,
			SyncType:    domain.SyncFull,
			RequestedAt: now.UTC(),
			Origin:      "scheduler",
		}
		if err := s.queue.EnqueueSync(ctx, task); err != nil {
			return queued, fmt.Errorf("enqueue meeting %d: %w", m.ID, err)
		}
		queued++
	}

	if queued > 0 {
		s.logger.Info("queued due meetings", "count", queued)
	}
	return queued, nil
}
