// Package worker runs queued sync tasks on a bounded pool.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gammazero/workerpool"
	amqp "github.com/rabbitmq/amqp091-go"

	"meeting_sync/internal/domain"
	"meeting_sync/internal/publisher"
)

const consumerTag = "meeting-sync-worker"

type Syncer interface {
	SyncMeeting(ctx context.Context, meetingID int64, syncType domain.SyncType) (*domain.SyncResult, error)
}

type Consumer interface {
	Consume(ctx context.Context, consumer string, prefetch int) (<-chan amqp.Delivery, error)
}

type Worker struct {
	consumer Consumer
	syncer   Syncer
	size     int
	logger   *slog.Logger
}

func New(consumer Consumer, syncer Syncer, size int, logger *slog.Logger) *Worker {
	if size <= 0 {
		size = 1
	}
	return &Worker{
		consumer: consumer,
		syncer:   syncer,
		size:     size,
		logger:   logger.With("component", "worker"),
	}
}

// Run consumes until ctx is done or the broker closes the channel. Tasks
// already handed to the pool are allowed to finish.
func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.consumer.Consume(ctx, consumerTag, w.size)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	pool := workerpool.New(w.size)
	defer pool.StopWait()

	w.logger.Info("worker started", "workers", w.size)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			pool.Submit(func() {
				w.Handle(ctx, d)
			})
		}
	}
}

// Handle runs one task and settles its delivery. Malformed tasks are
// dropped; failures are requeued once.
func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) {
	task, err := publisher.DecodeTask(d.Body)
	if err != nil {
		w.logger.Error("dropping malformed task", "error", err)
		w.settle(d.Nack(false, false))
		return
	}

	logger := w.logger.With("meeting_id", task.MeetingID, "sync_type", task.SyncType)

	result, err := w.syncer.SyncMeeting(ctx, task.MeetingID, task.SyncType)
	switch {
	case err == nil:
		logger.Info("task done",
			"run_id", result.RunID,
			"status", result.Status,
			"items_processed", result.ItemsProcessed,
		)
		w.settle(d.Ack(false))
	case errors.Is(err, domain.ErrSyncInProgress):
		logger.Info("task coalesced with running sync")
		w.settle(d.Ack(false))
	case errors.Is(err, domain.ErrMeetingNotFound):
		logger.Warn("task for unknown meeting dropped")
		w.settle(d.Ack(false))
	case ctx.Err() != nil:
		w.settle(d.Nack(false, true))
	default:
		requeue := !d.Redelivered
		logger.Error("task failed", "error", err, "requeue", requeue)
		w.settle(d.Nack(false, requeue))
	}
}

func (w *Worker) settle(err error) {
	if err != nil {
		w.logger.Error("failed to settle delivery", "error", err)
	}
}
