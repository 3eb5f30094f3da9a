package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"meeting_sync/internal/domain"
)

type SyncRunStore struct {
	db *sqlx.DB
}

func NewSyncRunStore(db *sqlx.DB) *SyncRunStore {
	return &SyncRunStore{db: db}
}

func (s *SyncRunStore) Start(ctx context.Context, run *domain.SyncRun) (int64, error) {
	query := `
		INSERT INTO sync_runs (meeting_id, sync_type, status, started_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &run.ID, query,
		run.MeetingID,
		run.SyncType,
		run.Status,
		run.StartedAt,
	)
	if err != nil {
		return 0, classify("start sync run", err)
	}
	return run.ID, nil
}

// Complete writes the outcome of a run. A run can be completed only once.
func (s *SyncRunStore) Complete(ctx context.Context, run *domain.SyncRun) error {
	query := `
		UPDATE sync_runs SET
			status = $2,
			items_processed = $3,
			items_failed = $4,
			duration_ms = $5,
			error_message = $6,
			details = $7,
			completed_at = $8
		WHERE id = $1 AND completed_at IS NULL`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		run.ID,
		run.Status,
		run.ItemsProcessed,
		run.ItemsFailed,
		run.DurationMs,
		run.ErrorMessage,
		run.Details,
		run.CompletedAt,
	)
	if err != nil {
		return classify("complete sync run", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("complete sync run", err)
	}
	if n == 0 {
		return domain.NewError(domain.KindStorageIntegrity, "complete sync run",
			fmt.Errorf("sync run %d missing or already completed", run.ID))
	}
	return nil
}

func (s *SyncRunStore) Latest(ctx context.Context, meetingID int64) (*domain.SyncRun, error) {
	var run domain.SyncRun
	query := `
		SELECT id, meeting_id, sync_type, status, items_processed, items_failed, duration_ms,
			error_message, details, started_at, completed_at
		FROM sync_runs
		WHERE meeting_id = $1
		ORDER BY id DESC
		LIMIT 1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &run, query, meetingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("latest sync run", err)
	}
	return &run, nil
}
