package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"meeting_sync/internal/domain"
)

type RecordingStore struct {
	db *sqlx.DB
}

func NewRecordingStore(db *sqlx.DB) *RecordingStore {
	return &RecordingStore{db: db}
}

func (s *RecordingStore) Upsert(ctx context.Context, r *domain.Recording) error {
	query := `
		INSERT INTO recordings (meeting_id, platform_recording_id, recording_type, file_url, download_url,
			duration_seconds, file_size_bytes, status, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (meeting_id, platform_recording_id) DO UPDATE SET
			recording_type = EXCLUDED.recording_type,
			file_url = EXCLUDED.file_url,
			download_url = EXCLUDED.download_url,
			duration_seconds = EXCLUDED.duration_seconds,
			file_size_bytes = EXCLUDED.file_size_bytes,
			status = EXCLUDED.status,
			recorded_at = EXCLUDED.recorded_at
		RETURNING id`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &r.ID, query,
		r.MeetingID,
		r.PlatformRecordingID,
		r.RecordingType,
		r.FileURL,
		r.DownloadURL,
		r.DurationSeconds,
		r.FileSizeBytes,
		r.Status,
		r.RecordedAt,
	)
	return classify("upsert recording", err)
}

func (s *RecordingStore) ListByMeeting(ctx context.Context, meetingID int64) ([]domain.Recording, error) {
	var recordings []domain.Recording
	query := `
		SELECT id, meeting_id, platform_recording_id, recording_type, file_url, download_url,
			duration_seconds, file_size_bytes, status, recorded_at
		FROM recordings
		WHERE meeting_id = $1
		ORDER BY id`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &recordings, query, meetingID); err != nil {
		return nil, classify("list recordings", err)
	}
	return recordings, nil
}
