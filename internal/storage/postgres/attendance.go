package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"meeting_sync/internal/domain"
)

type AttendanceStore struct {
	db *sqlx.DB
}

func NewAttendanceStore(db *sqlx.DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

// Upsert writes one record per (meeting, user). Re-running with the same
// input leaves the row unchanged, and the match_* keys of device_info keep
// the values of the first accepted match.
func (s *AttendanceStore) Upsert(ctx context.Context, rec *domain.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (meeting_id, user_id, join_time, leave_time, duration_seconds, status, device_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (meeting_id, user_id) DO UPDATE SET
			join_time = EXCLUDED.join_time,
			leave_time = EXCLUDED.leave_time,
			duration_seconds = EXCLUDED.duration_seconds,
			status = EXCLUDED.status,
			device_info = CASE WHEN attendance_records.device_info ? 'match_method'
				THEN (EXCLUDED.device_info - ARRAY['match_method', 'match_confidence', 'match_score'])
					|| COALESCE((
						SELECT jsonb_object_agg(key, value)
						FROM jsonb_each(attendance_records.device_info)
						WHERE key IN ('match_method', 'match_confidence', 'match_score')
					), '{}'::jsonb)
				ELSE EXCLUDED.device_info END,
			updated_at = NOW()
		RETURNING id, device_info`

	row := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		rec.MeetingID,
		rec.UserID,
		rec.JoinTime,
		rec.LeaveTime,
		rec.DurationSeconds,
		rec.Status,
		rec.DeviceInfo,
	)
	err := row.Scan(&rec.ID, &rec.DeviceInfo)
	return classify("upsert attendance", err)
}

func (s *AttendanceStore) ListByMeeting(ctx context.Context, meetingID int64) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord
	query := `
		SELECT id, meeting_id, user_id, join_time, leave_time, duration_seconds, status, device_info,
			created_at, updated_at
		FROM attendance_records
		WHERE meeting_id = $1
		ORDER BY user_id`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &records, query, meetingID); err != nil {
		return nil, classify("list attendance", err)
	}
	return records, nil
}
