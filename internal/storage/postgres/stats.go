package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"meeting_sync/internal/domain"
)

type StatsStore struct {
	db *sqlx.DB
}

func NewStatsStore(db *sqlx.DB) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) MeetingStats(ctx context.Context, meetingID int64) (*domain.MeetingStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM attendance_records WHERE meeting_id = $1) AS attendance,
			(SELECT COUNT(*) FROM attendance_records
				WHERE meeting_id = $1 AND device_info->>'match_confidence' = ANY($2)) AS low_confidence,
			(SELECT COUNT(*) FROM participant_sessions WHERE meeting_id = $1) AS sessions,
			(SELECT COUNT(*) FROM participant_sessions
				WHERE meeting_id = $1 AND user_id IS NULL) AS unmatched_sessions,
			(SELECT COUNT(*) FROM chat_messages
				WHERE meeting_id = $1 AND message_type <> 'system') AS chat_messages,
			(SELECT COUNT(*) FROM chat_messages
				WHERE meeting_id = $1 AND message_type <> 'system' AND sender_id IS NULL) AS unmatched_chat,
			(SELECT COUNT(*) FROM recordings WHERE meeting_id = $1) AS recordings,
			(SELECT COUNT(*) FROM recordings
				WHERE meeting_id = $1 AND status = 'available'
				  AND file_url IS NOT NULL AND file_url <> ''
				  AND NOT (recording_type = ANY($3))) AS visible_recordings,
			(SELECT COUNT(*) FROM shared_files WHERE meeting_id = $1) AS files`

	var st domain.MeetingStats
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &st, query,
		meetingID,
		pq.Array(domain.LowConfidence),
		pq.Array(domain.NonPlayableRecordingTypes),
	)
	if err != nil {
		return nil, classify("meeting stats", err)
	}
	return &st, nil
}
