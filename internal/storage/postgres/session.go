package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"meeting_sync/internal/domain"
)

const sessionColumns = `id, meeting_id, participant_id, session_token, platform_participant_id, platform_user_id,
		user_id, display_name, email, joined_at, left_at, sync_status, match_method, match_confidence`

type SessionStore struct {
	db *sqlx.DB
}

func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Upsert keys sessions by platform participant. Generated IDs are kept on
// conflict and an existing user link is never cleared. While the linked user
// stays the same, the first accepted match method and confidence are kept and
// returned in ps.
func (s *SessionStore) Upsert(ctx context.Context, ps *domain.ParticipantSession) error {
	if ps.ParticipantID == uuid.Nil {
		ps.ParticipantID = uuid.New()
	}
	if ps.SessionToken == uuid.Nil {
		ps.SessionToken = uuid.New()
	}

	query := `
		INSERT INTO participant_sessions (meeting_id, participant_id, session_token, platform_participant_id,
			platform_user_id, user_id, display_name, email, joined_at, left_at, sync_status, match_method, match_confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			CASE WHEN $6::bigint IS NULL THEN 'unmatched' ELSE 'matched' END, $11, $12)
		ON CONFLICT (meeting_id, platform_participant_id) DO UPDATE SET
			platform_user_id = COALESCE(EXCLUDED.platform_user_id, participant_sessions.platform_user_id),
			user_id = COALESCE(EXCLUDED.user_id, participant_sessions.user_id),
			display_name = EXCLUDED.display_name,
			email = COALESCE(EXCLUDED.email, participant_sessions.email),
			joined_at = EXCLUDED.joined_at,
			left_at = EXCLUDED.left_at,
			sync_status = CASE WHEN COALESCE(EXCLUDED.user_id, participant_sessions.user_id) IS NULL
				THEN 'unmatched' ELSE 'matched' END,
			match_method = CASE WHEN participant_sessions.user_id IS NOT NULL
					AND (EXCLUDED.user_id IS NULL OR EXCLUDED.user_id = participant_sessions.user_id)
				THEN participant_sessions.match_method ELSE EXCLUDED.match_method END,
			match_confidence = CASE WHEN participant_sessions.user_id IS NOT NULL
					AND (EXCLUDED.user_id IS NULL OR EXCLUDED.user_id = participant_sessions.user_id)
				THEN participant_sessions.match_confidence ELSE EXCLUDED.match_confidence END
		RETURNING id, participant_id, session_token, sync_status, match_method, match_confidence`

	row := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		ps.MeetingID,
		ps.ParticipantID,
		ps.SessionToken,
		ps.PlatformParticipantID,
		ps.PlatformUserID,
		ps.UserID,
		ps.DisplayName,
		ps.Email,
		ps.JoinedAt,
		ps.LeftAt,
		ps.MatchMethod,
		ps.MatchConfidence,
	)
	return classify("upsert session", row.Scan(
		&ps.ID,
		&ps.ParticipantID,
		&ps.SessionToken,
		&ps.SyncStatus,
		&ps.MatchMethod,
		&ps.MatchConfidence,
	))
}

// MatchedUserID returns the user already linked to this participant in the
// meeting, by participant ID or platform user ID.
func (s *SessionStore) MatchedUserID(ctx context.Context, meetingID int64, platformParticipantID, platformUserID string) (int64, bool, error) {
	var userID int64
	query := `
		SELECT user_id
		FROM participant_sessions
		WHERE meeting_id = $1
		  AND user_id IS NOT NULL
		  AND ((platform_participant_id = $2 AND $2 <> '') OR (platform_user_id = $3 AND $3 <> ''))
		ORDER BY id
		LIMIT 1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &userID, query, meetingID, platformParticipantID, platformUserID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, classify("matched user", err)
	}
	return userID, true, nil
}

func (s *SessionStore) ListUnmatched(ctx context.Context, meetingID int64) ([]domain.ParticipantSession, error) {
	var sessions []domain.ParticipantSession
	query := `SELECT ` + sessionColumns + `
		FROM participant_sessions
		WHERE meeting_id = $1 AND user_id IS NULL
		ORDER BY id`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &sessions, query, meetingID); err != nil {
		return nil, classify("list unmatched sessions", err)
	}
	return sessions, nil
}

// AttachUser links a guest session to a user. Sessions already linked are
// left alone.
func (s *SessionStore) AttachUser(ctx context.Context, id, userID int64, method domain.MatchMethod, conf domain.Confidence) (bool, error) {
	query := `
		UPDATE participant_sessions
		SET user_id = $2, match_method = $3, match_confidence = $4, sync_status = 'matched'
		WHERE id = $1 AND user_id IS NULL`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, id, userID, method, conf)
	if err != nil {
		return false, classify("attach user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify("attach user", err)
	}
	return n == 1, nil
}

func (s *SessionStore) ListByMeeting(ctx context.Context, meetingID int64) ([]domain.ParticipantSession, error) {
	var sessions []domain.ParticipantSession
	query := `SELECT ` + sessionColumns + `
		FROM participant_sessions
		WHERE meeting_id = $1
		ORDER BY id`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &sessions, query, meetingID); err != nil {
		return nil, classify("list sessions", err)
	}
	return sessions, nil
}
