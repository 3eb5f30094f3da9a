package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"meeting_sync/internal/domain"
)

const meetingColumns = `id, title, platform, platform_meeting_id, join_url, org_unit_id, creator_id,
		organizer_email, meeting_status, sync_status, last_sync_at, scheduled_start, scheduled_end,
		created_at, updated_at`

type MeetingStore struct {
	db *sqlx.DB
}

func NewMeetingStore(db *sqlx.DB) *MeetingStore {
	return &MeetingStore{db: db}
}

func (s *MeetingStore) Create(ctx context.Context, m *domain.Meeting) (int64, error) {
	if m.Status == "" {
		m.Status = domain.MeetingScheduled
	}
	if m.SyncStatus == "" {
		m.SyncStatus = domain.SyncPending
	}

	query := `
		INSERT INTO meetings (title, platform, platform_meeting_id, join_url, org_unit_id, creator_id,
			organizer_email, meeting_status, sync_status, scheduled_start, scheduled_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &id, query,
		m.Title,
		m.Platform,
		m.PlatformMeetingID,
		m.JoinURL,
		m.OrgUnitID,
		m.CreatorID,
		m.OrganizerEmail,
		m.Status,
		m.SyncStatus,
		m.ScheduledStart,
		m.ScheduledEnd,
	)
	if err != nil {
		return 0, classify("create meeting", err)
	}
	m.ID = id
	return id, nil
}

func (s *MeetingStore) AddSlot(ctx context.Context, slot *domain.MeetingSlot) (int64, error) {
	query := `
		INSERT INTO meeting_slots (meeting_id, starts_at, platform_meeting_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (meeting_id, platform_meeting_id) DO UPDATE SET
			starts_at = EXCLUDED.starts_at
		RETURNING id`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &slot.ID, query,
		slot.MeetingID, slot.StartsAt, slot.PlatformMeetingID)
	if err != nil {
		return 0, classify("add slot", err)
	}
	return slot.ID, nil
}

func (s *MeetingStore) Get(ctx context.Context, id int64) (*domain.Meeting, error) {
	var m domain.Meeting
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMeetingNotFound
	}
	if err != nil {
		return nil, classify("get meeting", err)
	}
	return &m, nil
}

// TryBeginSync is the compare-and-set that gives a run exclusive use of the
// meeting. A lease older than leaseTTL is treated as abandoned.
func (s *MeetingStore) TryBeginSync(ctx context.Context, id int64, leaseTTL time.Duration) (bool, error) {
	query := `
		UPDATE meetings
		SET sync_status = 'in_progress', updated_at = NOW()
		WHERE id = $1
		  AND (sync_status <> 'in_progress' OR ($2::float8 > 0 AND updated_at < NOW() - make_interval(secs => $2::float8)))`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, id, leaseTTL.Seconds())
	if err != nil {
		return false, classify("begin sync", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify("begin sync", err)
	}
	if n == 1 {
		return true, nil
	}

	if _, err := s.Get(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (s *MeetingStore) FinishSync(ctx context.Context, id int64, status domain.SyncStatus, at time.Time) error {
	query := `
		UPDATE meetings
		SET sync_status = $2, last_sync_at = $3, updated_at = NOW()
		WHERE id = $1`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, id, status, at)
	if err != nil {
		return classify("finish sync", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}

// ReleaseSync hands back a lease without recording a sync. last_sync_at is
// left as it was.
func (s *MeetingStore) ReleaseSync(ctx context.Context, id int64, status domain.SyncStatus) error {
	query := `
		UPDATE meetings
		SET sync_status = $2, updated_at = NOW()
		WHERE id = $1 AND sync_status = 'in_progress'`

	if _, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, id, status); err != nil {
		return classify("release sync", err)
	}
	return nil
}

func (s *MeetingStore) ListSlots(ctx context.Context, meetingID int64) ([]domain.MeetingSlot, error) {
	var slots []domain.MeetingSlot
	query := `
		SELECT id, meeting_id, starts_at, platform_meeting_id
		FROM meeting_slots
		WHERE meeting_id = $1
		ORDER BY starts_at, id`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &slots, query, meetingID); err != nil {
		return nil, classify("list slots", err)
	}
	return slots, nil
}

func (s *MeetingStore) ListRecent(ctx context.Context, since time.Time, limit int) ([]domain.Meeting, error) {
	var meetings []domain.Meeting
	query := `SELECT ` + meetingColumns + `
		FROM meetings
		WHERE scheduled_start >= $1
		ORDER BY scheduled_start DESC, id
		LIMIT NULLIF($2::int, 0)`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &meetings, query, since, limit); err != nil {
		return nil, classify("list recent meetings", err)
	}
	return meetings, nil
}

// ListDueForSync returns meetings that took place after notBefore and have
// not been synced since staleBefore.
func (s *MeetingStore) ListDueForSync(ctx context.Context, staleBefore, notBefore time.Time, limit int) ([]domain.Meeting, error) {
	var meetings []domain.Meeting
	query := `SELECT ` + meetingColumns + `
		FROM meetings
		WHERE meeting_status IN ('started', 'ended')
		  AND platform_meeting_id IS NOT NULL AND platform_meeting_id <> ''
		  AND sync_status <> 'in_progress'
		  AND scheduled_start >= $2
		  AND (last_sync_at IS NULL OR last_sync_at < $1)
		ORDER BY scheduled_start DESC, id
		LIMIT NULLIF($3::int, 0)`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &meetings, query, staleBefore, notBefore, limit); err != nil {
		return nil, classify("list due meetings", err)
	}
	return meetings, nil
}

// Delete removes the meeting; synced records go with it by cascade.
func (s *MeetingStore) Delete(ctx context.Context, id int64) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return classify("delete meeting", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("delete meeting", err)
	}
	if n == 0 {
		return fmt.Errorf("delete meeting %d: %w", id, domain.ErrMeetingNotFound)
	}
	return nil
}
