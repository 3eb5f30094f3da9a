package memory

import (
	"context"
	"sort"
	"time"

	"meeting_sync/internal/domain"
)

type MeetingStore struct {
	db *DB
}

func NewMeetingStore(db *DB) *MeetingStore {
	return &MeetingStore{db: db}
}

// Create stores m and returns its ID.
func (s *MeetingStore) Create(_ context.Context, m *domain.Meeting) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	m.ID = s.db.id()
	if m.SyncStatus == "" {
		m.SyncStatus = domain.SyncPending
	}
	if m.Status == "" {
		m.Status = domain.MeetingScheduled
	}
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	s.db.meetings[m.ID] = *m
	return m.ID, nil
}

// AddSlot stores a slot. A slot with the same platform meeting id replaces
// the start time of the existing one.
func (s *MeetingStore) AddSlot(_ context.Context, slot *domain.MeetingSlot) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.meetings[slot.MeetingID]; !ok {
		return 0, domain.ErrMeetingNotFound
	}
	for id, existing := range s.db.slots {
		if existing.MeetingID == slot.MeetingID && existing.PlatformMeetingID == slot.PlatformMeetingID {
			existing.StartsAt = slot.StartsAt
			s.db.slots[id] = existing
			slot.ID = id
			return id, nil
		}
	}
	slot.ID = s.db.id()
	s.db.slots[slot.ID] = *slot
	return slot.ID, nil
}

func (s *MeetingStore) Get(_ context.Context, id int64) (*domain.Meeting, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	m, ok := s.db.meetings[id]
	if !ok {
		return nil, domain.ErrMeetingNotFound
	}
	return &m, nil
}

// TryBeginSync moves the meeting to in_progress unless another run holds it.
// A lease older than leaseTTL is treated as abandoned.
func (s *MeetingStore) TryBeginSync(_ context.Context, id int64, leaseTTL time.Duration) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	m, ok := s.db.meetings[id]
	if !ok {
		return false, domain.ErrMeetingNotFound
	}
	if m.SyncStatus == domain.SyncInProgress && (leaseTTL <= 0 || time.Since(m.UpdatedAt) < leaseTTL) {
		return false, nil
	}
	m.SyncStatus = domain.SyncInProgress
	m.UpdatedAt = time.Now()
	s.db.meetings[id] = m
	return true, nil
}

func (s *MeetingStore) FinishSync(_ context.Context, id int64, status domain.SyncStatus, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	m, ok := s.db.meetings[id]
	if !ok {
		return domain.ErrMeetingNotFound
	}
	m.SyncStatus = status
	m.LastSyncAt = &at
	m.UpdatedAt = time.Now()
	s.db.meetings[id] = m
	return nil
}

// ReleaseSync hands back a lease without recording a sync. last_sync_at is
// left as it was.
func (s *MeetingStore) ReleaseSync(_ context.Context, id int64, status domain.SyncStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	m, ok := s.db.meetings[id]
	if !ok {
		return domain.ErrMeetingNotFound
	}
	if m.SyncStatus != domain.SyncInProgress {
		return nil
	}
	m.SyncStatus = status
	m.UpdatedAt = time.Now()
	s.db.meetings[id] = m
	return nil
}

func (s *MeetingStore) ListSlots(_ context.Context, meetingID int64) ([]domain.MeetingSlot, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []domain.MeetingSlot
	for _, slot := range s.db.slots {
		if slot.MeetingID == meetingID {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MeetingStore) ListRecent(_ context.Context, since time.Time, limit int) ([]domain.Meeting, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []domain.Meeting
	for _, m := range s.db.meetings {
		if !m.ScheduledStart.Before(since) {
			out = append(out, m)
		}
	}
	sortMeetings(out)
	return capped(out, limit), nil
}

func (s *MeetingStore) ListDueForSync(_ context.Context, staleBefore, notBefore time.Time, limit int) ([]domain.Meeting, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []domain.Meeting
	for _, m := range s.db.meetings {
		if !m.HasOccurred() || !m.HasReference() || m.SyncStatus == domain.SyncInProgress {
			continue
		}
		if m.ScheduledStart.Before(notBefore) {
			continue
		}
		if m.LastSyncAt != nil && !m.LastSyncAt.Before(staleBefore) {
			continue
		}
		out = append(out, m)
	}
	sortMeetings(out)
	return capped(out, limit), nil
}

// Delete removes the meeting and everything synced for it.
func (s *MeetingStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.meetings[id]; !ok {
		return domain.ErrMeetingNotFound
	}
	delete(s.db.meetings, id)
	for k, v := range s.db.slots {
		if v.MeetingID == id {
			delete(s.db.slots, k)
		}
	}
	for k, v := range s.db.attendance {
		if v.MeetingID == id {
			delete(s.db.attendance, k)
		}
	}
	for k, v := range s.db.sessions {
		if v.MeetingID == id {
			delete(s.db.sessions, k)
		}
	}
	for k, v := range s.db.chat {
		if v.MeetingID == id {
			delete(s.db.chat, k)
		}
	}
	for k, v := range s.db.recordings {
		if v.MeetingID == id {
			delete(s.db.recordings, k)
		}
	}
	for k, v := range s.db.files {
		if v.MeetingID == id {
			delete(s.db.files, k)
		}
	}
	for k, v := range s.db.runs {
		if v.MeetingID == id {
			delete(s.db.runs, k)
		}
	}
	return nil
}

func sortMeetings(ms []domain.Meeting) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].ScheduledStart.Equal(ms[j].ScheduledStart) {
			return ms[i].ScheduledStart.After(ms[j].ScheduledStart)
		}
		return ms[i].ID < ms[j].ID
	})
}

func capped[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
