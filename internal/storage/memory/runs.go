package memory

import (
	"context"
	"fmt"

	"meeting_sync/internal/domain"
)

type SyncRunStore struct {
	db *DB
}

func NewSyncRunStore(db *DB) *SyncRunStore {
	return &SyncRunStore{db: db}
}

func (s *SyncRunStore) Start(_ context.Context, run *domain.SyncRun) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	run.ID = s.db.id()
	s.db.runs[run.ID] = *run
	return run.ID, nil
}

// Complete finalizes a started run. Completed runs are immutable.
func (s *SyncRunStore) Complete(_ context.Context, run *domain.SyncRun) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, ok := s.db.runs[run.ID]
	if !ok {
		return fmt.Errorf("sync run %d not found", run.ID)
	}
	if existing.CompletedAt != nil {
		return domain.NewError(domain.KindStorageIntegrity, "complete run", fmt.Errorf("sync run %d already completed", run.ID))
	}
	stored := *run
	stored.Details = append(domain.DomainResults(nil), run.Details...)
	s.db.runs[run.ID] = stored
	return nil
}

func (s *SyncRunStore) Latest(_ context.Context, meetingID int64) (*domain.SyncRun, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var latest *domain.SyncRun
	for _, r := range s.db.runs {
		if r.MeetingID == meetingID && (latest == nil || r.ID > latest.ID) {
			r := r
			latest = &r
		}
	}
	return latest, nil
}

func (s *SyncRunStore) ListByMeeting(_ context.Context, meetingID int64) ([]domain.SyncRun, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []domain.SyncRun
	for id := int64(1); id <= s.db.nextID; id++ {
		if r, ok := s.db.runs[id]; ok && r.MeetingID == meetingID {
			out = append(out, r)
		}
	}
	return out, nil
}
