package memory

import (
	"context"

	"meeting_sync/internal/domain"
)

type StatsStore struct {
	db *DB
}

func NewStatsStore(db *DB) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) MeetingStats(_ context.Context, meetingID int64) (*domain.MeetingStats, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var st domain.MeetingStats
	for _, r := range s.db.attendance {
		if r.MeetingID != meetingID {
			continue
		}
		st.Attendance++
		if domain.Confidence(r.DeviceInfo.String("match_confidence")).IsLow() {
			st.LowConfidence++
		}
	}
	for _, ps := range s.db.sessions {
		if ps.MeetingID != meetingID {
			continue
		}
		st.Sessions++
		if ps.UserID == nil {
			st.UnmatchedSessions++
		}
	}
	for _, m := range s.db.chat {
		if m.MeetingID != meetingID || m.MessageType == domain.MessageSystem {
			continue
		}
		st.ChatMessages++
		if m.SenderID == nil {
			st.UnmatchedChat++
		}
	}
	for _, r := range s.db.recordings {
		if r.MeetingID != meetingID {
			continue
		}
		st.Recordings++
		if r.Visible() {
			st.VisibleRecordings++
		}
	}
	for _, f := range s.db.files {
		if f.MeetingID == meetingID {
			st.Files++
		}
	}
	return &st, nil
}
