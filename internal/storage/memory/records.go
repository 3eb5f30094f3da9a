package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"meeting_sync/internal/domain"
)

type AttendanceStore struct {
	db *DB
}

func NewAttendanceStore(db *DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

// Upsert writes one record per (meeting, user). The match_* keys of
// device_info keep the values of the first accepted match.
func (s *AttendanceStore) Upsert(_ context.Context, rec *domain.AttendanceRecord) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := time.Now()
	for id, existing := range s.db.attendance {
		if existing.MeetingID == rec.MeetingID && existing.UserID == rec.UserID {
			rec.ID, rec.CreatedAt, rec.UpdatedAt = id, existing.CreatedAt, now
			rec.DeviceInfo = keepMatch(existing.DeviceInfo, rec.DeviceInfo)
			stored := *rec
			stored.DeviceInfo = clone(rec.DeviceInfo)
			s.db.attendance[id] = stored
			return nil
		}
	}
	rec.ID = s.db.id()
	rec.CreatedAt, rec.UpdatedAt = now, now
	stored := *rec
	stored.DeviceInfo = clone(rec.DeviceInfo)
	s.db.attendance[rec.ID] = stored
	return nil
}

var matchKeys = []string{"match_method", "match_confidence", "match_score"}

func keepMatch(existing, incoming domain.Metadata) domain.Metadata {
	if _, ok := existing["match_method"]; !ok {
		return incoming
	}
	out := clone(incoming)
	for _, k := range matchKeys {
		delete(out, k)
		if v, ok := existing[k]; ok {
			out[k] = v
		}
	}
	return out
}

func (s *AttendanceStore) ListByMeeting(_ context.Context, meetingID int64) ([]domain.AttendanceRecord, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []domain.AttendanceRecord
	for _, r := range s.db.attendance {
		if r.MeetingID == meetingID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type SessionStore struct {
	db *DB
}

func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Upsert keys sessions by platform participant. An existing match is never
// cleared by a later unmatched write, and while the linked user stays the
// same the first accepted method and confidence are kept.
func (s *SessionStore) Upsert(_ context.Context, ps *domain.ParticipantSession) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for id, existing := range s.db.sessions {
		if existing.MeetingID != ps.MeetingID || existing.PlatformParticipantID != ps.PlatformParticipantID {
			continue
		}
		ps.ID = id
		ps.ParticipantID = existing.ParticipantID
		ps.SessionToken = existing.SessionToken
		if existing.UserID != nil && (ps.UserID == nil || *ps.UserID == *existing.UserID) {
			ps.UserID = existing.UserID
			ps.MatchMethod = existing.MatchMethod
			ps.MatchConfidence = existing.MatchConfidence
		}
		ps.SyncStatus = sessionStatus(ps.UserID)
		s.db.sessions[id] = *ps
		return nil
	}

	ps.ID = s.db.id()
	if ps.ParticipantID == uuid.Nil {
		ps.ParticipantID = uuid.New()
	}
	if ps.SessionToken == uuid.Nil {
		ps.SessionToken = uuid.New()
	}
	ps.SyncStatus = sessionStatus(ps.UserID)
	s.db.sessions[ps.ID] = *ps
	return nil
}

func (s *SessionStore) MatchedUserID(_ context.Context, meetingID int64, platformParticipantID, platformUserID string) (int64, bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var best *domain.ParticipantSession
	for _, ps := range s.db.sessions {
		if ps.MeetingID != meetingID || ps.UserID == nil {
			continue
		}
		hit := (platformParticipantID != "" && ps.PlatformParticipantID == platformParticipantID) ||
			(platformUserID != "" && ps.PlatformUserID != nil && *ps.PlatformUserID == platformUserID)
		if hit && (best == nil || ps.ID < best.ID) {
			ps := ps
			best = &ps
		}
	}
	if best == nil {
		return 0, false, nil
	}
	return *best.UserID, true, nil
}

func (s *SessionStore) ListUnmatched(_ context.Context, meetingID int64) ([]domain.ParticipantSession, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []domain.ParticipantSession
	for _, ps := range s.db.sessions {
		if ps.MeetingID == meetingID && ps.UserID == nil {
			out = append(out, ps)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *SessionStore) AttachUser(_ context.Context, id, userID int64, method domain.MatchMethod, conf domain.Confidence) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	ps, ok := s.db.sessions[id]
	if !ok || ps.UserID != nil {
		return false, nil
	}
	ps.UserID = &userID
	ps.MatchMethod = method
	ps.MatchConfidence = conf
	ps.SyncStatus = domain.SessionMatched
	s.db.sessions[id] = ps
	return true, nil
}

func (s *SessionStore) ListByMeeting(_ context.Context, meetingID int64) ([]domain.ParticipantSession, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []domain.ParticipantSession
	for _, ps := range s.db.sessions {
		if ps.MeetingID == meetingID {
			out = append(out, ps)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func sessionStatus(userID *int64) domain.SessionStatus {
	if userID != nil {
		return domain.SessionMatched
	}
	return domain.SessionUnmatched
}

type ChatStore struct {
	db *DB
}

func NewChatStore(db *DB) *ChatStore {
	return &ChatStore{db: db}
}

// Upsert dedups on (meeting, content hash) and only fills an empty sender.
func (s *ChatStore) Upsert(_ context.Context, msg *domain.ChatMessage) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for id, existing := range s.db.chat {
		if existing.MeetingID != msg.MeetingID || existing.ContentHash != msg.ContentHash {
			continue
		}
		msg.ID = id
		if existing.SenderID != nil {
			msg.SenderID = existing.SenderID
			msg.Metadata = existing.Metadata
		}
		if existing.SentAt != nil {
			msg.SentAt = existing.SentAt
		}
		stored := *msg
		stored.Metadata = clone(msg.Metadata)
		s.db.chat[id] = stored
		return nil
	}
	msg.ID = s.db.id()
	stored := *msg
	stored.Metadata = clone(msg.Metadata)
	s.db.chat[msg.ID] = stored
	return nil
}

func (s *ChatStore) ListUnmatched(_ context.Context, meetingID int64) ([]domain.ChatMessage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []domain.ChatMessage
	for _, m := range s.db.chat {
		if m.MeetingID == meetingID && m.SenderID == nil && m.MessageType != domain.MessageSystem {
			m.Metadata = clone(m.Metadata)
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *ChatStore) AssignSender(_ context.Context, id, senderID int64, md domain.Metadata) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	m, ok := s.db.chat[id]
	if !ok || m.SenderID != nil {
		return false, nil
	}
	m.SenderID = &senderID
	m.Metadata = clone(md)
	s.db.chat[id] = m
	return true, nil
}

func (s *ChatStore) ListByMeeting(_ context.Context, meetingID int64) ([]domain.ChatMessage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []domain.ChatMessage
	for _, m := range s.db.chat {
		if m.MeetingID == meetingID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type RecordingStore struct {
	db *DB
}

func NewRecordingStore(db *DB) *RecordingStore {
	return &RecordingStore{db: db}
}

func (s *RecordingStore) Upsert(_ context.Context, r *domain.Recording) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for id, existing := range s.db.recordings {
		if existing.MeetingID == r.MeetingID && existing.PlatformRecordingID == r.PlatformRecordingID {
			r.ID = id
			s.db.recordings[id] = *r
			return nil
		}
	}
	r.ID = s.db.id()
	s.db.recordings[r.ID] = *r
	return nil
}

func (s *RecordingStore) ListByMeeting(_ context.Context, meetingID int64) ([]domain.Recording, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []domain.Recording
	for _, r := range s.db.recordings {
		if r.MeetingID == meetingID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type FileStore struct {
	db *DB
}

func NewFileStore(db *DB) *FileStore {
	return &FileStore{db: db}
}

// Upsert keys files by (meeting, filename, sharer). Platform-listed files
// keep their source when chat mentions them again.
func (s *FileStore) Upsert(_ context.Context, f *domain.SharedFile) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for id, existing := range s.db.files {
		if existing.MeetingID != f.MeetingID || existing.Filename != f.Filename || existing.SharedByName != f.SharedByName {
			continue
		}
		f.ID = id
		if f.SharedByID == nil {
			f.SharedByID = existing.SharedByID
		}
		if f.FileURL == nil {
			f.FileURL = existing.FileURL
		}
		if f.ContentType == nil {
			f.ContentType = existing.ContentType
		}
		f.FileSizeBytes = max(f.FileSizeBytes, existing.FileSizeBytes)
		if existing.Source == domain.FileFromPlatform {
			f.Source = domain.FileFromPlatform
		}
		s.db.files[id] = *f
		return nil
	}
	f.ID = s.db.id()
	s.db.files[f.ID] = *f
	return nil
}

func (s *FileStore) ListByMeeting(_ context.Context, meetingID int64) ([]domain.SharedFile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []domain.SharedFile
	for _, f := range s.db.files {
		if f.MeetingID == meetingID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
