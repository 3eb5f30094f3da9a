package domain

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Metadata is a free-form jsonb bag.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan metadata: unsupported type %T", src)
	}
	out := Metadata{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan metadata: %w", err)
	}
	*m = out
	return nil
}

func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

type AttendanceStatus string

const (
	AttendancePresent   AttendanceStatus = "present"
	AttendanceAbsent    AttendanceStatus = "absent"
	AttendanceLate      AttendanceStatus = "late"
	AttendanceLeftEarly AttendanceStatus = "left_early"
)

type AttendanceRecord struct {
	ID              int64            `db:"id"`
	MeetingID       int64            `db:"meeting_id"`
	UserID          int64            `db:"user_id"`
	JoinTime        *time.Time       `db:"join_time"`
	LeaveTime       *time.Time       `db:"leave_time"`
	DurationSeconds int              `db:"duration_seconds"`
	Status          AttendanceStatus `db:"status"`
	DeviceInfo      Metadata         `db:"device_info"`
	CreatedAt       time.Time        `db:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at"`
}

type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionMatched   SessionStatus = "matched"
	SessionUnmatched SessionStatus = "unmatched"
)

// ParticipantSession tracks one platform participant in a meeting. Sessions
// without a user are guests.
type ParticipantSession struct {
	ID                    int64         `db:"id"`
	MeetingID             int64         `db:"meeting_id"`
	ParticipantID         uuid.UUID     `db:"participant_id"`
	SessionToken          uuid.UUID     `db:"session_token"`
	PlatformParticipantID string        `db:"platform_participant_id"`
	PlatformUserID        *string       `db:"platform_user_id"`
	UserID                *int64        `db:"user_id"`
	DisplayName           string        `db:"display_name"`
	Email                 *string       `db:"email"`
	JoinedAt              *time.Time    `db:"joined_at"`
	LeftAt                *time.Time    `db:"left_at"`
	SyncStatus            SessionStatus `db:"sync_status"`
	MatchMethod           MatchMethod   `db:"match_method"`
	MatchConfidence       Confidence    `db:"match_confidence"`
}

type MessageType string

const (
	MessageText   MessageType = "text"
	MessageFile   MessageType = "file"
	MessageSystem MessageType = "system"
)

type ChatMessage struct {
	ID          int64       `db:"id"`
	MeetingID   int64       `db:"meeting_id"`
	ContentHash string      `db:"content_hash"`
	SenderName  string      `db:"sender_name"`
	SenderID    *int64      `db:"sender_id"`
	MessageText string      `db:"message_text"`
	MessageType MessageType `db:"message_type"`
	SentAt      *time.Time  `db:"sent_at"`
	Metadata    Metadata    `db:"metadata"`
}

// ChatContentHash is the dedup key of a chat message within a meeting.
func ChatContentHash(senderName, text string) string {
	h := sha256.New()
	h.Write([]byte(senderName))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

type RecordingStatus string

const (
	RecordingProcessing RecordingStatus = "processing"
	RecordingAvailable  RecordingStatus = "available"
	RecordingExpired    RecordingStatus = "expired"
	RecordingDeleted    RecordingStatus = "deleted"
)

// NonPlayableRecordingTypes are recording artifacts that are never shown in the player.
var NonPlayableRecordingTypes = []string{
	"chat_file",
	"chat",
	"timeline",
	"transcript",
	"closed_caption",
	"summary",
}

type Recording struct {
	ID                  int64           `db:"id"`
	MeetingID           int64           `db:"meeting_id"`
	PlatformRecordingID string          `db:"platform_recording_id"`
	RecordingType       string          `db:"recording_type"`
	FileURL             *string         `db:"file_url"`
	DownloadURL         *string         `db:"download_url"`
	DurationSeconds     int             `db:"duration_seconds"`
	FileSizeBytes       int64           `db:"file_size_bytes"`
	Status              RecordingStatus `db:"status"`
	RecordedAt          *time.Time      `db:"recorded_at"`
}

func (r *Recording) Visible() bool {
	if r.Status != RecordingAvailable || r.FileURL == nil || *r.FileURL == "" {
		return false
	}
	for _, t := range NonPlayableRecordingTypes {
		if r.RecordingType == t {
			return false
		}
	}
	return true
}

type FileSource string

const (
	FileFromPlatform FileSource = "platform"
	FileFromChat     FileSource = "chat"
)

type SharedFile struct {
	ID            int64      `db:"id"`
	MeetingID     int64      `db:"meeting_id"`
	Filename      string     `db:"filename"`
	SharedByName  string     `db:"shared_by_name"`
	SharedByID    *int64     `db:"shared_by_id"`
	FileURL       *string    `db:"file_url"`
	FileSizeBytes int64      `db:"file_size_bytes"`
	ContentType   *string    `db:"content_type"`
	Source        FileSource `db:"source"`
	SharedAt      *time.Time `db:"shared_at"`
}
