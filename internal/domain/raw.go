package domain

import "time"

// Raw types are platform payloads already decoded by an adapter but not yet
// normalized or matched to users.

type RawParticipant struct {
	ParticipantID   string
	UserID          string
	Name            string
	Email           string
	JoinTime        time.Time
	LeaveTime       time.Time
	DurationSeconds int
	Device          string
}

type RawRecording struct {
	RecordingID     string
	Type            string
	FileURL         string
	DownloadURL     string
	Status          RecordingStatus
	FileSize        int64
	DurationSeconds int
	StartedAt       time.Time
}

type RawChatLine struct {
	MessageID   string
	SenderName  string
	SenderEmail string
	SenderID    string
	Text        string
	System      bool
	SentAt      time.Time
	Attachments []RawFile
}

type RawFile struct {
	FileID        string
	Name          string
	URL           string
	ContentType   string
	Size          int64
	SharedByName  string
	SharedByEmail string
	SharedAt      time.Time
}
