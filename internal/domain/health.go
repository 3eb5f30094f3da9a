package domain

import "time"

type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"
)

type IssueCode string

const (
	IssueStaleSync            IssueCode = "stale_sync"
	IssueLastRunFailed        IssueCode = "last_run_failed"
	IssueRecordingsHidden     IssueCode = "recordings_hidden"
	IssueUnmatchedChat        IssueCode = "unmatched_chat"
	IssueUnmatchedParticipant IssueCode = "unmatched_participants"
	IssueLowConfidence        IssueCode = "low_confidence_matches"
)

type Issue struct {
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
}

// MeetingStats are the counts the health checker reasons about.
type MeetingStats struct {
	Attendance        int `db:"attendance" json:"attendance"`
	LowConfidence     int `db:"low_confidence" json:"low_confidence"`
	Sessions          int `db:"sessions" json:"sessions"`
	UnmatchedSessions int `db:"unmatched_sessions" json:"unmatched_sessions"`
	ChatMessages      int `db:"chat_messages" json:"chat_messages"`
	UnmatchedChat     int `db:"unmatched_chat" json:"unmatched_chat"`
	Recordings        int `db:"recordings" json:"recordings"`
	VisibleRecordings int `db:"visible_recordings" json:"visible_recordings"`
	Files             int `db:"files" json:"files"`
}

type HealthReport struct {
	MeetingID       int64        `json:"meeting_id"`
	Status          HealthStatus `json:"status"`
	Issues          []Issue      `json:"issues"`
	Recommendations []string     `json:"recommendations"`
	Stats           MeetingStats `json:"stats"`
	LastSyncAt      *time.Time   `json:"last_sync_at,omitempty"`
	CheckedAt       time.Time    `json:"checked_at"`
}

func (r *HealthReport) Has(code IssueCode) bool {
	for _, i := range r.Issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

type SystemHealth struct {
	Status    HealthStatus   `json:"status"`
	Total     int            `json:"total"`
	Healthy   int            `json:"healthy"`
	Warning   int            `json:"warning"`
	Critical  int            `json:"critical"`
	Meetings  []HealthReport `json:"meetings"`
	CheckedAt time.Time      `json:"checked_at"`
}

type RecoveryAction struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

type RecoveryReport struct {
	MeetingID int64            `json:"meeting_id"`
	Before    *HealthReport    `json:"before"`
	After     *HealthReport    `json:"after"`
	Actions   []RecoveryAction `json:"actions"`
}

func (r *RecoveryReport) Succeeded() bool {
	for _, a := range r.Actions {
		if !a.Success {
			return false
		}
	}
	return true
}
