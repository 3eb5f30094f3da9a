package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type SyncType string

const (
	SyncFull       SyncType = "full"
	SyncAttendance SyncType = "attendance"
	SyncRecordings SyncType = "recordings"
	SyncChat       SyncType = "chat"
	SyncFiles      SyncType = "files"
)

// DataDomain is one independently synced kind of meeting artifact.
type DataDomain string

const (
	DomainAttendance DataDomain = "attendance"
	DomainRecordings DataDomain = "recordings"
	DomainChat       DataDomain = "chat"
	DomainFiles      DataDomain = "files"
)

var AllDomains = []DataDomain{DomainAttendance, DomainRecordings, DomainChat, DomainFiles}

func ParseSyncType(s string) (SyncType, error) {
	switch t := SyncType(s); t {
	case "":
		return SyncFull, nil
	case SyncFull, SyncAttendance, SyncRecordings, SyncChat, SyncFiles:
		return t, nil
	}
	return "", fmt.Errorf("unknown sync type %q", s)
}

// Domains lists the domains a run of this type covers, in processing order.
func (t SyncType) Domains() []DataDomain {
	if t == SyncFull || t == "" {
		return AllDomains
	}
	return []DataDomain{DataDomain(t)}
}

type RunStatus string

const (
	RunStarted   RunStatus = "started"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunPartial   RunStatus = "partial"
)

// MeetingSyncStatusFor maps the outcome of the latest run to the meeting's sync status.
func MeetingSyncStatusFor(s RunStatus) SyncStatus {
	switch s {
	case RunCompleted, RunPartial:
		return SyncCompleted
	case RunStarted:
		return SyncInProgress
	}
	return SyncFailed
}

// DomainResult is the outcome of fetching and normalizing one domain.
type DomainResult struct {
	Domain         DataDomain `json:"domain"`
	Success        bool       `json:"success"`
	NoData         bool       `json:"no_data,omitempty"`
	ItemsProcessed int        `json:"items_processed"`
	ItemsFailed    int        `json:"items_failed"`
	Attempts       int        `json:"attempts,omitempty"`
	Error          string     `json:"error,omitempty"`
	ErrorKind      Kind       `json:"error_kind,omitempty"`
	Hint           string     `json:"hint,omitempty"`
}

// Fail marks the result failed with err, keeping counts already collected.
func (r *DomainResult) Fail(err error) {
	r.Success = false
	r.Error = err.Error()
	r.ErrorKind = KindOf(err)
	r.Hint = HintOf(err)
}

// DomainResults is stored as jsonb on the sync run.
type DomainResults []DomainResult

func (d DomainResults) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

func (d *DomainResults) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan domain results: unsupported type %T", src)
	}
	return json.Unmarshal(data, d)
}

// SyncRun is an append-only log row for one orchestration attempt.
type SyncRun struct {
	ID             int64         `db:"id"`
	MeetingID      int64         `db:"meeting_id"`
	SyncType       SyncType      `db:"sync_type"`
	Status         RunStatus     `db:"status"`
	ItemsProcessed int           `db:"items_processed"`
	ItemsFailed    int           `db:"items_failed"`
	DurationMs     int64         `db:"duration_ms"`
	ErrorMessage   *string       `db:"error_message"`
	Details        DomainResults `db:"details"`
	StartedAt      time.Time     `db:"started_at"`
	CompletedAt    *time.Time    `db:"completed_at"`
}

// Failure reasons reported alongside a failed run.
const (
	ReasonAuth         = "failed_auth"
	ReasonTimeout      = "timeout"
	ReasonPrecondition = "precondition_missing"
	ReasonNoData       = "no_data"
)

// SyncResult is returned to whoever triggered a run.
type SyncResult struct {
	RunID          int64          `json:"run_id,omitempty"`
	MeetingID      int64          `json:"meeting_id"`
	Success        bool           `json:"success"`
	Skipped        bool           `json:"skipped,omitempty"`
	Status         RunStatus      `json:"status,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	ItemsProcessed int            `json:"items_processed"`
	ItemsFailed    int            `json:"items_failed"`
	Domains        []DomainResult `json:"per_domain_detail"`
	Message        string         `json:"message"`
	Duration       time.Duration  `json:"-"`
}

// SyncTask is the queued form of a sync request.
type SyncTask struct {
	MeetingID   int64     `json:"meeting_id"`
	SyncType    SyncType  `json:"sync_type"`
	RequestedAt time.Time `json:"requested_at"`
	Origin      string    `json:"origin"`
}

// RunCompletedEvent is published after every finished run.
type RunCompletedEvent struct {
	RunID          int64     `json:"run_id"`
	MeetingID      int64     `json:"meeting_id"`
	SyncType       SyncType  `json:"sync_type"`
	Status         RunStatus `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	ItemsProcessed int       `json:"items_processed"`
	ItemsFailed    int       `json:"items_failed"`
	CompletedAt    time.Time `json:"completed_at"`
}
