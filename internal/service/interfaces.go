package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"meeting_sync/internal/domain"
)

type MeetingStore interface {
	Get(ctx context.Context, id int64) (*domain.Meeting, error)
	TryBeginSync(ctx context.Context, id int64, leaseTTL time.Duration) (bool, error)
	FinishSync(ctx context.Context, id int64, status domain.SyncStatus, at time.Time) error
	ReleaseSync(ctx context.Context, id int64, status domain.SyncStatus) error
	ListSlots(ctx context.Context, meetingID int64) ([]domain.MeetingSlot, error)
	ListRecent(ctx context.Context, since time.Time, limit int) ([]domain.Meeting, error)
	Delete(ctx context.Context, id int64) error
}

type SyncRunStore interface {
	Start(ctx context.Context, run *domain.SyncRun) (int64, error)
	Complete(ctx context.Context, run *domain.SyncRun) error
	Latest(ctx context.Context, meetingID int64) (*domain.SyncRun, error)
}

type StatsStore interface {
	MeetingStats(ctx context.Context, meetingID int64) (*domain.MeetingStats, error)
}

type CredentialResolver interface {
	Resolve(ctx context.Context, platform domain.Platform, orgUnitID, ownerID int64) (*domain.Credential, error)
}

// Source fetches post-meeting artifacts from one conferencing platform.
type Source interface {
	Platform() domain.Platform
	FetchAttendance(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) ([]domain.RawParticipant, error)
	FetchRecordings(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) ([]domain.RawRecording, error)
	FetchChat(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) ([]domain.RawChatLine, error)
	FetchFiles(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) ([]domain.RawFile, error)
	DeleteMeeting(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) error
}

// Pipeline normalizes and stores fetched data.
type Pipeline interface {
	Attendance(ctx context.Context, meeting *domain.Meeting, raws []domain.RawParticipant) domain.DomainResult
	Recordings(ctx context.Context, meeting *domain.Meeting, raws []domain.RawRecording) domain.DomainResult
	Chat(ctx context.Context, meeting *domain.Meeting, lines []domain.RawChatLine) domain.DomainResult
	Files(ctx context.Context, meeting *domain.Meeting, raws []domain.RawFile) domain.DomainResult
	RematchGuests(ctx context.Context, meeting *domain.Meeting) domain.DomainResult
	RematchChat(ctx context.Context, meeting *domain.Meeting) domain.DomainResult
}

// StorageGuard runs a persistence write, retrying lost connections.
type StorageGuard interface {
	Run(ctx context.Context, op string, fn func(ctx context.Context) error) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	PublishRunCompleted(ctx context.Context, event *domain.RunCompletedEvent) error
}

// ReportCache holds computed health reports. A miss returns nil, nil.
type ReportCache interface {
	GetReport(ctx context.Context, meetingID int64) (*domain.HealthReport, error)
	SetReport(ctx context.Context, report *domain.HealthReport) error
	Invalidate(ctx context.Context, meetingID int64) error
}

type CacheInvalidator interface {
	Invalidate()
}

// Syncer runs a sync for one meeting.
type Syncer interface {
	SyncMeeting(ctx context.Context, meetingID int64, syncType domain.SyncType) (*domain.SyncResult, error)
}
