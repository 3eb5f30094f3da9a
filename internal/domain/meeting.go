package domain

import "time"

type Platform string

const (
	PlatformZoom  Platform = "zoom"
	PlatformTeams Platform = "teams"
)

func (p Platform) Valid() bool {
	return p == PlatformZoom || p == PlatformTeams
}

type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingStarted   MeetingStatus = "started"
	MeetingEnded     MeetingStatus = "ended"
	MeetingCancelled MeetingStatus = "cancelled"
)

// SyncStatus is the meeting-level sync state. Only the orchestrator writes it.
type SyncStatus string

const (
	SyncPending    SyncStatus = "pending"
	SyncInProgress SyncStatus = "in_progress"
	SyncCompleted  SyncStatus = "completed"
	SyncFailed     SyncStatus = "failed"
)

type Meeting struct {
	ID                int64         `db:"id"`
	Title             string        `db:"title"`
	Platform          Platform      `db:"platform"`
	PlatformMeetingID *string       `db:"platform_meeting_id"`
	JoinURL           *string       `db:"join_url"`
	OrgUnitID         int64         `db:"org_unit_id"`
	CreatorID         int64         `db:"creator_id"`
	OrganizerEmail    *string       `db:"organizer_email"`
	Status            MeetingStatus `db:"meeting_status"`
	SyncStatus        SyncStatus    `db:"sync_status"`
	LastSyncAt        *time.Time    `db:"last_sync_at"`
	ScheduledStart    time.Time     `db:"scheduled_start"`
	ScheduledEnd      *time.Time    `db:"scheduled_end"`
	CreatedAt         time.Time     `db:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at"`
}

// HasReference reports whether the meeting is linked to a platform meeting.
func (m *Meeting) HasReference() bool {
	return m.PlatformMeetingID != nil && *m.PlatformMeetingID != ""
}

// HasOccurred is false for meetings that are still scheduled or were cancelled.
func (m *Meeting) HasOccurred() bool {
	return m.Status == MeetingStarted || m.Status == MeetingEnded
}

func (m *Meeting) Ref() MeetingRef {
	ref := MeetingRef{
		MeetingID:      m.ID,
		Platform:       m.Platform,
		OrgUnitID:      m.OrgUnitID,
		CreatorID:      m.CreatorID,
		ScheduledStart: m.ScheduledStart,
	}
	if m.PlatformMeetingID != nil {
		ref.PlatformMeetingID = *m.PlatformMeetingID
	}
	if m.OrganizerEmail != nil {
		ref.OrganizerEmail = *m.OrganizerEmail
	}
	return ref
}

// MeetingRef is the platform-facing view of a meeting handed to adapters.
type MeetingRef struct {
	MeetingID         int64
	Platform          Platform
	PlatformMeetingID string
	OrgUnitID         int64
	CreatorID         int64
	OrganizerEmail    string
	ScheduledStart    time.Time
}

// MeetingSlot is an additional scheduled occurrence with its own platform meeting.
type MeetingSlot struct {
	ID                int64     `db:"id"`
	MeetingID         int64     `db:"meeting_id"`
	StartsAt          time.Time `db:"starts_at"`
	PlatformMeetingID string    `db:"platform_meeting_id"`
}

type Role string

const (
	RoleLearner    Role = "learner"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID        int64  `db:"id"`
	Username  string `db:"username"`
	Email     string `db:"email"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Role      Role   `db:"role"`
	OrgUnitID int64  `db:"org_unit_id"`
	IsActive  bool   `db:"is_active"`
}

func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type CredentialScope string

const (
	ScopeOrgUnit    CredentialScope = "org_unit"
	ScopeIndividual CredentialScope = "individual"
	ScopeFallback   CredentialScope = "fallback"
)

// Credential is read-only during a run. Optional fields are nil when unset.
type Credential struct {
	ID                  int64           `db:"id"`
	Platform            Platform        `db:"platform"`
	Scope               CredentialScope `db:"scope"`
	OrgUnitID           *int64          `db:"org_unit_id"`
	OwnerUserID         *int64          `db:"owner_user_id"`
	ClientID            string          `db:"client_id"`
	ClientSecret        string          `db:"client_secret"`
	AccountID           *string         `db:"account_id"`
	TenantID            *string         `db:"tenant_id"`
	ServiceAccountEmail *string         `db:"service_account_email"`
	IsActive            bool            `db:"is_active"`
	Priority            int             `db:"priority"`
}
