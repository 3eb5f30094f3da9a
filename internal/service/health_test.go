package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"meeting_sync/internal/config"
	"meeting_sync/internal/domain"
	"meeting_sync/internal/service/mocks"
	"meeting_sync/internal/storage/memory"
	"meeting_sync/internal/testutil"
)

// storeFixture seeds the in-memory stores the health checker reads.
type storeFixture struct {
	db         *memory.DB
	meetings   *memory.MeetingStore
	runs       *memory.SyncRunStore
	stats      *memory.StatsStore
	sessions   *memory.SessionStore
	chat       *memory.ChatStore
	recordings *memory.RecordingStore
	attendance *memory.AttendanceStore
}

func newStoreFixture() *storeFixture {
	db := memory.NewDB()
	return &storeFixture{
		db:         db,
		meetings:   memory.NewMeetingStore(db),
		runs:       memory.NewSyncRunStore(db),
		stats:      memory.NewStatsStore(db),
		sessions:   memory.NewSessionStore(db),
		chat:       memory.NewChatStore(db),
		recordings: memory.NewRecordingStore(db),
		attendance: memory.NewAttendanceStore(db),
	}
}

func (f *storeFixture) meeting(t *testing.T, synced *time.Time) *domain.Meeting {
	t.Helper()
	m := &domain.Meeting{
		Title:             "Week 3 seminar",
		Platform:          domain.PlatformZoom,
		PlatformMeetingID: testutil.Ptr("85012345678"),
		OrgUnitID:         10,
		CreatorID:         1,
		Status:            domain.MeetingEnded,
		ScheduledStart:    time.Now().Add(-3 * time.Hour),
	}
	if _, err := f.meetings.Create(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	if synced != nil {
		if err := f.meetings.FinishSync(context.Background(), m.ID, domain.SyncCompleted, *synced); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func (f *storeFixture) run(t *testing.T, meetingID int64, status domain.RunStatus, msg string) {
	t.Helper()
	ctx := context.Background()
	run := &domain.SyncRun{MeetingID: meetingID, SyncType: domain.SyncFull, Status: domain.RunStarted, StartedAt: time.Now()}
	if _, err := f.runs.Start(ctx, run); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	run.Status = status
	run.CompletedAt = &now
	if msg != "" {
		run.ErrorMessage = &msg
	}
	if err := f.runs.Complete(ctx, run); err != nil {
		t.Fatal(err)
	}
}

func (f *storeFixture) guest(t *testing.T, meetingID int64) *domain.ParticipantSession {
	t.Helper()
	ps := &domain.ParticipantSession{MeetingID: meetingID, PlatformParticipantID: "guest-1", DisplayName: "Jon Doe"}
	if err := f.sessions.Upsert(context.Background(), ps); err != nil {
		t.Fatal(err)
	}
	return ps
}

func (f *storeFixture) anonymousMessage(t *testing.T, meetingID int64) *domain.ChatMessage {
	t.Helper()
	msg := &domain.ChatMessage{
		MeetingID:   meetingID,
		ContentHash: domain.ChatContentHash("Jon Doe", "can you share the slides?"),
		SenderName:  "Jon Doe",
		MessageText: "can you share the slides?",
		MessageType: domain.MessageText,
	}
	if err := f.chat.Upsert(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

type HealthCheckerTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	fx      *storeFixture
	cache   *mocks.MockReportCache
	checker *HealthChecker
}

func (s *HealthCheckerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.fx = newStoreFixture()
	s.cache = mocks.NewMockReportCache(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.checker = NewHealthChecker(s.fx.meetings, s.fx.runs, s.fx.stats, s.cache, logger, config.HealthConfig{
		StaleAfter:     24 * time.Hour,
		WarningIssues:  1,
		CriticalIssues: 3,
		RecentDays:     7,
		RecentLimit:    50,
	})
}

func (s *HealthCheckerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestHealthCheckerTestSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckerTestSuite))
}

func (s *HealthCheckerTestSuite) TestCheckMeeting_Healthy() {
	ctx := context.Background()
	m := s.fx.meeting(s.T(), testutil.Ptr(time.Now().Add(-time.Hour)))
	s.fx.run(s.T(), m.ID, domain.RunCompleted, "")

	s.cache.EXPECT().GetReport(ctx, m.ID).Return(nil, nil)
	s.cache.EXPECT().SetReport(ctx, gomock.Any()).Return(nil)

	report, err := s.checker.CheckMeeting(ctx, m.ID)

	s.Require().NoError(err)
	s.Equal(domain.HealthHealthy, report.Status)
	s.Empty(report.Issues)
	s.Empty(report.Recommendations)
	s.NotNil(report.LastSyncAt)
}

func (s *HealthCheckerTestSuite) TestCheckMeeting_ServedFromCache() {
	ctx := context.Background()
	cached := &domain.HealthReport{MeetingID: 999, Status: domain.HealthWarning}
	s.cache.EXPECT().GetReport(ctx, int64(999)).Return(cached, nil)

	report, err := s.checker.CheckMeeting(ctx, 999)

	s.Require().NoError(err)
	s.Same(cached, report)
}

func (s *HealthCheckerTestSuite) TestCheckMeeting_CacheErrorFallsBackToStores() {
	ctx := context.Background()
	m := s.fx.meeting(s.T(), nil)

	s.cache.EXPECT().GetReport(ctx, m.ID).Return(nil, errors.New("redis down"))
	s.cache.EXPECT().SetReport(ctx, gomock.Any()).Return(errors.New("redis down"))

	report, err := s.checker.CheckMeeting(ctx, m.ID)

	s.Require().NoError(err)
	s.Equal(domain.HealthWarning, report.Status)
	s.True(report.Has(domain.IssueStaleSync))
}

func (s *HealthCheckerTestSuite) TestDiagnose_ReportsEveryIssue() {
	ctx := context.Background()
	m := s.fx.meeting(s.T(), testutil.Ptr(time.Now().Add(-48*time.Hour)))
	s.fx.run(s.T(), m.ID, domain.RunFailed, "platform authentication failed")
	s.fx.guest(s.T(), m.ID)
	s.fx.anonymousMessage(s.T(), m.ID)

	s.Require().NoError(s.fx.recordings.Upsert(ctx, &domain.Recording{
		MeetingID:           m.ID,
		PlatformRecordingID: "chat-1",
		RecordingType:       "chat_file",
		FileURL:             testutil.Ptr("https://zoom.us/rec/chat"),
		Status:              domain.RecordingAvailable,
	}))
	s.Require().NoError(s.fx.attendance.Upsert(ctx, &domain.AttendanceRecord{
		MeetingID:  m.ID,
		UserID:     5,
		Status:     domain.AttendancePresent,
		DeviceInfo: domain.Metadata{"match_method": "name_pattern_initial", "match_confidence": "pattern"},
	}))

	report, err := s.checker.Diagnose(ctx, m.ID)

	s.Require().NoError(err)
	s.Equal(domain.HealthCritical, report.Status)
	for _, code := range []domain.IssueCode{
		domain.IssueStaleSync,
		domain.IssueLastRunFailed,
		domain.IssueRecordingsHidden,
		domain.IssueUnmatchedChat,
		domain.IssueUnmatchedParticipant,
		domain.IssueLowConfidence,
	} {
		s.True(report.Has(code), code)
	}
	s.Len(report.Recommendations, len(report.Issues))
	s.Equal(1, report.Stats.LowConfidence)
	s.Equal(0, report.Stats.VisibleRecordings)
}

func (s *HealthCheckerTestSuite) TestDiagnose_ScheduledMeetingIsNotStale() {
	ctx := context.Background()
	m := s.fx.meeting(s.T(), nil)
	m.Status = domain.MeetingScheduled
	s.Require().NoError(s.fx.meetings.Delete(ctx, m.ID))
	_, err := s.fx.meetings.Create(ctx, m)
	s.Require().NoError(err)

	report, err := s.checker.Diagnose(ctx, m.ID)

	s.Require().NoError(err)
	s.Equal(domain.HealthHealthy, report.Status)
}

func (s *HealthCheckerTestSuite) TestDiagnose_MissingMeeting() {
	_, err := s.checker.Diagnose(context.Background(), 404)
	s.ErrorIs(err, domain.ErrMeetingNotFound)
}

func (s *HealthCheckerTestSuite) TestCheckSystem_Buckets() {
	ctx := context.Background()
	healthy := s.fx.meeting(s.T(), testutil.Ptr(time.Now()))
	broken := s.fx.meeting(s.T(), nil)
	s.fx.run(s.T(), broken.ID, domain.RunFailed, "sync mostly failed")
	s.fx.guest(s.T(), broken.ID)

	s.cache.EXPECT().GetReport(ctx, gomock.Any()).Return(nil, nil).Times(2)
	s.cache.EXPECT().SetReport(ctx, gomock.Any()).Return(nil).Times(2)

	sys, err := s.checker.CheckSystem(ctx)

	s.Require().NoError(err)
	s.Equal(2, sys.Total)
	s.Equal(1, sys.Healthy)
	s.Equal(1, sys.Critical)
	s.Equal(domain.HealthCritical, sys.Status)
	s.Len(sys.Meetings, 2)

	ids := []int64{sys.Meetings[0].MeetingID, sys.Meetings[1].MeetingID}
	s.ElementsMatch([]int64{healthy.ID, broken.ID}, ids)
}
