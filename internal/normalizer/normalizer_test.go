package normalizer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"meeting_sync/internal/domain"
	"meeting_sync/internal/identity"
	"meeting_sync/internal/resilience"
	"meeting_sync/internal/storage/memory"
	"meeting_sync/internal/testutil"
)

var start = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return start.Add(time.Duration(minutes) * time.Minute)
}

type NormalizerTestSuite struct {
	suite.Suite
	ctx        context.Context
	db         *memory.DB
	users      *memory.UserStore
	sessions   *memory.SessionStore
	attendance *memory.AttendanceStore
	chat       *memory.ChatStore
	files      *memory.FileStore
	recordings *memory.RecordingStore
	resolver   *identity.Resolver
	norm       *Normalizer
	meeting    *domain.Meeting
	logger     *slog.Logger
}

func TestNormalizerTestSuite(t *testing.T) {
	suite.Run(t, new(NormalizerTestSuite))
}

func (s *NormalizerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.db = memory.NewDB()
	s.users = memory.NewUserStore(s.db)
	s.sessions = memory.NewSessionStore(s.db)
	s.attendance = memory.NewAttendanceStore(s.db)
	s.chat = memory.NewChatStore(s.db)
	s.files = memory.NewFileStore(s.db)
	s.recordings = memory.NewRecordingStore(s.db)

	for _, u := range []domain.User{
		{ID: 1, Username: "phost", FirstName: "Pat", LastName: "Host", Role: domain.RoleInstructor},
		{ID: 2, Username: "jdoe", FirstName: "John", LastName: "Doe", Email: "john.doe@school.test", Role: domain.RoleLearner},
		{ID: 3, Username: "jsmith", FirstName: "Jane", LastName: "Smith", Role: domain.RoleLearner},
		{ID: 4, Username: "msmith", FirstName: "Mark", LastName: "Smith", Role: domain.RoleLearner},
		{ID: 5, Username: "abrown", FirstName: "Alex", LastName: "Brown", Role: domain.RoleLearner},
	} {
		u.OrgUnitID = 10
		u.IsActive = true
		s.users.Add(u)
	}

	end := at(60)
	s.meeting = &domain.Meeting{
		ID:                100,
		Platform:          domain.PlatformZoom,
		PlatformMeetingID: testutil.Ptr("855"),
		OrgUnitID:         10,
		CreatorID:         1,
		Status:            domain.MeetingEnded,
		ScheduledStart:    start,
		ScheduledEnd:      &end,
	}

	s.resolver = identity.NewResolver(s.users, s.sessions, identity.Config{}, s.logger)
	s.norm = s.newNormalizer(Stores{
		Attendance: s.attendance,
		Sessions:   s.sessions,
		Chat:       s.chat,
		Recordings: s.recordings,
		Files:      s.files,
	})
}

func (s *NormalizerTestSuite) newNormalizer(stores Stores) *Normalizer {
	guard := resilience.NewStorageGuard(s.db, resilience.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, s.logger)
	return New(s.resolver, stores, guard, Config{}, s.logger)
}

func (s *NormalizerTestSuite) participants() []domain.RawParticipant {
	return []domain.RawParticipant{
		{ParticipantID: "p1", Name: "Pat Host (Host)", JoinTime: at(-2), LeaveTime: at(60), DurationSeconds: 3720},
		{ParticipantID: "p2", Name: "Johnny", Email: "John.Doe@school.test", JoinTime: at(20), LeaveTime: at(30), DurationSeconds: 600},
		{ParticipantID: "p3", Name: "J. Smith", JoinTime: at(0), LeaveTime: at(30), DurationSeconds: 1800},
		{ParticipantID: "p4", Name: "Visitor 99", JoinTime: at(5), LeaveTime: at(55)},
		{ParticipantID: "p5", Name: "John Doe", JoinTime: at(35), LeaveTime: at(60), DurationSeconds: 1500, Device: "iOS"},
		{ParticipantID: "p6", Name: "Alex Brown", JoinTime: at(1), LeaveTime: at(1), DurationSeconds: 30},
	}
}

func (s *NormalizerTestSuite) attendanceByUser() map[int64]domain.AttendanceRecord {
	records, err := s.attendance.ListByMeeting(s.ctx, s.meeting.ID)
	s.Require().NoError(err)
	out := make(map[int64]domain.AttendanceRecord, len(records))
	for _, r := range records {
		out[r.UserID] = r
	}
	return out
}

func (s *NormalizerTestSuite) TestAttendance_ResolvesAndAggregates() {
	result := s.norm.Attendance(s.ctx, s.meeting, s.participants())

	s.True(result.Success)
	s.Equal(6, result.ItemsProcessed)
	s.Equal(0, result.ItemsFailed)

	records := s.attendanceByUser()
	s.Require().Len(records, 4)

	s.Equal(domain.AttendancePresent, records[1].Status)
	s.Equal(string(domain.MatchOrganizerName), records[1].DeviceInfo.String("match_method"))

	john := records[2]
	s.Equal(domain.AttendanceLate, john.Status)
	s.Equal(2100, john.DurationSeconds)
	s.Equal(at(20), *john.JoinTime)
	s.Equal(at(60), *john.LeaveTime)
	s.Equal(string(domain.ConfidenceExactEmail), john.DeviceInfo.String("match_confidence"))
	s.EqualValues(2, john.DeviceInfo["sessions"])

	jane := records[3]
	s.Equal(domain.AttendanceLeftEarly, jane.Status)
	s.Equal(string(domain.MatchPatternInitial), jane.DeviceInfo.String("match_method"))

	s.Equal(domain.AttendanceAbsent, records[5].Status)
	s.NotContains(records, int64(4))

	sessions, err := s.sessions.ListByMeeting(s.ctx, s.meeting.ID)
	s.NoError(err)
	s.Len(sessions, 6)

	guests, err := s.sessions.ListUnmatched(s.ctx, s.meeting.ID)
	s.NoError(err)
	s.Require().Len(guests, 1)
	s.Equal("Visitor 99", guests[0].DisplayName)
	s.Equal(domain.SessionUnmatched, guests[0].SyncStatus)
}

func (s *NormalizerTestSuite) TestAttendance_IsIdempotent() {
	first := s.norm.Attendance(s.ctx, s.meeting, s.participants())
	before, err := s.sessions.ListByMeeting(s.ctx, s.meeting.ID)
	s.Require().NoError(err)

	second := s.norm.Attendance(s.ctx, s.meeting, s.participants())
	after, err := s.sessions.ListByMeeting(s.ctx, s.meeting.ID)
	s.Require().NoError(err)

	s.Equal(first.ItemsProcessed, second.ItemsProcessed)
	s.Len(s.attendanceByUser(), 4)
	s.Require().Len(after, len(before))
	for i := range before {
		s.Equal(before[i].ParticipantID, after[i].ParticipantID)
		s.Equal(before[i].SessionToken, after[i].SessionToken)
		s.Equal(before[i].UserID, after[i].UserID)
	}
}

func (s *NormalizerTestSuite) TestAttendance_RerunKeepsMatchAudit() {
	stats := memory.NewStatsStore(s.db)

	s.norm.Attendance(s.ctx, s.meeting, s.participants())
	firstRecords := s.attendanceByUser()
	firstSessions, err := s.sessions.ListByMeeting(s.ctx, s.meeting.ID)
	s.Require().NoError(err)
	firstStats, err := stats.MeetingStats(s.ctx, s.meeting.ID)
	s.Require().NoError(err)
	s.Equal(1, firstStats.LowConfidence)

	s.norm.Attendance(s.ctx, s.meeting, s.participants())
	records := s.attendanceByUser()
	sessions, err := s.sessions.ListByMeeting(s.ctx, s.meeting.ID)
	s.Require().NoError(err)

	jane := records[3]
	s.Equal(string(domain.MatchPatternInitial), jane.DeviceInfo.String("match_method"))
	s.Equal(string(domain.ConfidencePattern), jane.DeviceInfo.String("match_confidence"))
	for id, rec := range firstRecords {
		s.Equal(rec.DeviceInfo, records[id].DeviceInfo, "user %d", id)
	}

	s.Require().Len(sessions, len(firstSessions))
	for i := range firstSessions {
		s.Equal(firstSessions[i].MatchMethod, sessions[i].MatchMethod, firstSessions[i].DisplayName)
		s.Equal(firstSessions[i].MatchConfidence, sessions[i].MatchConfidence, firstSessions[i].DisplayName)
		s.NotEqual(domain.MatchPriorCorrelation, sessions[i].MatchMethod)
	}

	st, err := stats.MeetingStats(s.ctx, s.meeting.ID)
	s.Require().NoError(err)
	s.Equal(1, st.LowConfidence)
}

func (s *NormalizerTestSuite) TestAttendance_ResyncAfterRematchKeepsRematchMethod() {
	s.norm.Attendance(s.ctx, s.meeting, s.participants())

	s.users.Add(domain.User{ID: 6, Username: "visitor", FirstName: "Visitor", LastName: "99", Role: domain.RoleLearner, OrgUnitID: 10, IsActive: true})
	s.resolver.Invalidate()
	s.Equal(1, s.norm.RematchGuests(s.ctx, s.meeting).ItemsProcessed)

	s.norm.Attendance(s.ctx, s.meeting, s.participants())

	visitor, ok := s.attendanceByUser()[6]
	s.Require().True(ok)
	s.Equal(string(domain.MatchFullName), visitor.DeviceInfo.String("match_method"))
	s.Equal(string(domain.ConfidenceExactName), visitor.DeviceInfo.String("match_confidence"))
}

func (s *NormalizerTestSuite) TestAttendance_EmptyIsNoData() {
	result := s.norm.Attendance(s.ctx, s.meeting, nil)
	s.True(result.Success)
	s.True(result.NoData)
	s.Zero(result.ItemsProcessed)
}

func (s *NormalizerTestSuite) TestRematchGuests_AttachesNewlyKnownUser() {
	s.norm.Attendance(s.ctx, s.meeting, s.participants())

	s.users.Add(domain.User{ID: 6, Username: "visitor", FirstName: "Visitor", LastName: "99", Role: domain.RoleLearner, OrgUnitID: 10, IsActive: true})
	s.resolver.Invalidate()

	result := s.norm.RematchGuests(s.ctx, s.meeting)
	s.True(result.Success)
	s.Equal(1, result.ItemsProcessed)

	guests, err := s.sessions.ListUnmatched(s.ctx, s.meeting.ID)
	s.NoError(err)
	s.Empty(guests)

	again := s.norm.RematchGuests(s.ctx, s.meeting)
	s.True(again.NoData)
	s.Zero(again.ItemsProcessed)
}

func (s *NormalizerTestSuite) TestChat_DedupsClassifiesAndSharesFiles() {
	lines := []domain.RawChatLine{
		{SenderName: "John Doe", Text: "hello", SentAt: at(1)},
		{SenderName: "John Doe", Text: "hello", SentAt: at(1)},
		{SenderName: "", Text: "   "},
		{SenderName: "Guest 7", Text: "hi there", SentAt: at(2)},
		{SenderName: "Jane Smith", Text: "Shared file: notes.pdf (https://files.test/notes.pdf)", SentAt: at(3)},
		{Text: "Recording started", System: true, SentAt: at(0)},
		{SenderName: "John Doe", Text: "slides", SentAt: at(4), Attachments: []domain.RawFile{
			{Name: "slides.pptx", URL: "https://files.test/slides.pptx", Size: 10},
		}},
	}

	result := s.norm.Chat(s.ctx, s.meeting, lines)
	s.True(result.Success)
	s.Equal(5, result.ItemsProcessed)

	messages, err := s.chat.ListByMeeting(s.ctx, s.meeting.ID)
	s.NoError(err)
	s.Len(messages, 5)

	types := map[string]domain.MessageType{}
	for _, m := range messages {
		types[m.MessageText] = m.MessageType
	}
	s.Equal(domain.MessageText, types["hello"])
	s.Equal(domain.MessageSystem, types["Recording started"])
	s.Equal(domain.MessageFile, types["slides"])
	s.Equal(domain.MessageFile, types["Shared file: notes.pdf (https://files.test/notes.pdf)"])

	unmatched, err := s.chat.ListUnmatched(s.ctx, s.meeting.ID)
	s.NoError(err)
	s.Require().Len(unmatched, 1)
	s.Equal("Guest 7", unmatched[0].SenderName)

	files, err := s.files.ListByMeeting(s.ctx, s.meeting.ID)
	s.NoError(err)
	s.Len(files, 2)
	for _, f := range files {
		s.Equal(domain.FileFromChat, f.Source)
		s.NotNil(f.SharedByID)
	}

	s.norm.Chat(s.ctx, s.meeting, lines)
	messages, err = s.chat.ListByMeeting(s.ctx, s.meeting.ID)
	s.NoError(err)
	s.Len(messages, 5)
}

func (s *NormalizerTestSuite) TestRematchChat_OnlyFillsEmptySender() {
	s.norm.Chat(s.ctx, s.meeting, []domain.RawChatLine{
		{SenderName: "Chris Taylor", Text: "question", SentAt: at(5)},
		{SenderName: "John Doe", Text: "answer", SentAt: at(6)},
	})

	s.users.Add(domain.User{ID: 7, Username: "ctaylor", FirstName: "Chris", LastName: "Taylor", Role: domain.RoleLearner, OrgUnitID: 10, IsActive: true})
	s.resolver.Invalidate()

	result := s.norm.RematchChat(s.ctx, s.meeting)
	s.True(result.Success)
	s.Equal(1, result.ItemsProcessed)

	messages, err := s.chat.ListByMeeting(s.ctx, s.meeting.ID)
	s.NoError(err)
	for _, m := range messages {
		s.Require().NotNil(m.SenderID)
		if m.SenderName == "Chris Taylor" {
			s.Equal(int64(7), *m.SenderID)
			s.Equal(string(domain.MatchFullName), m.Metadata.String("match_method"))
		} else {
			s.Equal(int64(2), *m.SenderID)
		}
	}

	again := s.norm.RematchChat(s.ctx, s.meeting)
	s.True(again.NoData)
}

func (s *NormalizerTestSuite) TestRematchChat_UsesStoredSenderIdentifiers() {
	s.norm.Chat(s.ctx, s.meeting, []domain.RawChatLine{
		{SenderName: "JJ", SenderID: "zu-2", Text: "hello", SentAt: at(3)},
		{SenderName: "NP", SenderEmail: "nina.park@school.test", Text: "hi all", SentAt: at(4)},
	})
	unmatched, err := s.chat.ListUnmatched(s.ctx, s.meeting.ID)
	s.Require().NoError(err)
	s.Require().Len(unmatched, 2)

	s.norm.Attendance(s.ctx, s.meeting, []domain.RawParticipant{
		{ParticipantID: "p2", UserID: "zu-2", Name: "Johnny", Email: "john.doe@school.test", JoinTime: at(0), LeaveTime: at(60)},
	})
	s.users.Add(domain.User{ID: 8, Username: "npark", FirstName: "Nina", LastName: "Park", Email: "nina.park@school.test", Role: domain.RoleLearner, OrgUnitID: 10, IsActive: true})
	s.resolver.Invalidate()

	result := s.norm.RematchChat(s.ctx, s.meeting)
	s.True(result.Success)
	s.Equal(2, result.ItemsProcessed)

	messages, err := s.chat.ListByMeeting(s.ctx, s.meeting.ID)
	s.Require().NoError(err)
	senders := make(map[string]domain.ChatMessage, len(messages))
	for _, m := range messages {
		senders[m.SenderName] = m
	}
	s.Require().NotNil(senders["JJ"].SenderID)
	s.Equal(int64(2), *senders["JJ"].SenderID)
	s.Equal(string(domain.MatchPriorCorrelation), senders["JJ"].Metadata.String("match_method"))
	s.Require().NotNil(senders["NP"].SenderID)
	s.Equal(int64(8), *senders["NP"].SenderID)
	s.Equal(string(domain.MatchEmail), senders["NP"].Metadata.String("match_method"))
}

func (s *NormalizerTestSuite) TestRecordingsAndFiles() {
	recs := s.norm.Recordings(s.ctx, s.meeting, []domain.RawRecording{
		{RecordingID: "r1", Type: "MP4", FileURL: "https://rec.test/r1", Status: domain.RecordingAvailable, StartedAt: start},
		{RecordingID: "r2", Type: "chat_file"},
		{Type: "broken"},
	})
	s.True(recs.Success)
	s.Equal(2, recs.ItemsProcessed)
	s.Equal(1, recs.ItemsFailed)
	s.Equal(domain.KindPartialItemFailure, recs.ErrorKind)

	stored, err := s.recordings.ListByMeeting(s.ctx, s.meeting.ID)
	s.NoError(err)
	s.Len(stored, 2)

	files := s.norm.Files(s.ctx, s.meeting, []domain.RawFile{
		{Name: "report.docx", URL: "https://files.test/report.docx", Size: 99, SharedByName: "Jane Smith"},
	})
	s.True(files.Success)
	s.Equal(1, files.ItemsProcessed)

	shared, err := s.files.ListByMeeting(s.ctx, s.meeting.ID)
	s.NoError(err)
	s.Require().Len(shared, 1)
	s.Equal(domain.FileFromPlatform, shared[0].Source)
	s.Require().NotNil(shared[0].SharedByID)
	s.Equal(int64(3), *shared[0].SharedByID)
}

type failingRecordings struct{}

func (failingRecordings) Upsert(context.Context, *domain.Recording) error {
	return domain.NewError(domain.KindStorageIntegrity, "upsert recording", errors.New("constraint violated"))
}

func (s *NormalizerTestSuite) TestRecordings_AllFailedIsFailure() {
	norm := s.newNormalizer(Stores{Recordings: failingRecordings{}})

	result := norm.Recordings(s.ctx, s.meeting, []domain.RawRecording{{RecordingID: "r1"}, {RecordingID: "r2"}})
	s.False(result.Success)
	s.Equal(2, result.ItemsFailed)
	s.Equal(domain.KindStorageIntegrity, result.ErrorKind)
}

func TestSharedFiles(t *testing.T) {
	line := domain.RawChatLine{SenderName: " Jane Smith "}
	files := sharedFiles(line, "intro\nshared file: plan.xlsx (https://files.test/plan.xlsx)")

	if assert.Len(t, files, 1) {
		assert.Equal(t, "plan.xlsx", files[0].Filename)
		assert.Equal(t, "Jane Smith", files[0].SharedByName)
		assert.Equal(t, "https://files.test/plan.xlsx", *files[0].FileURL)
	}
}
