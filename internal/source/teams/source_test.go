package teams

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"meeting_sync/internal/domain"
	"meeting_sync/internal/resilience"
	"meeting_sync/internal/source"
)

const meetingPath = "/v1.0/users/organizer@school.test/onlineMeetings/m-1"

type TeamsSourceSuite struct {
	suite.Suite
	mux    *http.ServeMux
	server *httptest.Server
	src    *Source
	cred   *domain.Credential
	ref    domain.MeetingRef
}

func TestTeamsSourceSuite(t *testing.T) {
	suite.Run(t, new(TeamsSourceSuite))
}

func (s *TeamsSourceSuite) SetupTest() {
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("POST /tenant-1/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		s.Equal("https://graph.microsoft.com/.default", r.PostForm.Get("scope"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"graph-tok","token_type":"Bearer","expires_in":3600}`)
	})
	s.server = httptest.NewServer(s.mux)

	s.src = New(source.Config{
		BaseURL:  s.server.URL + "/v1.0",
		TokenURL: s.server.URL + "/%s/oauth2/v2.0/token",
		PageSize: 2,
		MaxPages: 10,
		Timeout:  5 * time.Second,
		Retry:    resilience.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tenant := "tenant-1"
	s.cred = &domain.Credential{ID: 5, Platform: domain.PlatformTeams, ClientID: "app", ClientSecret: "secret", TenantID: &tenant}
	s.ref = domain.MeetingRef{
		MeetingID:         20,
		Platform:          domain.PlatformTeams,
		PlatformMeetingID: "m-1",
		OrganizerEmail:    "organizer@school.test",
	}
}

func (s *TeamsSourceSuite) TearDownTest() {
	s.server.Close()
}

func (s *TeamsSourceSuite) TestOrganizerPrecedence() {
	svc := "svc@school.test"
	cred := *s.cred
	s.Equal("organizer@school.test", organizer(&cred, s.ref))
	cred.ServiceAccountEmail = &svc
	s.Equal("svc@school.test", organizer(&cred, s.ref))
}

func (s *TeamsSourceSuite) TestFetchAttendance_MergesReportsAndPages() {
	s.mux.HandleFunc("GET "+meetingPath+"/attendanceReports", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Bearer graph-tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"value":[{"id":"rep-1"}]}`)
	})
	s.mux.HandleFunc("GET "+meetingPath+"/attendanceReports/rep-1/attendanceRecords", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "" {
			fmt.Fprintf(w, `{"value":[
				{"id":"r1","emailAddress":"jdoe@school.test","totalAttendanceInSeconds":600,
				 "identity":{"id":"aad-1","displayName":"John Doe"},
				 "attendanceIntervals":[{"joinDateTime":"2026-03-02T09:10:00Z","leaveDateTime":"2026-03-02T09:20:00Z"}]}],
				"@odata.nextLink":"%s%s/attendanceReports/rep-1/attendanceRecords?page=2"}`, s.server.URL, meetingPath)
			return
		}
		fmt.Fprint(w, `{"value":[
			{"id":"r2","emailAddress":"jdoe@school.test","totalAttendanceInSeconds":300,
			 "identity":{"id":"aad-1","displayName":"John Doe"},
			 "attendanceIntervals":[{"joinDateTime":"2026-03-02T09:01:00Z","leaveDateTime":"2026-03-02T09:05:00Z"}]},
			{"id":"r3","totalAttendanceInSeconds":120,"identity":{"displayName":"Guest Visitor"}}]}`)
	})

	raws, err := s.src.FetchAttendance(context.Background(), s.cred, s.ref)
	s.Require().NoError(err)
	s.Require().Len(raws, 2)
	s.Equal("aad-1", raws[0].ParticipantID)
	s.Equal(900, raws[0].DurationSeconds)
	s.Equal(time.Date(2026, 3, 2, 9, 1, 0, 0, time.UTC), raws[0].JoinTime)
	s.Equal(time.Date(2026, 3, 2, 9, 20, 0, 0, time.UTC), raws[0].LeaveTime)
	s.Equal("r3", raws[1].ParticipantID)
	s.Equal("Guest Visitor", raws[1].Name)
}

func (s *TeamsSourceSuite) TestFetchAttendance_PageLimitWarns() {
	s.mux.HandleFunc("GET "+meetingPath+"/attendanceReports", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":[{"id":"rep-1"}]}`)
	})
	s.mux.HandleFunc("GET "+meetingPath+"/attendanceReports/rep-1/attendanceRecords", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"value":[{"id":"r1","totalAttendanceInSeconds":60,"identity":{"id":"aad-1","displayName":"John Doe"}}],
			"@odata.nextLink":"%s%s/attendanceReports/rep-1/attendanceRecords?page=2"}`, s.server.URL, meetingPath)
	})

	var logs bytes.Buffer
	src := New(source.Config{
		BaseURL:  s.server.URL + "/v1.0",
		TokenURL: s.server.URL + "/%s/oauth2/v2.0/token",
		PageSize: 1,
		MaxPages: 1,
		Timeout:  5 * time.Second,
		Retry:    resilience.Policy{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}, slog.New(slog.NewTextHandler(&logs, nil)))

	raws, err := src.FetchAttendance(context.Background(), s.cred, s.ref)
	s.Require().NoError(err)
	s.Len(raws, 1)
	s.Contains(logs.String(), "page limit reached")
	s.Contains(logs.String(), `op="teams attendance records"`)
}

func (s *TeamsSourceSuite) TestFetchAttendance_NoReportIsNoData() {
	s.mux.HandleFunc("GET "+meetingPath+"/attendanceReports", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":[]}`)
	})

	_, err := s.src.FetchAttendance(context.Background(), s.cred, s.ref)
	s.Equal(domain.KindNoDataYet, domain.KindOf(err))
}

func (s *TeamsSourceSuite) TestFetchChat_ForbiddenCarriesHint() {
	s.mux.HandleFunc("GET "+meetingPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"m-1","chatInfo":{"threadId":"19:thread"}}`)
	})
	s.mux.HandleFunc("GET /v1.0/chats/{thread}/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := s.src.FetchChat(context.Background(), s.cred, s.ref)
	s.Equal(domain.KindAuthFailure, domain.KindOf(err))
	s.Equal(ChatAccessHint, domain.HintOf(err))
}

func (s *TeamsSourceSuite) TestFetchChatAndFiles() {
	s.mux.HandleFunc("GET "+meetingPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"m-1","chatInfo":{"threadId":"19:thread"}}`)
	})
	s.mux.HandleFunc("GET /v1.0/chats/{thread}/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":[
			{"id":"2","messageType":"message","createdDateTime":"2026-03-02T09:03:00Z",
			 "from":{"user":{"id":"aad-1","displayName":"John Doe"}},
			 "body":{"contentType":"html","content":"<p>see &amp; read</p>"},
			 "attachments":[{"id":"att","contentType":"reference","contentUrl":"https://share.test/notes.pdf","name":"notes.pdf"}]},
			{"id":"1","messageType":"systemEventMessage","createdDateTime":"2026-03-02T09:00:00Z","body":{"contentType":"html","content":"<systemEventMessage/>"}}]}`)
	})

	lines, err := s.src.FetchChat(context.Background(), s.cred, s.ref)
	s.Require().NoError(err)
	s.Require().Len(lines, 2)
	s.True(lines[0].System)
	s.Equal("John Doe", lines[1].SenderName)
	s.Equal("see & read", lines[1].Text)
	s.Require().Len(lines[1].Attachments, 1)

	files, err := s.src.FetchFiles(context.Background(), s.cred, s.ref)
	s.Require().NoError(err)
	s.Require().Len(files, 1)
	s.Equal("notes.pdf", files[0].Name)
	s.Equal("John Doe", files[0].SharedByName)
}

func (s *TeamsSourceSuite) TestFetchRecordings() {
	s.mux.HandleFunc("GET "+meetingPath+"/recordings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":[
			{"id":"rec-1","createdDateTime":"2026-03-02T09:00:00Z","endDateTime":"2026-03-02T09:45:00Z","recordingContentUrl":"https://graph.test/rec-1/content"},
			{"id":"rec-2","createdDateTime":"2026-03-02T10:00:00Z"}]}`)
	})

	recs, err := s.src.FetchRecordings(context.Background(), s.cred, s.ref)
	s.Require().NoError(err)
	s.Require().Len(recs, 2)
	s.Equal(domain.RecordingAvailable, recs[0].Status)
	s.Equal(2700, recs[0].DurationSeconds)
	s.Equal(domain.RecordingProcessing, recs[1].Status)
}

func (s *TeamsSourceSuite) TestMissingOrganizerIsPrecondition() {
	ref := s.ref
	ref.OrganizerEmail = ""

	_, err := s.src.FetchRecordings(context.Background(), s.cred, ref)
	s.Equal(domain.KindPreconditionMissing, domain.KindOf(err))
}

func TestMessageText(t *testing.T) {
	m := chatMessage{}
	m.Body.ContentType = "text"
	m.Body.Content = "  plain <b>kept</b> "
	assert.Equal(t, "plain <b>kept</b>", messageText(m))
}
