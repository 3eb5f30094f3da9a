package zoom

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"meeting_sync/internal/domain"
	"meeting_sync/internal/resilience"
	"meeting_sync/internal/source"
)

type ZoomSourceSuite struct {
	suite.Suite
	mux        *http.ServeMux
	server     *httptest.Server
	src        *Source
	tokenCalls atomic.Int32
	cred       *domain.Credential
	ref        domain.MeetingRef
}

func TestZoomSourceSuite(t *testing.T) {
	suite.Run(t, new(ZoomSourceSuite))
}

func (s *ZoomSourceSuite) SetupTest() {
	s.tokenCalls.Store(0)
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		s.tokenCalls.Add(1)
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") != "account_credentials" || r.PostForm.Get("account_id") != "acc-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok","token_type":"bearer","expires_in":3600}`)
	})
	s.server = httptest.NewServer(s.mux)

	s.src = New(source.Config{
		BaseURL:  s.server.URL + "/v2",
		TokenURL: s.server.URL + "/oauth/token",
		PageSize: 2,
		MaxPages: 10,
		Timeout:  5 * time.Second,
		Retry:    resilience.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	account := "acc-1"
	s.cred = &domain.Credential{ID: 1, Platform: domain.PlatformZoom, ClientID: "id", ClientSecret: "secret", AccountID: &account}
	s.ref = domain.MeetingRef{
		MeetingID:         10,
		Platform:          domain.PlatformZoom,
		PlatformMeetingID: "85512345678",
		ScheduledStart:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func (s *ZoomSourceSuite) TearDownTest() {
	s.server.Close()
}

func (s *ZoomSourceSuite) TestFetchAttendance_DrainsPages() {
	s.mux.HandleFunc("GET /v2/report/meetings/85512345678/participants", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Bearer tok", r.Header.Get("Authorization"))
		if r.URL.Query().Get("next_page_token") == "" {
			fmt.Fprint(w, `{"next_page_token":"p2","participants":[
				{"id":"a","user_id":"u1","name":"John Doe","user_email":"jdoe@org.test","join_time":"2026-03-02T09:01:00Z","leave_time":"2026-03-02T09:50:00Z","duration":2940},
				{"id":"b","name":"Guest","join_time":"2026-03-02T09:05:00Z","leave_time":"2026-03-02T09:10:00Z","duration":300}]}`)
			return
		}
		fmt.Fprint(w, `{"next_page_token":"","participants":[{"id":"c","name":"Jane Smith","duration":60}]}`)
	})

	raws, err := s.src.FetchAttendance(context.Background(), s.cred, s.ref)
	s.Require().NoError(err)
	s.Require().Len(raws, 3)
	s.Equal("a", raws[0].ParticipantID)
	s.Equal("jdoe@org.test", raws[0].Email)
	s.Equal(2940, raws[0].DurationSeconds)
	s.Equal(time.Date(2026, 3, 2, 9, 1, 0, 0, time.UTC), raws[0].JoinTime)
	s.Equal("c", raws[2].ParticipantID)
	s.Equal(int32(1), s.tokenCalls.Load())
}

func (s *ZoomSourceSuite) TestFetchAttendance_PageLimitWarns() {
	var pages atomic.Int32
	s.mux.HandleFunc("GET /v2/report/meetings/85512345678/participants", func(w http.ResponseWriter, r *http.Request) {
		n := pages.Add(1)
		fmt.Fprintf(w, `{"next_page_token":"p%d","participants":[{"id":"a%d","name":"Guest"},{"id":"b%d","name":"Guest"}]}`, n+1, n, n)
	})

	var logs bytes.Buffer
	src := New(source.Config{
		BaseURL:  s.server.URL + "/v2",
		TokenURL: s.server.URL + "/oauth/token",
		PageSize: 2,
		MaxPages: 2,
		Timeout:  5 * time.Second,
		Retry:    resilience.Policy{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}, slog.New(slog.NewTextHandler(&logs, nil)))

	raws, err := src.FetchAttendance(context.Background(), s.cred, s.ref)
	s.Require().NoError(err)
	s.Len(raws, 4)
	s.Equal(int32(2), pages.Load())
	s.Contains(logs.String(), "page limit reached")
	s.Contains(logs.String(), "max_pages=2")
}

func (s *ZoomSourceSuite) TestFetchAttendance_RetriesServerErrors() {
	var calls atomic.Int32
	s.mux.HandleFunc("GET /v2/report/meetings/85512345678/participants", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"participants":[{"id":"a","name":"John Doe"}]}`)
	})

	ctx, tracker := resilience.Track(context.Background())
	raws, err := s.src.FetchAttendance(ctx, s.cred, s.ref)
	s.Require().NoError(err)
	s.Len(raws, 1)
	s.Equal(int32(3), calls.Load())
	s.Equal(3, tracker.Attempts())
}

func (s *ZoomSourceSuite) TestFetchAttendance_NotFoundIsNoData() {
	s.mux.HandleFunc("GET /v2/report/meetings/85512345678/participants", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := s.src.FetchAttendance(context.Background(), s.cred, s.ref)
	s.ErrorIs(err, domain.ErrNoDataYet)
	s.Equal(domain.KindNoDataYet, domain.KindOf(err))
}

func (s *ZoomSourceSuite) TestMissingReference_NoRequests() {
	ref := s.ref
	ref.PlatformMeetingID = ""

	_, err := s.src.FetchRecordings(context.Background(), s.cred, ref)
	s.ErrorIs(err, domain.ErrNoMeetingReference)
	s.Equal(domain.KindPreconditionMissing, domain.KindOf(err))
	s.Equal(int32(0), s.tokenCalls.Load())
}

func (s *ZoomSourceSuite) TestTokenRejectedIsAuthFailure() {
	other := "acc-2"
	cred := *s.cred
	cred.ID = 2
	cred.AccountID = &other
	s.mux.HandleFunc("GET /v2/meetings/85512345678/recordings", func(w http.ResponseWriter, r *http.Request) {
		s.Fail("api must not be called without a token")
	})

	_, err := s.src.FetchRecordings(context.Background(), &cred, s.ref)
	s.Equal(domain.KindAuthFailure, domain.KindOf(err))
}

func (s *ZoomSourceSuite) TestFetchRecordings_MapsStatusAndType() {
	s.mux.HandleFunc("GET /v2/meetings/85512345678/recordings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"recording_files":[
			{"id":"r1","recording_type":"shared_screen_with_speaker_view","file_type":"MP4","file_size":1024,
			 "play_url":"https://zoom.test/play/r1","download_url":"https://zoom.test/dl/r1","status":"completed",
			 "recording_start":"2026-03-02T09:00:00Z","recording_end":"2026-03-02T09:30:00Z"},
			{"id":"r2","file_type":"CHAT","status":"processing"}]}`)
	})

	recs, err := s.src.FetchRecordings(context.Background(), s.cred, s.ref)
	s.Require().NoError(err)
	s.Require().Len(recs, 2)
	s.Equal(domain.RecordingAvailable, recs[0].Status)
	s.Equal(1800, recs[0].DurationSeconds)
	s.Equal("shared_screen_with_speaker_view", recs[0].Type)
	s.Equal("chat_file", recs[1].Type)
	s.Equal(domain.RecordingProcessing, recs[1].Status)
}

func (s *ZoomSourceSuite) TestFetchChat_DownloadsTranscript() {
	s.mux.HandleFunc("GET /v2/meetings/85512345678/recordings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"recording_files":[{"id":"c1","file_type":"CHAT","download_url":"%s/download/c1","recording_start":"2026-03-02T09:00:00Z"}]}`, s.server.URL)
	})
	s.mux.HandleFunc("GET /download/c1", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Bearer tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, "00:00:10\t From John Doe to Everyone:\thello all\n00:01:00 From  J. Smith : hi\nsecond line\n")
	})

	lines, err := s.src.FetchChat(context.Background(), s.cred, s.ref)
	s.Require().NoError(err)
	s.Require().Len(lines, 2)
	s.Equal("John Doe", lines[0].SenderName)
	s.Equal("hello all", lines[0].Text)
	s.Equal(time.Date(2026, 3, 2, 9, 0, 10, 0, time.UTC), lines[0].SentAt)
	s.Equal("J. Smith", lines[1].SenderName)
	s.Equal("hi\nsecond line", lines[1].Text)
}

func (s *ZoomSourceSuite) TestFetchChat_NoChatFileIsNoData() {
	s.mux.HandleFunc("GET /v2/meetings/85512345678/recordings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"recording_files":[{"id":"r1","file_type":"MP4"}]}`)
	})

	_, err := s.src.FetchChat(context.Background(), s.cred, s.ref)
	s.Equal(domain.KindNoDataYet, domain.KindOf(err))
}

func (s *ZoomSourceSuite) TestFetchFiles() {
	s.mux.HandleFunc("GET /v2/past_meetings/85512345678/files", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"in_meeting_files":[{"file_name":"slides.pdf","download_url":"https://zoom.test/f/1","file_size":42}]}`)
	})

	files, err := s.src.FetchFiles(context.Background(), s.cred, s.ref)
	s.Require().NoError(err)
	s.Require().Len(files, 1)
	s.Equal("slides.pdf", files[0].Name)
	s.Equal(int64(42), files[0].Size)
}

func (s *ZoomSourceSuite) TestDeleteMeeting() {
	var deleted atomic.Bool
	s.mux.HandleFunc("DELETE /v2/meetings/85512345678", func(w http.ResponseWriter, r *http.Request) {
		deleted.Store(true)
		w.WriteHeader(http.StatusNoContent)
	})

	s.NoError(s.src.DeleteMeeting(context.Background(), s.cred, s.ref))
	s.True(deleted.Load())
}

func TestMeetingPath(t *testing.T) {
	assert.Equal(t, "85512345678", meetingPath("85512345678"))
	assert.Equal(t, "abc==", meetingPath("abc=="))
	assert.Equal(t, "%252Fabc==", meetingPath("/abc=="))
	assert.Equal(t, "ab%252F%252Fcd", meetingPath("ab//cd"))
}

func TestParseChatTranscript(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	lines := ParseChatTranscript("\r\n00:02:03\t From Doe, John to Everyone:\tShared file: notes.pdf (https://files.test/n)\r\nnot a message\n", base)

	require.Len(t, lines, 1)
	assert.Equal(t, "Doe, John", lines[0].SenderName)
	assert.Equal(t, "Shared file: notes.pdf (https://files.test/n)\nnot a message", lines[0].Text)
	assert.Equal(t, base.Add(2*time.Minute+3*time.Second), lines[0].SentAt)
}
