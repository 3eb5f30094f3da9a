package zoom

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"meeting_sync/internal/domain"
	"meeting_sync/internal/source"
)

const (
	defaultBaseURL  = "https://api.zoom.us/v2"
	defaultTokenURL = "https://zoom.us/oauth/token"
	chatFileType    = "CHAT"
)

// Source reads meeting data from the Zoom REST API with Server-to-Server OAuth.
type Source struct {
	client   *source.Client
	baseURL  string
	tokenURL string
	pageSize int
	maxPages int
	logger   *slog.Logger
}

func New(cfg source.Config, logger *slog.Logger) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 300
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	logger = logger.With("source", domain.PlatformZoom)

	return &Source{
		client:   source.NewClient(cfg.Timeout, cfg.Retry, logger),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		tokenURL: cfg.TokenURL,
		pageSize: cfg.PageSize,
		maxPages: cfg.MaxPages,
		logger:   logger,
	}
}

func (s *Source) Platform() domain.Platform {
	return domain.PlatformZoom
}

func (s *Source) tokens(ctx context.Context, cred *domain.Credential) (oauth2.TokenSource, error) {
	if cred.AccountID == nil || *cred.AccountID == "" {
		return nil, fmt.Errorf("zoom credential %d has no account id", cred.ID)
	}
	cfg := clientcredentials.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		TokenURL:     s.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
		EndpointParams: url.Values{
			"grant_type": {"account_credentials"},
			"account_id": {*cred.AccountID},
		},
	}
	return cfg.TokenSource(ctx), nil
}

func (s *Source) authorize(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) (*http.Client, error) {
	if ref.PlatformMeetingID == "" {
		return nil, domain.NewError(domain.KindPreconditionMissing, "zoom", domain.ErrNoMeetingReference)
	}
	return s.client.Authorized(ctx, cred, s.tokens)
}

// meetingPath escapes a meeting ID or UUID for use in a path. UUIDs that
// start with "/" or contain "//" have to be encoded twice.
func meetingPath(id string) string {
	if strings.HasPrefix(id, "/") || strings.Contains(id, "//") {
		return url.PathEscape(url.PathEscape(id))
	}
	return url.PathEscape(id)
}

func (s *Source) FetchAttendance(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) ([]domain.RawParticipant, error) {
	hc, err := s.authorize(ctx, cred, ref)
	if err != nil {
		return nil, err
	}

	var out []domain.RawParticipant
	token := ""
	for page := 0; page < s.maxPages; page++ {
		q := url.Values{"page_size": {fmt.Sprint(s.pageSize)}}
		if token != "" {
			q.Set("next_page_token", token)
		}
		endpoint := fmt.Sprintf("%s/report/meetings/%s/participants?%s", s.baseURL, meetingPath(ref.PlatformMeetingID), q.Encode())

		var resp participantsResponse
		if err := s.client.GetJSON(ctx, hc, "zoom participants", endpoint, &resp); err != nil {
			return out, err
		}
		for _, p := range resp.Participants {
			out = append(out, domain.RawParticipant{
				ParticipantID:   participantKey(p),
				UserID:          p.UserID,
				Name:            p.Name,
				Email:           p.UserEmail,
				JoinTime:        parseTime(p.JoinTime),
				LeaveTime:       parseTime(p.LeaveTime),
				DurationSeconds: p.Duration,
				Device:          p.Device,
			})
		}

		s.logger.Debug("fetched participants page",
			"page", page,
			"participants", len(resp.Participants),
			"total", len(out),
		)

		token = resp.NextPageToken
		if token == "" {
			break
		}
	}
	if token != "" {
		s.logger.Warn("page limit reached, participants truncated",
			"meeting", ref.PlatformMeetingID,
			"max_pages", s.maxPages,
			"participants", len(out),
		)
	}
	return out, nil
}

// participantKey prefers the stable participant id. Guests without one are
// keyed by name and join time.
func participantKey(p participant) string {
	if p.ID != "" {
		return p.ID
	}
	if p.UserID != "" {
		return "user:" + p.UserID
	}
	return "guest:" + p.Name + "@" + p.JoinTime
}

func (s *Source) recordings(ctx context.Context, hc *http.Client, ref domain.MeetingRef) (*recordingsResponse, error) {
	endpoint := fmt.Sprintf("%s/meetings/%s/recordings", s.baseURL, meetingPath(ref.PlatformMeetingID))
	var resp recordingsResponse
	if err := s.client.GetJSON(ctx, hc, "zoom recordings", endpoint, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Source) FetchRecordings(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) ([]domain.RawRecording, error) {
	hc, err := s.authorize(ctx, cred, ref)
	if err != nil {
		return nil, err
	}
	resp, err := s.recordings(ctx, hc, ref)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RawRecording, 0, len(resp.RecordingFiles))
	for _, f := range resp.RecordingFiles {
		start, end := parseTime(f.RecordingStart), parseTime(f.RecordingEnd)
		duration := 0
		if !start.IsZero() && end.After(start) {
			duration = int(end.Sub(start).Seconds())
		}
		out = append(out, domain.RawRecording{
			RecordingID:     f.ID,
			Type:            recordingType(f),
			FileURL:         f.PlayURL,
			DownloadURL:     f.DownloadURL,
			Status:          recordingStatus(f.Status),
			FileSize:        f.FileSize,
			DurationSeconds: duration,
			StartedAt:       start,
		})
	}
	return out, nil
}

func recordingType(f recordingFile) string {
	if f.RecordingType != "" {
		return strings.ToLower(f.RecordingType)
	}
	switch strings.ToUpper(f.FileType) {
	case chatFileType:
		return "chat_file"
	case "TRANSCRIPT", "CC":
		return "transcript"
	case "TIMELINE":
		return "timeline"
	}
	return strings.ToLower(f.FileType)
}

func recordingStatus(s string) domain.RecordingStatus {
	switch strings.ToLower(s) {
	case "completed":
		return domain.RecordingAvailable
	case "deleted":
		return domain.RecordingDeleted
	case "expired":
		return domain.RecordingExpired
	}
	return domain.RecordingProcessing
}

// FetchChat downloads the chat file stored with the cloud recording and
// parses it into lines.
func (s *Source) FetchChat(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) ([]domain.RawChatLine, error) {
	hc, err := s.authorize(ctx, cred, ref)
	if err != nil {
		return nil, err
	}
	resp, err := s.recordings(ctx, hc, ref)
	if err != nil {
		return nil, err
	}

	var lines []domain.RawChatLine
	found := false
	for _, f := range resp.RecordingFiles {
		if !strings.EqualFold(f.FileType, chatFileType) || f.DownloadURL == "" {
			continue
		}
		found = true

		data, err := s.client.GetBytes(ctx, hc, "zoom chat file", f.DownloadURL)
		if err != nil {
			return lines, err
		}
		base := parseTime(f.RecordingStart)
		if base.IsZero() {
			base = parseTime(resp.StartTime)
		}
		if base.IsZero() {
			base = ref.ScheduledStart
		}
		lines = append(lines, ParseChatTranscript(string(data), base)...)
	}
	if !found {
		return nil, domain.NewError(domain.KindNoDataYet, "zoom chat", fmt.Errorf("%w: no chat file", domain.ErrNoDataYet))
	}
	return lines, nil
}

func (s *Source) FetchFiles(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) ([]domain.RawFile, error) {
	hc, err := s.authorize(ctx, cred, ref)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/past_meetings/%s/files", s.baseURL, meetingPath(ref.PlatformMeetingID))
	var resp filesResponse
	if err := s.client.GetJSON(ctx, hc, "zoom files", endpoint, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.RawFile, 0, len(resp.InMeetingFiles))
	for _, f := range resp.InMeetingFiles {
		out = append(out, domain.RawFile{
			Name: f.FileName,
			URL:  f.DownloadURL,
			Size: f.FileSize,
		})
	}
	return out, nil
}

func (s *Source) DeleteMeeting(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) error {
	hc, err := s.authorize(ctx, cred, ref)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/meetings/%s", s.baseURL, meetingPath(ref.PlatformMeetingID))
	return s.client.Delete(ctx, hc, "zoom delete meeting", endpoint)
}

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
