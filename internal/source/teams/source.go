package teams

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"meeting_sync/internal/domain"
	"meeting_sync/internal/source"
)

const (
	defaultBaseURL  = "https://graph.microsoft.com/v1.0"
	defaultTokenURL = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	graphScope      = "https://graph.microsoft.com/.default"

	ChatAccessHint = "chat requires elevated API access"
)

var tags = regexp.MustCompile(`<[^>]*>`)

// Source reads meeting data from Microsoft Graph with application permissions.
type Source struct {
	client   *source.Client
	baseURL  string
	tokenURL string
	pageSize int
	maxPages int
	logger   *slog.Logger
}

// New creates the adapter. TokenURL may contain a %s for the tenant.
func New(cfg source.Config, logger *slog.Logger) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	logger = logger.With("source", domain.PlatformTeams)

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
	return domain.PlatformTeams
}

func (s *Source) tokens(ctx context.Context, cred *domain.Credential) (oauth2.TokenSource, error) {
	if cred.TenantID == nil || *cred.TenantID == "" {
		return nil, fmt.Errorf("teams credential %d has no tenant id", cred.ID)
	}
	tokenURL := s.tokenURL
	if strings.Contains(tokenURL, "%s") {
		tokenURL = fmt.Sprintf(tokenURL, url.PathEscape(*cred.TenantID))
	}
	cfg := clientcredentials.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{graphScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	return cfg.TokenSource(ctx), nil
}

// organizer returns the user whose online meetings are addressed. A service
// account on the credential takes precedence over the meeting organizer.
func organizer(cred *domain.Credential, ref domain.MeetingRef) string {
	if cred != nil && cred.ServiceAccountEmail != nil && *cred.ServiceAccountEmail != "" {
		return *cred.ServiceAccountEmail
	}
	return ref.OrganizerEmail
}

type call struct {
	hc      *http.Client
	meeting string
}

func (s *Source) prepare(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) (*call, error) {
	if ref.PlatformMeetingID == "" {
		return nil, domain.NewError(domain.KindPreconditionMissing, "teams", domain.ErrNoMeetingReference)
	}
	org := organizer(cred, ref)
	if org == "" {
		return nil, domain.NewError(domain.KindPreconditionMissing, "teams",
			fmt.Errorf("%w: no organizer for online meeting", domain.ErrNoMeetingReference))
	}
	hc, err := s.client.Authorized(ctx, cred, s.tokens)
	if err != nil {
		return nil, err
	}
	return &call{
		hc:      hc,
		meeting: fmt.Sprintf("%s/users/%s/onlineMeetings/%s", s.baseURL, url.PathEscape(org), url.PathEscape(ref.PlatformMeetingID)),
	}, nil
}

// collect follows @odata.nextLink until the last page or the page limit.
func collect[T any](ctx context.Context, s *Source, c *call, op, first string) ([]T, error) {
	var out []T
	next := first
	for n := 0; next != "" && n < s.maxPages; n++ {
		var resp page[T]
		if err := s.client.GetJSON(ctx, c.hc, op, next, &resp); err != nil {
			return out, err
		}
		out = append(out, resp.Value...)
		next = resp.NextLink
	}
	if next != "" {
		s.logger.Warn("page limit reached, results truncated",
			"op", op,
			"max_pages", s.maxPages,
			"items", len(out),
		)
	}
	return out, nil
}

func (s *Source) FetchAttendance(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) ([]domain.RawParticipant, error) {
	c, err := s.prepare(ctx, cred, ref)
	if err != nil {
		return nil, err
	}

	reports, err := collect[attendanceReport](ctx, s, c, "teams attendance reports", c.meeting+"/attendanceReports")
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, domain.NewError(domain.KindNoDataYet, "teams attendance", fmt.Errorf("%w: no attendance report", domain.ErrNoDataYet))
	}

	byKey := make(map[string]*domain.RawParticipant)
	var order []string
	for _, report := range reports {
		endpoint := fmt.Sprintf("%s/attendanceReports/%s/attendanceRecords?$top=%d", c.meeting, url.PathEscape(report.ID), s.pageSize)
		records, err := collect[attendanceRecord](ctx, s, c, "teams attendance records", endpoint)
		if err != nil {
			return nil, err
		}

		for _, rec := range records {
			key := rec.Identity.ID
			if key == "" {
				key = strings.ToLower(rec.EmailAddress)
			}
			if key == "" {
				key = rec.ID
			}
			p, ok := byKey[key]
			if !ok {
				p = &domain.RawParticipant{
					ParticipantID: key,
					UserID:        rec.Identity.ID,
					Name:          rec.Identity.DisplayName,
					Email:         rec.EmailAddress,
				}
				byKey[key] = p
				order = append(order, key)
			}
			p.DurationSeconds += rec.TotalAttendanceInSeconds
			for _, iv := range rec.AttendanceIntervals {
				if join := parseTime(iv.JoinDateTime); !join.IsZero() && (p.JoinTime.IsZero() || join.Before(p.JoinTime)) {
					p.JoinTime = join
				}
				if leave := parseTime(iv.LeaveDateTime); leave.After(p.LeaveTime) {
					p.LeaveTime = leave
				}
			}
		}
	}

	out := make([]domain.RawParticipant, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out, nil
}

func (s *Source) FetchRecordings(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) ([]domain.RawRecording, error) {
	c, err := s.prepare(ctx, cred, ref)
	if err != nil {
		return nil, err
	}

	recs, err := collect[recording](ctx, s, c, "teams recordings", c.meeting+"/recordings")
	if err != nil {
		return nil, err
	}

	out := make([]domain.RawRecording, 0, len(recs))
	for _, r := range recs {
		start, end := parseTime(r.CreatedDateTime), parseTime(r.EndDateTime)
		raw := domain.RawRecording{
			RecordingID: r.ID,
			Type:        "video",
			FileURL:     r.RecordingContentURL,
			DownloadURL: r.RecordingContentURL,
			Status:      domain.RecordingProcessing,
			StartedAt:   start,
		}
		if r.RecordingContentURL != "" {
			raw.Status = domain.RecordingAvailable
		}
		if !start.IsZero() && end.After(start) {
			raw.DurationSeconds = int(end.Sub(start).Seconds())
		}
		out = append(out, raw)
	}
	return out, nil
}

func (s *Source) messages(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) ([]chatMessage, error) {
	c, err := s.prepare(ctx, cred, ref)
	if err != nil {
		return nil, err
	}

	var meeting onlineMeeting
	if err := s.client.GetJSON(ctx, c.hc, "teams online meeting", c.meeting, &meeting); err != nil {
		return nil, err
	}
	if meeting.ChatInfo.ThreadID == "" {
		return nil, domain.NewError(domain.KindNoDataYet, "teams chat", fmt.Errorf("%w: meeting has no chat", domain.ErrNoDataYet))
	}

	endpoint := fmt.Sprintf("%s/chats/%s/messages?$top=%d", s.baseURL, url.PathEscape(meeting.ChatInfo.ThreadID), s.pageSize)
	msgs, err := collect[chatMessage](ctx, s, c, "teams chat messages", endpoint)
	if err != nil {
		if domain.KindOf(err) == domain.KindAuthFailure {
			return nil, &domain.Error{Kind: domain.KindAuthFailure, Op: "teams chat", Err: err, Hint: ChatAccessHint}
		}
		return nil, err
	}

	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedDateTime < msgs[j].CreatedDateTime })
	return msgs, nil
}

func (s *Source) FetchChat(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) ([]domain.RawChatLine, error) {
	msgs, err := s.messages(ctx, cred, ref)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RawChatLine, 0, len(msgs))
	for _, m := range msgs {
		line := domain.RawChatLine{
			MessageID: m.ID,
			Text:      messageText(m),
			System:    m.MessageType != "" && m.MessageType != "message",
			SentAt:    parseTime(m.CreatedDateTime),
		}
		if m.From != nil && m.From.User != nil {
			line.SenderName = m.From.User.DisplayName
			line.SenderID = m.From.User.ID
		}
		line.Attachments = referenceFiles(m, line.SenderName)
		out = append(out, line)
	}
	return out, nil
}

// FetchFiles lists files shared in the meeting chat as reference attachments.
func (s *Source) FetchFiles(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) ([]domain.RawFile, error) {
	msgs, err := s.messages(ctx, cred, ref)
	if err != nil {
		return nil, err
	}

	var out []domain.RawFile
	for _, m := range msgs {
		sender := ""
		if m.From != nil && m.From.User != nil {
			sender = m.From.User.DisplayName
		}
		out = append(out, referenceFiles(m, sender)...)
	}
	return out, nil
}

func (s *Source) DeleteMeeting(ctx context.Context, cred *domain.Credential, ref domain.MeetingRef) error {
	c, err := s.prepare(ctx, cred, ref)
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, c.hc, "teams delete meeting", c.meeting)
}

func referenceFiles(m chatMessage, sender string) []domain.RawFile {
	var out []domain.RawFile
	for _, a := range m.Attachments {
		if a.ContentType != "reference" {
			continue
		}
		out = append(out, domain.RawFile{
			FileID:       a.ID,
			Name:         a.Name,
			URL:          a.ContentURL,
			SharedByName: sender,
			SharedAt:     parseTime(m.CreatedDateTime),
		})
	}
	return out
}

func messageText(m chatMessage) string {
	text := m.Body.Content
	if strings.EqualFold(m.Body.ContentType, "html") {
		text = html.UnescapeString(tags.ReplaceAllString(text, ""))
	}
	return strings.TrimSpace(text)
}

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
