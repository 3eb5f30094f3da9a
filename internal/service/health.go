package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"meeting_sync/internal/config"
	"meeting_sync/internal/domain"
)

var recommendations = map[domain.IssueCode]string{
	domain.IssueStaleSync:            "run a full sync for this meeting",
	domain.IssueLastRunFailed:        "check platform credentials and retry the sync",
	domain.IssueRecordingsHidden:     "resync recordings; the platform may still be processing them",
	domain.IssueUnmatchedChat:        "rematch chat senders after updating user records",
	domain.IssueUnmatchedParticipant: "rematch guest participants or add their accounts",
	domain.IssueLowConfidence:        "review attendance matched by name patterns or scoring",
}

type HealthChecker struct {
	meetings MeetingStore
	runs     SyncRunStore
	stats    StatsStore
	cache    ReportCache
	logger   *slog.Logger
	config   config.HealthConfig
	now      func() time.Time
}

func NewHealthChecker(
	meetings MeetingStore,
	runs SyncRunStore,
	stats StatsStore,
	cache ReportCache,
	logger *slog.Logger,
	cfg config.HealthConfig,
) *HealthChecker {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 24 * time.Hour
	}
	if cfg.WarningIssues <= 0 {
		cfg.WarningIssues = 1
	}
	if cfg.CriticalIssues < cfg.WarningIssues {
		cfg.CriticalIssues = max(3, cfg.WarningIssues)
	}
	if cfg.RecentDays <= 0 {
		cfg.RecentDays = 7
	}
	return &HealthChecker{
		meetings: meetings,
		runs:     runs,
		stats:    stats,
		cache:    cache,
		logger:   logger.With("component", "health"),
		config:   cfg,
		now:      time.Now,
	}
}

// CheckMeeting returns the cached report when there is one.
func (h *HealthChecker) CheckMeeting(ctx context.Context, meetingID int64) (*domain.HealthReport, error) {
	if h.cache != nil {
		report, err := h.cache.GetReport(ctx, meetingID)
		if err != nil {
			h.logger.Warn("health cache read failed", "meeting_id", meetingID, "error", err)
		} else if report != nil {
			return report, nil
		}
	}

	report, err := h.Diagnose(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.SetReport(ctx, report); err != nil {
			h.logger.Warn("health cache write failed", "meeting_id", meetingID, "error", err)
		}
	}
	return report, nil
}

// Diagnose computes a fresh report, bypassing the cache.
func (h *HealthChecker) Diagnose(ctx context.Context, meetingID int64) (*domain.HealthReport, error) {
	m, err := h.meetings.Get(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	stats, err := h.stats.MeetingStats(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("meeting stats: %w", err)
	}
	latest, err := h.runs.Latest(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("latest sync run: %w", err)
	}

	report := &domain.HealthReport{
		MeetingID:  meetingID,
		Stats:      *stats,
		LastSyncAt: m.LastSyncAt,
		CheckedAt:  h.now(),
		Issues:     []domain.Issue{},
	}

	add := func(code domain.IssueCode, format string, args ...any) {
		report.Issues = append(report.Issues, domain.Issue{Code: code, Message: fmt.Sprintf(format, args...)})
		report.Recommendations = append(report.Recommendations, recommendations[code])
	}

	if msg, stale := h.staleness(m); stale {
		add(domain.IssueStaleSync, "%s", msg)
	}
	if latest != nil && latest.Status == domain.RunFailed {
		reason := "unknown error"
		if latest.ErrorMessage != nil {
			reason = *latest.ErrorMessage
		}
		add(domain.IssueLastRunFailed, "last sync run %d failed: %s", latest.ID, reason)
	}
	if stats.Recordings > 0 && stats.VisibleRecordings == 0 {
		add(domain.IssueRecordingsHidden, "%d recordings stored but none are playable", stats.Recordings)
	}
	if stats.UnmatchedChat > 0 {
		add(domain.IssueUnmatchedChat, "%d chat messages have no matched sender", stats.UnmatchedChat)
	}
	if stats.UnmatchedSessions > 0 {
		add(domain.IssueUnmatchedParticipant, "%d participants were not matched to users", stats.UnmatchedSessions)
	}
	if stats.LowConfidence > 0 {
		add(domain.IssueLowConfidence, "%d attendance records were matched with low confidence", stats.LowConfidence)
	}

	report.Status = h.status(len(report.Issues))
	if report.Recommendations == nil {
		report.Recommendations = []string{}
	}
	return report, nil
}

func (h *HealthChecker) staleness(m *domain.Meeting) (string, bool) {
	if !m.HasOccurred() || !m.HasReference() {
		return "", false
	}
	if m.LastSyncAt == nil {
		if m.Status == domain.MeetingEnded {
			return "meeting ended but was never synced", true
		}
		return "", false
	}
	if age := h.now().Sub(*m.LastSyncAt); age > h.config.StaleAfter {
		return fmt.Sprintf("last synced %s ago", age.Truncate(time.Minute)), true
	}
	return "", false
}

func (h *HealthChecker) status(issues int) domain.HealthStatus {
	switch {
	case issues >= h.config.CriticalIssues:
		return domain.HealthCritical
	case issues >= h.config.WarningIssues:
		return domain.HealthWarning
	}
	return domain.HealthHealthy
}

// CheckSystem checks every recently scheduled meeting.
func (h *HealthChecker) CheckSystem(ctx context.Context) (*domain.SystemHealth, error) {
	since := h.now().AddDate(0, 0, -h.config.RecentDays)
	meetings, err := h.meetings.ListRecent(ctx, since, h.config.RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent meetings: %w", err)
	}

	sys := &domain.SystemHealth{
		Status:    domain.HealthHealthy,
		Meetings:  make([]domain.HealthReport, 0, len(meetings)),
		CheckedAt: h.now(),
	}
	for _, m := range meetings {
		report, err := h.CheckMeeting(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("check meeting %d: %w", m.ID, err)
		}
		sys.Total++
		switch report.Status {
		case domain.HealthCritical:
			sys.Critical++
		case domain.HealthWarning:
			sys.Warning++
		default:
			sys.Healthy++
		}
		sys.Meetings = append(sys.Meetings, *report)
	}

	switch {
	case sys.Critical > 0:
		sys.Status = domain.HealthCritical
	case sys.Warning > 0:
		sys.Status = domain.HealthWarning
	}

	h.logger.Debug("system health checked",
		"total", sys.Total,
		"healthy", sys.Healthy,
		"warning", sys.Warning,
		"critical", sys.Critical,
	)
	return sys, nil
}
