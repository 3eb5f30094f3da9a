package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"meeting_sync/internal/domain"
)

const (
	ActionInvalidateCaches    = "invalidate_caches"
	ActionRematchChat         = "rematch_chat"
	ActionRematchParticipants = "rematch_participants"
	ActionResync              = "resync"
)

// RecoveryManager repairs what the health checker reports. Each action runs
// at most once per call and only ever fills gaps; stored matches are kept.
type RecoveryManager struct {
	meetings MeetingStore
	health   *HealthChecker
	syncer   Syncer
	pipeline Pipeline
	identity CacheInvalidator
	cache    ReportCache
	logger   *slog.Logger
}

func NewRecoveryManager(
	meetings MeetingStore,
	health *HealthChecker,
	syncer Syncer,
	pipeline Pipeline,
	identity CacheInvalidator,
	cache ReportCache,
	logger *slog.Logger,
) *RecoveryManager {
	return &RecoveryManager{
		meetings: meetings,
		health:   health,
		syncer:   syncer,
		pipeline: pipeline,
		identity: identity,
		cache:    cache,
		logger:   logger.With("component", "recovery"),
	}
}

func (r *RecoveryManager) AutoRecover(ctx context.Context, meetingID int64) (*domain.RecoveryReport, error) {
	m, err := r.meetings.Get(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}

	before, err := r.health.Diagnose(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("diagnose: %w", err)
	}

	logger := r.logger.With("meeting_id", meetingID)
	report := &domain.RecoveryReport{MeetingID: meetingID, Before: before}

	report.Actions = append(report.Actions, r.invalidateCaches(ctx, meetingID))

	if before.Has(domain.IssueUnmatchedChat) {
		res := r.pipeline.RematchChat(ctx, m)
		report.Actions = append(report.Actions, fromResult(ActionRematchChat, res, "chat messages matched"))
	}

	guestsMatched := false
	if before.Has(domain.IssueUnmatchedParticipant) {
		res := r.pipeline.RematchGuests(ctx, m)
		guestsMatched = res.ItemsProcessed > 0
		report.Actions = append(report.Actions, fromResult(ActionRematchParticipants, res, "participants matched"))
	}

	// Newly matched guests only reach attendance records through a sync.
	if before.Has(domain.IssueStaleSync) || before.Has(domain.IssueLastRunFailed) || guestsMatched {
		report.Actions = append(report.Actions, r.resync(ctx, meetingID))
	}

	after, err := r.health.Diagnose(ctx, meetingID)
	if err != nil {
		return report, fmt.Errorf("diagnose after recovery: %w", err)
	}
	report.After = after
	if r.cache != nil {
		if err := r.cache.SetReport(ctx, after); err != nil {
			logger.Warn("health cache write failed", "error", err)
		}
	}

	logger.Info("recovery finished",
		"actions", len(report.Actions),
		"succeeded", report.Succeeded(),
		"status_before", before.Status,
		"status_after", after.Status,
	)
	return report, nil
}

func (r *RecoveryManager) invalidateCaches(ctx context.Context, meetingID int64) domain.RecoveryAction {
	action := domain.RecoveryAction{Name: ActionInvalidateCaches, Success: true}
	if r.identity != nil {
		r.identity.Invalidate()
	}
	if r.cache != nil {
		if err := r.cache.Invalidate(ctx, meetingID); err != nil {
			action.Success = false
			action.Error = err.Error()
		}
	}
	return action
}

func (r *RecoveryManager) resync(ctx context.Context, meetingID int64) domain.RecoveryAction {
	action := domain.RecoveryAction{Name: ActionResync}

	result, err := r.syncer.SyncMeeting(ctx, meetingID, domain.SyncFull)
	switch {
	case errors.Is(err, domain.ErrSyncInProgress):
		action.Detail = "another sync is already running"
		action.Success = true
	case err != nil:
		action.Error = err.Error()
	default:
		action.Success = result.Success
		action.Detail = fmt.Sprintf("run %d %s: %s", result.RunID, result.Status, result.Message)
		if !result.Success {
			action.Error = result.Message
		}
	}
	return action
}

func fromResult(name string, res domain.DomainResult, noun string) domain.RecoveryAction {
	action := domain.RecoveryAction{
		Name:    name,
		Success: res.Success,
		Detail:  fmt.Sprintf("%d %s", res.ItemsProcessed, noun),
	}
	if !res.Success {
		action.Error = res.Error
	}
	return action
}
