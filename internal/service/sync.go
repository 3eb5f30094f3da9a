package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"meeting_sync/internal/config"
	"meeting_sync/internal/domain"
	"meeting_sync/internal/resilience"
)

type SyncService struct {
	meetings    MeetingStore
	runs        SyncRunStore
	credentials CredentialResolver
	sources     map[domain.Platform]Source
	pipeline    Pipeline
	txManager   TransactionManager
	guard       StorageGuard
	publisher   Publisher
	cache       ReportCache
	logger      *slog.Logger
	config      config.SyncConfig
}

func NewSyncService(
	meetings MeetingStore,
	runs SyncRunStore,
	credentials CredentialResolver,
	sources []Source,
	pipeline Pipeline,
	txManager TransactionManager,
	guard StorageGuard,
	publisher Publisher,
	cache ReportCache,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	bySource := make(map[domain.Platform]Source, len(sources))
	for _, src := range sources {
		bySource[src.Platform()] = src
	}
	return &SyncService{
		meetings:    meetings,
		runs:        runs,
		credentials: credentials,
		sources:     bySource,
		pipeline:    pipeline,
		txManager:   txManager,
		guard:       guard,
		publisher:   publisher,
		cache:       cache,
		logger:      logger.With("component", "sync"),
		config:      cfg,
	}
}

// SyncMeeting runs one sync of the given type. When another run holds the
// meeting it returns a skipped result together with domain.ErrSyncInProgress.
func (s *SyncService) SyncMeeting(ctx context.Context, meetingID int64, syncType domain.SyncType) (*domain.SyncResult, error) {
	startTime := time.Now()
	if syncType == "" {
		syncType = domain.SyncFull
	}

	m, err := s.meetings.Get(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}

	acquired, err := s.lease(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("begin sync: %w", err)
	}
	if !acquired {
		s.logger.Info("sync already in progress, skipping", "meeting_id", meetingID)
		return &domain.SyncResult{
			MeetingID: meetingID,
			Skipped:   true,
			Message:   domain.ErrSyncInProgress.Error(),
		}, domain.ErrSyncInProgress
	}

	run := &domain.SyncRun{
		MeetingID: meetingID,
		SyncType:  syncType,
		Status:    domain.RunStarted,
		StartedAt: startTime,
	}
	err = s.guard.Run(ctx, "start sync run", func(ctx context.Context) error {
		_, err := s.runs.Start(ctx, run)
		return err
	})
	if err != nil {
		s.release(ctx, m)
		return nil, fmt.Errorf("start sync run: %w", err)
	}

	logger := s.logger.With("meeting_id", meetingID, "run_id", run.ID)
	logger.Info("starting sync",
		"platform", m.Platform,
		"sync_type", syncType,
		"domains", len(syncType.Domains()),
	)

	outcome := s.execute(ctx, m, syncType.Domains(), logger)
	verdict := Classify(outcome, s.config.PartialThreshold)

	result := &domain.SyncResult{
		RunID:     run.ID,
		MeetingID: meetingID,
		Success:   verdict.Success(),
		Status:    verdict.Status,
		Reason:    verdict.Reason,
		Domains:   outcome.Results,
		Message:   verdict.Message,
	}
	for _, r := range outcome.Results {
		result.ItemsProcessed += r.ItemsProcessed
		result.ItemsFailed += r.ItemsFailed
	}
	result.Duration = time.Since(startTime)

	if err := s.finish(ctx, m, run, result); err != nil {
		logger.Error("failed to record sync outcome", "error", err)
		return result, fmt.Errorf("finish sync: %w", err)
	}

	logger.Info("sync finished",
		"status", result.Status,
		"reason", result.Reason,
		"items_processed", result.ItemsProcessed,
		"items_failed", result.ItemsFailed,
		"duration", result.Duration,
	)

	s.afterRun(ctx, run, logger)

	return result, nil
}

// execute fetches the selected domains concurrently and then normalizes them
// one at a time so writes for a meeting never interleave.
func (s *SyncService) execute(ctx context.Context, m *domain.Meeting, domains []domain.DataDomain, logger *slog.Logger) Outcome {
	outcome := Outcome{Occurred: m.HasOccurred()}

	if !m.HasReference() {
		outcome.Err = domain.NewError(domain.KindPreconditionMissing, "sync meeting", domain.ErrNoMeetingReference)
		return outcome
	}
	src, ok := s.sources[m.Platform]
	if !ok {
		outcome.Err = domain.NewError(domain.KindPreconditionMissing, "sync meeting",
			fmt.Errorf("%w: %s", domain.ErrUnsupportedPlatform, m.Platform))
		return outcome
	}

	cred, err := s.credentials.Resolve(ctx, m.Platform, m.OrgUnitID, m.CreatorID)
	if err != nil {
		outcome.Err = fmt.Errorf("resolve credential: %w", err)
		return outcome
	}

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	refs, err := s.refs(runCtx, m)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	fetches := make([]fetched, len(domains))
	var g errgroup.Group
	for i, d := range domains {
		g.Go(func() error {
			fctx, tracker := resilience.Track(runCtx)
			fetches[i] = s.fetch(fctx, src, cred, d, refs)
			fetches[i].attempts = tracker.Attempts()
			return nil
		})
	}
	_ = g.Wait()

	for _, f := range fetches {
		if err := runCtx.Err(); err != nil {
			r := domain.DomainResult{Domain: f.domain, Attempts: f.attempts}
			r.Fail(fmt.Errorf("%s skipped: %w", f.domain, err))
			outcome.Results = append(outcome.Results, r)
			continue
		}
		r := s.normalize(runCtx, m, f)
		logger.Debug("domain synced",
			"domain", r.Domain,
			"success", r.Success,
			"no_data", r.NoData,
			"items_processed", r.ItemsProcessed,
			"items_failed", r.ItemsFailed,
			"attempts", r.Attempts,
		)
		outcome.Results = append(outcome.Results, r)
	}

	if ctx.Err() != nil {
		outcome.Err = ctx.Err()
	} else if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		outcome.TimedOut = true
	}
	return outcome
}

// refs lists the platform meetings behind m: its own reference followed by
// one per additional slot.
func (s *SyncService) refs(ctx context.Context, m *domain.Meeting) ([]domain.MeetingRef, error) {
	primary := m.Ref()
	refs := []domain.MeetingRef{primary}

	slots, err := s.meetings.ListSlots(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	for _, slot := range slots {
		if slot.PlatformMeetingID == "" || slot.PlatformMeetingID == primary.PlatformMeetingID {
			continue
		}
		ref := primary
		ref.PlatformMeetingID = slot.PlatformMeetingID
		ref.ScheduledStart = slot.StartsAt
		refs = append(refs, ref)
	}
	return refs, nil
}

type fetched struct {
	domain       domain.DataDomain
	attempts     int
	err          error
	participants []domain.RawParticipant
	recordings   []domain.RawRecording
	chat         []domain.RawChatLine
	files        []domain.RawFile
}

// fetch pulls one domain. Attendance and chat are collected from every slot;
// recordings and files belong to the primary meeting.
func (s *SyncService) fetch(ctx context.Context, src Source, cred *domain.Credential, d domain.DataDomain, refs []domain.MeetingRef) fetched {
	f := fetched{domain: d}
	primary := refs[:1]

	switch d {
	case domain.DomainAttendance:
		f.participants, f.err = fetchEach(ctx, refs, func(ctx context.Context, ref domain.MeetingRef) ([]domain.RawParticipant, error) {
			return src.FetchAttendance(ctx, cred, ref)
		})
	case domain.DomainChat:
		f.chat, f.err = fetchEach(ctx, refs, func(ctx context.Context, ref domain.MeetingRef) ([]domain.RawChatLine, error) {
			return src.FetchChat(ctx, cred, ref)
		})
	case domain.DomainRecordings:
		f.recordings, f.err = fetchEach(ctx, primary, func(ctx context.Context, ref domain.MeetingRef) ([]domain.RawRecording, error) {
			return src.FetchRecordings(ctx, cred, ref)
		})
	case domain.DomainFiles:
		f.files, f.err = fetchEach(ctx, primary, func(ctx context.Context, ref domain.MeetingRef) ([]domain.RawFile, error) {
			return src.FetchFiles(ctx, cred, ref)
		})
	default:
		f.err = domain.NewError(domain.KindPermanent, "fetch", fmt.Errorf("unknown domain %q", d))
	}
	return f
}

// fetchEach concatenates items across refs. A ref without data yet is
// skipped unless no ref has any.
func fetchEach[T any](ctx context.Context, refs []domain.MeetingRef, fn func(ctx context.Context, ref domain.MeetingRef) ([]T, error)) ([]T, error) {
	var (
		out    []T
		noData error
	)
	for _, ref := range refs {
		items, err := fn(ctx, ref)
		switch {
		case err == nil:
			out = append(out, items...)
		case domain.KindOf(err) == domain.KindNoDataYet:
			noData = err
		default:
			return nil, err
		}
	}
	if len(out) == 0 && noData != nil {
		return nil, noData
	}
	return out, nil
}

func (s *SyncService) normalize(ctx context.Context, m *domain.Meeting, f fetched) domain.DomainResult {
	if f.err != nil {
		r := domain.DomainResult{Domain: f.domain, Attempts: f.attempts}
		if domain.KindOf(f.err) == domain.KindNoDataYet {
			r.Success = true
			r.NoData = true
			return r
		}
		r.Fail(f.err)
		return r
	}

	var r domain.DomainResult
	switch f.domain {
	case domain.DomainAttendance:
		r = s.pipeline.Attendance(ctx, m, f.participants)
	case domain.DomainRecordings:
		r = s.pipeline.Recordings(ctx, m, f.recordings)
	case domain.DomainChat:
		r = s.pipeline.Chat(ctx, m, f.chat)
	case domain.DomainFiles:
		r = s.pipeline.Files(ctx, m, f.files)
	}
	r.Domain = f.domain
	r.Attempts = f.attempts
	return r
}

// finish records the run outcome and the meeting status together. It is not
// interrupted by cancellation of ctx.
func (s *SyncService) finish(ctx context.Context, m *domain.Meeting, run *domain.SyncRun, result *domain.SyncResult) error {
	completedAt := time.Now()

	run.Status = result.Status
	run.ItemsProcessed = result.ItemsProcessed
	run.ItemsFailed = result.ItemsFailed
	run.DurationMs = result.Duration.Milliseconds()
	run.Details = result.Domains
	run.CompletedAt = &completedAt
	if result.Status != domain.RunCompleted {
		msg := result.Message
		run.ErrorMessage = &msg
	}

	return s.guard.Run(ctx, "finish sync", func(ctx context.Context) error {
		return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			if err := s.runs.Complete(txCtx, run); err != nil {
				return fmt.Errorf("complete sync run: %w", err)
			}
			if err := s.meetings.FinishSync(txCtx, m.ID, domain.MeetingSyncStatusFor(run.Status), completedAt); err != nil {
				return fmt.Errorf("update meeting sync status: %w", err)
			}
			return nil
		})
	})
}

func (s *SyncService) lease(ctx context.Context, meetingID int64) (bool, error) {
	var acquired bool
	err := s.guard.Run(ctx, "begin sync", func(ctx context.Context) error {
		var err error
		acquired, err = s.meetings.TryBeginSync(ctx, meetingID, s.config.LeaseTTL())
		return err
	})
	return acquired, err
}

// release hands the lease back with the status m had before it was taken.
// The last sync time is untouched since nothing was synced.
func (s *SyncService) release(ctx context.Context, m *domain.Meeting) {
	status := m.SyncStatus
	if status == domain.SyncInProgress || status == "" {
		status = domain.SyncPending
	}
	err := s.guard.Run(ctx, "release sync", func(ctx context.Context) error {
		return s.meetings.ReleaseSync(ctx, m.ID, status)
	})
	if err != nil {
		s.logger.Error("failed to release meeting", "meeting_id", m.ID, "error", err)
	}
}

// afterRun drops the cached health report and announces the run. Both are
// best effort.
func (s *SyncService) afterRun(ctx context.Context, run *domain.SyncRun, logger *slog.Logger) {
	ctx = context.WithoutCancel(ctx)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, run.MeetingID); err != nil {
			logger.Warn("failed to invalidate health report", "error", err)
		}
	}

	if s.publisher == nil {
		return
	}
	event := &domain.RunCompletedEvent{
		RunID:          run.ID,
		MeetingID:      run.MeetingID,
		SyncType:       run.SyncType,
		Status:         run.Status,
		ItemsProcessed: run.ItemsProcessed,
		ItemsFailed:    run.ItemsFailed,
		CompletedAt:    *run.CompletedAt,
	}
	if run.Status != domain.RunCompleted && run.ErrorMessage != nil {
		event.Reason = *run.ErrorMessage
	}
	if err := s.publisher.PublishRunCompleted(ctx, event); err != nil {
		logger.Warn("failed to publish run completed event", "error", err)
	}
}

// DeleteMeeting removes the meeting from its platform and then locally. A
// platform meeting that is already gone is not an error.
func (s *SyncService) DeleteMeeting(ctx context.Context, meetingID int64) error {
	m, err := s.meetings.Get(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("get meeting: %w", err)
	}

	acquired, err := s.lease(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("lock meeting: %w", err)
	}
	if !acquired {
		return domain.ErrSyncInProgress
	}

	if err := s.deleteRemote(ctx, m); err != nil {
		s.release(ctx, m)
		return err
	}

	err = s.guard.Run(ctx, "delete meeting", func(ctx context.Context) error {
		return s.meetings.Delete(ctx, meetingID)
	})
	if err != nil {
		s.release(ctx, m)
		return fmt.Errorf("delete meeting: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, meetingID); err != nil {
			s.logger.Warn("failed to invalidate health report", "meeting_id", meetingID, "error", err)
		}
	}

	s.logger.Info("meeting deleted", "meeting_id", meetingID, "platform", m.Platform)
	return nil
}

func (s *SyncService) deleteRemote(ctx context.Context, m *domain.Meeting) error {
	if !m.HasReference() {
		return nil
	}
	src, ok := s.sources[m.Platform]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedPlatform, m.Platform)
	}
	cred, err := s.credentials.Resolve(ctx, m.Platform, m.OrgUnitID, m.CreatorID)
	if err != nil {
		return fmt.Errorf("resolve credential: %w", err)
	}
	refs, err := s.refs(ctx, m)
	if err != nil {
		return err
	}

	for _, ref := range refs {
		err := src.DeleteMeeting(ctx, cred, ref)
		if err != nil && domain.KindOf(err) != domain.KindNoDataYet {
			return fmt.Errorf("delete platform meeting %s: %w", ref.PlatformMeetingID, err)
		}
	}
	return nil
}
