package normalizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"meeting_sync/internal/domain"
)

type Resolver interface {
	Resolve(ctx context.Context, d domain.Descriptor, mc domain.MatchContext) (domain.Match, error)
}

type AttendanceStore interface {
	Upsert(ctx context.Context, rec *domain.AttendanceRecord) error
}

type SessionStore interface {
	Upsert(ctx context.Context, ps *domain.ParticipantSession) error
	ListUnmatched(ctx context.Context, meetingID int64) ([]domain.ParticipantSession, error)
	AttachUser(ctx context.Context, id, userID int64, method domain.MatchMethod, conf domain.Confidence) (bool, error)
}

type ChatStore interface {
	Upsert(ctx context.Context, msg *domain.ChatMessage) error
	ListUnmatched(ctx context.Context, meetingID int64) ([]domain.ChatMessage, error)
	AssignSender(ctx context.Context, id, senderID int64, md domain.Metadata) (bool, error)
}

type RecordingStore interface {
	Upsert(ctx context.Context, r *domain.Recording) error
}

type FileStore interface {
	Upsert(ctx context.Context, f *domain.SharedFile) error
}

// Guard wraps every write; see resilience.StorageGuard.
type Guard interface {
	Run(ctx context.Context, op string, fn func(ctx context.Context) error) error
}

type Stores struct {
	Attendance AttendanceStore
	Sessions   SessionStore
	Chat       ChatStore
	Recordings RecordingStore
	Files      FileStore
}

// Config holds the attendance status thresholds relative to the scheduled window.
type Config struct {
	LateAfter       time.Duration
	LeftEarlyBefore time.Duration
	MinPresence     time.Duration
}

// Normalizer turns raw platform data into stored records. Each method
// handles one domain and reports per-item failures in its result instead of
// aborting.
type Normalizer struct {
	resolver Resolver
	stores   Stores
	guard    Guard
	cfg      Config
	logger   *slog.Logger
}

func New(resolver Resolver, stores Stores, guard Guard, cfg Config, logger *slog.Logger) *Normalizer {
	if cfg.LateAfter <= 0 {
		cfg.LateAfter = 10 * time.Minute
	}
	if cfg.LeftEarlyBefore <= 0 {
		cfg.LeftEarlyBefore = 10 * time.Minute
	}
	if cfg.MinPresence <= 0 {
		cfg.MinPresence = time.Minute
	}
	return &Normalizer{
		resolver: resolver,
		stores:   stores,
		guard:    guard,
		cfg:      cfg,
		logger:   logger.With("component", "normalizer"),
	}
}

func matchContext(m *domain.Meeting) domain.MatchContext {
	return domain.MatchContext{
		MeetingID:   m.ID,
		OrgUnitID:   m.OrgUnitID,
		OrganizerID: m.CreatorID,
	}
}

// tally collects item counts for one domain.
type tally struct {
	result  domain.DomainResult
	lastErr error
}

func newTally(d domain.DataDomain, items int) *tally {
	return &tally{result: domain.DomainResult{Domain: d, NoData: items == 0}}
}

func (t *tally) ok(n int) {
	t.result.ItemsProcessed += n
}

func (t *tally) failed(n int, err error) {
	t.result.ItemsFailed += n
	t.lastErr = err
}

// done reports the domain as failed only when nothing could be stored.
func (t *tally) done() domain.DomainResult {
	r := t.result
	r.Success = true
	switch {
	case r.ItemsFailed > 0 && r.ItemsProcessed == 0:
		r.Fail(t.lastErr)
	case r.ItemsFailed > 0:
		r.ErrorKind = domain.KindPartialItemFailure
		r.Error = fmt.Sprintf("%d items failed: %v", r.ItemsFailed, t.lastErr)
	}
	return r
}

func ptr[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
