package identity

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"meeting_sync/internal/domain"
)

// Directory is the read side of the user accounts collaborator.
type Directory interface {
	UserByID(ctx context.Context, id int64) (*domain.User, error)
	UsersByOrgUnit(ctx context.Context, orgUnitID int64) ([]domain.User, error)
	UsersByEmail(ctx context.Context, email string) ([]domain.User, error)
}

// CorrelationStore finds users already linked to a platform participant.
type CorrelationStore interface {
	MatchedUserID(ctx context.Context, meetingID int64, platformParticipantID, platformUserID string) (int64, bool, error)
}

type Config struct {
	ScoreThreshold int
	CacheTTL       time.Duration
}

type Resolver struct {
	directory    Directory
	correlations CorrelationStore
	cache        *cache.Cache
	threshold    int
	chain        []Strategy
	logger       *slog.Logger
}

func NewResolver(directory Directory, correlations CorrelationStore, cfg Config, logger *slog.Logger) *Resolver {
	if cfg.ScoreThreshold <= 0 {
		cfg.ScoreThreshold = 100
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &Resolver{
		directory:    directory,
		correlations: correlations,
		cache:        cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		threshold:    cfg.ScoreThreshold,
		chain:        Chain,
		logger:       logger.With("component", "identity"),
	}
}

// Resolve maps a platform participant to an internal user. An unmatched
// result is not an error; errors only come from loading candidates.
func (r *Resolver) Resolve(ctx context.Context, d domain.Descriptor, mc domain.MatchContext) (domain.Match, error) {
	n := parseName(d.Name, d.Email)

	c, err := r.candidates(ctx, d, n, mc)
	if err != nil {
		return domain.Unmatched(), fmt.Errorf("load candidates: %w", err)
	}

	for _, s := range r.chain {
		if m, ok := s.Match(n, c); ok {
			r.logger.Debug("participant resolved",
				"meeting_id", mc.MeetingID,
				"name", d.Name,
				"user_id", m.User.ID,
				"method", m.Method,
				"confidence", m.Confidence,
			)
			return m, nil
		}
	}

	r.logger.Debug("participant unmatched", "meeting_id", mc.MeetingID, "name", d.Name)
	return domain.Unmatched(), nil
}

// Invalidate drops cached directory lookups.
func (r *Resolver) Invalidate() {
	r.cache.Flush()
}

func (r *Resolver) candidates(ctx context.Context, d domain.Descriptor, n parsed, mc domain.MatchContext) (*Candidates, error) {
	c := &Candidates{
		ByEmail:   make(map[string][]domain.User),
		Threshold: r.threshold,
	}

	if r.correlations != nil && (d.PlatformParticipantID != "" || d.PlatformUserID != "") {
		userID, ok, err := r.correlations.MatchedUserID(ctx, mc.MeetingID, d.PlatformParticipantID, d.PlatformUserID)
		if err != nil {
			return nil, fmt.Errorf("prior correlation: %w", err)
		}
		if ok {
			u, err := r.user(ctx, userID)
			if err != nil {
				return nil, err
			}
			c.Prior = u
		}
	}

	if mc.OrganizerID > 0 {
		u, err := r.user(ctx, mc.OrganizerID)
		if err != nil {
			return nil, err
		}
		c.Organizer = u
	}

	unit, err := r.unitUsers(ctx, mc.OrgUnitID)
	if err != nil {
		return nil, err
	}
	c.OrgUnit = unit

	for _, email := range []string{n.email, n.parenEmail} {
		if email == "" {
			continue
		}
		if _, done := c.ByEmail[email]; done {
			continue
		}
		users, err := r.usersByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		c.ByEmail[email] = users
	}

	return c, nil
}

func (r *Resolver) user(ctx context.Context, id int64) (*domain.User, error) {
	key := fmt.Sprintf("user:%d", id)
	if v, ok := r.cache.Get(key); ok {
		return v.(*domain.User), nil
	}
	u, err := r.directory.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", id, err)
	}
	if u != nil && !u.IsActive {
		u = nil
	}
	r.cache.SetDefault(key, u)
	return u, nil
}

func (r *Resolver) unitUsers(ctx context.Context, orgUnitID int64) ([]domain.User, error) {
	if orgUnitID == 0 {
		return nil, nil
	}
	key := fmt.Sprintf("unit:%d", orgUnitID)
	if v, ok := r.cache.Get(key); ok {
		return v.([]domain.User), nil
	}
	users, err := r.directory.UsersByOrgUnit(ctx, orgUnitID)
	if err != nil {
		return nil, fmt.Errorf("org unit %d users: %w", orgUnitID, err)
	}
	users = activeSorted(users)
	r.cache.SetDefault(key, users)
	return users, nil
}

func (r *Resolver) usersByEmail(ctx context.Context, email string) ([]domain.User, error) {
	key := "email:" + strings.ToLower(email)
	if v, ok := r.cache.Get(key); ok {
		return v.([]domain.User), nil
	}
	users, err := r.directory.UsersByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("users by email: %w", err)
	}
	users = activeSorted(users)
	r.cache.SetDefault(key, users)
	return users, nil
}

func activeSorted(users []domain.User) []domain.User {
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b domain.User) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}
