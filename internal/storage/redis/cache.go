package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"meeting_sync/internal/domain"
)

const (
	Prefix    = "meeting_sync:"
	healthKey = Prefix + "health:"
)

// ReportCache keeps recent meeting health reports so dashboards do not
// recount every table on each request.
type ReportCache struct {
	rc  *redis.Client
	ttl time.Duration
}

func New(rc *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ReportCache{rc: rc, ttl: ttl}
}

// Connect opens a client and checks it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rc, nil
}

func reportKey(meetingID int64) string {
	return fmt.Sprintf("%s%d", healthKey, meetingID)
}

// GetReport returns nil without an error on a cache miss.
func (c *ReportCache) GetReport(ctx context.Context, meetingID int64) (*domain.HealthReport, error) {
	data, err := c.rc.Get(ctx, reportKey(meetingID)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get cached report: %w", err)
	}

	var report domain.HealthReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode cached report: %w", err)
	}
	return &report, nil
}

func (c *ReportCache) SetReport(ctx context.Context, report *domain.HealthReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.rc.Set(ctx, reportKey(report.MeetingID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache report: %w", err)
	}
	return nil
}

func (c *ReportCache) Invalidate(ctx context.Context, meetingID int64) error {
	if err := c.rc.Del(ctx, reportKey(meetingID)).Err(); err != nil {
		return fmt.Errorf("invalidate report: %w", err)
	}
	return nil
}
