package normalizer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"meeting_sync/internal/domain"
)

type presence struct {
	user     int64
	match    domain.Match
	join     time.Time
	leave    time.Time
	duration int
	sessions int
	devices  []string
}

// Attendance resolves every participant, stores a session for each (guests
// included) and one attendance record per matched user.
func (n *Normalizer) Attendance(ctx context.Context, m *domain.Meeting, raws []domain.RawParticipant) domain.DomainResult {
	t := newTally(domain.DomainAttendance, len(raws))
	mc := matchContext(m)
	byUser := make(map[int64]*presence)

	for _, raw := range raws {
		key := raw.ParticipantID
		if key == "" {
			key = "name:" + raw.Name
		}

		match, err := n.resolver.Resolve(ctx, domain.Descriptor{
			Name:                  raw.Name,
			Email:                 raw.Email,
			PlatformParticipantID: key,
			PlatformUserID:        raw.UserID,
		}, mc)
		if err != nil {
			n.logger.Warn("failed to resolve participant", "meeting_id", m.ID, "name", raw.Name, "error", err)
			t.failed(1, err)
			continue
		}

		session := &domain.ParticipantSession{
			MeetingID:             m.ID,
			PlatformParticipantID: key,
			PlatformUserID:        ptr(raw.UserID),
			DisplayName:           raw.Name,
			Email:                 ptr(raw.Email),
			JoinedAt:              timePtr(raw.JoinTime),
			LeftAt:                timePtr(raw.LeaveTime),
			MatchMethod:           match.Method,
			MatchConfidence:       match.Confidence,
		}
		if match.Matched() {
			session.UserID = &match.User.ID
		}
		err = n.guard.Run(ctx, "upsert session", func(ctx context.Context) error {
			return n.stores.Sessions.Upsert(ctx, session)
		})
		if err != nil {
			n.logger.Warn("failed to store session", "meeting_id", m.ID, "participant", key, "error", err)
			t.failed(1, err)
			continue
		}

		if !match.Matched() {
			t.ok(1)
			continue
		}
		match = storedMatch(match, session)

		p, ok := byUser[match.User.ID]
		if !ok {
			p = &presence{user: match.User.ID, match: match}
			byUser[match.User.ID] = p
		}
		p.add(raw)
	}

	users := make([]int64, 0, len(byUser))
	for id := range byUser {
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })

	for _, id := range users {
		p := byUser[id]
		info := domain.Metadata{"sessions": p.sessions}
		if len(p.devices) > 0 {
			info["devices"] = p.devices
		}
		rec := &domain.AttendanceRecord{
			MeetingID:       m.ID,
			UserID:          id,
			JoinTime:        timePtr(p.join),
			LeaveTime:       timePtr(p.leave),
			DurationSeconds: p.duration,
			Status:          n.status(m, p),
			DeviceInfo:      p.match.Annotate(info),
		}
		err := n.guard.Run(ctx, "upsert attendance", func(ctx context.Context) error {
			return n.stores.Attendance.Upsert(ctx, rec)
		})
		if err != nil {
			n.logger.Warn("failed to store attendance", "meeting_id", m.ID, "user_id", id, "error", err)
			t.failed(p.sessions, err)
			continue
		}
		t.ok(p.sessions)
	}

	return t.done()
}

// storedMatch reports the match the session row keeps. A participant linked
// on an earlier run resolves by prior correlation; the audit keeps the method
// that first accepted the link.
func storedMatch(match domain.Match, session *domain.ParticipantSession) domain.Match {
	if session.MatchMethod == "" || session.MatchMethod == match.Method {
		return match
	}
	return domain.Match{
		User:       match.User,
		Method:     session.MatchMethod,
		Confidence: session.MatchConfidence,
	}
}

func (p *presence) add(raw domain.RawParticipant) {
	p.sessions++
	if !raw.JoinTime.IsZero() && (p.join.IsZero() || raw.JoinTime.Before(p.join)) {
		p.join = raw.JoinTime
	}
	if raw.LeaveTime.After(p.leave) {
		p.leave = raw.LeaveTime
	}

	d := raw.DurationSeconds
	if d == 0 && !raw.JoinTime.IsZero() && raw.LeaveTime.After(raw.JoinTime) {
		d = int(raw.LeaveTime.Sub(raw.JoinTime).Seconds())
	}
	p.duration += d

	if raw.Device != "" {
		p.devices = append(p.devices, raw.Device)
	}
}

func (n *Normalizer) status(m *domain.Meeting, p *presence) domain.AttendanceStatus {
	switch {
	case time.Duration(p.duration)*time.Second < n.cfg.MinPresence:
		return domain.AttendanceAbsent
	case !p.join.IsZero() && p.join.After(m.ScheduledStart.Add(n.cfg.LateAfter)):
		return domain.AttendanceLate
	case m.ScheduledEnd != nil && !p.leave.IsZero() && p.leave.Before(m.ScheduledEnd.Add(-n.cfg.LeftEarlyBefore)):
		return domain.AttendanceLeftEarly
	}
	return domain.AttendancePresent
}

// RematchGuests retries identity resolution for sessions stored without a
// user. Existing links are never changed.
func (n *Normalizer) RematchGuests(ctx context.Context, m *domain.Meeting) domain.DomainResult {
	t := newTally(domain.DomainAttendance, 1)

	sessions, err := n.stores.Sessions.ListUnmatched(ctx, m.ID)
	if err != nil {
		t.result.Fail(fmt.Errorf("list unmatched sessions: %w", err))
		return t.result
	}
	t.result.NoData = len(sessions) == 0

	mc := matchContext(m)
	for _, ps := range sessions {
		d := domain.Descriptor{Name: ps.DisplayName, PlatformParticipantID: ps.PlatformParticipantID}
		if ps.Email != nil {
			d.Email = *ps.Email
		}
		if ps.PlatformUserID != nil {
			d.PlatformUserID = *ps.PlatformUserID
		}

		match, err := n.resolver.Resolve(ctx, d, mc)
		if err != nil {
			t.failed(1, err)
			continue
		}
		if !match.Matched() {
			continue
		}

		var attached bool
		err = n.guard.Run(ctx, "attach session user", func(ctx context.Context) error {
			var err error
			attached, err = n.stores.Sessions.AttachUser(ctx, ps.ID, match.User.ID, match.Method, match.Confidence)
			return err
		})
		if err != nil {
			t.failed(1, err)
			continue
		}
		if attached {
			n.logger.Info("guest matched",
				"meeting_id", m.ID,
				"session_id", ps.ID,
				"user_id", match.User.ID,
				"method", match.Method,
			)
			t.ok(1)
		}
	}
	return t.done()
}
