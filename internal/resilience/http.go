package resilience

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"meeting_sync/internal/domain"
)

const maxErrorBody = 512

// CheckResponse maps a non-2xx response to a classified error. The body is
// read (bounded) for the message but not closed.
func CheckResponse(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewError(domain.KindNoDataYet, op, fmt.Errorf("%w: status 404", domain.ErrNoDataYet))
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return domain.NewError(domain.KindAuthFailure, op, err)
	case resp.StatusCode == http.StatusTooManyRequests:
		return &domain.Error{
			Kind:       domain.KindRateLimited,
			Op:         op,
			Err:        err,
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode >= 500:
		return domain.NewError(domain.KindTransientNetwork, op, err)
	}
	return domain.NewError(domain.KindPermanent, op, err)
}

// ClassifyTransportError wraps errors returned by http.Client.Do. Errors
// after ctx is done are cancellations; anything else is a transient network
// failure, client timeouts included.
func ClassifyTransportError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return domain.NewError(domain.KindCancelled, op, err)
	}
	if domain.KindOf(err) != domain.KindUnknown && domain.KindOf(err) != domain.KindCancelled {
		return err
	}
	return domain.NewError(domain.KindTransientNetwork, op, err)
}

// ParseRetryAfter accepts delta-seconds or an HTTP date.
func ParseRetryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
