package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind classifies failures so callers can decide between retrying, failing
// the run, or counting an item and moving on.
type Kind string

const (
	KindUnknown             Kind = ""
	KindTransientNetwork    Kind = "transient_network"
	KindRateLimited         Kind = "rate_limited"
	KindAuthFailure         Kind = "auth_failure"
	KindPreconditionMissing Kind = "precondition_missing"
	KindNoDataYet           Kind = "no_data_yet"
	KindPartialItemFailure  Kind = "partial_item_failure"
	KindStorageConnection   Kind = "storage_connection"
	KindStorageIntegrity    Kind = "storage_integrity"
	KindPermanent           Kind = "permanent"
	KindCancelled           Kind = "cancelled"
)

var (
	ErrNoMeetingReference  = errors.New("meeting has no platform reference")
	ErrNoDataYet           = errors.New("no data available yet")
	ErrSyncInProgress      = errors.New("sync already in progress")
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrNoCredential        = errors.New("no platform credential configured")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

type Error struct {
	Kind       Kind
	Op         string
	Err        error
	RetryAfter time.Duration
	Hint       string
}

func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != KindUnknown {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrNoMeetingReference), errors.Is(err, ErrUnsupportedPlatform):
		return KindPreconditionMissing
	case errors.Is(err, ErrNoDataYet):
		return KindNoDataYet
	case errors.Is(err, ErrNoCredential):
		return KindAuthFailure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	}
	return KindUnknown
}

func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindTransientNetwork, KindRateLimited:
		return true
	}
	return false
}

func RetryAfterOf(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}

func HintOf(err error) string {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return ""
		}
		if e.Hint != "" {
			return e.Hint
		}
		err = e.Err
	}
	return ""
}
