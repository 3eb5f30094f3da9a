package service

import (
	"context"
	"errors"
	"fmt"

	"meeting_sync/internal/domain"
)

// Outcome is everything a finished run knows about itself.
type Outcome struct {
	Results []domain.DomainResult
	// Err aborted the run before or between domains.
	Err      error
	TimedOut bool
	// Occurred is false while the meeting is scheduled or cancelled.
	Occurred bool
}

type Verdict struct {
	Status  domain.RunStatus
	Reason  string
	Message string
}

func (v Verdict) Success() bool {
	return v.Status == domain.RunCompleted || v.Status == domain.RunPartial
}

// Classify turns a run outcome into its final status. Rules are applied in
// order; the first that matches wins.
func Classify(o Outcome, partialThreshold float64) Verdict {
	if partialThreshold <= 0 || partialThreshold > 1 {
		partialThreshold = 0.5
	}

	if o.TimedOut || errors.Is(o.Err, context.DeadlineExceeded) {
		return Verdict{Status: domain.RunFailed, Reason: domain.ReasonTimeout, Message: "sync timed out"}
	}

	if o.Err != nil {
		switch domain.KindOf(o.Err) {
		case domain.KindPreconditionMissing:
			return Verdict{Status: domain.RunFailed, Reason: domain.ReasonPrecondition, Message: o.Err.Error()}
		case domain.KindAuthFailure:
			return Verdict{Status: domain.RunFailed, Reason: domain.ReasonAuth, Message: "platform authentication failed: " + o.Err.Error()}
		}
		return Verdict{Status: domain.RunFailed, Message: "sync failed: " + o.Err.Error()}
	}

	var succeeded, noData, items int
	authFailed := false
	for _, r := range o.Results {
		if r.Success {
			succeeded++
		}
		if r.NoData {
			noData++
		}
		if r.ErrorKind == domain.KindAuthFailure {
			authFailed = true
		}
		items += r.ItemsProcessed + r.ItemsFailed
	}
	total := len(o.Results)

	switch {
	case total == 0:
		return Verdict{Status: domain.RunCompleted, Message: "nothing to sync"}
	case authFailed && succeeded == 0:
		return Verdict{Status: domain.RunFailed, Reason: domain.ReasonAuth, Message: "platform authentication failed"}
	case items == 0 && !o.Occurred:
		return Verdict{Status: domain.RunPartial, Reason: domain.ReasonNoData, Message: "no data: meeting may not have occurred"}
	case noData == total:
		return Verdict{Status: domain.RunPartial, Reason: domain.ReasonNoData, Message: "no data available yet"}
	case succeeded == total:
		return Verdict{Status: domain.RunCompleted, Message: "sync completed"}
	case float64(succeeded)/float64(total) >= partialThreshold:
		return Verdict{
			Status:  domain.RunPartial,
			Message: fmt.Sprintf("sync partially completed: %d of %d domains succeeded", succeeded, total),
		}
	}
	return Verdict{
		Status:  domain.RunFailed,
		Message: fmt.Sprintf("sync mostly failed: %d of %d domains succeeded", succeeded, total),
	}
}
