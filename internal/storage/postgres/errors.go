package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/lib/pq"

	"meeting_sync/internal/domain"
)

const queryCanceled pq.ErrorCode = "57014"

// classify tags driver errors with a storage kind so the storage guard can
// tell lost connections from constraint violations.
func classify(op string, err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	// Timeouts satisfy net.Error, so cancellation is settled first.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewError(domain.KindCancelled, op, err)
	}
	if domain.KindOf(err) != domain.KindUnknown {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == queryCanceled {
			return domain.NewError(domain.KindCancelled, op, err)
		}
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return domain.NewError(domain.KindStorageConnection, op, err)
		case "23":
			return domain.NewError(domain.KindStorageIntegrity, op, err)
		}
		return err
	}

	var netErr net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.As(err, &netErr):
		return domain.NewError(domain.KindStorageConnection, op, err)
	}
	return err
}
