// Package memory keeps all sync state in process. It mirrors the postgres
// stores, including their uniqueness keys, and backs tests and local runs.
package memory

import (
	"context"
	"sync"

	"meeting_sync/internal/domain"
)

type DB struct {
	mu sync.Mutex

	nextID int64

	users       map[int64]domain.User
	credentials map[int64]domain.Credential
	meetings    map[int64]domain.Meeting
	slots       map[int64]domain.MeetingSlot
	attendance  map[int64]domain.AttendanceRecord
	sessions    map[int64]domain.ParticipantSession
	chat        map[int64]domain.ChatMessage
	recordings  map[int64]domain.Recording
	files       map[int64]domain.SharedFile
	runs        map[int64]domain.SyncRun
}

func NewDB() *DB {
	return &DB{
		users:       make(map[int64]domain.User),
		credentials: make(map[int64]domain.Credential),
		meetings:    make(map[int64]domain.Meeting),
		slots:       make(map[int64]domain.MeetingSlot),
		attendance:  make(map[int64]domain.AttendanceRecord),
		sessions:    make(map[int64]domain.ParticipantSession),
		chat:        make(map[int64]domain.ChatMessage),
		recordings:  make(map[int64]domain.Recording),
		files:       make(map[int64]domain.SharedFile),
		runs:        make(map[int64]domain.SyncRun),
	}
}

func (db *DB) id() int64 {
	db.nextID++
	return db.nextID
}

// PingContext always succeeds.
func (db *DB) PingContext(ctx context.Context) error {
	return ctx.Err()
}

func (db *DB) Recycle() {}

// TransactionManager runs fn directly; every store call is already atomic.
type TransactionManager struct{}

func NewTransactionManager() *TransactionManager {
	return &TransactionManager{}
}

func (TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func clone(md domain.Metadata) domain.Metadata {
	out := make(domain.Metadata, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
