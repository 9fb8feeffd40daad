package storage

import (
	"context"
	"errors"

	"github.com/yourname/sleepreport/internal"
)

var (
	ErrNotFound       = errors.New("storage: not found")
	ErrDuplicateEntry = errors.New("storage: a record for this user and date already exists")
)

// RecordFilter narrows FetchRecords. Empty fields match everything.
type RecordFilter struct {
	User string
	Date string // YYYY-MM-DD
}

// RecordStore keeps at most one SleepRecord per user per date. FetchRecords
// makes no ordering promise.
type RecordStore interface {
	SaveRecord(ctx context.Context, rec *internal.SleepRecord) error
	FetchRecords(ctx context.Context, filter RecordFilter) ([]internal.SleepRecord, error)
	HasEntry(ctx context.Context, user, date string) (bool, error)
}

type UserRepository interface {
	GetUserByToken(ctx context.Context, token string) (*internal.User, error)
	GetUserByLogin(ctx context.Context, login string) (*internal.User, error)
}

// Store is what a backend provides.
type Store interface {
	RecordStore
	UserRepository
	Close() error
}

func matches(rec *internal.SleepRecord, f RecordFilter) bool {
	if f.User != "" && rec.User != f.User {
		return false
	}
	if f.Date != "" && rec.Date != f.Date {
		return false
	}
	return true
}
