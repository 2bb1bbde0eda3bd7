// Package store defines the record store for daily entries and their photos.
//
// Implementations live in subpackages (sqlite, postgres). Every read is scoped
// to one owner; callers never see another user's rows.
package store

import (
	"context"

	"github.com/custodylog/custodylog-server/internal/domain"
)

// RecentCustomActivityEntries is how many of the newest entries feed the
// custom activity suggestions.
const RecentCustomActivityEntries = 10

// Store persists entries and photos.
type Store interface {
	EntryStore
	PhotoStore

	// Ping checks the backing database is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// EntryStore creates and reads daily entries.
type EntryStore interface {
	// CreateEntry inserts e. The row is durable when it returns nil.
	CreateEntry(ctx context.Context, e *domain.DailyEntry) error

	// ListEntriesInRange returns the owner's entries with start <= date <= end,
	// newest date first (ties broken by newest created_at), photos joined.
	ListEntriesInRange(ctx context.Context, userID string, r domain.DateRange) ([]*domain.DailyEntry, error)

	// RecentCustomActivities returns the custom activity lists of the owner's
	// limit most recently created entries, newest first.
	RecentCustomActivities(ctx context.Context, userID string, limit int) ([][]string, error)

	// CountEntriesSince counts the owner's entries dated on or after since.
	CountEntriesSince(ctx context.Context, userID string, since domain.Date) (int, error)
}

// PhotoStore creates photo rows.
type PhotoStore interface {
	// CreatePhoto inserts p. Returns ErrNotFound when the entry does not exist.
	CreatePhoto(ctx context.Context, p *domain.Photo) error
}
