// Package events publishes entry lifecycle messages for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// EventEntryCreated is the event_type header of EntryCreated messages.
const EventEntryCreated = "entry.created"

// EntryCreated is published after an entry row and its photo loop complete.
type EntryCreated struct {
	EntryID       string    `json:"entry_id"`
	UserID        string    `json:"user_id"`
	Date          string    `json:"date"`
	PhotosStored  int       `json:"photos_stored"`
	PhotosSkipped int       `json:"photos_skipped"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers lifecycle events. Callers treat failures as non-fatal.
type Publisher interface {
	PublishEntryCreated(ctx context.Context, evt EntryCreated) error
	Close() error
}

// Noop discards every event. Used when no brokers are configured.
type Noop struct{}

// PublishEntryCreated does nothing.
func (Noop) PublishEntryCreated(context.Context, EntryCreated) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }

func encode(evt EntryCreated) ([]byte, error) {
	return json.Marshal(evt)
}
