package interfaces

import (
	"time"
)

type EventType string

const (
	// Ledger events
	EventTypeEntryCreated EventType = "accounting.entry.created"
	EventTypeEntryUpdated EventType = "accounting.entry.updated"
	EventTypeEntryDeleted EventType = "accounting.entry.deleted"

	// Category events
	EventTypeCategoryCreated     EventType = "accounting.category.created"
	EventTypeCategoryDeactivated EventType = "accounting.category.deactivated"

	// Store events
	EventTypeStoreDegraded EventType = "accounting.store.degraded"
)

// Event is the message published after a successful accounting write so
// open dashboard sessions can refresh without polling.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	ActorID   string         `json:"actor_id,omitempty"`
	EntryID   string         `json:"entry_id,omitempty"`
	Date      string         `json:"date,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// EventPublisher pushes accounting events to interested consumers. Publishing
// is best effort: a failed publish never fails the write that produced it.
type EventPublisher interface {
	Publish(event Event) error
	Close() error
}
