package calendar

import (
	"context"
	"errors"
	"time"
)

// Store persists calendar events. Implementations live in the store
// subpackage and must be safe for concurrent use.
type Store interface {
	// Insert assigns a new unique id, persists the event, and returns
	// the id. The id on the passed event is ignored.
	Insert(ctx context.Context, event *Event) (int64, error)

	// Get retrieves an event by id.
	// Returns ErrNotFound if no such event exists.
	Get(ctx context.Context, id int64) (*Event, error)

	// Update overwrites the stored record for event.ID.
	// Returns ErrNotFound if no such event exists.
	Update(ctx context.Context, event *Event) error

	// Delete removes an event by id.
	// Returns ErrNotFound if no row was removed.
	Delete(ctx context.Context, id int64) error

	// ListAll returns all events. Order is unspecified.
	ListAll(ctx context.Context) ([]*Event, error)

	// FindByRange returns all events whose StartTime falls within
	// [start, end], ordered ascending by StartTime. Events without a
	// StartTime never match.
	FindByRange(ctx context.Context, start, end time.Time) ([]*Event, error)

	// InsertBatch persists the events as a single unit: either every
	// event is inserted (and has its ID populated) or none are.
	InsertBatch(ctx context.Context, events []*Event) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates the event doesn't exist.
	ErrNotFound = errors.New("event not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("event store closed")
)
