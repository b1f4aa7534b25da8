package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Yongqing112/calendar/pkg/calendar"
)

// MemoryStore is an in-memory event store for testing and embedding.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[int64]*calendar.Event
	nextID int64
	closed bool
}

var _ calendar.Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[int64]*calendar.Event),
	}
}

// Insert implements calendar.Store.
func (m *MemoryStore) Insert(ctx context.Context, event *calendar.Event) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, calendar.ErrStoreClosed
	}

	m.nextID++
	event.ID = m.nextID
	m.events[event.ID] = event.Clone()
	return event.ID, nil
}

// Get implements calendar.Store.
func (m *MemoryStore) Get(ctx context.Context, id int64) (*calendar.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, calendar.ErrStoreClosed
	}

	event, ok := m.events[id]
	if !ok {
		return nil, calendar.ErrNotFound
	}
	return event.Clone(), nil
}

// Update implements calendar.Store.
func (m *MemoryStore) Update(ctx context.Context, event *calendar.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return calendar.ErrStoreClosed
	}

	if _, ok := m.events[event.ID]; !ok {
		return calendar.ErrNotFound
	}
	m.events[event.ID] = event.Clone()
	return nil
}

// Delete implements calendar.Store.
func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return calendar.ErrStoreClosed
	}

	if _, ok := m.events[id]; !ok {
		return calendar.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

// ListAll implements calendar.Store.
func (m *MemoryStore) ListAll(ctx context.Context) ([]*calendar.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, calendar.ErrStoreClosed
	}

	events := make([]*calendar.Event, 0, len(m.events))
	for _, event := range m.events {
		events = append(events, event.Clone())
	}
	return events, nil
}

// FindByRange implements calendar.Store.
func (m *MemoryStore) FindByRange(ctx context.Context, start, end time.Time) ([]*calendar.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, calendar.ErrStoreClosed
	}

	var events []*calendar.Event
	for _, event := range m.events {
		if event.StartTime == nil {
			continue
		}
		if event.StartTime.Before(start) || event.StartTime.After(end) {
			continue
		}
		events = append(events, event.Clone())
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(*events[j].StartTime)
	})

	return events, nil
}

// InsertBatch implements calendar.Store.
func (m *MemoryStore) InsertBatch(ctx context.Context, events []*calendar.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return calendar.ErrStoreClosed
	}

	// All-or-nothing: nothing below can fail after this point, so the
	// batch commits as a unit.
	for _, event := range events {
		m.nextID++
		event.ID = m.nextID
		m.events[event.ID] = event.Clone()
	}
	return nil
}

// Close implements calendar.Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.events = nil
	return nil
}

// Len returns the number of stored events.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.events)
}
