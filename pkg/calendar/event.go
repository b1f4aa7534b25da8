// Package calendar implements the event lifecycle: validation, CRUD
// operations, and time-range search over a persistent event store.
package calendar

import "time"

// Event is a user-created calendar entry.
//
// StartTime and EndTime are pointers so that an absent time is
// distinguishable from the zero instant; both must be present for an
// event to pass validation.
type Event struct {
	// ID is assigned by the store on first insert and never changes.
	ID          int64      `json:"id"`
	CreatedBy   string     `json:"createdBy"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	EventType   string     `json:"eventType,omitempty"`
}

// Validate checks the time-range invariants required for an event to be
// accepted by Save or by the bulk importer.
func (e *Event) Validate() error {
	if e.StartTime == nil || e.EndTime == nil {
		return &ValidationError{Message: "startTime and endTime are required"}
	}
	if e.StartTime.After(*e.EndTime) {
		return &ValidationError{Message: "startTime must be before endTime"}
	}
	return nil
}

// Clone returns a deep copy so stored events cannot be mutated through
// shared pointers.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	cp := *e
	if e.StartTime != nil {
		t := *e.StartTime
		cp.StartTime = &t
	}
	if e.EndTime != nil {
		t := *e.EndTime
		cp.EndTime = &t
	}
	return &cp
}
