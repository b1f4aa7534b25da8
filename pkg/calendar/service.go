package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Yongqing112/calendar/pkg/calendar/observability"
)

// Service enforces the event business rules on top of a Store. It holds
// no cache; every operation round-trips to the store.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// NewService creates a Service backed by st.
// logger may be nil; metrics defaults to NoopMetrics when nil.
func NewService(st Store, logger *slog.Logger, metrics observability.MetricsRecorder) *Service {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Service{store: st, logger: logger, metrics: metrics}
}

// Save validates the candidate event and persists it, returning the
// stored event with its assigned id.
func (s *Service) Save(ctx context.Context, event *Event) (*Event, error) {
	done := observability.TimedOperation()

	if err := event.Validate(); err != nil {
		s.metrics.RecordEventOp(ctx, "save", elapsed(done), err)
		return nil, err
	}

	id, err := s.store.Insert(ctx, event)
	s.metrics.RecordEventOp(ctx, "save", elapsed(done), err)
	if err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("event created",
			slog.Int64("id", id),
			slog.String("created_by", event.CreatedBy),
		)
	}
	event.ID = id
	return event, nil
}

// FindByID returns the event with the given id, or *NotFoundError.
func (s *Service) FindByID(ctx context.Context, id int64) (*Event, error) {
	event, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("find event %d: %w", id, err)
	}
	return event, nil
}

// FindAll returns all stored events in unspecified order.
func (s *Service) FindAll(ctx context.Context) ([]*Event, error) {
	events, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Update overwrites Title, Description, StartTime, and EndTime on the
// stored event with the values from patch, unconditionally: empty or
// absent patch fields erase the stored values. This is full-replace
// semantics; callers must send a complete representation to keep prior
// values. ID, CreatedBy, and EventType are never modified.
func (s *Service) Update(ctx context.Context, id int64, patch *Event) (*Event, error) {
	done := observability.TimedOperation()

	event, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		s.metrics.RecordEventOp(ctx, "update", elapsed(done), err)
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		s.metrics.RecordEventOp(ctx, "update", elapsed(done), err)
		return nil, fmt.Errorf("update event %d: %w", id, err)
	}

	event.Title = patch.Title
	event.Description = patch.Description
	event.StartTime = patch.StartTime
	event.EndTime = patch.EndTime

	err = s.store.Update(ctx, event)
	s.metrics.RecordEventOp(ctx, "update", elapsed(done), err)
	if errors.Is(err, ErrNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("update event %d: %w", id, err)
	}
	return event, nil
}

// DeleteByID removes the event with the given id. Any store failure,
// including not-found, is wrapped in *DeletionError with the cause
// preserved.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	done := observability.TimedOperation()

	err := s.store.Delete(ctx, id)
	s.metrics.RecordEventOp(ctx, "delete", elapsed(done), err)
	if err != nil {
		return &DeletionError{ID: id, Cause: err}
	}

	if s.logger != nil {
		s.logger.Info("event deleted", slog.Int64("id", id))
	}
	return nil
}

// SearchByDateRange returns all events whose start time falls within the
// inclusive calendar-day window [startDate 00:00:00, endDate 23:59:59],
// ordered ascending by start time. Both dates are required and startDate
// must not be after endDate; equal dates form a valid single-day window.
func (s *Service) SearchByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*Event, error) {
	done := observability.TimedOperation()

	if startDate.IsZero() || endDate.IsZero() {
		err := &ValidationError{Message: "start date and end date cannot be null"}
		s.metrics.RecordEventOp(ctx, "search", elapsed(done), err)
		return nil, err
	}
	if startDate.After(endDate) {
		err := &ValidationError{Message: "start date must be before or equal to end date"}
		s.metrics.RecordEventOp(ctx, "search", elapsed(done), err)
		return nil, err
	}

	start := startOfDay(startDate)
	end := endOfDay(endDate)

	events, err := s.store.FindByRange(ctx, start, end)
	s.metrics.RecordEventOp(ctx, "search", elapsed(done), err)
	if err != nil {
		return nil, fmt.Errorf("search events by range: %w", err)
	}
	return events, nil
}

func startOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

func endOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
}

func elapsed(done func() float64) time.Duration {
	return time.Duration(done()) * time.Millisecond
}
