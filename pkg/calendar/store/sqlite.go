// Package store provides the durable backends behind calendar.Store.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/Yongqing112/calendar/pkg/calendar"
)

// SQLiteStore persists events to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

var _ calendar.Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite event store.
// The path should be a file path (e.g., "./calendar.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_by TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			start_time INTEGER,
			end_time INTEGER,
			event_type TEXT NOT NULL DEFAULT ''
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_events_start_time
		ON events(start_time)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Times are stored as unix nanoseconds so range comparisons stay plain
// integer comparisons; NULL marks an absent time.

func timeToNanos(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func nanosToTime(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(0, n.Int64)
	return &t
}

// Insert implements calendar.Store.
func (s *SQLiteStore) Insert(ctx context.Context, event *calendar.Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, calendar.ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (created_by, title, description, start_time, end_time, event_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event.CreatedBy, event.Title, event.Description,
		timeToNanos(event.StartTime), timeToNanos(event.EndTime), event.EventType)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	event.ID = id
	return id, nil
}

// Get implements calendar.Store.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*calendar.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, calendar.ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_by, title, description, start_time, end_time, event_type
		FROM events WHERE id = ?
	`, id)

	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, calendar.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// Update implements calendar.Store.
func (s *SQLiteStore) Update(ctx context.Context, event *calendar.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return calendar.ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET created_by = ?, title = ?, description = ?, start_time = ?, end_time = ?, event_type = ?
		WHERE id = ?
	`, event.CreatedBy, event.Title, event.Description,
		timeToNanos(event.StartTime), timeToNanos(event.EndTime), event.EventType, event.ID)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return calendar.ErrNotFound
	}
	return nil
}

// Delete implements calendar.Store.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return calendar.ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return calendar.ErrNotFound
	}
	return nil
}

// ListAll implements calendar.Store.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]*calendar.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, calendar.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_by, title, description, start_time, end_time, event_type
		FROM events
	`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// FindByRange implements calendar.Store.
func (s *SQLiteStore) FindByRange(ctx context.Context, start, end time.Time) ([]*calendar.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, calendar.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_by, title, description, start_time, end_time, event_type
		FROM events
		WHERE start_time IS NOT NULL AND start_time BETWEEN ? AND ?
		ORDER BY start_time ASC
	`, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("find events by range: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// InsertBatch implements calendar.Store.
func (s *SQLiteStore) InsertBatch(ctx context.Context, events []*calendar.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return calendar.ErrStoreClosed
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch insert: %w", err)
	}

	ids := make([]int64, len(events))
	for i, event := range events {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO events (created_by, title, description, start_time, end_time, event_type)
			VALUES (?, ?, ?, ?, ?, ?)
		`, event.CreatedBy, event.Title, event.Description,
			timeToNanos(event.StartTime), timeToNanos(event.EndTime), event.EventType)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("batch insert event %d: %w", i, err)
		}
		if ids[i], err = res.LastInsertId(); err != nil {
			tx.Rollback()
			return fmt.Errorf("batch insert id %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch insert: %w", err)
	}

	// Assign ids only once the whole batch is durable.
	for i, event := range events {
		event.ID = ids[i]
	}
	return nil
}

// Close implements calendar.Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*calendar.Event, error) {
	var (
		event      calendar.Event
		start, end sql.NullInt64
	)
	if err := row.Scan(&event.ID, &event.CreatedBy, &event.Title,
		&event.Description, &start, &end, &event.EventType); err != nil {
		return nil, err
	}
	event.StartTime = nanosToTime(start)
	event.EndTime = nanosToTime(end)
	return &event, nil
}

func collectEvents(rows *sql.Rows) ([]*calendar.Event, error) {
	var events []*calendar.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
