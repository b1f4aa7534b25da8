// Package importer implements the bulk-import pipeline: a delimited
// event file is parsed row by row, validated, and committed to the
// store in fixed-size chunks, with an asynchronous job runner in front.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Yongqing112/calendar/pkg/calendar"
)

// TimeLayout is the timestamp format used in import files.
const TimeLayout = "2006-01-02 15:04:05"

// fieldCount is the number of columns in an import row:
// createdBy,title,description,startTime,endTime,eventType
const fieldCount = 6

// RowError indicates a malformed or invalid import row. It aborts the
// containing chunk.
type RowError struct {
	Line    int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Message)
}

// Unwrap returns the underlying parse or validation error.
func (e *RowError) Unwrap() error {
	return e.Cause
}

// Row is a parsed import line.
type Row struct {
	Line  int
	Event *calendar.Event
}

// Reader streams candidate events from a delimited import file.
// The header line is always skipped.
type Reader struct {
	csv  *csv.Reader
	line int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	// Field counts are checked per row so a short row reports its line
	// number instead of a csv package error.
	cr.FieldsPerRecord = -1
	return &Reader{csv: cr}
}

// Read returns the next data row, io.EOF at end of input, or *RowError
// for a malformed row.
func (r *Reader) Read() (*Row, error) {
	if r.line == 0 {
		// Skip the header line.
		if _, err := r.csv.Read(); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, &RowError{Line: 1, Message: "malformed header", Cause: err}
		}
		r.line = 1
	}

	record, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	r.line++
	if err != nil {
		return nil, &RowError{Line: r.line, Message: "malformed row", Cause: err}
	}

	if len(record) != fieldCount {
		return nil, &RowError{
			Line:    r.line,
			Message: fmt.Sprintf("expected %d fields, got %d", fieldCount, len(record)),
		}
	}

	start, err := parseTimestamp(record[3])
	if err != nil {
		return nil, &RowError{Line: r.line, Message: "invalid startTime", Cause: err}
	}
	end, err := parseTimestamp(record[4])
	if err != nil {
		return nil, &RowError{Line: r.line, Message: "invalid endTime", Cause: err}
	}

	return &Row{
		Line: r.line,
		Event: &calendar.Event{
			CreatedBy:   record[0],
			Title:       record[1],
			Description: record[2],
			StartTime:   start,
			EndTime:     end,
			EventType:   record[5],
		},
	}, nil
}

func parseTimestamp(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
