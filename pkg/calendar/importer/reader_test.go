package importer_test

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yongqing112/calendar/pkg/calendar/importer"
)

const csvHeader = "createdBy,title,description,startTime,endTime,eventType\n"

func TestReader_ParsesRows(t *testing.T) {
	input := csvHeader +
		"Admin,Meeting,Team meeting,2025-09-22 10:00:00,2025-09-22 11:00:00,Meeting\n" +
		"User,Conference,Annual conference,2025-09-23 14:00:00,2025-09-23 16:00:00,Conference\n"

	r := importer.NewReader(strings.NewReader(input))

	row, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, 2, row.Line)
	assert.Equal(t, "Admin", row.Event.CreatedBy)
	assert.Equal(t, "Meeting", row.Event.Title)
	assert.Equal(t, "Team meeting", row.Event.Description)
	assert.Equal(t, "Meeting", row.Event.EventType)
	require.NotNil(t, row.Event.StartTime)
	assert.True(t, row.Event.StartTime.Equal(time.Date(2025, 9, 22, 10, 0, 0, 0, time.Local)))
	require.NotNil(t, row.Event.EndTime)
	assert.True(t, row.Event.EndTime.Equal(time.Date(2025, 9, 22, 11, 0, 0, 0, time.Local)))

	row, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, 3, row.Line)
	assert.Equal(t, "Conference", row.Event.Title)

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReader_SkipsHeader(t *testing.T) {
	r := importer.NewReader(strings.NewReader(csvHeader))

	_, err := r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReader_EmptyTimestampsAreAbsent(t *testing.T) {
	input := csvHeader + "Admin,Meeting,desc,,,Meeting\n"

	r := importer.NewReader(strings.NewReader(input))

	row, err := r.Read()
	require.NoError(t, err)
	assert.Nil(t, row.Event.StartTime)
	assert.Nil(t, row.Event.EndTime)

	// Absence is caught by validation, not by the reader.
	assert.Error(t, row.Event.Validate())
}

func TestReader_RowErrors(t *testing.T) {
	tests := []struct {
		name     string
		row      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "short row",
			row:      "Admin,Meeting,desc\n",
			wantLine: 2,
			wantMsg:  "expected 6 fields",
		},
		{
			name:     "bad start timestamp",
			row:      "Admin,Meeting,desc,not-a-time,2025-09-22 11:00:00,Meeting\n",
			wantLine: 2,
			wantMsg:  "invalid startTime",
		},
		{
			name:     "bad end timestamp",
			row:      "Admin,Meeting,desc,2025-09-22 10:00:00,not-a-time,Meeting\n",
			wantLine: 2,
			wantMsg:  "invalid endTime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := importer.NewReader(strings.NewReader(csvHeader + tt.row))

			_, err := r.Read()
			var rowErr *importer.RowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, tt.wantLine, rowErr.Line)
			assert.Contains(t, rowErr.Error(), tt.wantMsg)
		})
	}
}
