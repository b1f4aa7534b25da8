package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yongqing112/calendar/pkg/calendar/importer"
	"github.com/Yongqing112/calendar/pkg/calendar/store"
)

func writeCSV(t *testing.T, rows ...string) string {
	t.Helper()
	content := csvHeader
	for _, row := range rows {
		content += row + "\n"
	}
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestPipeline(t *testing.T, opts ...importer.PipelineOption) (*importer.Pipeline, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })
	return importer.NewPipeline(st, opts...), st
}

func TestPipelineRun_ImportsAll(t *testing.T) {
	p, st := newTestPipeline(t)

	path := writeCSV(t,
		"Admin,Meeting,Team meeting,2025-09-22 10:00:00,2025-09-22 11:00:00,Meeting",
		"User,Conference,Annual conference,2025-09-23 14:00:00,2025-09-23 16:00:00,Conference",
	)

	result, err := p.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowsRead)
	assert.Equal(t, 2, result.RowsImported)
	assert.Equal(t, 1, result.ChunksCommitted)

	events, err := st.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	byTitle := map[string]int{}
	for _, e := range events {
		byTitle[e.Title]++
		assert.Positive(t, e.ID)
	}
	assert.Equal(t, 1, byTitle["Meeting"])
	assert.Equal(t, 1, byTitle["Conference"])

	// Timestamps are parsed to the exact instant.
	meeting, err := st.FindByRange(context.Background(),
		time.Date(2025, 9, 22, 10, 0, 0, 0, time.Local),
		time.Date(2025, 9, 22, 10, 0, 0, 0, time.Local))
	require.NoError(t, err)
	require.Len(t, meeting, 1)
	assert.Equal(t, "Admin", meeting[0].CreatedBy)
	assert.True(t, meeting[0].EndTime.Equal(time.Date(2025, 9, 22, 11, 0, 0, 0, time.Local)))
}

func TestPipelineRun_InvalidRowAbortsChunk(t *testing.T) {
	p, st := newTestPipeline(t)

	// Second row has startTime after endTime: the chunk containing the
	// valid first row must not be committed either.
	path := writeCSV(t,
		"Admin,Meeting,desc,2025-09-22 10:00:00,2025-09-22 11:00:00,Meeting",
		"Admin,Backwards,desc,2025-09-23 16:00:00,2025-09-23 14:00:00,Meeting",
	)

	result, err := p.Run(context.Background(), path)
	var rowErr *importer.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 3, rowErr.Line)

	assert.Equal(t, 0, result.RowsImported)
	assert.Equal(t, 0, st.Len())
}

func TestPipelineRun_EarlierChunksRemainCommitted(t *testing.T) {
	p, st := newTestPipeline(t, importer.WithChunkSize(2))

	path := writeCSV(t,
		"Admin,a,desc,2025-09-22 10:00:00,2025-09-22 11:00:00,Meeting",
		"Admin,b,desc,2025-09-22 11:00:00,2025-09-22 12:00:00,Meeting",
		"Admin,bad,desc,2025-09-23 16:00:00,2025-09-23 14:00:00,Meeting",
	)

	result, err := p.Run(context.Background(), path)
	require.Error(t, err)

	// The first full chunk committed before the failing row was read.
	assert.Equal(t, 2, result.RowsImported)
	assert.Equal(t, 1, result.ChunksCommitted)
	assert.Equal(t, 2, st.Len())
}

func TestPipelineRun_MalformedRow(t *testing.T) {
	p, st := newTestPipeline(t)

	path := writeCSV(t,
		"Admin,Meeting,desc,2025-09-22 10:00:00,2025-09-22 11:00:00,Meeting",
		"Admin,too,few,fields",
	)

	_, err := p.Run(context.Background(), path)
	var rowErr *importer.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 3, rowErr.Line)
	assert.Equal(t, 0, st.Len())
}

func TestPipelineRun_MissingRequiredTimes(t *testing.T) {
	p, st := newTestPipeline(t)

	path := writeCSV(t, "Admin,Meeting,desc,,,Meeting")

	_, err := p.Run(context.Background(), path)
	var rowErr *importer.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Contains(t, rowErr.Error(), "startTime and endTime are required")
	assert.Equal(t, 0, st.Len())
}

func TestPipelineRun_MultipleChunks(t *testing.T) {
	p, st := newTestPipeline(t, importer.WithChunkSize(2))

	path := writeCSV(t,
		"Admin,a,desc,2025-09-22 10:00:00,2025-09-22 11:00:00,Meeting",
		"Admin,b,desc,2025-09-22 11:00:00,2025-09-22 12:00:00,Meeting",
		"Admin,c,desc,2025-09-22 12:00:00,2025-09-22 13:00:00,Meeting",
	)

	result, err := p.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, result.RowsImported)
	assert.Equal(t, 2, result.ChunksCommitted)
	assert.Equal(t, 3, st.Len())
}

func TestPipelineRun_MissingFile(t *testing.T) {
	p, _ := newTestPipeline(t)

	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "does-not-exist.csv"))
	assert.Error(t, err)
}

func TestPipelineRun_EmptyFile(t *testing.T) {
	p, st := newTestPipeline(t)

	path := writeCSV(t)

	result, err := p.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, result.RowsRead)
	assert.Equal(t, 0, st.Len())
}
