package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Yongqing112/calendar/pkg/calendar"
	"github.com/Yongqing112/calendar/pkg/calendar/observability"
)

// DefaultChunkSize is the number of rows committed per batch.
const DefaultChunkSize = 100

// Pipeline reads an import file, validates each row, and commits
// accepted rows to the store in fixed-size chunks. Each chunk is
// committed as one unit: a parse or validation failure anywhere in a
// chunk aborts that chunk's commit and stops the run. Chunks committed
// before the failure remain persisted.
type Pipeline struct {
	store     calendar.Store
	chunkSize int
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithChunkSize overrides the default chunk size.
func WithChunkSize(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.chunkSize = n
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m observability.MetricsRecorder) PipelineOption {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithSpans attaches a span manager for tracing.
func WithSpans(sm observability.SpanManager) PipelineOption {
	return func(p *Pipeline) {
		if sm != nil {
			p.spans = sm
		}
	}
}

// NewPipeline creates a Pipeline writing to st.
func NewPipeline(st calendar.Store, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		store:     st,
		chunkSize: DefaultChunkSize,
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarizes a pipeline run.
type Result struct {
	RowsRead        int
	RowsImported    int
	ChunksCommitted int
}

// Run imports the file at path. On failure it returns the partial
// Result alongside the error; rows from chunks committed before the
// failure are already persisted.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return &Result{}, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	return p.run(ctx, NewReader(f))
}

func (p *Pipeline) run(ctx context.Context, reader *Reader) (*Result, error) {
	result := &Result{}
	chunk := make([]*calendar.Event, 0, p.chunkSize)

	commit := func() error {
		if len(chunk) == 0 {
			return nil
		}
		ctx, span := p.spans.StartChunkSpan(ctx, result.ChunksCommitted, len(chunk))
		err := p.store.InsertBatch(ctx, chunk)
		p.spans.EndSpanWithError(span, err)
		if err != nil {
			return fmt.Errorf("commit chunk %d: %w", result.ChunksCommitted, err)
		}

		result.RowsImported += len(chunk)
		result.ChunksCommitted++
		p.metrics.RecordImportRows(ctx, len(chunk))
		observability.LogChunkCommit(p.logger, result.ChunksCommitted-1, len(chunk))
		chunk = chunk[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, err
		}

		result.RowsRead++
		if err := row.Event.Validate(); err != nil {
			// The whole chunk fails as a unit; none of its rows are
			// committed.
			return result, &RowError{Line: row.Line, Message: err.Error(), Cause: err}
		}

		chunk = append(chunk, row.Event)
		if len(chunk) == p.chunkSize {
			if err := commit(); err != nil {
				return result, err
			}
		}
	}

	if err := commit(); err != nil {
		return result, err
	}
	return result, nil
}
