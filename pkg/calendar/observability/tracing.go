package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the calendar tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("calendar")

// SpanManager handles trace span lifecycle for import runs.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartImportSpan starts a span for a whole import run.
	StartImportSpan(ctx context.Context, jobID, path string) (context.Context, trace.Span)

	// StartChunkSpan starts a span for a single chunk commit.
	// The chunk span should be a child of the import span.
	StartChunkSpan(ctx context.Context, index, size int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function.
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartImportSpan starts a span for a whole import run.
func (m *otelSpanManager) StartImportSpan(ctx context.Context, jobID, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "calendar.import",
		trace.WithAttributes(
			attribute.String("job.id", jobID),
			attribute.String("file.path", path),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartChunkSpan starts a span for a single chunk commit.
func (m *otelSpanManager) StartChunkSpan(ctx context.Context, index, size int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "calendar.import.chunk",
		trace.WithAttributes(
			attribute.Int("chunk.index", index),
			attribute.Int("chunk.size", size),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
