package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordEventOp does nothing.
func (NoopMetrics) RecordEventOp(_ context.Context, _ string, _ time.Duration, _ error) {}

// RecordImportRows does nothing.
func (NoopMetrics) RecordImportRows(_ context.Context, _ int) {}

// RecordImportJob does nothing.
func (NoopMetrics) RecordImportJob(_ context.Context, _ bool, _ time.Duration) {}

// NoopSpanManager is a SpanManager that does nothing.
// Use when tracing is disabled to avoid overhead.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

// noopSpan is a span that does nothing.
var noopSpan = noop.Span{}

// StartImportSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartImportSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartChunkSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartChunkSpan(ctx context.Context, _, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}
