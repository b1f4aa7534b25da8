// Package observability provides structured logging, metrics, and
// tracing helpers for the calendar service.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records calendar service metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEventOp records a service operation (save, update, delete, search)
	// with its duration and error status.
	RecordEventOp(ctx context.Context, op string, duration time.Duration, err error)

	// RecordImportRows records rows committed by a bulk-import chunk.
	RecordImportRows(ctx context.Context, rows int)

	// RecordImportJob records an import job completion.
	RecordImportJob(ctx context.Context, success bool, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventOps      metric.Int64Counter
	eventLatency  metric.Float64Histogram
	eventErrors   metric.Int64Counter
	importRows    metric.Int64Counter
	importJobs    metric.Int64Counter
	importLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("calendar")

	eventOps, err := meter.Int64Counter("calendar.event.operations",
		metric.WithDescription("Number of event service operations"),
	)
	if err != nil {
		return nil, err
	}

	eventLatency, err := meter.Float64Histogram("calendar.event.latency_ms",
		metric.WithDescription("Event operation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	eventErrors, err := meter.Int64Counter("calendar.event.errors",
		metric.WithDescription("Number of failed event operations"),
	)
	if err != nil {
		return nil, err
	}

	importRows, err := meter.Int64Counter("calendar.import.rows",
		metric.WithDescription("Number of rows committed by bulk import"),
	)
	if err != nil {
		return nil, err
	}

	importJobs, err := meter.Int64Counter("calendar.import.jobs",
		metric.WithDescription("Number of completed import jobs"),
	)
	if err != nil {
		return nil, err
	}

	importLatency, err := meter.Float64Histogram("calendar.import.duration_ms",
		metric.WithDescription("Import job duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventOps:      eventOps,
		eventLatency:  eventLatency,
		eventErrors:   eventErrors,
		importRows:    importRows,
		importJobs:    importJobs,
		importLatency: importLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by the global OTel
// meter provider, or NoopMetrics if the meter cannot be created.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		return NoopMetrics{}
	}
	return m
}

// RecordEventOp implements MetricsRecorder.
func (m *otelMetrics) RecordEventOp(ctx context.Context, op string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("operation", op))

	m.eventOps.Add(ctx, 1, attrs)
	m.eventLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.eventErrors.Add(ctx, 1, attrs)
	}
}

// RecordImportRows implements MetricsRecorder.
func (m *otelMetrics) RecordImportRows(ctx context.Context, rows int) {
	m.importRows.Add(ctx, int64(rows))
}

// RecordImportJob implements MetricsRecorder.
func (m *otelMetrics) RecordImportJob(ctx context.Context, success bool, duration time.Duration) {
	m.importJobs.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	m.importLatency.Record(ctx, float64(duration.Milliseconds()))
}
