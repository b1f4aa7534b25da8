package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns a reader to
// collect recorded metrics from.
func setupMetricsTest(t *testing.T) *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	t.Cleanup(func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	})

	return reader
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestRecordEventOp(t *testing.T) {
	reader := setupMetricsTest(t)

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records operation count and latency", func(t *testing.T) {
		m.RecordEventOp(ctx, "save", 5*time.Millisecond, nil)

		rm := collectMetrics(t, reader)

		ops := findMetric(rm, "calendar.event.operations")
		require.NotNil(t, ops)
		sum, ok := ops.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		require.NotEmpty(t, sum.DataPoints)

		latency := findMetric(rm, "calendar.event.latency_ms")
		require.NotNil(t, latency)
		hist, ok := latency.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("records errors when present", func(t *testing.T) {
		m.RecordEventOp(ctx, "delete", time.Millisecond, errors.New("delete failed"))

		rm := collectMetrics(t, reader)
		errMetric := findMetric(rm, "calendar.event.errors")
		require.NotNil(t, errMetric)

		sum, ok := errMetric.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.NotEmpty(t, sum.DataPoints)
	})
}

func TestRecordImportMetrics(t *testing.T) {
	reader := setupMetricsTest(t)

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordImportRows(ctx, 100)
	m.RecordImportJob(ctx, true, 250*time.Millisecond)

	rm := collectMetrics(t, reader)

	rows := findMetric(rm, "calendar.import.rows")
	require.NotNil(t, rows)
	sum, ok := rows.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.NotEmpty(t, sum.DataPoints)
	assert.Equal(t, int64(100), sum.DataPoints[0].Value)

	jobs := findMetric(rm, "calendar.import.jobs")
	require.NotNil(t, jobs)

	duration := findMetric(rm, "calendar.import.duration_ms")
	require.NotNil(t, duration)
}

func TestNoopMetrics(t *testing.T) {
	// Must not panic with no provider configured.
	var m MetricsRecorder = NoopMetrics{}
	ctx := context.Background()

	m.RecordEventOp(ctx, "save", time.Millisecond, nil)
	m.RecordImportRows(ctx, 1)
	m.RecordImportJob(ctx, false, time.Millisecond)
}
