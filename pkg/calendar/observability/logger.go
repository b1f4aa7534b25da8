package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds import-job context to a logger.
// Returns a new logger with job_id and file fields.
func EnrichLogger(logger *slog.Logger, jobID, path string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("job_id", jobID),
		slog.String("file", path),
	)
}

// LogImportStart logs the start of an import job. The logger should
// already carry job context, usually from EnrichLogger.
func LogImportStart(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Info("import job starting")
}

// LogImportComplete logs successful import job completion.
func LogImportComplete(logger *slog.Logger, rows int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("import job completed",
		slog.Int("rows_imported", rows),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogImportError logs import job failure.
func LogImportError(logger *slog.Logger, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("import job failed",
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogChunkCommit logs a committed import chunk.
func LogChunkCommit(logger *slog.Logger, index, rows int) {
	if logger == nil {
		return
	}
	logger.Debug("chunk committed",
		slog.Int("chunk_index", index),
		slog.Int("rows", rows),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
