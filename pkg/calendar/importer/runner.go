package importer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Yongqing112/calendar/pkg/calendar/observability"
)

// Status is the lifecycle state of an import job.
type Status string

// Job lifecycle: Queued -> Running -> {Completed, Failed}.
const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is a snapshot of an import job's state.
type Job struct {
	ID           string     `json:"id"`
	Path         string     `json:"-"`
	Status       Status     `json:"status"`
	SubmittedAt  time.Time  `json:"submittedAt"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
	RowsImported int        `json:"rowsImported"`
	Error        string     `json:"error,omitempty"`
}

// finished reports whether the job reached a terminal state.
func (j *Job) finished() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// ErrRunnerClosed indicates the runner no longer accepts submissions.
var ErrRunnerClosed = errors.New("import runner closed")

// ErrQueueFull indicates the submission queue is at capacity.
var ErrQueueFull = errors.New("import queue full")

// DefaultQueueSize is the submission queue capacity.
const DefaultQueueSize = 16

// Runner executes import jobs asynchronously. Submission returns
// immediately with a job id; a single worker goroutine drains the queue
// and runs the pipeline per job. Job state is queryable by id.
type Runner struct {
	pipeline *Pipeline
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	logger   *slog.Logger

	mu     sync.Mutex
	jobs   map[string]*Job
	closed bool

	queue chan string
	wg    sync.WaitGroup
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithQueueSize overrides the default submission queue capacity.
func WithQueueSize(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.queue = make(chan string, n)
		}
	}
}

// WithRunnerLogger attaches a structured logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithRunnerMetrics attaches a metrics recorder.
func WithRunnerMetrics(m observability.MetricsRecorder) RunnerOption {
	return func(r *Runner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithRunnerSpans attaches a span manager for tracing.
func WithRunnerSpans(sm observability.SpanManager) RunnerOption {
	return func(r *Runner) {
		if sm != nil {
			r.spans = sm
		}
	}
}

// NewRunner creates a Runner around p and starts its worker.
func NewRunner(p *Pipeline, opts ...RunnerOption) *Runner {
	r := &Runner{
		pipeline: p,
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		jobs:     make(map[string]*Job),
		queue:    make(chan string, DefaultQueueSize),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.work()
	return r
}

// Submit enqueues the file at path for import and returns the job id.
// The import runs asynchronously; use Job to observe its progress.
func (r *Runner) Submit(path string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", ErrRunnerClosed
	}

	job := &Job{
		ID:          uuid.New().String(),
		Path:        path,
		Status:      StatusQueued,
		SubmittedAt: time.Now(),
	}
	r.jobs[job.ID] = job

	// The send stays under the mutex so it cannot race Close's
	// close(r.queue): closed is set under the same lock first.
	select {
	case r.queue <- job.ID:
		return job.ID, nil
	default:
		delete(r.jobs, job.ID)
		return "", ErrQueueFull
	}
}

// Job returns a snapshot of the job with the given id.
func (r *Runner) Job(id string) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, false
	}
	cp := *job
	return &cp, true
}

// Prune removes finished jobs older than the cutoff, deleting their
// temp files best-effort. Returns the number of jobs removed.
func (r *Runner) Prune(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, job := range r.jobs {
		if !job.finished() || job.FinishedAt == nil || job.FinishedAt.After(cutoff) {
			continue
		}
		os.Remove(job.Path)
		delete(r.jobs, id)
		removed++
	}
	return removed
}

// Close stops accepting submissions, drains already-queued jobs, and
// waits for the worker to exit.
func (r *Runner) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	close(r.queue)
	r.wg.Wait()
	return nil
}

func (r *Runner) work() {
	defer r.wg.Done()

	for id := range r.queue {
		r.runJob(context.Background(), id)
	}
}

func (r *Runner) runJob(ctx context.Context, id string) {
	r.mu.Lock()
	job, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	now := time.Now()
	job.Status = StatusRunning
	job.StartedAt = &now
	path := job.Path
	r.mu.Unlock()

	logger := observability.EnrichLogger(r.logger, id, path)
	observability.LogImportStart(logger)
	done := observability.TimedOperation()

	ctx, span := r.spans.StartImportSpan(ctx, id, path)
	result, err := r.pipeline.Run(ctx, path)
	r.spans.EndSpanWithError(span, err)

	durationMs := done()
	r.metrics.RecordImportJob(ctx, err == nil, time.Duration(durationMs)*time.Millisecond)

	r.mu.Lock()
	finished := time.Now()
	job.FinishedAt = &finished
	job.RowsImported = result.RowsImported
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
	} else {
		job.Status = StatusCompleted
	}
	r.mu.Unlock()

	if err != nil {
		observability.LogImportError(logger, err, durationMs)
		return
	}
	observability.LogImportComplete(logger, result.RowsImported, durationMs)
}
