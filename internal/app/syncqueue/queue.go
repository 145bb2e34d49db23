// Package syncqueue delivers optimistic like and dislike outcomes to the
// upstream in the background.
//
// Enqueue never blocks the swipe path: a full or closed queue drops the job
// with a warning. Workers retry unavailable-upstream failures with
// exponential backoff and drop everything else. Nothing is rolled back
// locally and no failure reaches the viewer.
package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quoteswipe/internal/domain"
	"github.com/jsamuelsen/quoteswipe/internal/platform/telemetry"
	"github.com/jsamuelsen/quoteswipe/internal/ports"
)

// Job kinds.
const (
	KindLike    = "like"
	KindDislike = "dislike"
)

// ErrClosed is returned by Close when called twice.
var ErrClosed = errors.New("sync queue closed")

// Job is one swipe outcome to deliver.
type Job struct {
	Kind    string
	QuoteID domain.QuoteID

	// Viewer carries the token the write is made with.
	Viewer ports.Viewer

	Enqueued time.Time
}

// Options configures a Queue.
type Options struct {
	Workers        int
	BufferSize     int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	Recorder ports.SwipeRecorder
	Metrics  *telemetry.Collectors
	Logger   *slog.Logger
}

// Queue is a bounded buffer drained by a fixed worker pool.
type Queue struct {
	opts   Options
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	jobs   chan Job
	stop   chan struct{}
	wg     sync.WaitGroup
}

// New starts the workers.
func New(opts Options) *Queue {
	if opts.Recorder == nil {
		panic("syncqueue: recorder is required")
	}

	opts.Workers = max(opts.Workers, 1)
	opts.BufferSize = max(opts.BufferSize, 1)
	opts.MaxAttempts = max(opts.MaxAttempts, 1)

	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 100 * time.Millisecond
	}

	opts.MaxBackoff = max(opts.MaxBackoff, opts.InitialBackoff)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue{
		opts:   opts,
		logger: logger.With(slog.String("component", "sync_queue")),
		jobs:   make(chan Job, opts.BufferSize),
		stop:   make(chan struct{}),
	}

	for range opts.Workers {
		q.wg.Go(q.work)
	}

	return q
}

// Enqueue schedules job without blocking. It reports false when the job was
// dropped because the queue is full or closed.
func (q *Queue) Enqueue(job Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.drop(job, "queue closed")
		return false
	}

	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now()
	}

	select {
	case q.jobs <- job:
		q.opts.Metrics.SyncQueueDepth(len(q.jobs))
		return true
	default:
		q.drop(job, "queue full")
		return false
	}
}

// Len returns the number of jobs waiting.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Close stops accepting jobs and waits for the workers to drain the buffer.
// If ctx ends first, pending jobs are abandoned and ctx.Err() is returned.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}

	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	done := make(chan struct{})

	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		close(q.stop)
		return fmt.Errorf("draining sync queue: %w", ctx.Err())
	}
}

// Name implements ports.HealthChecker.
func (q *Queue) Name() string {
	return "sync-queue"
}

// Check implements ports.HealthChecker. A closed queue is unhealthy.
func (q *Queue) Check(context.Context) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}

	return nil
}

func (q *Queue) work() {
	for job := range q.jobs {
		q.opts.Metrics.SyncQueueDepth(len(q.jobs))
		q.deliver(job)
	}
}

func (q *Queue) deliver(job Job) {
	viewer := job.Viewer
	ctx := ports.WithViewer(context.Background(), &viewer)

	logger := q.logger.With(
		slog.String("kind", job.Kind),
		slog.String("quote_id", job.QuoteID.String()),
	)

	for attempt := range q.opts.MaxAttempts {
		err := q.send(ctx, job)
		if err == nil {
			q.opts.Metrics.SyncJob(job.Kind, telemetry.SyncSucceeded)
			logger.Debug("swipe synced",
				slog.Int("attempt", attempt+1),
				slog.Duration("latency", time.Since(job.Enqueued)),
			)

			return
		}

		if !domain.IsUnavailable(err) || attempt == q.opts.MaxAttempts-1 {
			q.opts.Metrics.SyncJob(job.Kind, telemetry.SyncFailed)
			logger.Warn("swipe sync failed", slog.Int("attempt", attempt+1), slog.Any("error", err))

			return
		}

		q.opts.Metrics.SyncJob(job.Kind, telemetry.SyncRetried)

		if !q.sleep(q.backoff(attempt)) {
			logger.Warn("swipe sync abandoned on shutdown")
			return
		}
	}
}

func (q *Queue) send(ctx context.Context, job Job) error {
	switch job.Kind {
	case KindLike:
		return q.opts.Recorder.RecordLike(ctx, job.QuoteID)
	case KindDislike:
		return q.opts.Recorder.RecordDislike(ctx, job.QuoteID)
	default:
		return domain.NewValidationError("kind", "unknown sync kind "+job.Kind)
	}
}

// backoff returns min(initial * 2^attempt, max).
func (q *Queue) backoff(attempt int) time.Duration {
	if attempt >= 30 {
		return q.opts.MaxBackoff
	}

	d := q.opts.InitialBackoff << attempt
	if d <= 0 || d > q.opts.MaxBackoff {
		return q.opts.MaxBackoff
	}

	return d
}

// sleep waits d and reports false if the queue was told to stop.
func (q *Queue) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-q.stop:
		return false
	}
}

func (q *Queue) drop(job Job, reason string) {
	q.opts.Metrics.SyncJob(job.Kind, telemetry.SyncDropped)
	q.logger.Warn("swipe sync dropped",
		slog.String("reason", reason),
		slog.String("kind", job.Kind),
		slog.String("quote_id", job.QuoteID.String()),
	)
}
