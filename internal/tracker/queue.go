package tracker

import (
	"context"
	"time"
)

// Job is a unit of classification work. Duration is the cumulative time
// since the session started, not a delta since the previous job.
type Job struct {
	TabID      TabID
	Duration   time.Duration
	EnqueuedAt time.Time
}

// JobProcessor resolves one job completely.
type JobProcessor interface {
	Process(ctx context.Context, job Job)
}

// Queue buffers classification jobs in FIFO order for a single worker.
type Queue struct {
	jobs   *fifo[Job]
	logger Logger
}

// NewQueue creates an empty queue.
func NewQueue(logger Logger) *Queue {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Queue{jobs: newFIFO[Job](), logger: logger}
}

// Enqueue appends a job. It never blocks.
func (q *Queue) Enqueue(job Job) {
	q.logger.Debug("queued classification", "tab", job.TabID, "duration_s", int64(job.Duration/time.Second))
	q.jobs.push(job)
}

// Len returns the number of jobs waiting.
func (q *Queue) Len() int { return q.jobs.len() }

// Drain processes jobs one at a time until the queue is empty or ctx is
// cancelled. Each job fully resolves before the next begins.
func (q *Queue) Drain(ctx context.Context, p JobProcessor) int {
	n := 0
	for ctx.Err() == nil {
		job, ok := q.jobs.pop()
		if !ok {
			break
		}
		p.Process(ctx, job)
		n++
	}
	return n
}

// Run is the single worker loop. It returns when ctx is cancelled.
func (q *Queue) Run(ctx context.Context, p JobProcessor) error {
	for {
		q.Drain(ctx, p)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.jobs.signal:
		}
	}
}
