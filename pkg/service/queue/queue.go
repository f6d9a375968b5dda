package queue

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
)

// ErrClosed is returned by Enqueue and Dequeue after Close
var ErrClosed = goerr.New("job queue is closed")

// Queue is an in-process job queue backed by a buffered channel.
//
// Architecture assumptions:
// - Single server instance (jobs do not survive a restart)
// - Tickets stuck in pending after a crash are recovered via reprocess
type Queue struct {
	jobs chan *model.Job

	mu     sync.RWMutex
	closed bool
}

var _ interfaces.JobQueue = &Queue{}

// New creates a queue with the given buffer size
func New(size int) *Queue {
	return &Queue{
		jobs: make(chan *model.Job, size),
	}
}

// Enqueue submits a job. It blocks while the buffer is full and fails
// once the context is done or the queue is closed.
func (q *Queue) Enqueue(ctx context.Context, job *model.Job) error {
	// The read lock is held across the send so Close cannot close the
	// channel under an in-flight Enqueue.
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return goerr.Wrap(ErrClosed, "enqueue rejected", goerr.V("job_id", job.ID))
	}

	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "enqueue cancelled", goerr.V("job_id", job.ID))
	}
}

// Dequeue blocks until a job is available. It returns ErrClosed once the
// queue is closed and drained.
func (q *Queue) Dequeue(ctx context.Context) (*model.Job, error) {
	select {
	case job, ok := <-q.jobs:
		if !ok {
			return nil, ErrClosed
		}
		return job, nil
	case <-ctx.Done():
		return nil, goerr.Wrap(ctx.Err(), "dequeue cancelled")
	}
}

// Close stops accepting jobs. Pending jobs remain dequeueable until the
// buffer drains. Close is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.jobs)
}
