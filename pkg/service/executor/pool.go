package executor

import (
	"context"
	"errors"

	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/service/queue"
	"github.com/opsforge-io/ticketd/pkg/utils/errutil"
	"github.com/opsforge-io/ticketd/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Dequeuer is the consuming side of the job queue
type Dequeuer interface {
	Dequeue(ctx context.Context) (*model.Job, error)
}

// Pool runs a fixed set of workers that drain the job queue
//
// Architecture assumptions:
// - Single server instance (workers share one in-process queue)
// - Failed jobs are not retried automatically; reprocess re-enqueues
type Pool struct {
	executor *Executor
	jobs     Dequeuer
	workers  int

	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewPool(executor *Executor, jobs Dequeuer, workers int) *Pool {
	if workers <= 0 {
		workers = 4
	}
	return &Pool{
		executor: executor,
		jobs:     jobs,
		workers:  workers,
	}
}

// Start launches the worker goroutines. It does not block.
func (p *Pool) Start(ctx context.Context) {
	logging.Default().Info("Job worker pool starting", "workers", p.workers)

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	group, ctx := errgroup.WithContext(ctx)
	p.group = group

	for i := 0; i < p.workers; i++ {
		group.Go(func() error {
			p.run(ctx)
			return nil
		})
	}
}

// Stop cancels the workers and waits for in-flight jobs to finish
func (p *Pool) Stop() {
	logging.Default().Info("Job worker pool stopping")
	if p.cancel != nil {
		p.cancel()
	}
	if p.group != nil {
		_ = p.group.Wait()
	}
	logging.Default().Info("Job worker pool stopped")
}

func (p *Pool) run(ctx context.Context) {
	for {
		job, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) || errors.Is(err, context.Canceled) {
				return
			}
			logging.From(ctx).Error("failed to dequeue job", "error", err)
			continue
		}

		if err := p.executor.RunJob(ctx, job); err != nil {
			_ = errutil.Handle(ctx, err, "job execution failed")
		}
	}
}
