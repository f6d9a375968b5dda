package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/service/queue"
)

func TestQueueEnqueueDequeue(t *testing.T) {
	q := queue.New(4)
	ctx := context.Background()

	job := model.NewJob(types.TicketID(7))
	gt.NoError(t, q.Enqueue(ctx, job))

	got := gt.R1(q.Dequeue(ctx)).NoError(t)
	gt.Value(t, got.TicketID).Equal(types.TicketID(7))
	gt.Value(t, got.ID).Equal(job.ID)
}

func TestQueueDequeueRespectsContext(t *testing.T) {
	q := queue.New(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, context.DeadlineExceeded)).True()
}

func TestQueueCloseDrainsBufferedJobs(t *testing.T) {
	q := queue.New(2)
	ctx := context.Background()

	gt.NoError(t, q.Enqueue(ctx, model.NewJob(types.TicketID(1))))
	gt.NoError(t, q.Enqueue(ctx, model.NewJob(types.TicketID(2))))

	q.Close()
	q.Close() // idempotent

	gt.Error(t, q.Enqueue(ctx, model.NewJob(types.TicketID(3))))

	first := gt.R1(q.Dequeue(ctx)).NoError(t)
	gt.Value(t, first.TicketID).Equal(types.TicketID(1))
	second := gt.R1(q.Dequeue(ctx)).NoError(t)
	gt.Value(t, second.TicketID).Equal(types.TicketID(2))

	_, err := q.Dequeue(ctx)
	gt.Bool(t, errors.Is(err, queue.ErrClosed)).True()
}
