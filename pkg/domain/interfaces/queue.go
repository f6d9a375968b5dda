package interfaces

import (
	"context"

	"github.com/opsforge-io/ticketd/pkg/domain/model"
)

// JobQueue accepts jobs for asynchronous execution. Delivery is
// at-least-once with no ordering or deduplication; the executor's
// transition guard absorbs duplicates.
type JobQueue interface {
	Enqueue(ctx context.Context, job *model.Job) error
}
