package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

type ticketRepository struct {
	mu      sync.RWMutex
	tickets map[types.TicketID]*model.Ticket
	nextID  types.TicketID

	onDelete func(ctx context.Context, id types.TicketID) error
}

func newTicketRepository() *ticketRepository {
	return &ticketRepository{
		tickets: make(map[types.TicketID]*model.Ticket),
	}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := time.Now().UTC()

	created := ticket.Clone()
	created.ID = r.nextID
	created.Status = types.TicketStatusPending
	created.Priority = ticket.Priority.Normalize()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.tickets[created.ID] = created
	return created.Clone(), nil
}

func (r *ticketRepository) Get(ctx context.Context, id types.TicketID) (*model.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, exists := r.tickets[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "ticket not found", goerr.V("id", id))
	}
	return ticket.Clone(), nil
}

func (r *ticketRepository) List(ctx context.Context, opts ...interfaces.ListTicketOption) ([]*model.Ticket, error) {
	filter := interfaces.BuildListTicketFilter(opts)

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		if filter.Owner != "" && t.CreatedBy != filter.Owner {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Kind != "" && t.Kind != filter.Kind {
			continue
		}
		result = append(result, t.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.tickets[ticket.ID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "ticket not found", goerr.V("id", ticket.ID))
	}

	updated := ticket.Clone()
	updated.CreatedAt = stored.CreatedAt
	// Status only moves through Transition; Update cannot overwrite a
	// concurrent status change.
	updated.Status = stored.Status
	updated.UpdatedAt = time.Now().UTC()

	r.tickets[ticket.ID] = updated
	return updated.Clone(), nil
}

func (r *ticketRepository) Transition(ctx context.Context, id types.TicketID, from, to types.TicketStatus) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.tickets[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "ticket not found", goerr.V("id", id))
	}

	// Re-checked under the write lock: a duplicate delivery that lost the
	// race observes the new status here and fails without mutation.
	if stored.Status != from {
		return nil, goerr.Wrap(types.ErrInvalidState, "ticket status changed",
			goerr.V("id", id),
			goerr.V("expected", from),
			goerr.V("actual", stored.Status),
		)
	}
	if !from.CanTransitionTo(to) {
		return nil, goerr.Wrap(types.ErrInvalidState, "illegal transition",
			goerr.V("id", id),
			goerr.V("from", from),
			goerr.V("to", to),
		)
	}

	stored.Status = to
	stored.UpdatedAt = time.Now().UTC()
	return stored.Clone(), nil
}

func (r *ticketRepository) Delete(ctx context.Context, id types.TicketID) error {
	r.mu.Lock()
	if _, exists := r.tickets[id]; !exists {
		r.mu.Unlock()
		return goerr.Wrap(types.ErrNotFound, "ticket not found", goerr.V("id", id))
	}
	delete(r.tickets, id)
	onDelete := r.onDelete
	r.mu.Unlock()

	if onDelete != nil {
		return onDelete(ctx, id)
	}
	return nil
}
