package interfaces

import (
	"context"

	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

// TicketRepository is the narrow read/write gateway over the persistent
// ticket record. It carries no business logic; lifecycle legality lives in
// the state machine and in Transition's compare-and-set guard.
type TicketRepository interface {
	// Create persists a new ticket and assigns its ID and timestamps
	Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error)

	// Get returns the ticket or ErrNotFound
	Get(ctx context.Context, id types.TicketID) (*model.Ticket, error)

	// List returns tickets matching the given options, newest first
	List(ctx context.Context, opts ...ListTicketOption) ([]*model.Ticket, error)

	// Update overwrites the stored ticket record
	Update(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error)

	// Transition atomically moves the ticket from one status to another.
	// It fails with ErrInvalidState unless the persisted status still
	// equals from at commit time and from -> to is a legal transition,
	// leaving the record untouched. This is the guard that keeps a
	// duplicate queue delivery from double-processing a ticket.
	Transition(ctx context.Context, id types.TicketID, from, to types.TicketStatus) (*model.Ticket, error)

	// Delete removes the ticket and cascades to its attachments
	Delete(ctx context.Context, id types.TicketID) error
}
