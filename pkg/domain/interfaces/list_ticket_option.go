package interfaces

import "github.com/opsforge-io/ticketd/pkg/domain/types"

// ListTicketFilter narrows a ticket listing
type ListTicketFilter struct {
	Owner  types.UserID
	Status types.TicketStatus
	Kind   types.TaskKind
}

// ListTicketOption configures a ticket listing
type ListTicketOption func(*ListTicketFilter)

// WithOwner filters tickets by creator
func WithOwner(owner types.UserID) ListTicketOption {
	return func(f *ListTicketFilter) {
		f.Owner = owner
	}
}

// WithStatus filters tickets by lifecycle status
func WithStatus(status types.TicketStatus) ListTicketOption {
	return func(f *ListTicketFilter) {
		f.Status = status
	}
}

// WithKind filters tickets by task kind
func WithKind(kind types.TaskKind) ListTicketOption {
	return func(f *ListTicketFilter) {
		f.Kind = kind
	}
}

// BuildListTicketFilter applies the options to an empty filter
func BuildListTicketFilter(opts []ListTicketOption) *ListTicketFilter {
	f := &ListTicketFilter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}
