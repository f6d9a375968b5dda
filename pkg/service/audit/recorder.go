package audit

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

// Recorder appends lifecycle events to the audit trail. Entries are
// immutable once written.
type Recorder struct {
	repo interfaces.Repository
}

func New(repo interfaces.Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Entry describes one event to record. ActorID defaults to "system"
// when empty.
type Entry struct {
	Action      types.AuditAction
	TicketID    types.TicketID
	ActorID     types.UserID
	Description string
	OldValues   map[string]any
	NewValues   map[string]any
	Metadata    map[string]any
}

func (r *Recorder) Record(ctx context.Context, entry *Entry) error {
	actor := entry.ActorID
	if actor == "" {
		actor = "system"
	}

	_, err := r.repo.Audit().Create(ctx, &model.AuditEntry{
		Action:      entry.Action,
		EntityType:  types.EntityTypeTicket,
		EntityID:    int64(entry.TicketID),
		ActorID:     actor,
		Description: entry.Description,
		OldValues:   entry.OldValues,
		NewValues:   entry.NewValues,
		Metadata:    entry.Metadata,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to record audit entry",
			goerr.V("action", entry.Action),
			goerr.V("ticket_id", entry.TicketID),
		)
	}
	return nil
}

// ListForTicket returns the recorded history of one ticket in
// chronological order.
func (r *Recorder) ListForTicket(ctx context.Context, ticketID types.TicketID) ([]*model.AuditEntry, error) {
	entries, err := r.repo.Audit().ListByEntity(ctx, types.EntityTypeTicket, int64(ticketID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list audit entries", goerr.V("ticket_id", ticketID))
	}
	return entries, nil
}
