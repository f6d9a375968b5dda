package interfaces

import (
	"context"

	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

// AttachmentRepository reads and writes ticket attachments
type AttachmentRepository interface {
	// Create persists a new attachment and assigns its ID
	Create(ctx context.Context, attachment *model.Attachment) (*model.Attachment, error)

	// ListByTicket returns all attachments of one ticket in upload order
	ListByTicket(ctx context.Context, ticketID types.TicketID) ([]*model.Attachment, error)

	// DeleteByTicket removes all attachments of one ticket
	DeleteByTicket(ctx context.Context, ticketID types.TicketID) error
}
