package memory

import (
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
)

// Memory is an in-memory Repository for development and tests
type Memory struct {
	ticket     *ticketRepository
	attachment *attachmentRepository
	audit      *auditRepository
}

var _ interfaces.Repository = &Memory{}

// New creates an empty in-memory repository
func New() *Memory {
	m := &Memory{
		ticket:     newTicketRepository(),
		attachment: newAttachmentRepository(),
		audit:      newAuditRepository(),
	}
	m.ticket.onDelete = m.attachment.DeleteByTicket
	return m
}

func (m *Memory) Ticket() interfaces.TicketRepository {
	return m.ticket
}

func (m *Memory) Attachment() interfaces.AttachmentRepository {
	return m.attachment
}

func (m *Memory) Audit() interfaces.AuditRepository {
	return m.audit
}

func (m *Memory) Close() error {
	return nil
}
