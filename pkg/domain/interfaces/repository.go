package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Ticket() TicketRepository
	Attachment() AttachmentRepository
	Audit() AuditRepository

	Close() error
}
