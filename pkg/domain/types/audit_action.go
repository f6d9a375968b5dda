package types

// AuditAction tags one lifecycle event in the audit log
type AuditAction string

const (
	AuditActionTicketCreated       AuditAction = "ticket_created"
	AuditActionTicketCancelled     AuditAction = "ticket_cancelled"
	AuditActionReprocessRequested  AuditAction = "reprocess_requested"
	AuditActionProcessingStarted   AuditAction = "processing_started"
	AuditActionProcessingCompleted AuditAction = "processing_completed"
	AuditActionProcessingFailed    AuditAction = "processing_failed"
)

// String returns the string representation of the audit action
func (a AuditAction) String() string {
	return string(a)
}

// EntityTypeTicket is the entity type tag for ticket audit entries
const EntityTypeTicket = "ticket"
