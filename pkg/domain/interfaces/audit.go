package interfaces

import (
	"context"

	"github.com/opsforge-io/ticketd/pkg/domain/model"
)

// AuditRepository is an append-only store of lifecycle events
type AuditRepository interface {
	// Create appends an entry and assigns its ID and timestamp
	Create(ctx context.Context, entry *model.AuditEntry) (*model.AuditEntry, error)

	// ListByEntity returns all entries for one entity in creation order
	ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*model.AuditEntry, error)
}
