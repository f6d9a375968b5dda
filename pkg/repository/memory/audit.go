package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
)

type auditRepository struct {
	mu      sync.RWMutex
	entries []*model.AuditEntry
}

func newAuditRepository() *auditRepository {
	return &auditRepository{}
}

func copyAuditEntry(e *model.AuditEntry) *model.AuditEntry {
	copied := *e
	copied.OldValues = copyAnyMap(e.OldValues)
	copied.NewValues = copyAnyMap(e.NewValues)
	copied.Metadata = copyAnyMap(e.Metadata)
	return &copied
}

func copyAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	copied := make(map[string]any, len(m))
	for k, v := range m {
		copied[k] = v
	}
	return copied
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditEntry) (*model.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyAuditEntry(entry)
	if created.ID == "" {
		created.ID = uuid.Must(uuid.NewV7()).String()
	}
	created.CreatedAt = time.Now().UTC()

	r.entries = append(r.entries, created)
	return copyAuditEntry(created), nil
}

func (r *auditRepository) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*model.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.AuditEntry
	for _, e := range r.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			result = append(result, copyAuditEntry(e))
		}
	}
	return result, nil
}
