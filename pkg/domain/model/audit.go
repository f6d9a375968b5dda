package model

import (
	"time"

	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

// AuditEntry is an immutable record of one lifecycle event. ActorID is
// empty for system-initiated actions. Entries are never updated or deleted
// once written.
type AuditEntry struct {
	ID          string            `json:"id" firestore:"id"`
	Action      types.AuditAction `json:"action" firestore:"action"`
	EntityType  string            `json:"entity_type" firestore:"entity_type"`
	EntityID    int64             `json:"entity_id" firestore:"entity_id"`
	ActorID     types.UserID      `json:"actor_id,omitempty" firestore:"actor_id"`
	Description string            `json:"description,omitempty" firestore:"description"`
	OldValues   map[string]any    `json:"old_values,omitempty" firestore:"old_values"`
	NewValues   map[string]any    `json:"new_values,omitempty" firestore:"new_values"`
	Metadata    map[string]any    `json:"metadata,omitempty" firestore:"metadata"`
	CreatedAt   time.Time         `json:"created_at" firestore:"created_at"`
}
