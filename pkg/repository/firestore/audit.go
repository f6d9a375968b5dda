package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type auditRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAuditRepository(client *firestore.Client) *auditRepository {
	return &auditRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *auditRepository) auditCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_audit_entries"
	}
	return "audit_entries"
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditEntry) (*model.AuditEntry, error) {
	created := *entry
	if created.ID == "" {
		created.ID = uuid.Must(uuid.NewV7()).String()
	}
	created.CreatedAt = time.Now().UTC()

	if _, err := r.client.Collection(r.auditCollection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create audit entry",
			goerr.V("action", created.Action),
			goerr.V("entity_id", created.EntityID),
		)
	}

	return &created, nil
}

func (r *auditRepository) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*model.AuditEntry, error) {
	iter := r.client.Collection(r.auditCollection()).
		Where("entity_type", "==", entityType).
		Where("entity_id", "==", entityID).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var entries []*model.AuditEntry
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate audit entries",
				goerr.V("entity_type", entityType),
				goerr.V("entity_id", entityID),
			)
		}

		var entry model.AuditEntry
		if err := docSnap.DataTo(&entry); err != nil {
			return nil, goerr.Wrap(err, "failed to decode audit entry", goerr.V("doc_id", docSnap.Ref.ID))
		}

		entries = append(entries, &entry)
	}

	return entries, nil
}
