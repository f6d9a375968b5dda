package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type attachmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAttachmentRepository(client *firestore.Client) *attachmentRepository {
	return &attachmentRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *attachmentRepository) attachmentsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_attachments"
	}
	return "attachments"
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.Attachment) (*model.Attachment, error) {
	created := *attachment
	if created.ID == "" {
		created.ID = uuid.Must(uuid.NewV7()).String()
	}
	created.UploadedAt = time.Now().UTC()

	if _, err := r.client.Collection(r.attachmentsCollection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create attachment",
			goerr.V("id", created.ID),
			goerr.V("ticket_id", created.TicketID),
		)
	}

	return &created, nil
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID types.TicketID) ([]*model.Attachment, error) {
	iter := r.client.Collection(r.attachmentsCollection()).
		Where("ticket_id", "==", int64(ticketID)).
		OrderBy("uploaded_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var attachments []*model.Attachment
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate attachments", goerr.V("ticket_id", ticketID))
		}

		var attachment model.Attachment
		if err := docSnap.DataTo(&attachment); err != nil {
			return nil, goerr.Wrap(err, "failed to decode attachment", goerr.V("doc_id", docSnap.Ref.ID))
		}

		attachments = append(attachments, &attachment)
	}

	return attachments, nil
}

func (r *attachmentRepository) DeleteByTicket(ctx context.Context, ticketID types.TicketID) error {
	iter := r.client.Collection(r.attachmentsCollection()).
		Where("ticket_id", "==", int64(ticketID)).
		Documents(ctx)
	defer iter.Stop()

	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate attachments", goerr.V("ticket_id", ticketID))
		}

		if _, err := docSnap.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete attachment", goerr.V("doc_id", docSnap.Ref.ID))
		}
	}

	return nil
}
