package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

type attachmentRepository struct {
	mu          sync.RWMutex
	attachments map[types.TicketID][]*model.Attachment
}

func newAttachmentRepository() *attachmentRepository {
	return &attachmentRepository{
		attachments: make(map[types.TicketID][]*model.Attachment),
	}
}

func copyAttachment(a *model.Attachment) *model.Attachment {
	copied := *a
	return &copied
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.Attachment) (*model.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyAttachment(attachment)
	if created.ID == "" {
		created.ID = uuid.Must(uuid.NewV7()).String()
	}
	created.UploadedAt = time.Now().UTC()

	r.attachments[created.TicketID] = append(r.attachments[created.TicketID], created)
	return copyAttachment(created), nil
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID types.TicketID) ([]*model.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.attachments[ticketID]
	result := make([]*model.Attachment, 0, len(stored))
	for _, a := range stored {
		result = append(result, copyAttachment(a))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UploadedAt.Before(result[j].UploadedAt)
	})

	return result, nil
}

func (r *attachmentRepository) DeleteByTicket(ctx context.Context, ticketID types.TicketID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.attachments, ticketID)
	return nil
}
