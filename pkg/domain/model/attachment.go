package model

import (
	"time"

	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

// Attachment is a file belonging to exactly one ticket. It is read-only to
// the engine; handlers that need file content resolve StoragePath through
// the document extractor.
type Attachment struct {
	ID          string         `json:"id" firestore:"id"`
	TicketID    types.TicketID `json:"ticket_id" firestore:"ticket_id"`
	Filename    string         `json:"filename" firestore:"filename"`
	StoragePath string         `json:"storage_path" firestore:"storage_path"`
	Size        int64          `json:"size" firestore:"size"`
	ContentType string         `json:"content_type" firestore:"content_type"`
	UploadedAt  time.Time      `json:"uploaded_at" firestore:"uploaded_at"`
}
