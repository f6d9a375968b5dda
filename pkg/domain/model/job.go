package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

// Job is an ephemeral queue message instructing the executor to run one
// ticket. It carries no state beyond the ticket identifier; the queue owns
// delivery guarantees (at-least-once, no ordering).
type Job struct {
	ID         string         `json:"id"`
	TicketID   types.TicketID `json:"ticket_id"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
}

// NewJob creates a job for the given ticket
func NewJob(ticketID types.TicketID) *Job {
	return &Job{
		ID:         uuid.Must(uuid.NewV7()).String(),
		TicketID:   ticketID,
		EnqueuedAt: time.Now().UTC(),
	}
}
