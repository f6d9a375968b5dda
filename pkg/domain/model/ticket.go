package model

import (
	"time"

	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

// Ticket is a unit of requested asynchronous work. TaskData is an open
// payload interpreted only by the handler matching Kind; ResultData is
// written by that handler on success.
type Ticket struct {
	ID          types.TicketID     `json:"id" firestore:"id"`
	Title       string             `json:"title" firestore:"title"`
	Description string             `json:"description,omitempty" firestore:"description"`
	Kind        types.TaskKind     `json:"task_kind" firestore:"task_kind"`
	Priority    types.Priority     `json:"priority" firestore:"priority"`
	Status      types.TicketStatus `json:"status" firestore:"status"`

	CreatedBy  types.UserID `json:"created_by" firestore:"created_by"`
	AssignedTo types.UserID `json:"assigned_to,omitempty" firestore:"assigned_to"`

	TaskData     map[string]any `json:"task_data,omitempty" firestore:"task_data"`
	ResultData   map[string]any `json:"result_data,omitempty" firestore:"result_data"`
	ErrorMessage string         `json:"error_message,omitempty" firestore:"error_message"`

	ModelUsed      string        `json:"model_used,omitempty" firestore:"model_used"`
	ProcessingTime time.Duration `json:"processing_time,omitempty" firestore:"processing_time"`
	TokensUsed     int           `json:"tokens_used,omitempty" firestore:"tokens_used"`

	CreatedAt   time.Time  `json:"created_at" firestore:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" firestore:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" firestore:"completed_at"`
}

// Clone returns a deep copy of the ticket. Repositories hand out clones so
// callers never share mutable payload maps with stored state.
func (t *Ticket) Clone() *Ticket {
	copied := *t
	copied.TaskData = cloneMap(t.TaskData)
	copied.ResultData = cloneMap(t.ResultData)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		copied.CompletedAt = &at
	}
	return &copied
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	copied := make(map[string]any, len(m))
	for k, v := range m {
		copied[k] = v
	}
	return copied
}
