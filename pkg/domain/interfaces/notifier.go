package interfaces

import (
	"context"

	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

// Notifier pushes progress to the live channels of one identity. Delivery
// is best effort; implementations must never fail the caller.
type Notifier interface {
	NotifyTicketUpdate(ctx context.Context, userID types.UserID, ticketID types.TicketID, data map[string]any)
	NotifyProcessingStatus(ctx context.Context, userID types.UserID, ticketID types.TicketID, status types.TicketStatus)
	NotifyError(ctx context.Context, userID types.UserID, ticketID types.TicketID, errMsg string)
}
