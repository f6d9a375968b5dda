package audit_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/repository/memory"
	"github.com/opsforge-io/ticketd/pkg/service/audit"
)

func TestRecorderDefaultsActorToSystem(t *testing.T) {
	repo := memory.New()
	recorder := audit.New(repo)
	ctx := context.Background()

	gt.NoError(t, recorder.Record(ctx, &audit.Entry{
		Action:   types.AuditActionProcessingStarted,
		TicketID: types.TicketID(42),
		Metadata: map[string]any{"job_id": "job-1"},
	}))

	entries := gt.R1(recorder.ListForTicket(ctx, types.TicketID(42))).NoError(t)
	gt.Array(t, entries).Length(1)
	gt.Value(t, entries[0].ActorID).Equal(types.UserID("system"))
	gt.Value(t, entries[0].Metadata["job_id"]).Equal("job-1")
	gt.Value(t, entries[0].EntityType).Equal(types.EntityTypeTicket)
}

func TestRecorderKeepsChronologicalOrder(t *testing.T) {
	repo := memory.New()
	recorder := audit.New(repo)
	ctx := context.Background()

	actions := []types.AuditAction{
		types.AuditActionTicketCreated,
		types.AuditActionProcessingStarted,
		types.AuditActionProcessingCompleted,
	}
	for _, action := range actions {
		gt.NoError(t, recorder.Record(ctx, &audit.Entry{
			Action:   action,
			TicketID: types.TicketID(1),
			ActorID:  "u-alice",
		}))
	}

	entries := gt.R1(recorder.ListForTicket(ctx, types.TicketID(1))).NoError(t)
	gt.Array(t, entries).Length(3)
	for i, action := range actions {
		gt.Value(t, entries[i].Action).Equal(action)
	}
}
