package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/repository/memory"
)

func TestTicketCreateAssignsSequentialIDs(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	first := gt.R1(repo.Ticket().Create(ctx, &model.Ticket{
		Title:     "analyze quarterly report",
		Kind:      types.TaskKindDocAnalysis,
		CreatedBy: "u-alice",
	})).NoError(t)
	second := gt.R1(repo.Ticket().Create(ctx, &model.Ticket{
		Title:     "review rollout PR",
		Kind:      types.TaskKindPRReview,
		CreatedBy: "u-bob",
	})).NoError(t)

	gt.Value(t, first.ID).Equal(types.TicketID(1))
	gt.Value(t, second.ID).Equal(types.TicketID(2))
	gt.Value(t, first.Status).Equal(types.TicketStatusPending)
	gt.Value(t, first.Priority).Equal(types.PriorityMedium)
	gt.Bool(t, first.CreatedAt.IsZero()).False()
}

func TestTicketGetReturnsCopy(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	created := gt.R1(repo.Ticket().Create(ctx, &model.Ticket{
		Title:     "original title",
		Kind:      types.TaskKindCustom,
		CreatedBy: "u-alice",
		TaskData:  map[string]any{"task_description": "do the thing"},
	})).NoError(t)

	got := gt.R1(repo.Ticket().Get(ctx, created.ID)).NoError(t)
	got.Title = "mutated"
	got.TaskData["task_description"] = "mutated"

	again := gt.R1(repo.Ticket().Get(ctx, created.ID)).NoError(t)
	gt.Value(t, again.Title).Equal("original title")
	gt.Value(t, again.TaskData["task_description"]).Equal("do the thing")
}

func TestTicketUpdateKeepsStatus(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	created := gt.R1(repo.Ticket().Create(ctx, &model.Ticket{
		Title:     "status guarded",
		Kind:      types.TaskKindCustom,
		CreatedBy: "u-alice",
	})).NoError(t)
	gt.R1(repo.Ticket().Transition(ctx, created.ID, types.TicketStatusPending, types.TicketStatusCancelled)).NoError(t)

	stale := created.Clone()
	stale.Status = types.TicketStatusCompleted
	stale.TokensUsed = 42
	updated := gt.R1(repo.Ticket().Update(ctx, stale)).NoError(t)

	gt.Value(t, updated.Status).Equal(types.TicketStatusCancelled)
	gt.Value(t, updated.TokensUsed).Equal(42)

	stored := gt.R1(repo.Ticket().Get(ctx, created.ID)).NoError(t)
	gt.Value(t, stored.Status).Equal(types.TicketStatusCancelled)
}

func TestTicketGetNotFound(t *testing.T) {
	repo := memory.New()

	_, err := repo.Ticket().Get(context.Background(), types.TicketID(999))
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
}

func TestTicketListFilters(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	gt.R1(repo.Ticket().Create(ctx, &model.Ticket{
		Title: "t1", Kind: types.TaskKindDocAnalysis, CreatedBy: "u-alice",
	})).NoError(t)
	second := gt.R1(repo.Ticket().Create(ctx, &model.Ticket{
		Title: "t2", Kind: types.TaskKindPRReview, CreatedBy: "u-bob",
	})).NoError(t)
	gt.R1(repo.Ticket().Create(ctx, &model.Ticket{
		Title: "t3", Kind: types.TaskKindPRReview, CreatedBy: "u-alice",
	})).NoError(t)

	byOwner := gt.R1(repo.Ticket().List(ctx, interfaces.WithOwner("u-alice"))).NoError(t)
	gt.Array(t, byOwner).Length(2)

	byKind := gt.R1(repo.Ticket().List(ctx, interfaces.WithKind(types.TaskKindPRReview))).NoError(t)
	gt.Array(t, byKind).Length(2)

	gt.R1(repo.Ticket().Transition(ctx, second.ID, types.TicketStatusPending, types.TicketStatusCancelled)).NoError(t)
	byStatus := gt.R1(repo.Ticket().List(ctx, interfaces.WithStatus(types.TicketStatusCancelled))).NoError(t)
	gt.Array(t, byStatus).Length(1)
	gt.Value(t, byStatus[0].ID).Equal(second.ID)
}

func TestTicketTransitionGuard(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	created := gt.R1(repo.Ticket().Create(ctx, &model.Ticket{
		Title: "guarded", Kind: types.TaskKindCustom, CreatedBy: "u-alice",
	})).NoError(t)

	moved := gt.R1(repo.Ticket().Transition(ctx, created.ID, types.TicketStatusPending, types.TicketStatusProcessing)).NoError(t)
	gt.Value(t, moved.Status).Equal(types.TicketStatusProcessing)

	// Second claim of the same ticket must fail without changing it
	_, err := repo.Ticket().Transition(ctx, created.ID, types.TicketStatusPending, types.TicketStatusProcessing)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrInvalidState)).True()

	stored := gt.R1(repo.Ticket().Get(ctx, created.ID)).NoError(t)
	gt.Value(t, stored.Status).Equal(types.TicketStatusProcessing)
}

func TestTicketTransitionRejectsIllegalEdge(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	created := gt.R1(repo.Ticket().Create(ctx, &model.Ticket{
		Title: "straight to done", Kind: types.TaskKindCustom, CreatedBy: "u-alice",
	})).NoError(t)

	_, err := repo.Ticket().Transition(ctx, created.ID, types.TicketStatusPending, types.TicketStatusCompleted)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrInvalidState)).True()
}

func TestTicketDeleteCascadesAttachments(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	created := gt.R1(repo.Ticket().Create(ctx, &model.Ticket{
		Title: "with files", Kind: types.TaskKindDocAnalysis, CreatedBy: "u-alice",
	})).NoError(t)
	gt.R1(repo.Attachment().Create(ctx, &model.Attachment{
		TicketID: created.ID, Filename: "report.txt", StoragePath: "/tmp/report.txt",
	})).NoError(t)

	gt.NoError(t, repo.Ticket().Delete(ctx, created.ID))

	attachments := gt.R1(repo.Attachment().ListByTicket(ctx, created.ID)).NoError(t)
	gt.Array(t, attachments).Length(0)

	_, err := repo.Ticket().Get(ctx, created.ID)
	gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
}

func TestAuditListByEntity(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	gt.R1(repo.Audit().Create(ctx, &model.AuditEntry{
		Action:     types.AuditActionTicketCreated,
		EntityType: types.EntityTypeTicket,
		EntityID:   1,
		ActorID:    "u-alice",
	})).NoError(t)
	gt.R1(repo.Audit().Create(ctx, &model.AuditEntry{
		Action:     types.AuditActionProcessingStarted,
		EntityType: types.EntityTypeTicket,
		EntityID:   1,
		ActorID:    "system",
	})).NoError(t)
	gt.R1(repo.Audit().Create(ctx, &model.AuditEntry{
		Action:     types.AuditActionTicketCreated,
		EntityType: types.EntityTypeTicket,
		EntityID:   2,
		ActorID:    "u-bob",
	})).NoError(t)

	entries := gt.R1(repo.Audit().ListByEntity(ctx, types.EntityTypeTicket, 1)).NoError(t)
	gt.Array(t, entries).Length(2)
	gt.Value(t, entries[0].Action).Equal(types.AuditActionTicketCreated)
	gt.Value(t, entries[1].Action).Equal(types.AuditActionProcessingStarted)
}
