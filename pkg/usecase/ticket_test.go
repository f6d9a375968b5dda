package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/repository/memory"
	"github.com/opsforge-io/ticketd/pkg/service/audit"
	"github.com/opsforge-io/ticketd/pkg/usecase"
)

type captureQueue struct {
	jobs []*model.Job
}

func (q *captureQueue) Enqueue(ctx context.Context, job *model.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func newTicketUseCase(repo interfaces.Repository) (*usecase.TicketUseCase, *captureQueue, *audit.Recorder) {
	jobs := &captureQueue{}
	recorder := audit.New(repo)
	uc := usecase.New(repo, jobs, recorder)
	return uc.Ticket, jobs, recorder
}

func TestCreateTicketEnqueuesJob(t *testing.T) {
	repo := memory.New()
	uc, jobs, recorder := newTicketUseCase(repo)
	ctx := context.Background()

	created := gt.R1(uc.CreateTicket(ctx, "u-alice", &usecase.CreateTicketInput{
		Title:    "summarize incident",
		Kind:     types.TaskKindCustom,
		TaskData: map[string]any{"task_description": "summarize"},
	})).NoError(t)

	gt.Value(t, created.Status).Equal(types.TicketStatusPending)
	gt.Value(t, created.CreatedBy).Equal(types.UserID("u-alice"))
	gt.Value(t, created.Priority).Equal(types.PriorityMedium)

	gt.Array(t, jobs.jobs).Length(1)
	gt.Value(t, jobs.jobs[0].TicketID).Equal(created.ID)

	entries := gt.R1(recorder.ListForTicket(ctx, created.ID)).NoError(t)
	gt.Array(t, entries).Length(1)
	gt.Value(t, entries[0].Action).Equal(types.AuditActionTicketCreated)
	gt.Value(t, entries[0].ActorID).Equal(types.UserID("u-alice"))
}

func TestCreateTicketValidation(t *testing.T) {
	repo := memory.New()
	uc, jobs, _ := newTicketUseCase(repo)
	ctx := context.Background()

	cases := []struct {
		name  string
		user  types.UserID
		input *usecase.CreateTicketInput
	}{
		{"missing title", "u-alice", &usecase.CreateTicketInput{Kind: types.TaskKindCustom}},
		{"missing user", "", &usecase.CreateTicketInput{Title: "x", Kind: types.TaskKindCustom}},
		{"unknown kind", "u-alice", &usecase.CreateTicketInput{Title: "x", Kind: "mystery"}},
		{"unknown priority", "u-alice", &usecase.CreateTicketInput{Title: "x", Kind: types.TaskKindCustom, Priority: "asap"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.CreateTicket(ctx, tc.user, tc.input)
			gt.Error(t, err)
			gt.Bool(t, errors.Is(err, types.ErrValidation)).True()
		})
	}

	gt.Array(t, jobs.jobs).Length(0)
}

func TestCancelTicket(t *testing.T) {
	repo := memory.New()
	uc, _, recorder := newTicketUseCase(repo)
	ctx := context.Background()

	created := gt.R1(uc.CreateTicket(ctx, "u-alice", &usecase.CreateTicketInput{
		Title: "cancel me", Kind: types.TaskKindCustom,
	})).NoError(t)

	cancelled := gt.R1(uc.CancelTicket(ctx, "u-alice", created.ID)).NoError(t)
	gt.Value(t, cancelled.Status).Equal(types.TicketStatusCancelled)

	// Cancelling twice fails: the ticket is already terminal
	_, err := uc.CancelTicket(ctx, "u-alice", created.ID)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrInvalidState)).True()

	entries := gt.R1(recorder.ListForTicket(ctx, created.ID)).NoError(t)
	gt.Array(t, entries).Length(2)
	gt.Value(t, entries[1].Action).Equal(types.AuditActionTicketCancelled)
}

func TestReprocessTicketResetsOutcome(t *testing.T) {
	repo := memory.New()
	uc, jobs, recorder := newTicketUseCase(repo)
	ctx := context.Background()

	created := gt.R1(uc.CreateTicket(ctx, "u-alice", &usecase.CreateTicketInput{
		Title: "failed once", Kind: types.TaskKindCustom,
	})).NoError(t)

	// Simulate a failed run
	gt.R1(repo.Ticket().Transition(ctx, created.ID, types.TicketStatusPending, types.TicketStatusProcessing)).NoError(t)
	gt.R1(repo.Ticket().Transition(ctx, created.ID, types.TicketStatusProcessing, types.TicketStatusFailed)).NoError(t)
	failed := gt.R1(repo.Ticket().Get(ctx, created.ID)).NoError(t)
	failed.ErrorMessage = "handler exploded"
	failed.TokensUsed = 12
	gt.R1(repo.Ticket().Update(ctx, failed)).NoError(t)

	reset := gt.R1(uc.ReprocessTicket(ctx, "u-bob", created.ID)).NoError(t)
	gt.Value(t, reset.Status).Equal(types.TicketStatusPending)
	gt.Value(t, reset.ErrorMessage).Equal("")
	gt.Value(t, reset.TokensUsed).Equal(0)
	gt.Bool(t, reset.ResultData == nil).True()
	gt.Bool(t, reset.CompletedAt == nil).True()

	gt.Array(t, jobs.jobs).Length(2)
	gt.Value(t, jobs.jobs[1].TicketID).Equal(created.ID)

	entries := gt.R1(recorder.ListForTicket(ctx, created.ID)).NoError(t)
	gt.Value(t, entries[len(entries)-1].Action).Equal(types.AuditActionReprocessRequested)
}

func TestReprocessRejectsActiveTicket(t *testing.T) {
	repo := memory.New()
	uc, _, _ := newTicketUseCase(repo)
	ctx := context.Background()

	created := gt.R1(uc.CreateTicket(ctx, "u-alice", &usecase.CreateTicketInput{
		Title: "still pending", Kind: types.TaskKindCustom,
	})).NoError(t)

	_, err := uc.ReprocessTicket(ctx, "u-alice", created.ID)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrInvalidState)).True()

	gt.R1(repo.Ticket().Transition(ctx, created.ID, types.TicketStatusPending, types.TicketStatusProcessing)).NoError(t)
	_, err = uc.ReprocessTicket(ctx, "u-alice", created.ID)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrInvalidState)).True()
}

func TestGetTicketHistoryRequiresTicket(t *testing.T) {
	repo := memory.New()
	uc, _, _ := newTicketUseCase(repo)

	_, err := uc.GetTicketHistory(context.Background(), types.TicketID(404))
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
}
