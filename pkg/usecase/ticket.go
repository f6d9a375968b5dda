package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/service/audit"
	"github.com/opsforge-io/ticketd/pkg/utils/logging"
)

type TicketUseCase struct {
	repo     interfaces.Repository
	jobs     interfaces.JobQueue
	recorder *audit.Recorder
}

func NewTicketUseCase(repo interfaces.Repository, jobs interfaces.JobQueue, recorder *audit.Recorder) *TicketUseCase {
	return &TicketUseCase{
		repo:     repo,
		jobs:     jobs,
		recorder: recorder,
	}
}

// CreateTicketInput carries caller-supplied fields for a new ticket
type CreateTicketInput struct {
	Title       string
	Description string
	Kind        types.TaskKind
	Priority    types.Priority
	TaskData    map[string]any
}

// CreateTicket validates the input, stores the ticket as pending and
// enqueues a job for it.
func (uc *TicketUseCase) CreateTicket(ctx context.Context, userID types.UserID, input *CreateTicketInput) (*model.Ticket, error) {
	if userID == "" {
		return nil, goerr.Wrap(types.ErrValidation, "user is required")
	}
	if input.Title == "" {
		return nil, goerr.Wrap(types.ErrValidation, "title is required")
	}
	if !input.Kind.IsValid() {
		return nil, goerr.Wrap(types.ErrValidation, "unknown task kind", goerr.V("kind", input.Kind))
	}
	if input.Priority != "" && !input.Priority.IsValid() {
		return nil, goerr.Wrap(types.ErrValidation, "unknown priority", goerr.V("priority", input.Priority))
	}

	created, err := uc.repo.Ticket().Create(ctx, &model.Ticket{
		Title:       input.Title,
		Description: input.Description,
		Kind:        input.Kind,
		Priority:    input.Priority,
		CreatedBy:   userID,
		TaskData:    input.TaskData,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create ticket")
	}

	if err := uc.recorder.Record(ctx, &audit.Entry{
		Action:      types.AuditActionTicketCreated,
		TicketID:    created.ID,
		ActorID:     userID,
		Description: "ticket created for " + string(created.Kind) + " task",
	}); err != nil {
		logging.From(ctx).Warn("failed to record ticket creation",
			"ticket_id", created.ID, "error", err)
	}

	if err := uc.jobs.Enqueue(ctx, model.NewJob(created.ID)); err != nil {
		return nil, goerr.Wrap(err, "failed to enqueue ticket job", goerr.V("ticket_id", created.ID))
	}

	return created, nil
}

func (uc *TicketUseCase) GetTicket(ctx context.Context, id types.TicketID) (*model.Ticket, error) {
	return uc.repo.Ticket().Get(ctx, id)
}

func (uc *TicketUseCase) ListTickets(ctx context.Context, opts ...interfaces.ListTicketOption) ([]*model.Ticket, error) {
	return uc.repo.Ticket().List(ctx, opts...)
}

// GetTicketHistory returns the audit trail of one ticket
func (uc *TicketUseCase) GetTicketHistory(ctx context.Context, id types.TicketID) ([]*model.AuditEntry, error) {
	if _, err := uc.repo.Ticket().Get(ctx, id); err != nil {
		return nil, err
	}
	return uc.recorder.ListForTicket(ctx, id)
}

// CancelTicket moves a pending or processing ticket to cancelled. A job
// that later claims the ticket loses the status guard and skips it.
func (uc *TicketUseCase) CancelTicket(ctx context.Context, userID types.UserID, id types.TicketID) (*model.Ticket, error) {
	ticket, err := uc.repo.Ticket().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if ticket.Status.IsTerminal() {
		return nil, goerr.Wrap(types.ErrInvalidState, "ticket is already finished",
			goerr.V("id", id), goerr.V("status", ticket.Status))
	}

	cancelled, err := uc.repo.Ticket().Transition(ctx, id, ticket.Status, types.TicketStatusCancelled)
	if err != nil {
		return nil, err
	}

	if err := uc.recorder.Record(ctx, &audit.Entry{
		Action:      types.AuditActionTicketCancelled,
		TicketID:    id,
		ActorID:     userID,
		Description: "ticket cancelled",
		OldValues:   map[string]any{"status": string(ticket.Status)},
		NewValues:   map[string]any{"status": string(types.TicketStatusCancelled)},
	}); err != nil {
		logging.From(ctx).Warn("failed to record ticket cancellation",
			"ticket_id", id, "error", err)
	}

	return cancelled, nil
}

// ReprocessTicket resets a finished ticket to pending and enqueues a new
// job. Only terminal tickets can be reprocessed.
func (uc *TicketUseCase) ReprocessTicket(ctx context.Context, userID types.UserID, id types.TicketID) (*model.Ticket, error) {
	ticket, err := uc.repo.Ticket().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !ticket.Status.IsTerminal() {
		return nil, goerr.Wrap(types.ErrInvalidState, "only finished tickets can be reprocessed",
			goerr.V("id", id), goerr.V("status", ticket.Status))
	}

	previousStatus := ticket.Status
	if _, err := uc.repo.Ticket().Transition(ctx, id, previousStatus, types.TicketStatusPending); err != nil {
		return nil, err
	}

	// Clear the previous run's outcome so the new run starts clean
	ticket.ResultData = nil
	ticket.ErrorMessage = ""
	ticket.ModelUsed = ""
	ticket.TokensUsed = 0
	ticket.ProcessingTime = 0
	ticket.CompletedAt = nil

	reset, err := uc.repo.Ticket().Update(ctx, ticket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reset ticket for reprocessing", goerr.V("id", id))
	}

	if err := uc.recorder.Record(ctx, &audit.Entry{
		Action:      types.AuditActionReprocessRequested,
		TicketID:    id,
		ActorID:     userID,
		Description: "reprocess requested",
		OldValues:   map[string]any{"status": string(previousStatus)},
		NewValues:   map[string]any{"status": string(types.TicketStatusPending)},
	}); err != nil {
		logging.From(ctx).Warn("failed to record reprocess request",
			"ticket_id", id, "error", err)
	}

	if err := uc.jobs.Enqueue(ctx, model.NewJob(id)); err != nil {
		return nil, goerr.Wrap(err, "failed to enqueue reprocess job", goerr.V("ticket_id", id))
	}

	return reset, nil
}
