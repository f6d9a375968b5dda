package executor

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/service/audit"
	"github.com/opsforge-io/ticketd/pkg/service/handler"
	"github.com/opsforge-io/ticketd/pkg/utils/logging"
)

// Executor drives one job through the ticket lifecycle: claim, run the
// matching handler, persist the outcome, record audit events and push
// progress to the owner.
type Executor struct {
	repo     interfaces.Repository
	registry *handler.Registry
	recorder *audit.Recorder
	notifier interfaces.Notifier
}

func New(repo interfaces.Repository, registry *handler.Registry, recorder *audit.Recorder, notifier interfaces.Notifier) *Executor {
	return &Executor{
		repo:     repo,
		registry: registry,
		recorder: recorder,
		notifier: notifier,
	}
}

// RunJob executes a single job. A job whose ticket already left pending
// is treated as a duplicate delivery and skipped without error.
func (e *Executor) RunJob(ctx context.Context, job *model.Job) error {
	logger := logging.From(ctx).With("job_id", job.ID, "ticket_id", job.TicketID)

	ticket, err := e.repo.Ticket().Get(ctx, job.TicketID)
	if err != nil {
		return goerr.Wrap(err, "failed to load ticket for job", goerr.V("job_id", job.ID))
	}

	claimed, err := e.repo.Ticket().Transition(ctx, ticket.ID, types.TicketStatusPending, types.TicketStatusProcessing)
	if err != nil {
		if errors.Is(err, types.ErrInvalidState) {
			logger.Info("skipping job, ticket already claimed", "status", ticket.Status)
			return nil
		}
		return goerr.Wrap(err, "failed to claim ticket", goerr.V("job_id", job.ID))
	}
	ticket = claimed

	if err := e.recorder.Record(ctx, &audit.Entry{
		Action:      types.AuditActionProcessingStarted,
		TicketID:    ticket.ID,
		Description: "processing started for " + string(ticket.Kind) + " task",
		Metadata:    map[string]any{"job_id": job.ID},
	}); err != nil {
		logger.Warn("failed to record processing start", "error", err)
	}

	e.notifier.NotifyProcessingStatus(ctx, ticket.CreatedBy, ticket.ID, types.TicketStatusProcessing)

	startedAt := time.Now()
	result, runErr := e.runHandler(ctx, ticket)
	elapsed := time.Since(startedAt)

	if runErr != nil {
		return e.completeFailure(ctx, ticket, runErr, elapsed)
	}
	return e.completeSuccess(ctx, ticket, result, elapsed)
}

func (e *Executor) runHandler(ctx context.Context, ticket *model.Ticket) (*handler.Result, error) {
	fn, err := e.registry.Resolve(ticket.Kind)
	if err != nil {
		return nil, err
	}
	return fn(ctx, ticket)
}

func (e *Executor) completeSuccess(ctx context.Context, ticket *model.Ticket, result *handler.Result, elapsed time.Duration) error {
	if _, err := e.repo.Ticket().Transition(ctx, ticket.ID, types.TicketStatusProcessing, types.TicketStatusCompleted); err != nil {
		if errors.Is(err, types.ErrInvalidState) {
			// The ticket left processing externally (cancel) while the
			// handler ran; the result is discarded and the record stays
			// as the external transition left it.
			logging.From(ctx).Info("discarding handler result, ticket no longer processing",
				"ticket_id", ticket.ID)
			return nil
		}
		return goerr.Wrap(err, "failed to complete ticket", goerr.V("ticket_id", ticket.ID))
	}

	now := time.Now().UTC()
	ticket.ResultData = result.Data
	ticket.ErrorMessage = ""
	ticket.ModelUsed = result.ModelUsed
	ticket.TokensUsed = result.TokensUsed
	ticket.ProcessingTime = elapsed
	ticket.CompletedAt = &now

	updated, err := e.repo.Ticket().Update(ctx, ticket)
	if err != nil {
		return goerr.Wrap(err, "failed to store ticket result", goerr.V("ticket_id", ticket.ID))
	}

	if err := e.recorder.Record(ctx, &audit.Entry{
		Action:      types.AuditActionProcessingCompleted,
		TicketID:    ticket.ID,
		Description: "processing completed successfully",
		Metadata:    map[string]any{"tokens_used": result.TokensUsed},
	}); err != nil {
		logging.From(ctx).Warn("failed to record processing completion",
			"ticket_id", ticket.ID, "error", err)
	}

	e.notifier.NotifyTicketUpdate(ctx, updated.CreatedBy, updated.ID, map[string]any{
		"status":      string(updated.Status),
		"result_data": updated.ResultData,
	})

	return nil
}

func (e *Executor) completeFailure(ctx context.Context, ticket *model.Ticket, runErr error, elapsed time.Duration) error {
	if _, err := e.repo.Ticket().Transition(ctx, ticket.ID, types.TicketStatusProcessing, types.TicketStatusFailed); err != nil {
		if errors.Is(err, types.ErrInvalidState) {
			logging.From(ctx).Info("discarding handler failure, ticket no longer processing",
				"ticket_id", ticket.ID, "handler_error", runErr.Error())
			return nil
		}
		return goerr.Wrap(err, "failed to mark ticket failed",
			goerr.V("ticket_id", ticket.ID), goerr.V("handler_error", runErr.Error()))
	}

	ticket.ErrorMessage = runErr.Error()
	ticket.ProcessingTime = elapsed

	if _, err := e.repo.Ticket().Update(ctx, ticket); err != nil {
		return goerr.Wrap(err, "failed to store ticket failure",
			goerr.V("ticket_id", ticket.ID), goerr.V("handler_error", runErr.Error()))
	}

	if err := e.recorder.Record(ctx, &audit.Entry{
		Action:      types.AuditActionProcessingFailed,
		TicketID:    ticket.ID,
		Description: "processing failed: " + runErr.Error(),
		Metadata:    map[string]any{"error": runErr.Error()},
	}); err != nil {
		logging.From(ctx).Warn("failed to record processing failure",
			"ticket_id", ticket.ID, "error", err)
	}

	e.notifier.NotifyError(ctx, ticket.CreatedBy, ticket.ID, runErr.Error())
	e.notifier.NotifyTicketUpdate(ctx, ticket.CreatedBy, ticket.ID, map[string]any{
		"status":        string(types.TicketStatusFailed),
		"error_message": ticket.ErrorMessage,
	})

	return goerr.Wrap(runErr, "ticket processing failed", goerr.V("ticket_id", ticket.ID))
}
