package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/usecase"
	"github.com/opsforge-io/ticketd/pkg/utils/async"
	"github.com/opsforge-io/ticketd/pkg/utils/errutil"
)

func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(data)
}

// writeError maps domain sentinels to HTTP status codes
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
	case errors.Is(err, types.ErrValidation):
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
	case errors.Is(err, types.ErrInvalidState):
		errutil.HandleHTTP(r.Context(), w, err, http.StatusConflict)
	default:
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
	}
}

func ticketIDParam(r *http.Request) (types.TicketID, error) {
	raw := chi.URLParam(r, "ticketID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(types.ErrValidation, "invalid ticket id", goerr.V("raw", raw))
	}
	return types.TicketID(id), nil
}

type createTicketRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	TaskKind    string         `json:"task_kind"`
	Priority    string         `json:"priority"`
	TaskData    map[string]any `json:"task_data"`
}

func (s *Server) createTicket(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, goerr.Wrap(types.ErrValidation, "invalid request body", goerr.V("cause", err)))
		return
	}

	created, err := s.ticketUC.CreateTicket(r.Context(), userIDFrom(r.Context()), &usecase.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Kind:        types.TaskKind(req.TaskKind),
		Priority:    types.Priority(req.Priority),
		TaskData:    req.TaskData,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) listTickets(w http.ResponseWriter, r *http.Request) {
	opts := []interfaces.ListTicketOption{
		interfaces.WithOwner(userIDFrom(r.Context())),
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := types.ParseTicketStatus(raw)
		if err != nil {
			writeError(w, r, goerr.Wrap(types.ErrValidation, "invalid status filter", goerr.V("status", raw)))
			return
		}
		opts = append(opts, interfaces.WithStatus(status))
	}
	if raw := r.URL.Query().Get("task_kind"); raw != "" {
		kind, err := types.ParseTaskKind(raw)
		if err != nil {
			writeError(w, r, goerr.Wrap(types.ErrValidation, "invalid task kind filter", goerr.V("task_kind", raw)))
			return
		}
		opts = append(opts, interfaces.WithKind(kind))
	}

	tickets, err := s.ticketUC.ListTickets(r.Context(), opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"tickets": tickets})
}

func (s *Server) getTicket(w http.ResponseWriter, r *http.Request) {
	id, err := ticketIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ticket, err := s.ticketUC.GetTicket(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, ticket)
}

func (s *Server) ticketHistory(w http.ResponseWriter, r *http.Request) {
	id, err := ticketIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries, err := s.ticketUC.GetTicketHistory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"history": entries})
}

func (s *Server) cancelTicket(w http.ResponseWriter, r *http.Request) {
	id, err := ticketIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cancelled, err := s.ticketUC.CancelTicket(r.Context(), userIDFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.pushStatus(r.Context(), cancelled)
	writeJSON(w, r, http.StatusOK, cancelled)
}

func (s *Server) reprocessTicket(w http.ResponseWriter, r *http.Request) {
	id, err := ticketIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	reset, err := s.ticketUC.ReprocessTicket(r.Context(), userIDFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.pushStatus(r.Context(), reset)
	writeJSON(w, r, http.StatusOK, reset)
}

// pushStatus notifies the owner's other connected clients of a status
// change made over the REST API. The push happens off the request
// goroutine so a slow hub never delays the response.
func (s *Server) pushStatus(ctx context.Context, ticket *model.Ticket) {
	userID, ticketID, status := ticket.CreatedBy, ticket.ID, ticket.Status
	async.Dispatch(ctx, func(ctx context.Context) error {
		s.hub.NotifyTicketUpdate(ctx, userID, ticketID, map[string]any{
			"status": string(status),
		})
		return nil
	})
}
