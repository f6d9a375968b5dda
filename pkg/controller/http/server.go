package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/service/hub"
	"github.com/opsforge-io/ticketd/pkg/usecase"
)

// UserResolver extracts the caller identity from a request. An empty
// result means the request is unauthenticated.
type UserResolver func(r *http.Request) types.UserID

// headerUserResolver reads the identity from the X-User-ID header with a
// user_id query fallback, matching what the reverse proxy injects.
func headerUserResolver(r *http.Request) types.UserID {
	if v := r.Header.Get("X-User-ID"); v != "" {
		return types.UserID(v)
	}
	return types.UserID(r.URL.Query().Get("user_id"))
}

type Server struct {
	router       *chi.Mux
	ticketUC     *usecase.TicketUseCase
	hub          *hub.Hub
	userResolver UserResolver
}

type Options func(*Server)

// WithUserResolver replaces how caller identity is derived from requests
func WithUserResolver(resolver UserResolver) Options {
	return func(s *Server) {
		s.userResolver = resolver
	}
}

func New(ucs *usecase.UseCases, h *hub.Hub, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		ticketUC:     ucs.Ticket,
		hub:          h,
		userResolver: headerUserResolver,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/tickets", func(r chi.Router) {
		r.Use(identityMiddleware(s.userResolver))

		r.Post("/", s.createTicket)
		r.Get("/", s.listTickets)
		r.Get("/{ticketID}", s.getTicket)
		r.Get("/{ticketID}/history", s.ticketHistory)
		r.Post("/{ticketID}/cancel", s.cancelTicket)
		r.Post("/{ticketID}/reprocess", s.reprocessTicket)
	})

	r.Get("/ws", s.handleWebSocket)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
