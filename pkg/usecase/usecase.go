package usecase

import (
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/service/audit"
)

type UseCases struct {
	repo interfaces.Repository

	Ticket *TicketUseCase
}

func New(repo interfaces.Repository, jobs interfaces.JobQueue, recorder *audit.Recorder) *UseCases {
	return &UseCases{
		repo:   repo,
		Ticket: NewTicketUseCase(repo, jobs, recorder),
	}
}
