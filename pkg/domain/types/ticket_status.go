package types

import "fmt"

// TicketStatus represents the lifecycle status of a ticket
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusProcessing TicketStatus = "processing"
	TicketStatusCompleted  TicketStatus = "completed"
	TicketStatusFailed     TicketStatus = "failed"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

// AllTicketStatuses returns all valid ticket statuses
func AllTicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusPending,
		TicketStatusProcessing,
		TicketStatusCompleted,
		TicketStatusFailed,
		TicketStatusCancelled,
	}
}

// IsValid checks if the ticket status is valid
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusPending,
		TicketStatusProcessing,
		TicketStatusCompleted,
		TicketStatusFailed,
		TicketStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status allows no further automatic transitions.
// Terminal tickets can only leave their state through an explicit reprocess.
func (s TicketStatus) IsTerminal() bool {
	switch s {
	case TicketStatusCompleted, TicketStatusFailed, TicketStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition. Reprocess (terminal -> pending) is included;
// everything else outside the normal flow is rejected.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	switch s {
	case TicketStatusPending:
		return next == TicketStatusProcessing || next == TicketStatusCancelled
	case TicketStatusProcessing:
		return next == TicketStatusCompleted ||
			next == TicketStatusFailed ||
			next == TicketStatusCancelled
	case TicketStatusCompleted, TicketStatusFailed, TicketStatusCancelled:
		return next == TicketStatusPending
	default:
		return false
	}
}

// String returns the string representation of the ticket status
func (s TicketStatus) String() string {
	return string(s)
}

// ParseTicketStatus parses a string into a TicketStatus
func ParseTicketStatus(s string) (TicketStatus, error) {
	status := TicketStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid ticket status: %s", s)
	}
	return status, nil
}
