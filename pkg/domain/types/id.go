package types

// TicketID identifies a ticket
type TicketID int64

// UserID identifies the owner of tickets and live channels
type UserID string

// String returns the string representation of the user ID
func (u UserID) String() string {
	return string(u)
}
