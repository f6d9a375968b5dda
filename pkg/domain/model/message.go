package model

import (
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

// MessageType discriminates push messages delivered over a live channel
type MessageType string

const (
	MessageTypeConnectionConfirmed   MessageType = "connection_confirmed"
	MessageTypeTicketUpdate          MessageType = "ticket_update"
	MessageTypeProcessingStatus      MessageType = "processing_status"
	MessageTypeErrorNotification     MessageType = "error_notification"
	MessageTypePong                  MessageType = "pong"
	MessageTypeSubscriptionConfirmed MessageType = "subscription_confirmed"
)

// Client message types received from a live channel
const (
	ClientMessageTypePing            = "ping"
	ClientMessageTypeSubscribeTicket = "subscribe_ticket"
)

// Message is one push notification. Only the fields relevant to Type are
// populated; Timestamp is echoed back untouched for pong responses.
type Message struct {
	Type     MessageType    `json:"type"`
	TicketID types.TicketID `json:"ticket_id,omitempty"`
	UserID   types.UserID   `json:"user_id,omitempty"`
	Message  string         `json:"message,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Status   string         `json:"status,omitempty"`
	Error    string         `json:"error,omitempty"`

	Timestamp any `json:"timestamp,omitempty"`
}

// ClientMessage is an inbound message from a connected client
type ClientMessage struct {
	Type      string         `json:"type"`
	TicketID  types.TicketID `json:"ticket_id,omitempty"`
	Timestamp any            `json:"timestamp,omitempty"`
}

// NewConnectionConfirmed builds the confirmation sent on a freshly
// registered channel
func NewConnectionConfirmed(userID types.UserID) *Message {
	return &Message{
		Type:    MessageTypeConnectionConfirmed,
		UserID:  userID,
		Message: "connection established",
	}
}

// NewTicketUpdate builds a ticket update notification for the ticket owner
func NewTicketUpdate(ticketID types.TicketID, data map[string]any) *Message {
	return &Message{
		Type:     MessageTypeTicketUpdate,
		TicketID: ticketID,
		Data:     data,
	}
}

// NewProcessingStatus builds a progress notification for one ticket
func NewProcessingStatus(ticketID types.TicketID, status types.TicketStatus) *Message {
	return &Message{
		Type:     MessageTypeProcessingStatus,
		TicketID: ticketID,
		Status:   status.String(),
	}
}

// NewErrorNotification builds a failure notification for one ticket
func NewErrorNotification(ticketID types.TicketID, errMsg string) *Message {
	return &Message{
		Type:     MessageTypeErrorNotification,
		TicketID: ticketID,
		Error:    errMsg,
	}
}
