package hub

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/utils/logging"
	"github.com/opsforge-io/ticketd/pkg/utils/safe"
)

// Channel is one live connection capable of receiving push messages.
// Send must not block indefinitely; a failed Send gets the channel
// evicted from the hub.
type Channel interface {
	Send(ctx context.Context, msg *model.Message) error
}

// Hub tracks live channels per identity and fans push messages out to
// them. One identity may hold any number of channels; delivery is
// at-most-once per channel and never fails the caller.
type Hub struct {
	mu       sync.RWMutex
	channels map[types.UserID]map[Channel]struct{}
	owners   map[Channel]types.UserID
}

var _ interfaces.Notifier = &Hub{}

func New() *Hub {
	return &Hub{
		channels: make(map[types.UserID]map[Channel]struct{}),
		owners:   make(map[Channel]types.UserID),
	}
}

// Connect registers a channel under an identity and confirms the
// connection on it.
func (h *Hub) Connect(ctx context.Context, userID types.UserID, ch Channel) {
	h.mu.Lock()
	set, ok := h.channels[userID]
	if !ok {
		set = make(map[Channel]struct{})
		h.channels[userID] = set
	}
	set[ch] = struct{}{}
	h.owners[ch] = userID
	h.mu.Unlock()

	h.sendTo(ctx, ch, model.NewConnectionConfirmed(userID))
}

// Disconnect removes a channel from the hub. It is idempotent and only
// mutates the maps; closing the underlying connection is the caller's
// concern.
func (h *Hub) Disconnect(ch Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID, ok := h.owners[ch]
	if !ok {
		return
	}
	delete(h.owners, ch)

	if set, ok := h.channels[userID]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.channels, userID)
		}
	}
}

// SendToUser delivers a message to every live channel of one identity
func (h *Hub) SendToUser(ctx context.Context, userID types.UserID, msg *model.Message) {
	h.mu.RLock()
	set := h.channels[userID]
	targets := make([]Channel, 0, len(set))
	for ch := range set {
		targets = append(targets, ch)
	}
	h.mu.RUnlock()

	for _, ch := range targets {
		h.sendTo(ctx, ch, msg)
	}
}

// Broadcast delivers a message to every connected channel
func (h *Hub) Broadcast(ctx context.Context, msg *model.Message) {
	h.mu.RLock()
	targets := make([]Channel, 0, len(h.owners))
	for ch := range h.owners {
		targets = append(targets, ch)
	}
	h.mu.RUnlock()

	for _, ch := range targets {
		h.sendTo(ctx, ch, msg)
	}
}

// sendTo delivers one message; a failing channel is evicted and closed
// if it owns resources.
func (h *Hub) sendTo(ctx context.Context, ch Channel, msg *model.Message) {
	if err := ch.Send(ctx, msg); err != nil {
		logging.From(ctx).Warn("evicting dead channel", "type", msg.Type, "error", err)
		h.Disconnect(ch)
		if closer, ok := ch.(io.Closer); ok {
			safe.Close(ctx, closer)
		}
	}
}

// HandleClientMessage processes one raw inbound message from a channel.
// Unknown types are logged and dropped; the connection stays open.
func (h *Hub) HandleClientMessage(ctx context.Context, ch Channel, raw []byte) {
	var msg model.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logging.From(ctx).Warn("dropping malformed client message", "error", err)
		return
	}

	switch msg.Type {
	case model.ClientMessageTypePing:
		h.sendTo(ctx, ch, &model.Message{
			Type:      model.MessageTypePong,
			Timestamp: msg.Timestamp,
		})

	case model.ClientMessageTypeSubscribeTicket:
		h.sendTo(ctx, ch, &model.Message{
			Type:     model.MessageTypeSubscriptionConfirmed,
			TicketID: msg.TicketID,
		})

	default:
		logging.From(ctx).Info("ignoring unknown client message type", "type", msg.Type)
	}
}

// ConnectionCount returns the number of live channels
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.owners)
}

// ConnectedUsers returns the identities that hold at least one channel
func (h *Hub) ConnectedUsers() []types.UserID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]types.UserID, 0, len(h.channels))
	for userID := range h.channels {
		users = append(users, userID)
	}
	return users
}

// NotifyTicketUpdate implements interfaces.Notifier
func (h *Hub) NotifyTicketUpdate(ctx context.Context, userID types.UserID, ticketID types.TicketID, data map[string]any) {
	h.SendToUser(ctx, userID, model.NewTicketUpdate(ticketID, data))
}

// NotifyProcessingStatus implements interfaces.Notifier
func (h *Hub) NotifyProcessingStatus(ctx context.Context, userID types.UserID, ticketID types.TicketID, status types.TicketStatus) {
	h.SendToUser(ctx, userID, model.NewProcessingStatus(ticketID, status))
}

// NotifyError implements interfaces.Notifier
func (h *Hub) NotifyError(ctx context.Context, userID types.UserID, ticketID types.TicketID, errMsg string) {
	h.SendToUser(ctx, userID, model.NewErrorNotification(ticketID, errMsg))
}
