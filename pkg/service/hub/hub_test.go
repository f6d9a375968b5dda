package hub_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/service/hub"
)

type fakeChannel struct {
	mu       sync.Mutex
	messages []*model.Message
	failing  bool
	closed   bool
}

func (c *fakeChannel) Send(ctx context.Context, msg *model.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return goerr.New("send failed")
	}
	c.messages = append(c.messages, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeChannel) setFailing(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failing = v
}

func (c *fakeChannel) received() []*model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*model.Message(nil), c.messages...)
}

func TestConnectConfirmsConnection(t *testing.T) {
	h := hub.New()
	ch := &fakeChannel{}

	h.Connect(context.Background(), "u-alice", ch)

	messages := ch.received()
	gt.Array(t, messages).Length(1)
	gt.Value(t, messages[0].Type).Equal(model.MessageTypeConnectionConfirmed)
	gt.Value(t, messages[0].UserID).Equal(types.UserID("u-alice"))
	gt.Value(t, h.ConnectionCount()).Equal(1)
}

func TestSendToUserReachesAllChannelsOfIdentity(t *testing.T) {
	h := hub.New()
	ctx := context.Background()

	first := &fakeChannel{}
	second := &fakeChannel{}
	other := &fakeChannel{}
	h.Connect(ctx, "u-alice", first)
	h.Connect(ctx, "u-alice", second)
	h.Connect(ctx, "u-bob", other)

	h.NotifyProcessingStatus(ctx, "u-alice", types.TicketID(5), types.TicketStatusProcessing)

	gt.Array(t, first.received()).Length(2)  // confirmation + status
	gt.Array(t, second.received()).Length(2)
	gt.Array(t, other.received()).Length(1) // confirmation only

	status := first.received()[1]
	gt.Value(t, status.Type).Equal(model.MessageTypeProcessingStatus)
	gt.Value(t, status.TicketID).Equal(types.TicketID(5))
	gt.Value(t, status.Status).Equal("processing")
}

func TestDisconnectIsIdempotent(t *testing.T) {
	h := hub.New()
	ctx := context.Background()

	ch := &fakeChannel{}
	h.Connect(ctx, "u-alice", ch)
	gt.Value(t, h.ConnectionCount()).Equal(1)

	h.Disconnect(ch)
	h.Disconnect(ch)
	gt.Value(t, h.ConnectionCount()).Equal(0)
	gt.Array(t, h.ConnectedUsers()).Length(0)

	// Disconnect never closes the underlying connection itself
	gt.Bool(t, ch.closed).False()
}

func TestFailingChannelIsEvictedAndClosed(t *testing.T) {
	h := hub.New()
	ctx := context.Background()

	healthy := &fakeChannel{}
	broken := &fakeChannel{failing: true}
	h.Connect(ctx, "u-alice", healthy)
	h.Connect(ctx, "u-alice", broken) // confirmation fails, channel evicted

	gt.Value(t, h.ConnectionCount()).Equal(1)
	gt.Bool(t, broken.closed).True()

	h.NotifyError(ctx, "u-alice", types.TicketID(9), "boom")
	gt.Array(t, healthy.received()).Length(2)
}

func TestBroadcastReachesEveryChannel(t *testing.T) {
	h := hub.New()
	ctx := context.Background()

	alice := &fakeChannel{}
	bob := &fakeChannel{}
	h.Connect(ctx, "u-alice", alice)
	h.Connect(ctx, "u-bob", bob)

	h.Broadcast(ctx, &model.Message{Type: model.MessageTypeTicketUpdate, TicketID: 1})

	gt.Array(t, alice.received()).Length(2)
	gt.Array(t, bob.received()).Length(2)
}

func TestBroadcastIsolatesFailingChannel(t *testing.T) {
	h := hub.New()
	ctx := context.Background()

	alice := &fakeChannel{}
	bob := &fakeChannel{}
	carol := &fakeChannel{}
	h.Connect(ctx, "u-alice", alice)
	h.Connect(ctx, "u-bob", bob)
	h.Connect(ctx, "u-carol", carol)

	bob.setFailing(true)
	h.Broadcast(ctx, &model.Message{Type: model.MessageTypeTicketUpdate, TicketID: 7})

	gt.Array(t, alice.received()).Length(2)
	gt.Array(t, carol.received()).Length(2)
	gt.Array(t, bob.received()).Length(1) // confirmation only
	gt.Bool(t, bob.closed).True()
	gt.Value(t, h.ConnectionCount()).Equal(2)
}

func TestHandleClientMessagePingEchoesTimestamp(t *testing.T) {
	h := hub.New()
	ctx := context.Background()

	ch := &fakeChannel{}
	h.Connect(ctx, "u-alice", ch)

	raw := gt.R1(json.Marshal(map[string]any{
		"type":      "ping",
		"timestamp": "2026-08-23T10:00:00Z",
	})).NoError(t)
	h.HandleClientMessage(ctx, ch, raw)

	messages := ch.received()
	gt.Array(t, messages).Length(2)
	gt.Value(t, messages[1].Type).Equal(model.MessageTypePong)
	gt.Value(t, messages[1].Timestamp).Equal(any("2026-08-23T10:00:00Z"))
}

func TestHandleClientMessageSubscribeTicket(t *testing.T) {
	h := hub.New()
	ctx := context.Background()

	ch := &fakeChannel{}
	h.Connect(ctx, "u-alice", ch)

	raw := gt.R1(json.Marshal(map[string]any{
		"type":      "subscribe_ticket",
		"ticket_id": 31,
	})).NoError(t)
	h.HandleClientMessage(ctx, ch, raw)

	messages := ch.received()
	gt.Array(t, messages).Length(2)
	gt.Value(t, messages[1].Type).Equal(model.MessageTypeSubscriptionConfirmed)
	gt.Value(t, messages[1].TicketID).Equal(types.TicketID(31))
}

func TestHandleClientMessageIgnoresUnknownAndMalformed(t *testing.T) {
	h := hub.New()
	ctx := context.Background()

	ch := &fakeChannel{}
	h.Connect(ctx, "u-alice", ch)

	h.HandleClientMessage(ctx, ch, []byte(`{"type":"mystery"}`))
	h.HandleClientMessage(ctx, ch, []byte(`{not json`))

	// Only the connection confirmation, no error or disconnect
	gt.Array(t, ch.received()).Length(1)
	gt.Value(t, h.ConnectionCount()).Equal(1)
}

func TestNotifyToUnknownUserIsNoOp(t *testing.T) {
	h := hub.New()
	h.NotifyTicketUpdate(context.Background(), "u-ghost", types.TicketID(1), map[string]any{"status": "completed"})
	gt.Value(t, h.ConnectionCount()).Equal(0)
}
