package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/service/hub"
	"github.com/opsforge-io/ticketd/pkg/utils/logging"
)

const (
	wsWriteTimeout   = 10 * time.Second
	wsPongTimeout    = 60 * time.Second
	wsPingInterval   = 50 * time.Second
	wsMaxMessageSize = 16 * 1024
	wsSendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks are delegated to the fronting proxy
		return true
	},
}

// wsChannel adapts a websocket connection to hub.Channel. Outbound
// messages go through a buffered channel so a slow client cannot block
// notification fanout; a full buffer counts as a dead connection.
type wsChannel struct {
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

var _ hub.Channel = &wsChannel{}

func newWSChannel(conn *websocket.Conn) *wsChannel {
	return &wsChannel{
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
		done: make(chan struct{}),
	}
}

func (c *wsChannel) Send(ctx context.Context, msg *model.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return goerr.Wrap(err, "failed to encode push message", goerr.V("type", msg.Type))
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return goerr.New("channel is closed")
	default:
		return goerr.New("send buffer full", goerr.V("type", msg.Type))
	}
}

func (c *wsChannel) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := s.userResolver(r)
	if userID == "" {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.From(r.Context()).Warn("websocket upgrade failed", "error", err)
		return
	}

	ch := newWSChannel(conn)
	s.hub.Connect(r.Context(), userID, ch)

	go s.writePump(ch)
	go s.readPump(r.Context(), ch)
}

// readPump consumes inbound frames and routes them to the hub protocol
// handler. It owns connection teardown.
func (s *Server) readPump(ctx context.Context, ch *wsChannel) {
	defer func() {
		s.hub.Disconnect(ch)
		_ = ch.Close()
		_ = ch.conn.Close()
	}()

	ch.conn.SetReadLimit(wsMaxMessageSize)
	_ = ch.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	ch.conn.SetPongHandler(func(string) error {
		return ch.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	for {
		_, raw, err := ch.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.From(ctx).Warn("websocket read failed", "error", err)
			}
			return
		}

		s.hub.HandleClientMessage(ctx, ch, raw)
	}
}

// writePump flushes queued messages and keeps the connection alive with
// pings.
func (s *Server) writePump(ch *wsChannel) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		_ = ch.conn.Close()
	}()

	for {
		select {
		case data := <-ch.send:
			_ = ch.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := ch.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = ch.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := ch.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ch.done:
			_ = ch.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			_ = ch.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
