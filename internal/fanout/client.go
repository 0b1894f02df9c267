package fanout

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"seawaywatch/pkg/logger"
)

// writeWait bounds a single outbound frame; exceeding it marks the
// connection for removal (spec.md §4.8 delivery: "best-effort ... a send
// failure marks the connection for removal").
const writeWait = 5 * time.Second

// sendBuffer is how many outbound messages a slow client may lag behind
// by; once it is full, enqueue rejects the next frame and the hub drops
// the client instead of blocking its broadcast loop.
const sendBuffer = 16

// envelope is the outbound `{type, data}` wire shape (spec.md §4.8).
type envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type subscribeMessage struct {
	Action   string   `json:"action"`
	Channels []string `json:"channels"`
}

type subscribedAck struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

// client is one accepted WebSocket connection with its subscription set.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	log  *logger.Logger

	send chan []byte

	mu       sync.Mutex
	channels map[string]bool
	closed   bool
}

func newClient(hub *Hub, conn *websocket.Conn, log *logger.Logger) *client {
	return &client{
		hub:      hub,
		conn:     conn,
		log:      log,
		send:     make(chan []byte, sendBuffer),
		channels: make(map[string]bool),
	}
}

// subscriptions returns a snapshot of the client's current channel set.
func (c *client) subscriptions() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]bool, len(c.channels))
	for k := range c.channels {
		out[k] = true
	}
	return out
}

// enqueue best-effort delivers a frame; a full buffer means the client is
// too slow and is dropped rather than letting the hub block on it. Holding
// mu across the send keeps it mutually exclusive with closeSend, so a
// broadcast can never race a disconnecting client's channel close.
func (c *client) enqueue(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// closeSend marks the client closed and closes send exactly once. The
// hub is the sole caller (via unregister), never the client's own
// readPump, so enqueue's closed check and this close can't race.
func (c *client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump drains send and writes frames to the socket, one at a time.
func (c *client) writePump() {
	defer c.conn.Close()
	for b := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

// readPump processes inbound subscribe requests until the connection
// closes, then unregisters the client. Unregistering closes send (see
// Hub.unregister/closeSend); readPump itself never closes it.
func (c *client) readPump() {
	defer c.hub.unregister(c)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg subscribeMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Action != "subscribe" {
			continue
		}
		accepted := sanitizeChannels(msg.Channels)

		c.mu.Lock()
		c.channels = make(map[string]bool, len(accepted))
		for _, ch := range accepted {
			c.channels[ch] = true
		}
		c.mu.Unlock()

		ack, err := json.Marshal(subscribedAck{Type: "subscribed", Channels: accepted})
		if err == nil {
			c.enqueue(ack)
		}
		c.hub.sendInitialSnapshot(c, accepted)
	}
}
