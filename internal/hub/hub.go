// Package hub is the coordinate source: mobile pages publish samples over a
// WebSocket and relays receive them by push or by polling /data.
package hub

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/frudas24/touchrelay/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 8
	writeTimeout = 2 * time.Second
	maxFrame     = 64 << 10
)

var requiredFields = []string{"x", "y", "type"}

// client is one WebSocket subscriber.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the latest sample and the latest copied text, and fans samples
// out to every connected socket.
type Hub struct {
	upgrader websocket.Upgrader
	log      *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	latest  []byte
	text    string
	closed  bool
}

// New returns an empty hub.
func New(logger *log.Logger) *Hub {
	return &Hub{
		log:     logging.Component(logger, "hub"),
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Latest returns the most recent valid sample, or nil before the first one.
func (h *Hub) Latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]byte(nil), h.latest...)
}

// Text returns the most recently written-back text.
func (h *Hub) Text() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.text
}

// SetText stores copied text.
func (h *Hub) SetText(text string) {
	h.mu.Lock()
	h.text = text
	h.mu.Unlock()
	h.log.Info("copied text", "chars", len(text))
}

// Clients returns the number of connected sockets.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish stores a sample and forwards it to every client. It reports
// whether the frame was accepted.
func (h *Hub) Publish(frame []byte) bool {
	return h.publish(frame, nil)
}

// publish stores a sample and forwards it to every client except from.
// Frames that are not objects carrying x, y and type are ignored.
func (h *Hub) publish(frame []byte, from *client) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(frame, &fields); err != nil || len(fields) == 0 {
		h.log.Debug("ignoring frame", "err", err)
		return false
	}
	for _, f := range requiredFields {
		if _, ok := fields[f]; !ok {
			h.log.Debug("ignoring frame without required field", "field", f)
			return false
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, frame); err != nil {
		return false
	}
	msg := buf.Bytes()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = msg
	for c := range h.clients {
		if c == from {
			continue
		}
		offer(c.send, msg)
	}
	return true
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeWS upgrades the request and runs the client until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.subscribe(c) {
		_ = conn.Close()
		return
	}
	h.log.Info("client connected", "remote", r.RemoteAddr, "clients", h.Clients())

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(c)
	}()
	h.readLoop(c)
	h.unsubscribe(c)
	<-done
	h.log.Info("client disconnected", "remote", r.RemoteAddr, "clients", h.Clients())
}

// subscribe registers c and queues the latest sample for it.
func (h *Hub) subscribe(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if len(h.latest) > 0 {
		c.send <- h.latest
	}
	return true
}

// unsubscribe removes c if it is still registered.
func (h *Hub) unsubscribe(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readLoop handles inbound frames until the socket fails.
func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(maxFrame)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var copied struct {
			Text *string `json:"copied_text"`
		}
		if json.Unmarshal(data, &copied) == nil && copied.Text != nil {
			h.SetText(*copied.Text)
			continue
		}
		h.publish(data, c)
	}
}

// writeLoop drains c.send to the socket and closes it when the channel closes.
func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
		time.Now().Add(writeTimeout))
}

// offer queues msg, dropping the oldest pending message when full.
func offer(ch chan []byte, msg []byte) {
	select {
	case ch <- msg:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- msg:
	default:
	}
}
