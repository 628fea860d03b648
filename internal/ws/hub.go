package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ameliorater/unit-converter/internal/api"
	"github.com/ameliorater/unit-converter/internal/engine"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// maxQueryBytes bounds one incoming frame.
	maxQueryBytes = 1024
)

// Events sent to clients.
const (
	EventReady         = "ready"
	EventResult        = "result"
	EventError         = "error"
	EventTableReloaded = "table_reloaded"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins; apply CORS at the reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope of every frame sent to clients.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// ErrorData is the payload of an "error" event.
type ErrorData struct {
	Query string `json:"query"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Hub manages WebSocket client connections.
type Hub struct {
	eng    *engine.Engine
	events chan []byte

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a Hub answering queries with eng.
func New(eng *engine.Engine) *Hub {
	return &Hub{
		eng:     eng,
		events:  make(chan []byte, sendBufSize),
		clients: make(map[*client]struct{}),
	}
}

// Run fans queued broadcasts out to all clients. It blocks until ctx is
// cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case data := <-h.events:
			h.fanOut(data)
		}
	}
}

// Broadcast queues event for every connected client. It never blocks; if
// the queue is full the event is dropped.
func (h *Hub) Broadcast(event string, data interface{}) {
	msg, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		slog.Error("ws: marshal broadcast", "event", event, "err", err)
		return
	}
	select {
	case h.events <- msg:
	default:
		slog.Warn("ws: broadcast queue full, dropping event", "event", event)
	}
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	h.register(c)
	defer h.unregister(c)

	if data, err := json.Marshal(Message{Event: EventReady, Data: api.BuildHealth(h.eng)}); err == nil {
		h.deliver(c, data)
	}

	go c.writePump()
	h.readPump(c) // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// deliver queues data for c. The send happens under the read lock so it
// cannot race with unregister closing the channel. A full buffer
// disconnects the client.
func (h *Hub) deliver(c *client, data []byte) {
	h.mu.RLock()
	_, live := h.clients[c]
	queued := false
	if live {
		select {
		case c.send <- data:
			queued = true
		default:
		}
	}
	h.mu.RUnlock()

	if live && !queued {
		slog.Warn("ws: client too slow, disconnecting", "remote", c.conn.RemoteAddr().String())
		h.unregister(c)
	}
}

func (h *Hub) fanOut(data []byte) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.deliver(c, data)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// answer converts one frame and encodes the reply.
func (h *Hub) answer(frame []byte) []byte {
	q := strings.TrimSpace(string(frame))
	if strings.HasPrefix(q, "{") {
		var req api.ConvertRequest
		if err := json.Unmarshal(frame, &req); err != nil {
			return encode(Message{Event: EventError, Data: ErrorData{Query: q, Error: "invalid JSON frame", Kind: engine.OutcomeSyntax}})
		}
		q = strings.TrimSpace(req.Query)
	}

	res, err := h.eng.Convert(q)
	if err != nil {
		return encode(Message{Event: EventError, Data: ErrorData{Query: q, Error: err.Error(), Kind: engine.Outcome(err)}})
	}
	return encode(Message{Event: EventResult, Data: api.ConvertResponse{Query: q, Result: res, Display: res.String()}})
}

// encode marshals m. A result that cannot be represented in JSON (an
// overflow to ±Inf) is reported to the client as an error event instead.
func encode(m Message) []byte {
	data, err := json.Marshal(m)
	if err == nil {
		return data
	}
	slog.Warn("ws: encode reply", "event", m.Event, "err", err)
	data, _ = json.Marshal(Message{Event: EventError, Data: ErrorData{Error: "result not representable", Kind: engine.OutcomeError}})
	return data
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump answers each text frame and handles control messages (pong,
// close). Blocks until the connection closes.
func (h *Hub) readPump(c *client) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxQueryBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		return nil
	})
	for {
		kind, frame, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		if kind != websocket.TextMessage {
			continue
		}
		h.deliver(c, h.answer(frame))
	}
}
