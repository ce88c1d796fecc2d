package realtime

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lunarcms/lunar/internal/rbac"
	"github.com/lunarcms/lunar/pkg/logger"
	"github.com/lunarcms/lunar/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // 1 MiB

	defaultBufferSize = 64
)

// Event names exchanged with clients.
const (
	EventConnected    = "connected"
	EventPing         = "ping"
	EventPong         = "pong"
	EventRBAC         = "rbac"
	EventRBACResponse = "rbac-response"
)

// Message is a JSON envelope delivered to connected clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// inboundEvent is what clients send us: an event name plus an opaque
// payload that each event interprets for itself.
type inboundEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// decisionResult is the rbac-response payload. Status mirrors the
// permission flag so clients that only look at one of them agree with
// clients that look at the other.
type decisionResult struct {
	Status     bool   `json:"status"`
	Message    string `json:"message"`
	Permission bool   `json:"permission"`
}

// Hub owns the set of live websocket connections and dispatches their
// inbound events. Authentication happens at the handshake, before a
// connection reaches the hub; the hub trusts the identity it is handed
// for the lifetime of the connection.
type Hub struct {
	mu       sync.Mutex
	conns    map[*connection]struct{}
	checker  *rbac.Checker
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub constructs a hub that resolves rbac events with the provided checker.
func NewHub(checker *rbac.Checker) *Hub {
	return &Hub{
		conns:   make(map[*connection]struct{}),
		checker: checker,
		log:     logger.WithModule("realtime"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Allow same-origin requests and explicit localhost development.
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				originHost := hostWithoutPort(origin)
				requestHost := hostWithoutPort(r.Host)
				return originHost == requestHost || isLoopback(originHost)
			},
		},
	}
}

// Serve upgrades the HTTP connection to a WebSocket on behalf of the
// already-verified identity and runs the event exchange until the peer
// disconnects. A "connected" event is emitted as soon as the socket is
// established.
func (h *Hub) Serve(identity rbac.Identity, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	client := newConnection(h, conn, identity)
	h.register(client)

	go client.writeLoop()
	client.enqueue(Message{Event: EventConnected})
	client.readLoop()
}

// Close terminates every live connection. Used during shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*connection, 0, len(h.conns))
	for client := range h.conns {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
}

func (h *Hub) register(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[client] = struct{}{}
}

func (h *Hub) unregister(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, client)
}

type connection struct {
	hub      *Hub
	socket   *websocket.Conn
	identity rbac.Identity
	send     chan Message
	once     sync.Once

	// mu guards closed so enqueue never races the channel close.
	mu     sync.Mutex
	closed bool
}

func newConnection(hub *Hub, conn *websocket.Conn, identity rbac.Identity) *connection {
	return &connection{
		hub:      hub,
		socket:   conn,
		identity: identity,
		send:     make(chan Message, defaultBufferSize),
	}
}

func (c *connection) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("unexpected close",
					zap.String("user_id", c.identity.ID), zap.Error(err))
			}
			break
		}

		if len(payload) == 0 {
			continue
		}

		var event inboundEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			c.hub.log.Debug("invalid event payload",
				zap.String("user_id", c.identity.ID), zap.Error(err))
			continue
		}

		c.dispatch(event)
	}
}

func (c *connection) dispatch(event inboundEvent) {
	name := strings.ToLower(strings.TrimSpace(event.Event))
	metrics.SocketEvents.WithLabelValues(name).Inc()

	switch name {
	case EventRBAC:
		c.handleCheck(event.Payload)
	case EventPing:
		c.enqueue(Message{Event: EventPong})
	default:
		c.hub.log.Debug("unsupported event",
			zap.String("event", event.Event), zap.String("user_id", c.identity.ID))
	}
}

// handleCheck resolves an rbac event into an rbac-response. Every
// failure mode collapses into a denial on the response payload; the
// socket never emits an error event for a permission check.
func (c *connection) handleCheck(payload json.RawMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	decision := c.hub.checker.CheckEvent(ctx, c.identity, payload)

	result := "denied"
	if decision.Allowed {
		result = "allowed"
	}
	metrics.PermissionChecks.WithLabelValues("socket", result).Inc()

	c.enqueue(Message{Event: EventRBACResponse, Data: decisionResult{
		Status:     decision.Allowed,
		Message:    decision.Reason,
		Permission: decision.Allowed,
	}})
}

func (c *connection) writeLoop() {
	defer c.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *connection) enqueue(message Message) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	select {
	case c.send <- message:
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		c.hub.log.Warn("dropping backpressure client", zap.String("user_id", c.identity.ID))
		c.close()
	}
}

func (c *connection) close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		c.hub.unregister(c)
		close(c.send)
		_ = c.socket.Close()
	})
}

func hostWithoutPort(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}

	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		parsed, err := http.NewRequest(http.MethodGet, host, nil)
		if err == nil {
			return hostWithoutPort(parsed.URL.Host)
		}
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	if ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}
