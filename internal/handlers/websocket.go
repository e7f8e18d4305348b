package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/services/knowledge"
)

const (
	clientBufferSize = 64
	writeTimeout     = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is the envelope of every message sent to clients
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan WSMessage
}

// WebSocketHandler streams pipeline progress to connected clients. Slow
// clients drop messages instead of blocking publishers.
type WebSocketHandler struct {
	logger           arbor.ILogger
	mu               sync.RWMutex
	clients          map[*websocket.Conn]*wsClient
	progressLimiter  *rate.Limiter
	serverInstanceID string
}

// NewWebSocketHandler creates the hub. A positive throttle limits how often
// per-file analyze events are forwarded; stage transitions always pass.
func NewWebSocketHandler(logger arbor.ILogger, throttle time.Duration) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]*wsClient),
		serverInstanceID: uuid.New().String(),
	}
	if throttle > 0 {
		h.progressLimiter = rate.NewLimiter(rate.Every(throttle), 1)
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized")
	return h
}

// HandleWebSocket upgrades the connection and serves it until the client leaves
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &wsClient{conn: conn, send: make(chan WSMessage, clientBufferSize)}
	client.send <- WSMessage{Type: "connected", Payload: map[string]string{"server_instance_id": h.serverInstanceID}}

	h.mu.Lock()
	h.clients[conn] = client
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", count).Msg("WebSocket client connected")

	go h.writeLoop(client)

	// Reads only detect disconnects; clients send nothing meaningful
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(conn)
}

func (h *WebSocketHandler) writeLoop(client *wsClient) {
	for msg := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := client.conn.WriteJSON(msg); err != nil {
			h.logger.Debug().Err(err).Msg("WebSocket write failed")
			h.remove(client.conn)
			client.conn.Close()
			return
		}
	}
	client.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	client.conn.Close()
}

func (h *WebSocketHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	client, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(client.send)
	}
	h.mu.Unlock()

	if ok {
		h.logger.Debug().Msg("WebSocket client disconnected")
	}
}

// Publish forwards a progress event to every client without blocking
func (h *WebSocketHandler) Publish(event models.ProgressEvent) {
	if h.progressLimiter != nil && event.Stage == knowledge.StageAnalyze && event.Done < event.Total && !h.progressLimiter.Allow() {
		return
	}
	h.broadcast(WSMessage{Type: "progress", Payload: event})
}

func (h *WebSocketHandler) broadcast(msg WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- msg:
		default:
			h.logger.Debug().Str("type", msg.Type).Msg("WebSocket client buffer full, dropping message")
		}
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *WebSocketHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, client := range h.clients {
		delete(h.clients, conn)
		close(client.send)
	}
}

var _ interfaces.ProgressPublisher = (*WebSocketHandler)(nil)
