package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/jeongseonghan/bandmodem/internal/modem"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage represents a WebSocket message.
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// StagePayload reports one finished pipeline stage of a transmission.
type StagePayload struct {
	ID        string  `json:"id"`
	Stage     string  `json:"stage"`
	Len       int     `json:"len"`
	Value     any     `json:"value,omitempty"`
	ElapsedMS float64 `json:"elapsedMs"`
}

// WSHub manages WebSocket connections.
type WSHub struct {
	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
	logger  *log.Logger
	onCount func(n int)
}

// NewWSHub creates a new WebSocket hub. onCount, if set, is told the
// client count after every change.
func NewWSHub(logger *log.Logger, onCount func(n int)) *WSHub {
	return &WSHub{
		clients: make(map[*websocket.Conn]*sync.Mutex),
		logger:  logger,
		onCount: onCount,
	}
}

// AddClient registers a new WebSocket connection.
func (h *WSHub) AddClient(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket client connected", "total", n)
	if h.onCount != nil {
		h.onCount(n)
	}
}

// RemoveClient removes a WebSocket connection.
func (h *WSHub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()

	conn.Close()
	if !ok {
		return
	}
	h.logger.Info("websocket client disconnected", "remaining", n)
	if h.onCount != nil {
		h.onCount(n)
	}
}

// ClientCount returns the number of connected clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to all connected clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("websocket marshal", "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn, wmu := range h.clients {
		wmu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		wmu.Unlock()
		if err != nil {
			h.logger.Warn("websocket write", "err", err)
			go h.RemoveClient(conn)
		}
	}
}

// BroadcastStatus sends a status update to all clients.
func (h *WSHub) BroadcastStatus(status, message string) {
	h.Broadcast(WSMessage{
		Type: "status",
		Payload: map[string]string{
			"status":  status,
			"message": message,
		},
	})
}

// StageObserver returns a modem observer broadcasting every stage of the
// transmission id.
func (h *WSHub) StageObserver(id string) modem.Observer {
	return func(e modem.Event) {
		if h.ClientCount() == 0 {
			return
		}
		p := StagePayload{
			ID:        id,
			Stage:     string(e.Stage),
			Len:       e.Len,
			ElapsedMS: float64(e.Elapsed) / float64(time.Millisecond),
		}
		switch v := e.Value.(type) {
		case int, float64:
			p.Value = v
		}
		h.Broadcast(WSMessage{Type: "stage", Payload: p})
	}
}
