package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jeongseonghan/bandmodem/internal/channel"
	"github.com/jeongseonghan/bandmodem/internal/modem"
)

// maxBodyBytes bounds request bodies; a few seconds of samples as JSON fit
// comfortably.
const maxBodyBytes = 64 << 20

// Handlers holds the HTTP API handlers.
type Handlers struct {
	modem   *modem.Modem
	channel channel.Channel
	wsHub   *WSHub
	metrics *Metrics
	logger  *log.Logger
	timeout time.Duration

	mu     sync.Mutex
	status channel.SessionStatus
}

// NewHandlers creates the API handlers. ch is the channel used by the
// loopback endpoint.
func NewHandlers(m *modem.Modem, ch channel.Channel, timeout time.Duration, logger *log.Logger) *Handlers {
	metrics := NewMetrics()
	return &Handlers{
		modem:   m,
		channel: ch,
		wsHub:   NewWSHub(logger, metrics.setClients),
		metrics: metrics,
		logger:  logger,
		timeout: timeout,
	}
}

// Hub returns the stage event hub.
func (h *Handlers) Hub() *WSHub { return h.wsHub }

// Metrics returns the server's collectors.
func (h *Handlers) Metrics() *Metrics { return h.metrics }

type transmitRequest struct {
	Message string `json:"message"`
}

type transmitResponse struct {
	ID         string    `json:"id"`
	SampleRate float64   `json:"sampleRate"`
	Samples    []float64 `json:"samples"`
}

type receiveRequest struct {
	Samples []float64 `json:"samples"`
}

type receiveResponse struct {
	ID          string  `json:"id"`
	Message     string  `json:"message"`
	Bits        string  `json:"bits"`
	RemovedBand int     `json:"removedBand"`
	Carrier     float64 `json:"carrier"`
	Delay       int     `json:"delay"`
	Gain        float64 `json:"gain"`
}

// session returns the modem reporting to the hub and metrics under a new
// transmission id.
func (h *Handlers) session() (string, *modem.Modem) {
	id := uuid.New().String()
	return id, h.modem.WithObservers(h.wsHub.StageObserver(id), h.metrics.Observer())
}

// HandleWebSocket handles WebSocket upgrade requests for stage events.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "err", err)
		return
	}

	h.wsHub.AddClient(conn)

	// Read messages (for potential commands from client)
	go func() {
		defer h.wsHub.RemoveClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// HandleChannel serves an identity channel speaking the sample wire frame,
// so a transmitter can exercise its WebSocket path against this server.
func (h *Handlers) HandleChannel(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("channel upgrade", "err", err)
		return
	}
	defer conn.Close()

	if err := channel.ServeConn(r.Context(), conn, channel.Loopback{}); err != nil {
		h.logger.Debug("channel connection closed", "err", err)
	}
}

// HandleTransmit encodes a message into passband samples.
func (h *Handlers) HandleTransmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req transmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, m := h.session()
	tx, err := m.Transmit(req.Message)
	h.metrics.countRequest("transmit", err)
	if err != nil {
		h.fail(w, id, http.StatusBadRequest, fmt.Errorf("transmit: %w", err))
		return
	}

	h.logger.Info("transmitted", "id", id, "chars", len(req.Message), "samples", len(tx.Samples))
	writeJSON(w, transmitResponse{
		ID:         id,
		SampleRate: m.Config().SampleRate,
		Samples:    tx.Samples,
	})
}

// HandleReceive decodes passband samples.
func (h *Handlers) HandleReceive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req receiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, m := h.session()
	rx, err := m.Receive(req.Samples)
	h.metrics.countRequest("receive", err)
	if err != nil {
		h.fail(w, id, http.StatusUnprocessableEntity, fmt.Errorf("receive: %w", err))
		return
	}

	h.logger.Info("received", "id", id, "band", rx.RemovedBand, "delay", rx.Delay, "message", rx.Message)
	writeJSON(w, newReceiveResponse(id, rx))
}

// HandleLoopback transmits a message through the configured channel and
// decodes the result.
func (h *Handlers) HandleLoopback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req transmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id, m := h.session()
	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	session := channel.NewSession(m, h.channel, h.logger)
	h.wsHub.BroadcastStatus(channel.StatusTransmitting.String(), id)
	_, rx, err := session.Exchange(ctx, req.Message)
	h.status = session.Status()
	h.metrics.countRequest("loopback", err)
	if err != nil {
		h.fail(w, id, http.StatusBadGateway, err)
		return
	}

	h.wsHub.BroadcastStatus(h.status.String(), id)
	writeJSON(w, newReceiveResponse(id, rx))
}

// HandleStatus returns the state of the last loopback session.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	status := h.status
	h.mu.Unlock()

	writeJSON(w, map[string]any{
		"status":  status.String(),
		"clients": h.wsHub.ClientCount(),
	})
}

// HandleConfig returns the modem configuration in effect.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.modem.Config()
	bands := make([][2]float64, len(cfg.Bands))
	for i, b := range cfg.Bands {
		bands[i] = [2]float64{b.Low, b.High}
	}
	writeJSON(w, map[string]any{
		"scheme":         cfg.Scheme.String(),
		"modulation":     cfg.Modulation.String(),
		"bitsPerSymbol":  cfg.BitsPerSymbol,
		"usf":            cfg.USF,
		"sampleRate":     cfg.SampleRate,
		"bands":          bands,
		"amplitude":      cfg.Amplitude,
		"filterSpan":     cfg.FilterSpan,
		"rollOff":        cfg.RollOff,
		"preambleLength": cfg.PreambleLength,
	})
}

func newReceiveResponse(id string, rx *modem.Reception) receiveResponse {
	return receiveResponse{
		ID:          id,
		Message:     rx.Message,
		Bits:        modem.FormatBits(rx.Bits),
		RemovedBand: rx.RemovedBand,
		Carrier:     rx.Carrier,
		Delay:       rx.Delay,
		Gain:        rx.Gain,
	}
}

func (h *Handlers) fail(w http.ResponseWriter, id string, code int, err error) {
	h.logger.Warn("request failed", "id", id, "err", err)
	h.wsHub.BroadcastStatus(channel.StatusError.String(), err.Error())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"id":    id,
		"error": err.Error(),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("Parse request: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
