package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Server is the HTTP server for the modem API.
type Server struct {
	mux     *http.ServeMux
	handler *Handlers
	srv     *http.Server
	logger  *log.Logger
}

// NewServer creates a new HTTP server.
func NewServer(addr string, handler *Handlers, logger *log.Logger) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		handler: handler,
		logger:  logger,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// API routes
	s.mux.HandleFunc("/api/transmit", s.handler.HandleTransmit)
	s.mux.HandleFunc("/api/receive", s.handler.HandleReceive)
	s.mux.HandleFunc("/api/loopback", s.handler.HandleLoopback)
	s.mux.HandleFunc("/api/status", s.handler.HandleStatus)
	s.mux.HandleFunc("/api/config", s.handler.HandleConfig)

	// WebSocket
	s.mux.HandleFunc("/ws", s.handler.HandleWebSocket)
	s.mux.HandleFunc("/ws/channel", s.handler.HandleChannel)

	s.mux.Handle("/metrics", s.handler.Metrics().Handler())
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
