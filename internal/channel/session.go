package channel

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/jeongseonghan/bandmodem/internal/modem"
)

// SessionStatus represents the session state.
type SessionStatus int

const (
	StatusIdle SessionStatus = iota
	StatusTransmitting
	StatusReceiving
	StatusCompleted
	StatusError
)

// String returns the status name.
func (s SessionStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusTransmitting:
		return "transmitting"
	case StatusReceiving:
		return "receiving"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// SessionEvent is sent to listeners when session state changes.
type SessionEvent struct {
	Status  SessionStatus
	Message string
	Error   error
}

// Session sends messages through a Channel with one modem used at both
// ends.
type Session struct {
	modem   *modem.Modem
	channel Channel
	logger  *log.Logger

	mu        sync.Mutex
	status    SessionStatus
	eventChan chan SessionEvent
}

// NewSession creates a session. A nil logger means log.Default().
func NewSession(m *modem.Modem, ch Channel, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		modem:     m,
		channel:   ch,
		logger:    logger,
		eventChan: make(chan SessionEvent, 100),
	}
}

// Events returns the event channel for monitoring session state.
func (s *Session) Events() <-chan SessionEvent {
	return s.eventChan
}

// Status returns the current state.
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Exchange transmits msg, passes the samples through the channel and
// decodes what comes back.
func (s *Session) Exchange(ctx context.Context, msg string) (*modem.Transmission, *modem.Reception, error) {
	s.setStatus(StatusTransmitting, fmt.Sprintf("encoding %d characters", len(msg)), nil)
	tx, err := s.modem.Transmit(msg)
	if err != nil {
		s.setStatus(StatusError, "transmit failed", err)
		return nil, nil, fmt.Errorf("transmit: %w", err)
	}

	out, err := s.channel.Transmit(ctx, tx.Samples)
	if err != nil {
		s.setStatus(StatusError, "channel failed", err)
		return tx, nil, fmt.Errorf("channel: %w", err)
	}

	s.setStatus(StatusReceiving, fmt.Sprintf("decoding %d samples", len(out)), nil)
	rx, err := s.modem.Receive(out)
	if err != nil {
		s.setStatus(StatusError, "receive failed", err)
		return tx, nil, fmt.Errorf("receive: %w", err)
	}

	s.setStatus(StatusCompleted, fmt.Sprintf("received %q", rx.Message), nil)
	return tx, rx, nil
}

func (s *Session) setStatus(status SessionStatus, message string, err error) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	event := SessionEvent{
		Status:  status,
		Message: message,
		Error:   err,
	}
	select {
	case s.eventChan <- event:
	default:
		s.logger.Warn("event channel full, dropping", "status", status, "message", message)
	}
}
