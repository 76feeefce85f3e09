package channel

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// WSChannel sends each transmission to a remote channel server over a
// fresh WebSocket connection and waits for the processed samples.
// Samples cross the wire as float32.
type WSChannel struct {
	url      string
	compress bool
	dialer   *websocket.Dialer
	seq      atomic.Uint32
}

// NewWSChannel creates a channel client for url (ws:// or wss://).
func NewWSChannel(url string, compress bool) *WSChannel {
	return &WSChannel{
		url:      url,
		compress: compress,
		dialer:   websocket.DefaultDialer,
	}
}

// Transmit implements Channel. The context bounds dialing and the whole
// exchange.
func (c *WSChannel) Transmit(ctx context.Context, samples []float64) ([]float64, error) {
	seq := uint16(c.seq.Add(1))
	data, err := NewSamplesFrame(seq, samples, c.compress).Encode()
	if err != nil {
		return nil, err
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial channel %s: %w", c.url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
		conn.SetReadDeadline(deadline)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return nil, c.wrap(ctx, "send samples", err)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, c.wrap(ctx, "read samples", err)
	}

	f, err := DecodeFrame(msg)
	if err != nil {
		return nil, err
	}
	if f.Seq != seq {
		return nil, fmt.Errorf("channel answered seq %d, sent %d", f.Seq, seq)
	}
	if f.Type == TypeError {
		return nil, fmt.Errorf("%w: %s", ErrRemote, f.Message)
	}
	return f.Samples, nil
}

func (c *WSChannel) wrap(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}
