package channel

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

// ServeConn answers sample frames arriving on conn by passing them through
// ch, until the peer closes the connection or ctx ends. Frames that fail
// to decode, or that ch rejects, are answered with an ERROR frame. Replies
// use the compression of the request.
func ServeConn(ctx context.Context, conn *websocket.Conn, ch Channel) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read frame: %w", err)
		}

		reply := answer(ctx, msg, ch)
		data, err := reply.Encode()
		if err != nil {
			data, err = NewErrorFrame(reply.Seq, err.Error()).Encode()
			if err != nil {
				return err
			}
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
}

func answer(ctx context.Context, msg []byte, ch Channel) *Frame {
	req, err := DecodeFrame(msg)
	if err != nil {
		return NewErrorFrame(0, err.Error())
	}
	if req.Type != TypeSamples {
		return NewErrorFrame(req.Seq, "expected SAMPLES frame, got "+req.TypeName())
	}
	out, err := ch.Transmit(ctx, req.Samples)
	if err != nil {
		return NewErrorFrame(req.Seq, err.Error())
	}
	return NewSamplesFrame(req.Seq, out, req.Flags&FlagZstd != 0)
}
