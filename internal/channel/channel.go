// Package channel moves passband sample buffers between the transmitter
// and the receiver.
package channel

import (
	"context"
	"errors"
)

// ErrRemote wraps an error reported by the far end of a channel.
var ErrRemote = errors.New("remote channel error")

// Channel carries one transmission and returns what came out of the other
// end. Implementations may suppress a band, rescale or delay the signal.
type Channel interface {
	Transmit(ctx context.Context, samples []float64) ([]float64, error)
}

// Func adapts a function to Channel.
type Func func(ctx context.Context, samples []float64) ([]float64, error)

func (f Func) Transmit(ctx context.Context, samples []float64) ([]float64, error) {
	return f(ctx, samples)
}

// Loopback is the identity channel.
type Loopback struct{}

func (Loopback) Transmit(ctx context.Context, samples []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]float64(nil), samples...), nil
}
