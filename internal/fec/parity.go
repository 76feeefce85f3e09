package fec

import (
	"errors"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// ErrStreamLength is returned when the data streams handed to a
// ParityCoder do not all have the same length.
var ErrStreamLength = errors.New("parity streams differ in length")

// ParityCoder computes a single even-parity stream over N data streams.
// It is a Reed-Solomon code with one parity shard whose encoding row is all
// ones, so the parity shard is the byte-wise XOR of the data shards. With
// bits stored one per byte the parity byte is the even-parity bit.
type ParityCoder struct {
	enc         reedsolomon.Encoder
	dataStreams int
}

// NewParityCoder creates a coder for the given number of data streams.
func NewParityCoder(dataStreams int) (*ParityCoder, error) {
	enc, err := reedsolomon.New(dataStreams, 1, reedsolomon.WithFastOneParityMatrix())
	if err != nil {
		return nil, fmt.Errorf("create parity encoder: %w", err)
	}
	return &ParityCoder{
		enc:         enc,
		dataStreams: dataStreams,
	}, nil
}

// DataStreams returns the number of data streams the coder expects.
func (p *ParityCoder) DataStreams() int { return p.dataStreams }

// Parity returns the parity stream of streams. The inputs are not modified.
func (p *ParityCoder) Parity(streams [][]byte) ([]byte, error) {
	n, err := p.checkStreams(streams)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []byte{}, nil
	}

	shards := p.shards(streams, n)
	shards[p.dataStreams] = make([]byte, n)

	if err := p.enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("encode parity: %w", err)
	}
	return shards[p.dataStreams], nil
}

// Verify reports whether parity is the even parity of streams.
func (p *ParityCoder) Verify(streams [][]byte, parity []byte) (bool, error) {
	n, err := p.checkStreams(streams)
	if err != nil {
		return false, err
	}
	if len(parity) != n {
		return false, fmt.Errorf("%w: parity has %d, data has %d", ErrStreamLength, len(parity), n)
	}
	if n == 0 {
		return true, nil
	}

	shards := p.shards(streams, n)
	shards[p.dataStreams] = append([]byte(nil), parity...)

	ok, err := p.enc.Verify(shards)
	if err != nil {
		return false, fmt.Errorf("verify parity: %w", err)
	}
	return ok, nil
}

// Rebuild recovers the data stream at index missing from the remaining
// streams and the parity stream. The entry at streams[missing] is ignored.
func (p *ParityCoder) Rebuild(streams [][]byte, parity []byte, missing int) ([]byte, error) {
	if missing < 0 || missing >= p.dataStreams {
		return nil, fmt.Errorf("missing stream %d out of range [0, %d)", missing, p.dataStreams)
	}
	if len(streams) != p.dataStreams {
		return nil, fmt.Errorf("expected %d data streams, got %d", p.dataStreams, len(streams))
	}

	n := len(parity)
	shards := make([][]byte, p.dataStreams+1)
	for i, s := range streams {
		if i == missing {
			continue
		}
		if len(s) != n {
			return nil, fmt.Errorf("%w: stream %d has %d, parity has %d", ErrStreamLength, i, len(s), n)
		}
		shards[i] = append([]byte(nil), s...)
	}
	if n == 0 {
		return []byte{}, nil
	}
	shards[p.dataStreams] = append([]byte(nil), parity...)

	if err := p.enc.ReconstructData(shards); err != nil {
		return nil, fmt.Errorf("rebuild stream %d: %w", missing, err)
	}
	return shards[missing], nil
}

func (p *ParityCoder) checkStreams(streams [][]byte) (int, error) {
	if len(streams) != p.dataStreams {
		return 0, fmt.Errorf("expected %d data streams, got %d", p.dataStreams, len(streams))
	}
	n := len(streams[0])
	for i, s := range streams {
		if len(s) != n {
			return 0, fmt.Errorf("%w: stream %d has %d, stream 0 has %d", ErrStreamLength, i, len(s), n)
		}
	}
	return n, nil
}

func (p *ParityCoder) shards(streams [][]byte, n int) [][]byte {
	shards := make([][]byte, p.dataStreams+1)
	for i, s := range streams {
		shards[i] = make([]byte, n)
		copy(shards[i], s)
	}
	return shards
}
