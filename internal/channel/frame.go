package channel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/jeongseonghan/bandmodem/internal/fec"
)

// Frame types
const (
	TypeSamples byte = 0x01
	TypeError   byte = 0x02
)

// Flag bits
const (
	FlagZstd byte = 0x01
)

// Frame size limits
const (
	HeaderSize = 8
	CRCSize    = fec.ChecksumSize
	MaxSamples = 1 << 22
)

var (
	ErrCRC       = errors.New("frame CRC mismatch")
	ErrTruncated = errors.New("frame truncated")
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(4*MaxSamples+1024))
)

// Frame carries one sample buffer, or an error report, across a channel.
// Format: [Type(1B)][Flags(1B)][Seq(2B)][Count(4B)][Payload][CRC-32(4B)]
//
// For TypeSamples the payload is Count big-endian float32 values, zstd
// compressed when FlagZstd is set. For TypeError it is Count bytes of
// UTF-8 text. The CRC covers header and payload as sent.
type Frame struct {
	Type    byte
	Flags   byte
	Seq     uint16
	Samples []float64
	Message string
}

// TypeName returns a human-readable name for the frame type.
func (f *Frame) TypeName() string {
	switch f.Type {
	case TypeSamples:
		return "SAMPLES"
	case TypeError:
		return "ERROR"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02x)", f.Type)
	}
}

// NewSamplesFrame creates a SAMPLES frame.
func NewSamplesFrame(seq uint16, samples []float64, compress bool) *Frame {
	f := &Frame{
		Type:    TypeSamples,
		Seq:     seq,
		Samples: samples,
	}
	if compress {
		f.Flags |= FlagZstd
	}
	return f
}

// NewErrorFrame creates an ERROR frame answering seq.
func NewErrorFrame(seq uint16, msg string) *Frame {
	return &Frame{
		Type:    TypeError,
		Seq:     seq,
		Message: msg,
	}
}

// Encode serializes the frame with its CRC-32 trailer.
func (f *Frame) Encode() ([]byte, error) {
	var count int
	var payload []byte
	switch f.Type {
	case TypeSamples:
		count = len(f.Samples)
		if count > MaxSamples {
			return nil, fmt.Errorf("frame holds %d samples, limit %d", count, MaxSamples)
		}
		payload = make([]byte, 4*count)
		for i, v := range f.Samples {
			binary.BigEndian.PutUint32(payload[4*i:], math.Float32bits(float32(v)))
		}
		if f.Flags&FlagZstd != 0 {
			payload = zstdEncoder.EncodeAll(payload, nil)
		}
	case TypeError:
		payload = []byte(f.Message)
		count = len(payload)
	default:
		return nil, fmt.Errorf("encode frame: unknown type 0x%02x", f.Type)
	}

	buf := make([]byte, HeaderSize, HeaderSize+len(payload)+CRCSize)
	buf[0] = f.Type
	buf[1] = f.Flags
	binary.BigEndian.PutUint16(buf[2:4], f.Seq)
	binary.BigEndian.PutUint32(buf[4:8], uint32(count))
	buf = append(buf, payload...)

	return fec.AppendCRC32(buf), nil
}

// DecodeFrame deserializes one frame, verifying CRC-32 and length.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < HeaderSize+CRCSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}

	body, ok := fec.VerifyCRC32(data)
	if !ok {
		return nil, ErrCRC
	}

	f := &Frame{
		Type:  body[0],
		Flags: body[1],
		Seq:   binary.BigEndian.Uint16(body[2:4]),
	}
	count := int(binary.BigEndian.Uint32(body[4:8]))
	payload := body[HeaderSize:]

	switch f.Type {
	case TypeSamples:
		if count > MaxSamples {
			return nil, fmt.Errorf("frame announces %d samples, limit %d", count, MaxSamples)
		}
		if f.Flags&FlagZstd != 0 {
			raw, err := zstdDecoder.DecodeAll(payload, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress samples: %w", err)
			}
			payload = raw
		}
		if len(payload) != 4*count {
			return nil, fmt.Errorf("%w: payload %d bytes for %d samples", ErrTruncated, len(payload), count)
		}
		f.Samples = make([]float64, count)
		for i := range f.Samples {
			f.Samples[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(payload[4*i:])))
		}
	case TypeError:
		if len(payload) != count {
			return nil, fmt.Errorf("%w: message %d bytes, header says %d", ErrTruncated, len(payload), count)
		}
		f.Message = string(payload)
	default:
		return nil, fmt.Errorf("decode frame: unknown type 0x%02x", f.Type)
	}
	return f, nil
}
