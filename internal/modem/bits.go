package modem

import (
	"fmt"
	"strings"
)

// Bits are carried one per byte, each 0 or 1, MSB first.

// TextToBits converts a message to its 7-bit representation: every
// character's leading (always zero) bit is stripped before concatenation.
func TextToBits(msg string) ([]byte, error) {
	bits := make([]byte, 0, len(msg)*7)
	for i := 0; i < len(msg); i++ {
		b := msg[i]
		if b&0x80 != 0 {
			return nil, fmt.Errorf("%w: byte 0x%02x at offset %d", ErrNonASCII, b, i)
		}
		for j := 6; j >= 0; j-- {
			bits = append(bits, (b>>uint(j))&1)
		}
	}
	return bits, nil
}

// BitsToText re-chunks bits into 7-bit groups, restores the stripped
// leading zero of each and returns the resulting text. Trailing bits that
// do not fill a group are dropped.
func BitsToText(bits []byte) string {
	n := len(bits) / 7
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var b byte
		for j := 0; j < 7; j++ {
			b = (b << 1) | (bits[i*7+j] & 1)
		}
		out[i] = b
	}
	return string(out)
}

// ParseBits reads a string of '0' and '1' characters.
func ParseBits(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	bits := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			bits[i] = 1
		default:
			return nil, fmt.Errorf("invalid bit %q at offset %d", s[i], i)
		}
	}
	return bits, nil
}

// FormatBits is the inverse of ParseBits.
func FormatBits(bits []byte) string {
	var sb strings.Builder
	sb.Grow(len(bits))
	for _, b := range bits {
		sb.WriteByte('0' + b&1)
	}
	return sb.String()
}

// padBits zero-pads bits to a multiple of n.
func padBits(bits []byte, n int) []byte {
	rem := len(bits) % n
	if rem == 0 {
		return bits
	}
	padded := make([]byte, len(bits)+n-rem)
	copy(padded, bits)
	return padded
}

// groupIndices splits bits, zero-padded, into bps-bit groups and returns
// the integer value of each.
func groupIndices(bits []byte, bps int) []int {
	bits = padBits(bits, bps)
	indices := make([]int, len(bits)/bps)
	for i := range indices {
		indices[i] = bitsToIndex(bits[i*bps : (i+1)*bps])
	}
	return indices
}

// IndicesToBits expands every index to a bps-bit group, MSB first.
func IndicesToBits(indices []int, bps int) []byte {
	bits := make([]byte, 0, len(indices)*bps)
	for _, idx := range indices {
		bits = append(bits, indexToBits(idx, bps)...)
	}
	return bits
}

func bitsToIndex(bits []byte) int {
	idx := 0
	for _, b := range bits {
		idx = (idx << 1) | int(b&1)
	}
	return idx
}

func indexToBits(idx, numBits int) []byte {
	bits := make([]byte, numBits)
	for i := numBits - 1; i >= 0; i-- {
		bits[i] = byte(idx & 1)
		idx >>= 1
	}
	return bits
}
