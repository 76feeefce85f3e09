package modem

import "math"

// PreambleSource supplies the known reference symbols framing every
// transmission. Both ends must be built from sources returning the same
// sequence for the same length.
type PreambleSource interface {
	Preamble(n int) []complex128
}

// PreambleFunc adapts a function to PreambleSource.
type PreambleFunc func(n int) []complex128

func (f PreambleFunc) Preamble(n int) []complex128 { return f(n) }

// LFSRPreamble is a BPSK maximal-length sequence from a 6-bit Fibonacci
// LFSR (x^6 + x + 1, period 63). Seed is the initial register state; zero
// is replaced by 1.
type LFSRPreamble struct {
	Seed uint8
}

// bpsk points sit on the QPSK diagonal so the preamble has a non-zero
// imaginary part.
var bpsk = [2]complex128{
	complex(math.Sqrt2/2, math.Sqrt2/2),
	complex(-math.Sqrt2/2, -math.Sqrt2/2),
}

// Preamble returns n symbols. The sequence repeats every 63 symbols.
func (p LFSRPreamble) Preamble(n int) []complex128 {
	state := p.Seed & 0x3f
	if state == 0 {
		state = 1
	}
	out := make([]complex128, n)
	for i := range out {
		bit := ((state >> 5) ^ (state >> 4)) & 1
		state = ((state << 1) | bit) & 0x3f
		out[i] = bpsk[bit]
	}
	return out
}
