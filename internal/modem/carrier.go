package modem

import (
	"fmt"
	"math"
)

// Modulate shifts every shaped baseband stream onto each of its carriers
// and sums the real parts into one passband sequence:
//
//	x[n] = Σ_s Σ_f Re(streams[s][n] · e^{j2πf n/fs})
//
// carriers[s] lists the frequencies for streams[s]. Streams of unequal
// length are summed from n = 0. A baseband that is real everywhere is
// refused with ErrNotImplemented; real passband (e.g. SSB) is not
// supported.
func Modulate(streams [][]complex128, carriers [][]float64, sampleRate float64) ([]float64, error) {
	if len(streams) != len(carriers) {
		return nil, fmt.Errorf("modulate: %d streams but %d carrier sets", len(streams), len(carriers))
	}
	if !anyComplex(streams) {
		return nil, fmt.Errorf("modulate real baseband: %w", ErrNotImplemented)
	}

	n := 0
	for _, s := range streams {
		n = max(n, len(s))
	}

	out := make([]float64, n)
	for i, s := range streams {
		for _, f := range carriers[i] {
			for k, v := range s {
				out[k] += real(v * carrierPhase(f, sampleRate, k, 1))
			}
		}
	}
	return out, nil
}

// Demodulate brings the band around fc down to complex baseband.
func Demodulate(x []float64, fc, sampleRate float64) []complex128 {
	out := make([]complex128, len(x))
	for n, v := range x {
		out[n] = complex(v, 0) * carrierPhase(fc, sampleRate, n, -1)
	}
	return out
}

func anyComplex(streams [][]complex128) bool {
	for _, s := range streams {
		for _, v := range s {
			if imag(v) != 0 {
				return true
			}
		}
	}
	return false
}

// carrierPhase returns e^{±j2πf n/fs}, the sign selecting up or down
// conversion.
func carrierPhase(f, sampleRate float64, n int, sign float64) complex128 {
	s, c := math.Sincos(sign * 2 * math.Pi * f * float64(n) / sampleRate)
	return complex(c, s)
}
