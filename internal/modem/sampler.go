package modem

import (
	"fmt"
	"math/cmplx"
)

// Timing locates symbol peaks in the matched-filter output of one frame.
type Timing struct {
	USF             int // samples per symbol
	Half            int // half the shaping filter length, span·usf/2
	PreambleSymbols int
	ShapedLen       int // length of the shaped preamble used as sync reference
}

// preambleSpan is the shaped preamble length plus one symbol period: the
// first data peak sits one symbol after the last preamble peak.
func (t Timing) preambleSpan() int {
	return t.ShapedLen + t.USF
}

// trailer is the reversed-preamble region at the end of the output.
func (t Timing) trailer() int {
	return t.PreambleSymbols*t.USF + t.Half
}

// Crop returns the part of y holding the data symbols, given the offset
// returned by Synchronize. The first returned sample is the first data
// peak.
func (t Timing) Crop(y []complex128, delay int) ([]complex128, error) {
	start := delay + t.preambleSpan() - t.Half - 1
	end := len(y) - t.Half - t.trailer()
	if start < 0 || end < 0 || start > len(y) {
		return nil, fmt.Errorf("%w: cannot crop [%d, %d) from %d samples", ErrShortInput, start, end, len(y))
	}
	if start >= end {
		return []complex128{}, nil
	}
	return y[start:end], nil
}

// PreamblePeaks returns the indices of the preamble symbol peaks.
func (t Timing) PreamblePeaks(delay int) []int {
	peaks := make([]int, t.PreambleSymbols)
	for k := range peaks {
		peaks[k] = delay + t.Half + k*t.USF
	}
	return peaks
}

// Decimate keeps every step-th sample of x, starting with the first.
func Decimate(x []complex128, step int) []complex128 {
	out := make([]complex128, 0, (len(x)+step-1)/step)
	for i := 0; i < len(x); i += step {
		out = append(out, x[i])
	}
	return out
}

// EstimateGain returns the real channel gain seen on the preamble peaks,
// |Σ y_k·conj(P_k)| / Σ|P_k|². Peaks falling outside y are skipped. The
// result is zero when nothing could be measured.
func EstimateGain(y, preamble []complex128, t Timing, delay int) float64 {
	var corr complex128
	var energy float64
	for k, idx := range t.PreamblePeaks(delay) {
		if idx < 0 || idx >= len(y) || k >= len(preamble) {
			continue
		}
		p := preamble[k]
		corr += y[idx] * cmplx.Conj(p)
		energy += real(p)*real(p) + imag(p)*imag(p)
	}
	if energy == 0 {
		return 0
	}
	return cmplx.Abs(corr) / energy
}
