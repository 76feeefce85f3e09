package modem

import (
	"fmt"
	"math"
	"math/cmplx"
)

// RootRaisedCosine returns the span·usf+1 taps of a root-raised-cosine
// filter with roll-off beta, sampled at usf samples per symbol and scaled
// to unit energy. span·usf must be even so the filter has a centre tap.
func RootRaisedCosine(span, usf int, beta float64) ([]float64, error) {
	if span <= 0 || usf <= 0 {
		return nil, fmt.Errorf("%w: span %d, usf %d", ErrFilter, span, usf)
	}
	if (span*usf)%2 != 0 {
		return nil, fmt.Errorf("%w: span·usf = %d is odd", ErrFilter, span*usf)
	}
	if beta <= 0 || beta > 1 {
		return nil, fmt.Errorf("%w: roll-off %g outside (0, 1]", ErrFilter, beta)
	}

	n := span*usf + 1
	half := span * usf / 2
	h := make([]float64, n)
	var energy float64
	for i := range h {
		t := float64(i-half) / float64(usf) // in symbol periods
		h[i] = rrcTap(t, beta)
		energy += h[i] * h[i]
	}

	norm := 1 / math.Sqrt(energy)
	for i := range h {
		h[i] *= norm
	}
	return h, nil
}

func rrcTap(t, beta float64) float64 {
	const eps = 1e-9
	switch {
	case math.Abs(t) < eps:
		return 1 - beta + 4*beta/math.Pi
	case math.Abs(math.Abs(t)-1/(4*beta)) < eps:
		return beta / math.Sqrt2 * ((1+2/math.Pi)*math.Sin(math.Pi/(4*beta)) +
			(1-2/math.Pi)*math.Cos(math.Pi/(4*beta)))
	}
	num := math.Sin(math.Pi*t*(1-beta)) + 4*beta*t*math.Cos(math.Pi*t*(1+beta))
	den := math.Pi * t * (1 - (4*beta*t)*(4*beta*t))
	return num / den
}

// Upfirdn inserts up-1 zeros between consecutive symbols of x and convolves
// the result with h. The output holds (len(x)-1)·up + len(h) samples.
func Upfirdn(h []float64, x []complex128, up int) []complex128 {
	if len(x) == 0 || len(h) == 0 {
		return []complex128{}
	}
	out := make([]complex128, (len(x)-1)*up+len(h))
	for k, v := range x {
		if v == 0 {
			continue
		}
		base := k * up
		for j, tap := range h {
			out[base+j] += v * complex(tap, 0)
		}
	}
	return out
}

// MatchedFilter returns the time-reversed conjugate of h.
func MatchedFilter(h []float64) []complex128 {
	out := make([]complex128, len(h))
	for i, v := range h {
		out[len(h)-1-i] = cmplx.Conj(complex(v, 0))
	}
	return out
}

// Convolve returns the full linear convolution of x and h, of length
// len(x)+len(h)-1.
func Convolve(x, h []complex128) []complex128 {
	if len(x) == 0 || len(h) == 0 {
		return []complex128{}
	}
	out := make([]complex128, len(x)+len(h)-1)
	for i, v := range x {
		if v == 0 {
			continue
		}
		for j, tap := range h {
			out[i+j] += v * tap
		}
	}
	return out
}
