package modem

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Band is one [Low, High] frequency range in Hz.
type Band struct {
	Low  float64
	High float64
}

// Mean returns the centre frequency of the band.
func (b Band) Mean() float64 {
	return (b.Low + b.High) / 2
}

func (b Band) String() string {
	return fmt.Sprintf("[%g, %g] Hz", b.Low, b.High)
}

// BandPlan is the ordered list of disjoint ranges the channel may suppress
// one of.
type BandPlan []Band

// Validate checks the plan is non-empty, ordered, disjoint and below the
// Nyquist frequency for sampleRate.
func (p BandPlan) Validate(sampleRate float64) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no bands", ErrBandPlan)
	}
	for i, b := range p {
		if b.Low < 0 || b.High <= b.Low {
			return fmt.Errorf("%w: band %d %v is empty or negative", ErrBandPlan, i, b)
		}
		if b.High > sampleRate/2 {
			return fmt.Errorf("%w: band %d %v exceeds Nyquist %g Hz", ErrBandPlan, i, b, sampleRate/2)
		}
		if i > 0 && b.Low < p[i-1].High {
			return fmt.Errorf("%w: band %d %v overlaps band %d %v", ErrBandPlan, i, b, i-1, p[i-1])
		}
	}
	return nil
}

// BandEnergies returns the Hann-windowed spectral energy of x falling in
// each band of plan.
func BandEnergies(x []float64, sampleRate float64, plan BandPlan) ([]float64, error) {
	if len(x) < 2 {
		return nil, fmt.Errorf("%w: %d samples", ErrShortInput, len(x))
	}

	windowed := window.Hann(append([]float64(nil), x...))
	fft := fourier.NewFFT(len(windowed))
	coeffs := fft.Coefficients(nil, windowed)

	energies := make([]float64, len(plan))
	for i, c := range coeffs {
		f := fft.Freq(i) * sampleRate
		for k, b := range plan {
			// shared edges count towards the upper band
			if f >= b.Low && f < b.High {
				energies[k] += real(c)*real(c) + imag(c)*imag(c)
				break
			}
		}
	}
	return energies, nil
}

// DetectRemovedBand returns the index of the band carrying the least energy,
// which is taken to be the one the channel suppressed.
func DetectRemovedBand(x []float64, sampleRate float64, plan BandPlan) (int, error) {
	if len(plan) == 0 {
		return 0, fmt.Errorf("%w: no bands", ErrBandPlan)
	}
	energies, err := BandEnergies(x, sampleRate, plan)
	if err != nil {
		return 0, err
	}
	return floats.MinIdx(energies), nil
}

