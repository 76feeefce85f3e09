package modem

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeongseonghan/bandmodem/internal/fec"
)

// Scheme selects how the bit stream is spread over the band plan.
type Scheme int

const (
	SchemeSingle          Scheme = 1 // one stream repeated on every band
	SchemeDual            Scheme = 2 // one stream on two band edges
	SchemeMultiBandParity Scheme = 3 // N-1 data streams plus even parity
)

func (s Scheme) String() string {
	switch s {
	case SchemeSingle:
		return "single"
	case SchemeDual:
		return "dual"
	case SchemeMultiBandParity:
		return "parity"
	default:
		return "scheme(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseScheme accepts a scheme name or its numeric identifier.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "single":
		return SchemeSingle, nil
	case "2", "dual":
		return SchemeDual, nil
	case "3", "parity", "multiband", "multi-band":
		return SchemeMultiBandParity, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedScheme, s)
}

// schemeStrategy is the per-scheme behaviour the modem needs on both ends.
type schemeStrategy interface {
	// partition splits the message bits into one bit stream per carrier
	// group, each a multiple of bps long.
	partition(bits []byte, bps int) ([][]byte, error)
	// carriers returns, per stream, the frequencies it is placed on.
	carriers(plan BandPlan) [][]float64
	// demodCarrier picks the frequency to receive on once the removed band
	// is known.
	demodCarrier(plan BandPlan, removed int) (float64, error)
	// minBands is the smallest plan the scheme can use.
	minBands() int
}

func newStrategy(s Scheme, bands int) (schemeStrategy, error) {
	var st schemeStrategy
	switch s {
	case SchemeSingle:
		st = singleBand{}
	case SchemeDual:
		st = dualBand{}
	case SchemeMultiBandParity:
		if bands < 2 {
			return nil, fmt.Errorf("%w: %v needs at least 2 bands, have %d", ErrBandPlan, s, bands)
		}
		pc, err := fec.NewParityCoder(bands - 1)
		if err != nil {
			return nil, err
		}
		st = &parityBands{coder: pc}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedScheme, int(s))
	}
	if bands < st.minBands() {
		return nil, fmt.Errorf("%w: %v needs at least %d bands, have %d", ErrBandPlan, s, st.minBands(), bands)
	}
	return st, nil
}

type singleBand struct{}

func (singleBand) partition(bits []byte, bps int) ([][]byte, error) {
	return [][]byte{padBits(bits, bps)}, nil
}

func (singleBand) carriers(plan BandPlan) [][]float64 {
	fs := make([]float64, len(plan))
	for i, b := range plan {
		fs[i] = b.Mean()
	}
	return [][]float64{fs}
}

func (singleBand) demodCarrier(plan BandPlan, removed int) (float64, error) {
	if removed == 0 {
		return plan[1].Mean(), nil
	}
	return plan[0].Mean(), nil
}

func (singleBand) minBands() int { return 2 }

type dualBand struct{}

func (dualBand) partition(bits []byte, bps int) ([][]byte, error) {
	return [][]byte{padBits(bits, bps)}, nil
}

func (dualBand) carriers(plan BandPlan) [][]float64 {
	return [][]float64{{plan[0].High, plan[2].High}}
}

func (dualBand) demodCarrier(plan BandPlan, removed int) (float64, error) {
	if removed == 0 || removed == 1 {
		return plan[2].High, nil
	}
	return plan[0].High, nil
}

func (dualBand) minBands() int { return 3 }

type parityBands struct {
	coder *fec.ParityCoder
}

// partition deals bit i to data stream i mod (N-1), pads every stream to a
// common multiple of bps and appends the parity stream last.
func (p *parityBands) partition(bits []byte, bps int) ([][]byte, error) {
	n := p.coder.DataStreams()
	perStream := (len(bits) + n - 1) / n
	if rem := perStream % bps; rem != 0 {
		perStream += bps - rem
	}

	streams := make([][]byte, n)
	for i := range streams {
		streams[i] = make([]byte, perStream)
	}
	for i, b := range bits {
		streams[i%n][i/n] = b
	}

	parity, err := p.coder.Parity(streams)
	if err != nil {
		return nil, fmt.Errorf("parity stream: %w", err)
	}
	return append(streams, parity), nil
}

func (p *parityBands) carriers(plan BandPlan) [][]float64 {
	out := make([][]float64, p.coder.DataStreams()+1)
	for i := range out {
		out[i] = []float64{plan[i].Mean()}
	}
	return out
}

func (p *parityBands) demodCarrier(BandPlan, int) (float64, error) {
	return 0, fmt.Errorf("multi-band receive: %w", ErrNotImplemented)
}

func (p *parityBands) minBands() int { return 2 }
