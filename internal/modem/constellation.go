package modem

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Modulation represents a square QAM constellation family.
type Modulation int

const (
	ModQPSK  Modulation = 2 // 2 bits per symbol
	Mod16QAM Modulation = 4 // 4 bits per symbol
	Mod64QAM Modulation = 6 // 6 bits per symbol
)

// BitsPerSymbol returns the number of bits per constellation symbol.
func (m Modulation) BitsPerSymbol() int {
	return int(m)
}

// String returns the modulation name.
func (m Modulation) String() string {
	switch m {
	case ModQPSK:
		return "QPSK"
	case Mod16QAM:
		return "16-QAM"
	case Mod64QAM:
		return "64-QAM"
	default:
		return "Unknown"
	}
}

// ParseModulation accepts the names printed by String, case-insensitively,
// with or without the dash.
func ParseModulation(s string) (Modulation, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "") {
	case "qpsk", "4qam":
		return ModQPSK, nil
	case "16qam":
		return Mod16QAM, nil
	case "64qam":
		return Mod64QAM, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedModulation, s)
}

// Constellation holds the M reference points of a session. Index i is the
// integer value of the bit group it encodes, MSB first.
type Constellation struct {
	Mod    Modulation
	points []complex128
}

// NewConstellation creates a unit average power constellation.
func NewConstellation(mod Modulation) (*Constellation, error) {
	c := &Constellation{Mod: mod}
	switch mod {
	case ModQPSK:
		c.generateQPSK()
	case Mod16QAM:
		c.generateQAM(4)
	case Mod64QAM:
		c.generateQAM(8)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedModulation, int(mod))
	}
	c.normalize()
	return c, nil
}

func (c *Constellation) generateQPSK() {
	// Gray order around the circle: 00, 01, 10, 11 -> Q1, Q2, Q3, Q4
	c.points = []complex128{
		complex(1, 1),
		complex(-1, 1),
		complex(-1, -1),
		complex(1, -1),
	}
}

func (c *Constellation) generateQAM(order int) {
	size := order * order
	c.points = make([]complex128, size)

	for i := 0; i < size; i++ {
		row := i / order
		col := i % order

		grayRow := row ^ (row >> 1)
		grayCol := col ^ (col >> 1)

		// odd levels: -3, -1, 1, 3 for 16-QAM
		x := float64(2*grayCol - order + 1)
		y := float64(2*grayRow - order + 1)

		c.points[i] = complex(x, y)
	}
}

func (c *Constellation) normalize() {
	var avgPower float64
	for _, p := range c.points {
		avgPower += real(p)*real(p) + imag(p)*imag(p)
	}
	avgPower /= float64(len(c.points))

	scale := 1.0 / math.Sqrt(avgPower)
	for i := range c.points {
		c.points[i] = complex(real(c.points[i])*scale, imag(c.points[i])*scale)
	}
}

// Size returns M, the number of constellation points.
func (c *Constellation) Size() int {
	return len(c.points)
}

// Points returns a copy of the reference points in index order.
func (c *Constellation) Points() []complex128 {
	out := make([]complex128, len(c.points))
	copy(out, c.points)
	return out
}

// Symbol returns the point for index idx. It panics on an index outside
// [0, M), which can only come from a caller bug.
func (c *Constellation) Symbol(idx int) complex128 {
	return c.points[idx]
}

// Index returns the constellation index encoded by one bit group.
func (c *Constellation) Index(bits []byte) int {
	return bitsToIndex(bits)
}

// Map maps one bit group to its constellation point.
func (c *Constellation) Map(bits []byte) complex128 {
	return c.points[c.Index(bits)]
}

// MapIndices maps a sequence of indices to their points.
func (c *Constellation) MapIndices(indices []int) []complex128 {
	symbols := make([]complex128, len(indices))
	for i, idx := range indices {
		symbols[i] = c.points[idx]
	}
	return symbols
}

// Decode returns, for each observation, the index of the nearest point.
// Ties resolve to the lowest index.
func (c *Constellation) Decode(observations []complex128) []int {
	out := make([]int, len(observations))
	for i, y := range observations {
		out[i] = c.nearest(y)
	}
	return out
}

// DecodeMatrix is Decode for an observation held as a 1×N row or an N×1
// column. Anything wider in both directions is rejected.
func (c *Constellation) DecodeMatrix(y mat.CMatrix) ([]int, error) {
	r, cols := y.Dims()
	var flat []complex128
	switch {
	case r == 1:
		flat = make([]complex128, cols)
		for j := range flat {
			flat[j] = y.At(0, j)
		}
	case cols == 1:
		flat = make([]complex128, r)
		for i := range flat {
			flat[i] = y.At(i, 0)
		}
	default:
		return nil, fmt.Errorf("%w: got %dx%d", ErrDimension, r, cols)
	}
	return c.Decode(flat), nil
}

func (c *Constellation) nearest(y complex128) int {
	minDist := math.Inf(1)
	minIdx := 0

	for i, p := range c.points {
		d := real(y-p)*real(y-p) + imag(y-p)*imag(y-p)
		if d < minDist {
			minDist = d
			minIdx = i
		}
	}
	return minIdx
}
