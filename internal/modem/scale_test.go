package modem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"pgregory.net/rapid"
)

func TestScale_PeakAndRatios(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.SliceOfN(rapid.Float64Range(-100, 100), 1, 200).Draw(t, "x")
		if floats.Norm(x, math.Inf(1)) == 0 {
			x[0] = 1
		}
		target := rapid.Float64Range(0.01, 10).Draw(t, "target")

		out, err := Scale(x, target)
		require.NoError(t, err)
		require.Len(t, out, len(x))
		assert.Equal(t, target, floats.Norm(out, math.Inf(1)))

		ref := floats.MaxIdx(absAll(x))
		for i := range x {
			assert.Equal(t, math.Signbit(x[i]), math.Signbit(out[i]), "sign at %d", i)
			assert.InDelta(t, x[i]/x[ref], out[i]/out[ref], 1e-9, "ratio at %d", i)
		}
	})
}

func TestScale_Silence(t *testing.T) {
	_, err := Scale(make([]float64, 8), 1)
	assert.ErrorIs(t, err, ErrSilence)
}

func TestScale_Empty(t *testing.T) {
	out, err := Scale(nil, 1)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func absAll(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Abs(v)
	}
	return out
}
