package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLFSRPreamble_MaximalLength(t *testing.T) {
	p := LFSRPreamble{Seed: 1}.Preamble(126)
	require.Len(t, p, 126)

	negatives := 0
	for i := 0; i < 63; i++ {
		if real(p[i]) < 0 {
			negatives++
		}
		assert.Equal(t, p[i], p[i+63], "period must be 63")
	}
	// a 6-bit m-sequence has 32 ones and 31 zeros per period
	assert.Equal(t, 32, negatives)
}

func TestLFSRPreamble_Deterministic(t *testing.T) {
	a := LFSRPreamble{Seed: 7}.Preamble(63)
	b := LFSRPreamble{Seed: 7}.Preamble(63)
	c := LFSRPreamble{Seed: 8}.Preamble(63)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	assert.Equal(t, LFSRPreamble{Seed: 1}.Preamble(10), LFSRPreamble{Seed: 0}.Preamble(10))
}

func TestLFSRPreamble_ComplexPoints(t *testing.T) {
	for _, v := range (LFSRPreamble{Seed: 3}).Preamble(20) {
		assert.NotZero(t, imag(v))
		assert.InDelta(t, 1.0, real(v)*real(v)+imag(v)*imag(v), 1e-12)
	}
}
