package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAssembleFrame_Symmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		np := rapid.IntRange(1, 70).Draw(t, "preamble")
		nd := rapid.IntRange(0, 40).Draw(t, "data")
		preamble := LFSRPreamble{Seed: uint8(rapid.IntRange(1, 63).Draw(t, "seed"))}.Preamble(np)
		data := make([]complex128, nd)
		for i := range data {
			data[i] = complex(float64(i), -float64(i))
		}

		frame := AssembleFrame(preamble, data)
		require.Len(t, frame, 2*np+nd)
		assert.Equal(t, preamble, frame[:np])
		assert.Equal(t, data, frame[np:np+nd])
		for i := 0; i < np; i++ {
			assert.Equal(t, frame[i], frame[len(frame)-1-i], "symbol %d", i)
		}
	})
}

func TestAssembleFrame_NoConjugate(t *testing.T) {
	frame := AssembleFrame([]complex128{1 + 2i, 3 - 1i}, nil)
	assert.Equal(t, []complex128{1 + 2i, 3 - 1i, 3 - 1i, 1 + 2i}, frame)
}
