package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSymbols(t *testing.T) {
	c, err := NewConstellation(ModQPSK)
	require.NoError(t, err)

	symbols := []complex128{
		c.Symbol(2) + complex(0.05, -0.03),
		c.Symbol(0),
		c.Symbol(3) * 0.8,
		c.Symbol(1) + complex(-0.1, 0.1),
	}
	indices, bits, err := DecodeSymbols(c, symbols)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 3, 1}, indices)
	assert.Equal(t, "10001101", FormatBits(bits))
}

func TestDecodeSymbols_Empty(t *testing.T) {
	c, err := NewConstellation(Mod16QAM)
	require.NoError(t, err)

	indices, bits, err := DecodeSymbols(c, nil)
	require.NoError(t, err)
	assert.Empty(t, indices)
	assert.Empty(t, bits)
}
