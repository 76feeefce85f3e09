package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_EncodeDecode(t *testing.T) {
	samples := []float64{0, 0.5, -0.25, 1, -1, 0.123456}

	for _, compress := range []bool{false, true} {
		original := NewSamplesFrame(42, samples, compress)
		encoded, err := original.Encode()
		require.NoError(t, err)

		decoded, err := DecodeFrame(encoded)
		require.NoError(t, err)

		assert.Equal(t, TypeSamples, decoded.Type)
		assert.Equal(t, uint16(42), decoded.Seq)
		assert.Equal(t, compress, decoded.Flags&FlagZstd != 0)
		require.Len(t, decoded.Samples, len(samples))
		for i := range samples {
			assert.InDelta(t, samples[i], decoded.Samples[i], 1e-7, "sample %d", i)
		}
	}
}

func TestFrame_UncompressedLayout(t *testing.T) {
	encoded, err := NewSamplesFrame(1, []float64{1, 2}, false).Encode()
	require.NoError(t, err)
	require.Len(t, encoded, HeaderSize+8+CRCSize)
	assert.Equal(t, []byte{TypeSamples, 0, 0, 1, 0, 0, 0, 2}, encoded[:HeaderSize])
	assert.Equal(t, []byte{0x3f, 0x80, 0, 0}, encoded[HeaderSize:HeaderSize+4], "float32 1.0 big-endian")
}

func TestFrame_CompressionShrinksSilence(t *testing.T) {
	silence := make([]float64, 4096)
	plain, err := NewSamplesFrame(0, silence, false).Encode()
	require.NoError(t, err)
	packed, err := NewSamplesFrame(0, silence, true).Encode()
	require.NoError(t, err)
	assert.Less(t, len(packed), len(plain)/10)
}

func TestFrame_ErrorFrame(t *testing.T) {
	encoded, err := NewErrorFrame(7, "band plan mismatch").Encode()
	require.NoError(t, err)

	decoded, err := DecodeFrame(encoded)
	require.NoError(t, err)
	assert.Equal(t, TypeError, decoded.Type)
	assert.Equal(t, "ERROR", decoded.TypeName())
	assert.Equal(t, uint16(7), decoded.Seq)
	assert.Equal(t, "band plan mismatch", decoded.Message)
}

func TestFrame_CRCError(t *testing.T) {
	encoded, err := NewSamplesFrame(1, []float64{0.1, 0.2, 0.3}, false).Encode()
	require.NoError(t, err)

	encoded[HeaderSize+2] ^= 0xFF
	_, err = DecodeFrame(encoded)
	assert.ErrorIs(t, err, ErrCRC)
}

func TestFrame_TooShort(t *testing.T) {
	_, err := DecodeFrame([]byte{0x01, 0x00})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestFrame_UnknownType(t *testing.T) {
	_, err := (&Frame{Type: 0x7f}).Encode()
	assert.Error(t, err)
	assert.Equal(t, "UNKNOWN(0x7f)", (&Frame{Type: 0x7f}).TypeName())
}

func TestFrame_EmptySamples(t *testing.T) {
	encoded, err := NewSamplesFrame(3, nil, true).Encode()
	require.NoError(t, err)
	decoded, err := DecodeFrame(encoded)
	require.NoError(t, err)
	assert.Empty(t, decoded.Samples)
}
