package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func shapedTestPreamble(t require.TestingT) []complex128 {
	h, err := RootRaisedCosine(8, 8, 0.3)
	require.NoError(t, err)
	return Upfirdn(h, LFSRPreamble{Seed: 5}.Preamble(31), 8)
}

func TestSynchronize_FindsReference(t *testing.T) {
	ref := shapedTestPreamble(t)

	signal := make([]complex128, 0, 1000+len(ref)+500)
	signal = append(signal, make([]complex128, 1000)...)
	signal = append(signal, ref...)
	signal = append(signal, make([]complex128, 500)...)

	delay, err := Synchronize(signal, ref)
	require.NoError(t, err)
	assert.Equal(t, 1000, delay)
}

func TestSynchronize_ShiftInvariance(t *testing.T) {
	ref := shapedTestPreamble(t)
	base := append(append([]complex128{}, ref...), make([]complex128, 64)...)
	for i := range base {
		// scale and rotate so the match is not exact
		base[i] *= complex(0.3, -0.4)
	}

	d0, err := Synchronize(base, ref)
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		k := rapid.IntRange(0, 300).Draw(t, "leading zeros")
		shifted := append(make([]complex128, k), base...)

		d, err := Synchronize(shifted, ref)
		require.NoError(t, err)
		assert.Equal(t, d0+k, d)
	})
}

func TestSynchronize_NoPreambleStillAnswers(t *testing.T) {
	ref := shapedTestPreamble(t)
	delay, err := Synchronize(make([]complex128, len(ref)+10), ref)
	require.NoError(t, err)
	assert.Equal(t, 0, delay, "all-zero metric ties resolve to the first offset")
}

func TestSynchronize_ShortInput(t *testing.T) {
	ref := shapedTestPreamble(t)
	_, err := Synchronize(ref[:len(ref)-1], ref)
	assert.ErrorIs(t, err, ErrShortInput)

	_, err = Synchronize(ref, nil)
	assert.ErrorIs(t, err, ErrShortInput)
}

func TestSyncMetrics_Length(t *testing.T) {
	ref := []complex128{1, 1i}
	metrics, err := SyncMetrics([]complex128{0, 1, 1i, 0}, ref)
	require.NoError(t, err)
	require.Len(t, metrics, 3)
	assert.InDelta(t, 2.0, metrics[1], 1e-12)
}
