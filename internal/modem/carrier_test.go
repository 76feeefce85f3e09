package modem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulate_RealBasebandRefused(t *testing.T) {
	_, err := Modulate([][]complex128{{1, -1, 1}}, [][]float64{{1000}}, 8000)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestModulate_CarrierMismatch(t *testing.T) {
	_, err := Modulate([][]complex128{{1i}}, nil, 8000)
	assert.Error(t, err)
}

func TestModulate_SumsCarriers(t *testing.T) {
	const fs = 8000.0
	s := []complex128{1 + 1i, 1 + 1i, 1 + 1i, 1 + 1i}

	// a quarter of the sample rate advances the phase by π/2 per sample
	x, err := Modulate([][]complex128{s}, [][]float64{{fs / 4}}, fs)
	require.NoError(t, err)
	want := []float64{1, -1, -1, 1}
	for i := range want {
		assert.InDelta(t, want[i], x[i], 1e-12, "sample %d", i)
	}

	double, err := Modulate([][]complex128{s}, [][]float64{{fs / 4, fs / 4}}, fs)
	require.NoError(t, err)
	for i := range want {
		assert.InDelta(t, 2*want[i], double[i], 1e-12)
	}
}

func TestModulate_UnequalStreams(t *testing.T) {
	x, err := Modulate([][]complex128{{1i}, {1, 1, 1}}, [][]float64{{0}, {0}}, 8000)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, x)
}

func TestDemodulate_ReturnsHalfAmplitude(t *testing.T) {
	const fs, fc = 22050.0, 3000.0
	n := 4410 // whole number of carrier periods
	s := complex(0.6, -0.8)
	stream := make([]complex128, n)
	for i := range stream {
		stream[i] = s
	}
	x, err := Modulate([][]complex128{stream}, [][]float64{{fc}}, fs)
	require.NoError(t, err)

	bb := Demodulate(x, fc, fs)
	var mean complex128
	for _, v := range bb {
		mean += v
	}
	mean /= complex(float64(n), 0)
	assert.InDelta(t, real(s)/2, real(mean), 1e-9)
	assert.InDelta(t, imag(s)/2, imag(mean), 1e-9)
}

func TestCarrierPhase(t *testing.T) {
	p := carrierPhase(1, 4, 1, 1)
	assert.InDelta(t, 0, real(p), 1e-15)
	assert.InDelta(t, 1, imag(p), 1e-15)

	p = carrierPhase(1, 4, 1, -1)
	assert.InDelta(t, -1, imag(p), 1e-15)
	assert.InDelta(t, 1, math.Hypot(real(p), imag(p)), 1e-15)
}
