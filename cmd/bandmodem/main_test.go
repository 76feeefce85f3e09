package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeongseonghan/bandmodem/internal/samplefile"
)

func TestTransmitReceiveFiles(t *testing.T) {
	dir := t.TempDir()
	tx := filepath.Join(dir, "tx.txt")
	pre := filepath.Join(dir, "preamble.txt")
	msgFile := filepath.Join(dir, "msg.txt")
	require.NoError(t, os.WriteFile(msgFile, []byte("AB\nignored\n"), 0o644))

	require.NoError(t, run([]string{"transmit", "--message-file", msgFile, "-o", tx}, io.Discard, io.Discard))

	var out bytes.Buffer
	require.NoError(t, run([]string{"receive", "-i", tx, "--preamble-output", pre}, &out, io.Discard))
	assert.Equal(t, "AB\n", out.String())

	shaped, err := samplefile.LoadComplex(pre)
	require.NoError(t, err)
	assert.NotEmpty(t, shaped)
}

func TestTransmitToStdout(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"transmit", "-m", "x"}, &out, io.Discard))

	samples, err := samplefile.ReadReal(&out)
	require.NoError(t, err)
	assert.NotEmpty(t, samples)
}

func TestLoopbackCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"loopback", "-m", "hello"}, &out, io.Discard))
	assert.Equal(t, "hello\n", out.String())
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modem.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheme: dual\nmodulation: 16QAM\nbits_per_symbol: 4\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, run([]string{"loopback", "-c", path, "-m", "dual"}, &out, io.Discard))
	assert.Equal(t, "dual\n", out.String())
}

func TestCommandErrors(t *testing.T) {
	assert.Error(t, run(nil, io.Discard, io.Discard))
	assert.Error(t, run([]string{"bogus"}, io.Discard, io.Discard))
	assert.Error(t, run([]string{"transmit", "--nope"}, io.Discard, io.Discard))
	assert.Error(t, run([]string{"transmit", "-m", "ça"}, io.Discard, io.Discard))
	assert.Error(t, run([]string{"receive", "-i", filepath.Join(t.TempDir(), "missing")}, io.Discard, io.Discard))
}
