package modem

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	m := newTestModem(t, SchemeSingle, ModQPSK).WithObservers(LogObserver(logger))
	tx, err := m.Transmit("log")
	require.NoError(t, err)
	_, err = m.Receive(tx.Samples)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "name=partition")
	assert.Contains(t, out, "name=sync")
	assert.Contains(t, out, "value=")
}

func TestLogObserver_InfoLevelIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	LogObserver(log.New(&buf))(Event{Stage: StageScale, Len: 10})
	assert.Empty(t, buf.String())
}
