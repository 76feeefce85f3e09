package channel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeongseonghan/bandmodem/internal/modem"
)

var testUpgrader = websocket.Upgrader{}

// channelServer serves ch on a test WebSocket endpoint and returns its
// ws:// URL.
func channelServer(t *testing.T, ch Channel) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		ServeConn(r.Context(), conn, ch)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestLoopback_Copies(t *testing.T) {
	in := []float64{1, 2, 3}
	out, err := Loopback{}.Transmit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out[0] = 9
	assert.Equal(t, 1.0, in[0])
}

func TestLoopback_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Loopback{}.Transmit(ctx, []float64{1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWSChannel_Echo(t *testing.T) {
	url := channelServer(t, Loopback{})

	for _, compress := range []bool{false, true} {
		ch := NewWSChannel(url, compress)
		in := []float64{0.25, -0.5, 0.75, 0}

		out, err := ch.Transmit(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, in, out, "values exact in float32 survive unchanged")
	}
}

func TestWSChannel_RemoteProcessing(t *testing.T) {
	halve := Func(func(_ context.Context, s []float64) ([]float64, error) {
		out := make([]float64, len(s))
		for i, v := range s {
			out[i] = v / 2
		}
		return out, nil
	})
	ch := NewWSChannel(channelServer(t, halve), false)

	out, err := ch.Transmit(context.Background(), []float64{1, -1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -0.5}, out)
}

func TestWSChannel_RemoteError(t *testing.T) {
	failing := Func(func(context.Context, []float64) ([]float64, error) {
		return nil, errors.New("band stop unavailable")
	})
	ch := NewWSChannel(channelServer(t, failing), false)

	_, err := ch.Transmit(context.Background(), []float64{1})
	require.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "band stop unavailable")
}

func TestWSChannel_ContextTimeout(t *testing.T) {
	block := make(chan struct{})
	stuck := Func(func(ctx context.Context, s []float64) ([]float64, error) {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return s, nil
	})
	ch := NewWSChannel(channelServer(t, stuck), false)
	// registered after the server so it runs before the server closes
	t.Cleanup(func() { close(block) })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := ch.Transmit(ctx, []float64{1})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWSChannel_DialError(t *testing.T) {
	ch := NewWSChannel("ws://127.0.0.1:1/none", false)
	_, err := ch.Transmit(context.Background(), []float64{1})
	assert.Error(t, err)
}

func TestSession_Exchange(t *testing.T) {
	m, err := modem.New(modem.DefaultConfig())
	require.NoError(t, err)

	s := NewSession(m, NewWSChannel(channelServer(t, Loopback{}), true), nil)
	tx, rx, err := s.Exchange(context.Background(), "over the wire")
	require.NoError(t, err)
	assert.NotEmpty(t, tx.Samples)
	assert.Equal(t, "over the wire", rx.Message)
	assert.Equal(t, StatusCompleted, s.Status())

	var statuses []SessionStatus
	for len(s.Events()) > 0 {
		statuses = append(statuses, (<-s.Events()).Status)
	}
	assert.Equal(t, []SessionStatus{StatusTransmitting, StatusReceiving, StatusCompleted}, statuses)
}

func TestSession_ChannelError(t *testing.T) {
	m, err := modem.New(modem.DefaultConfig())
	require.NoError(t, err)

	broken := Func(func(context.Context, []float64) ([]float64, error) {
		return nil, errors.New("line dropped")
	})
	s := NewSession(m, broken, nil)
	_, _, err = s.Exchange(context.Background(), "hi")
	assert.Error(t, err)
	assert.Equal(t, StatusError, s.Status())
}

func TestSession_NonASCII(t *testing.T) {
	m, err := modem.New(modem.DefaultConfig())
	require.NoError(t, err)

	s := NewSession(m, Loopback{}, nil)
	_, _, err = s.Exchange(context.Background(), "résumé")
	assert.ErrorIs(t, err, modem.ErrNonASCII)
}
