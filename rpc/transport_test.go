package rpc

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_WriteReadRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	ta := NewTransport(a)
	tb := NewTransport(b)
	defer ta.Close()
	defer tb.Close()

	id := int64(7)
	env := &Envelope{JSONRPC: ProtocolVersion, ID: &id, Method: "foo"}

	done := make(chan error, 1)
	go func() { done <- ta.Write(env) }()

	got, err := tb.ReadNext()
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, "foo", got.Method)
	assert.Equal(t, int64(7), *got.ID)
}

func TestTransport_MalformedPrefixFailsConnection(t *testing.T) {
	a, b := net.Pipe()
	tb := NewTransport(b)
	defer tb.Close()

	go func() {
		_, _ = a.Write([]byte(`{"jsonrpc":`))
		_ = a.Close()
	}()

	_, err := tb.ReadNext()
	require.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}

func TestTransport_CloseIsIdempotent(t *testing.T) {
	a, _ := net.Pipe()
	tr := NewTransport(a)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
}

func TestTransport_EOFOnCleanClose(t *testing.T) {
	a, b := net.Pipe()
	ta := NewTransport(a)
	tb := NewTransport(b)
	defer ta.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = tb.Close()
	}()

	_, err := ta.ReadNext()
	assert.Equal(t, io.EOF, err)
}
