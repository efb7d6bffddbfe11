package client

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triggerware/tw-go-client/rpc"
)

// newTestPair wires a Client over one side of a net.Pipe() and hands back
// the raw server-side Engine so tests can register fake TW server method
// handlers directly, the same way rpc's own tests fake a peer.
func newTestPair(t *testing.T) (*Client, *rpc.Engine) {
	t.Helper()
	a, b := net.Pipe()
	clientEngine := rpc.NewEngine(rpc.NewTransport(a), nil)
	serverEngine := rpc.NewEngine(rpc.NewTransport(b), nil)
	require.NoError(t, clientEngine.Start(context.Background()))
	require.NoError(t, serverEngine.Start(context.Background()))
	c := New(clientEngine)
	t.Cleanup(func() {
		_ = c.Close()
		_ = serverEngine.Close()
	})
	return c, serverEngine
}

func ctxT(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClient_Noop(t *testing.T) {
	c, server := newTestPair(t)
	server.RegisterMethod("noop", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		return nil, nil
	}))
	require.NoError(t, c.Noop(ctxT(t)))
}

func TestClient_ValidateQuery_Accepted(t *testing.T) {
	c, server := newTestPair(t)
	server.RegisterMethod("validate", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		return "ok", nil
	}))
	result, err := c.ValidateQuery(ctxT(t), "select 1", "sql", "")
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestClient_ValidateQuery_Rejected(t *testing.T) {
	c, server := newTestPair(t)
	server.RegisterMethod("validate", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		return nil, rpc.NewError(-32001, "bad syntax")
	}))
	_, err := c.ValidateQuery(ctxT(t), "select !!!", "sql", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestClient_GetRuntimeMeasure(t *testing.T) {
	c, server := newTestPair(t)
	server.RegisterMethod("runtime", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		return [3]int64{100, 20, 4096}, nil
	}))
	rm, err := c.GetRuntimeMeasure(ctxT(t))
	require.NoError(t, err)
	assert.Equal(t, int64(100), rm.RunTime)
	assert.Equal(t, int64(20), rm.GCTime)
	assert.Equal(t, int64(4096), rm.Bytes)
}

func TestClient_GetRelData(t *testing.T) {
	c, server := newTestPair(t)
	server.RegisterMethod("reldata2017", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		return []interface{}{
			[]interface{}{"group1", "g1", []interface{}{
				[]interface{}{"table1", []string{"a"}, []string{"integer"}, "usage", []interface{}{}, "desc"},
			}},
		}, nil
	}))
	groups, err := c.GetRelData(ctxT(t))
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "group1", groups[0].Name)
	require.Len(t, groups[0].Elements, 1)
	assert.Equal(t, "table1", groups[0].Elements[0].Name)
}
