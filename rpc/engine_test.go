package rpc

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pairedEngines returns two started engines connected over an in-memory
// net.Pipe(), so the reader/writer goroutines exercise a real duplex
// stream without a real socket.
func pairedEngines(t *testing.T) (*Engine, *Engine) {
	t.Helper()
	a, b := net.Pipe()
	e1 := NewEngine(NewTransport(a), nil)
	e2 := NewEngine(NewTransport(b), nil)
	require.NoError(t, e1.Start(context.Background()))
	require.NoError(t, e2.Start(context.Background()))
	t.Cleanup(func() {
		_ = e1.Close()
		_ = e2.Close()
	})
	return e1, e2
}

func TestEngine_CallResponse(t *testing.T) {
	client, server := pairedEngines(t)

	server.RegisterMethod("echo", HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		var args []string
		require.NoError(t, json.Unmarshal(raw, &args))
		return args[0], nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var out string
	err := client.Call(ctx, "echo", []interface{}{"hello"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestEngine_ConcurrentCallsReorderedResponses(t *testing.T) {
	client, server := pairedEngines(t)

	// The server intentionally answers slow calls after fast ones so the
	// correlation table, not arrival order, determines which caller gets
	// which result.
	server.RegisterMethod("delay", HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		var args []int
		require.NoError(t, json.Unmarshal(raw, &args))
		time.Sleep(time.Duration(args[0]) * time.Millisecond)
		return args[0], nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	results := make(chan int, 2)
	go func() {
		var out int
		require.NoError(t, client.Call(ctx, "delay", []interface{}{50}, &out))
		results <- out
	}()
	go func() {
		var out int
		require.NoError(t, client.Call(ctx, "delay", []interface{}{5}, &out))
		results <- out
	}()

	got := map[int]bool{}
	for i := 0; i < 2; i++ {
		got[<-results] = true
	}
	assert.True(t, got[5])
	assert.True(t, got[50])
}

func TestEngine_Notify(t *testing.T) {
	client, server := pairedEngines(t)

	received := make(chan string, 1)
	client.RegisterMethod("ping", HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		var msg string
		require.NoError(t, json.Unmarshal(raw, &msg))
		received <- msg
		return nil, nil
	}))

	require.NoError(t, server.Notify("ping", "hi"))

	select {
	case msg := <-received:
		assert.Equal(t, "hi", msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

// TestEngine_NotificationsDeliveredInOrder guards spec.md §5's ordering
// invariant: notifications must be dispatched in wire order, on the
// reader's own goroutine, not concurrently (where one handler's delay
// could let a later notification's handler finish first).
func TestEngine_NotificationsDeliveredInOrder(t *testing.T) {
	client, server := pairedEngines(t)

	var mu sync.Mutex
	var order []int
	client.RegisterMethod("tick", HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		var n int
		require.NoError(t, json.Unmarshal(raw, &n))
		if n == 0 {
			// The first notification's handler is the slow one; if
			// dispatch were concurrent, later notifications could record
			// themselves before this sleep returns.
			time.Sleep(30 * time.Millisecond)
		}
		mu.Lock()
		order = append(order, n)
		mu.Unlock()
		return nil, nil
	}))

	const n = 10
	for i := 0; i < n; i++ {
		require.NoError(t, server.Notify("tick", i))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == n
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	want := make([]int, n)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, order)
}

func TestEngine_MethodNotFound(t *testing.T) {
	client, _ := pairedEngines(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := client.Call(ctx, "does-not-exist", []interface{}{}, nil)
	require.Error(t, err)
	rpcErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, CodeMethodNotFound, rpcErr.Code)
}

func TestEngine_InvalidParams(t *testing.T) {
	client, server := pairedEngines(t)

	server.RegisterMethod("needs-two", NewPositionalMethod([]string{"a", "b"},
		func(args []json.RawMessage) (interface{}, error) { return nil, nil }))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := client.Call(ctx, "needs-two", []interface{}{"only-one"}, nil)
	require.Error(t, err)
	rpcErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidParams, rpcErr.Code)
}

func TestEngine_DisconnectDuringCall(t *testing.T) {
	client, server := pairedEngines(t)

	blocked := make(chan struct{})
	server.RegisterMethod("hang", HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		<-blocked
		return nil, nil
	}))
	defer close(blocked)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- client.Call(ctx, "hang", []interface{}{}, nil)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, server.Close())

	select {
	case err := <-errCh:
		require.Error(t, err)
		rpcErr, ok := err.(*Error)
		require.True(t, ok, "expected a synthesized *rpc.Error, got %T: %v", err, err)
		assert.Equal(t, CodeServerError, rpcErr.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("call did not unblock after disconnect")
	}
}

func TestEngine_CallBeforeStart(t *testing.T) {
	a, _ := net.Pipe()
	e := NewEngine(NewTransport(a), nil)
	err := e.Call(context.Background(), "noop", nil, nil)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestEngine_DoubleStart(t *testing.T) {
	client, _ := pairedEngines(t)
	assert.ErrorIs(t, client.Start(context.Background()), ErrAlreadyStarted)
}
