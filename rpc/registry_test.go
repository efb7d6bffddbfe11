package rpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterUnregisterLookup(t *testing.T) {
	r := NewRegistry()
	h := HandlerFunc(func(raw json.RawMessage) (interface{}, error) { return nil, nil })

	assert.True(t, r.Register("m1", h))
	assert.False(t, r.Register("m1", h), "second register of the same name should fail")

	_, ok := r.Lookup("m1")
	assert.True(t, ok)

	assert.True(t, r.Unregister("m1"))
	assert.False(t, r.Unregister("m1"), "second unregister should report nothing removed")

	_, ok = r.Lookup("m1")
	assert.False(t, ok)
}

func TestArgsHandler_ByPosition(t *testing.T) {
	h := NewPositionalMethod([]string{"a", "b"}, func(args []json.RawMessage) (interface{}, error) {
		var a, b int
		require.NoError(t, json.Unmarshal(args[0], &a))
		require.NoError(t, json.Unmarshal(args[1], &b))
		return a + b, nil
	})

	result, err := h.Invoke(json.RawMessage(`[2,3]`))
	require.NoError(t, err)
	assert.Equal(t, 5, result)

	_, err = h.Invoke(json.RawMessage(`[2]`))
	require.Error(t, err)
	rpcErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidParams, rpcErr.Code)
}

func TestArgsHandler_ByName(t *testing.T) {
	h := NewNamedMethod([]string{"x", "y"}, func(args []json.RawMessage) (interface{}, error) {
		var x, y string
		require.NoError(t, json.Unmarshal(args[0], &x))
		require.NoError(t, json.Unmarshal(args[1], &y))
		return x + y, nil
	})

	result, err := h.Invoke(json.RawMessage(`{"x":"foo","y":"bar"}`))
	require.NoError(t, err)
	assert.Equal(t, "foobar", result)

	_, err = h.Invoke(json.RawMessage(`{"x":"foo"}`))
	require.Error(t, err)
}
