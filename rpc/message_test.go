package rpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvelope_ShapeClassification(t *testing.T) {
	id := int64(1)

	result := Envelope{JSONRPC: "2.0", ID: &id, Result: json.RawMessage(`1`)}
	assert.True(t, result.IsResponse())
	assert.False(t, result.IsRequest())
	assert.False(t, result.IsNotification())

	errResp := Envelope{JSONRPC: "2.0", ID: &id, Error: &WireError{Code: -32600, Message: "bad"}}
	assert.True(t, errResp.IsResponse())

	notif := Envelope{JSONRPC: "2.0", Method: "tick"}
	assert.True(t, notif.IsNotification())
	assert.False(t, notif.IsResponse())
	assert.False(t, notif.IsRequest())

	req := Envelope{JSONRPC: "2.0", ID: &id, Method: "add"}
	assert.True(t, req.IsRequest())
	assert.False(t, req.IsResponse())
	assert.False(t, req.IsNotification())

	// An id with no method and no result/error is structurally invalid:
	// none of the three shape predicates should claim it, so the engine's
	// readLoop can fall through to its own InvalidRequest branch.
	malformed := Envelope{JSONRPC: "2.0", ID: &id}
	assert.False(t, malformed.IsResponse())
	assert.False(t, malformed.IsRequest())
	assert.False(t, malformed.IsNotification())
}

func TestNewRequest_EncodesParams(t *testing.T) {
	env, err := newRequest(3, "foo", []interface{}{1, "two"})
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal("foo", env.Method)
	assert.Equal(int64(3), *env.ID)
	assert.JSONEq(`[1,"two"]`, string(env.Params))
}

func TestNewNotification_NilParamsOmitted(t *testing.T) {
	env, err := newNotification("tick", nil)
	assert := assert.New(t)
	assert.NoError(err)
	assert.Nil(env.ID)
	assert.Empty(env.Params)
}
