package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triggerware/tw-go-client/rpc"
)

func registerPrepareQuery(server *rpc.Engine, named bool) {
	server.RegisterMethod("prepare-query", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		return PreparedQueryRegistration{
			Handle:              5,
			InputSignature:      []SignatureElement{{Name: "x", Type: "integer"}},
			OutputSignature:     []SignatureElement{{Name: "y", Type: "stringcase"}},
			UsesNamedParameters: named,
		}, nil
	}))
}

func TestPreparedQuery_SetAndExecute(t *testing.T) {
	c, server := newTestPair(t)
	registerPrepareQuery(server, false)

	var gotInputs []interface{}
	server.RegisterMethod("create-resultset", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		var params struct {
			Handle      int64         `json:"handle"`
			Inputs      []interface{} `json:"inputs"`
			CheckUpdate bool          `json:"check-update"`
		}
		require.NoError(t, json.Unmarshal(raw, &params))
		gotInputs = params.Inputs
		assert.False(t, params.CheckUpdate, "check-update must always be sent false")
		return ExecuteQueryResult[string]{Tuples: []string{"row"}, Exhausted: true}, nil
	}))
	releaseCalls := 0
	server.RegisterMethod("release-query", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		releaseCalls++
		return nil, nil
	}))

	ctx := ctxT(t)
	pq, err := NewPreparedQuery[string](ctx, c, "select * from t where x = ?1", "sql", "")
	require.NoError(t, err)

	assert.False(t, pq.FullyInstantiated())
	_, err = pq.Execute(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteParams)

	require.NoError(t, pq.Set(1, 42))
	assert.True(t, pq.FullyInstantiated())

	rs, err := pq.Execute(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, rs)
	require.Len(t, gotInputs, 1)
	assert.EqualValues(t, 42, gotInputs[0])

	require.NoError(t, pq.Dispose(ctx))
	assert.Equal(t, 1, releaseCalls)
}

func TestPreparedQuery_SetRejectsOutOfRangeIndex(t *testing.T) {
	c, server := newTestPair(t)
	registerPrepareQuery(server, false)

	pq, err := NewPreparedQuery[string](ctxT(t), c, "q", "sql", "")
	require.NoError(t, err)

	err = pq.Set(0, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownParam)

	err = pq.Set(2, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownParam)
}

func TestPreparedQuery_SetRejectsWrongTypeForSQL(t *testing.T) {
	c, server := newTestPair(t)
	registerPrepareQuery(server, false)

	pq, err := NewPreparedQuery[string](ctxT(t), c, "q", "sql", "")
	require.NoError(t, err)

	err = pq.Set(1, "not-an-integer")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParamType)
}

func TestPreparedQuery_NamedParameters(t *testing.T) {
	c, server := newTestPair(t)
	registerPrepareQuery(server, true)

	pq, err := NewPreparedQuery[string](ctxT(t), c, "q", "sql", "")
	require.NoError(t, err)

	err = pq.Set(1, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownParam)

	require.NoError(t, pq.SetNamed("X", 7)) // case-insensitive match against "x"
	assert.True(t, pq.FullyInstantiated())

	err = pq.SetNamed("nope", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownParam)
}

func TestPreparedQuery_Clear(t *testing.T) {
	c, server := newTestPair(t)
	registerPrepareQuery(server, false)

	pq, err := NewPreparedQuery[string](ctxT(t), c, "q", "sql", "")
	require.NoError(t, err)
	require.NoError(t, pq.Set(1, 1))
	assert.True(t, pq.FullyInstantiated())
	pq.Clear()
	assert.False(t, pq.FullyInstantiated())
}
