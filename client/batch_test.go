package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triggerware/tw-go-client/rpc"
)

// TestBatchSubscription_HeterogeneousMemberTypes exercises spec.md §8
// scenario 6: one batch holding a string-tuple subscription and an
// int-tuple subscription side by side, each decoding its own matches
// into its own row type.
func TestBatchSubscription_HeterogeneousMemberTypes(t *testing.T) {
	c, server := newTestPair(t)

	server.RegisterMethod("subscribe", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		var params map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &params))
		assert.Equal(t, true, params["combine"])
		return nil, nil
	}))
	server.RegisterMethod("unsubscribe", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		return nil, nil
	}))

	strHandler := newRecordingSubscriptionHandler[string]()
	intHandler := newRecordingSubscriptionHandler[int]()
	strSub := NewSubscription[string](c, "select s from t1", "sql", "", strHandler)
	intSub := NewSubscription[int](c, "select n from t2", "sql", "", intHandler)

	batch := NewBatchSubscription(c)
	ctx := ctxT(t)
	require.NoError(t, AddToBatch(ctx, batch, strSub))
	require.NoError(t, AddToBatch(ctx, batch, intSub))

	notif := BatchNotification{
		UpdateNumber: 1,
		Matches: []BatchMatch{
			{Label: strSub.Label(), Tuples: []json.RawMessage{json.RawMessage(`"hello"`)}},
			{Label: intSub.Label(), Tuples: []json.RawMessage{json.RawMessage(`42`)}},
		},
	}
	require.NoError(t, server.Notify(batch.Method(), notif))

	select {
	case s := <-strHandler.received:
		assert.Equal(t, "hello", s)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for string member notification")
	}
	select {
	case n := <-intHandler.received:
		assert.Equal(t, 42, n)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for int member notification")
	}

	require.NoError(t, RemoveFromBatch(ctx, batch, strSub))
	require.NoError(t, batch.Dispose(ctx))
}
