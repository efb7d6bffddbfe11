package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triggerware/tw-go-client/rpc"
)

type recordingSubscriptionHandler[T any] struct {
	received chan T
}

func newRecordingSubscriptionHandler[T any]() *recordingSubscriptionHandler[T] {
	return &recordingSubscriptionHandler[T]{received: make(chan T, 8)}
}

func (h *recordingSubscriptionHandler[T]) HandleNotification(tuple T) {
	h.received <- tuple
}

func TestSubscription_ActivateDeliverDeactivate(t *testing.T) {
	c, server := newTestPair(t)

	subscribeCalls, unsubscribeCalls := 0, 0
	server.RegisterMethod("subscribe", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		subscribeCalls++
		var params map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &params))
		assert.Equal(t, false, params["combine"])
		return nil, nil
	}))
	server.RegisterMethod("unsubscribe", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		unsubscribeCalls++
		return nil, nil
	}))

	handler := newRecordingSubscriptionHandler[string]()
	sub := NewSubscription[string](c, "select x from t", "sql", "", handler)

	ctx := ctxT(t)
	require.NoError(t, sub.Activate(ctx))
	assert.Equal(t, 1, subscribeCalls)

	// Activating twice is rejected.
	err := sub.Activate(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubscriptionError)

	require.NoError(t, server.Notify(sub.Label(), "row-1"))
	select {
	case tuple := <-handler.received:
		assert.Equal(t, "row-1", tuple)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscription notification")
	}

	require.NoError(t, sub.Deactivate(ctx))
	assert.Equal(t, 1, unsubscribeCalls)

	err = sub.Deactivate(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubscriptionError)
}

func TestSubscription_ActivateAndBatchAreMutuallyExclusive(t *testing.T) {
	c, server := newTestPair(t)
	server.RegisterMethod("subscribe", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		return nil, nil
	}))

	sub := NewSubscription[string](c, "select x from t", "sql", "", nil)
	ctx := ctxT(t)
	require.NoError(t, sub.Activate(ctx))

	batch := NewBatchSubscription(c)
	err := AddToBatch(ctx, batch, sub)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubscriptionError)
}
