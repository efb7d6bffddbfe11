package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triggerware/tw-go-client/rpc"
)

type recordingPolledHandler struct {
	notified chan RowsDelta[string]
	errored  chan string
}

func newRecordingPolledHandler() *recordingPolledHandler {
	return &recordingPolledHandler{notified: make(chan RowsDelta[string], 4), errored: make(chan string, 4)}
}

func (h *recordingPolledHandler) HandleNotification(added, deleted []string, timestamp string) {
	h.notified <- RowsDelta[string]{Added: added, Deleted: deleted, Timestamp: timestamp}
}

func (h *recordingPolledHandler) HandleError(message, timestamp string) {
	h.errored <- message
}

func TestPolledQuery_NotificationAndPoll(t *testing.T) {
	c, server := newTestPair(t)

	var registeredLabel string
	server.RegisterMethod("create-polled-query", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		var params map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &params))
		registeredLabel = params["method"].(string)
		return PolledQueryRegistration{Handle: 9}, nil
	}))
	polled := 0
	server.RegisterMethod("poll-now", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		polled++
		return nil, nil
	}))
	closed := make(chan struct{}, 1)
	server.RegisterMethod("close-polled-query", rpc.HandlerFunc(func(raw json.RawMessage) (interface{}, error) {
		closed <- struct{}{}
		return nil, nil
	}))

	handler := newRecordingPolledHandler()
	ctx := ctxT(t)
	pq, err := NewPolledQuery[string](ctx, c, "select x from t", "sql", "", PolledQueryOptions{}, handler)
	require.NoError(t, err)
	assert.Equal(t, registeredLabel, pq.Label())

	require.NoError(t, server.Notify(registeredLabel, RowsDelta[string]{Added: []string{"a"}, Timestamp: "t1"}))
	select {
	case delta := <-handler.notified:
		assert.Equal(t, []string{"a"}, delta.Added)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for polled query notification")
	}

	require.NoError(t, server.Notify(registeredLabel, PolledQueryErrorNotification{Message: "boom", Timestamp: "t2"}))
	select {
	case msg := <-handler.errored:
		assert.Equal(t, "boom", msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for polled query error notification")
	}

	require.NoError(t, pq.Poll(ctx, nil))
	assert.Equal(t, 1, polled)

	require.NoError(t, pq.Dispose(ctx))
	select {
	case <-closed:
	default:
		t.Fatal("expected close-polled-query to be called on Dispose")
	}

	// After disposal, Poll fails instead of silently calling the server again.
	err = pq.Poll(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestPolledQuery_ScheduleValidationRejectsBadInterval(t *testing.T) {
	c, server := newTestPair(t)
	registerPrepareQuery(server, false) // unused: schedule validation fails before any call is sent

	_, err := NewPolledQuery[string](ctxT(t), c, "q", "sql", "", PolledQueryOptions{
		Schedule: &Schedule{Entries: []ScheduleEntry{{IntervalSeconds: -1}}},
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScheduleError)
}
