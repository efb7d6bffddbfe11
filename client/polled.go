package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/triggerware/tw-go-client/rpc"
)

// PolledQueryHandler receives the notifications a PolledQuery dispatches.
// HandleNotification is called for a success RowsDelta; HandleError for
// a server-reported polling error. The default handler (used when none
// is supplied) just logs both, matching spec.md §4.4.4's "default
// behavior is to log; subclasses override" — Go has no subclassing, so
// the override point is this interface instead.
type PolledQueryHandler[T any] interface {
	HandleNotification(added, deleted []T, timestamp string)
	HandleError(message, timestamp string)
}

// loggingPolledQueryHandler is the default PolledQueryHandler.
type loggingPolledQueryHandler[T any] struct{ client *Client }

func (h *loggingPolledQueryHandler[T]) HandleNotification(added, deleted []T, timestamp string) {
	h.client.log.Info("client: polled query update", "added", len(added), "deleted", len(deleted), "timestamp", timestamp)
}

func (h *loggingPolledQueryHandler[T]) HandleError(message, timestamp string) {
	h.client.log.Warn("client: polled query error notification", "message", message, "timestamp", timestamp)
}

// PolledQuery[T] is a server-scheduled query: construction reserves a
// notification label, registers it with the server, and routes every
// inbound notification under that label back to a PolledQueryHandler
// (spec.md §3, §4.4.4).
type PolledQuery[T any] struct {
	client  *Client
	label   string
	limiter *rate.Limiter
	handler PolledQueryHandler[T]

	mu       sync.Mutex
	handle   *int64
	disposed bool
}

// PolledQueryOptions configures PolledQuery construction.
type PolledQueryOptions struct {
	Schedule        *Schedule
	ReportInitial   *bool
	ReportUnchanged *bool
	DelaySchedule   *bool
	// PollRate bounds how often Poll may issue poll-now; zero disables
	// the limit. A client-side safety net not specified by the server
	// protocol itself (SPEC_FULL.md §3's DOMAIN STACK entry for
	// golang.org/x/time/rate).
	PollRate rate.Limit
}

// NewPolledQuery reserves a label, registers create-polled-query, and
// installs handler (or a logging default) as the label's notification
// route. namespace, if empty, falls back to client's default namespace.
func NewPolledQuery[T any](ctx context.Context, c *Client, query, language, namespace string, opts PolledQueryOptions, handler PolledQueryHandler[T]) (*PolledQuery[T], error) {
	if namespace == "" {
		namespace = c.namespace
	}
	if handler == nil {
		handler = &loggingPolledQueryHandler[T]{client: c}
	}
	label := c.registerPolledLabel()

	pq := &PolledQuery[T]{client: c, label: label, handler: handler}
	if opts.PollRate > 0 {
		pq.limiter = rate.NewLimiter(opts.PollRate, 1)
	}

	if ok := c.engine.RegisterMethod(label, rpc.HandlerFunc(pq.dispatch)); !ok {
		return nil, newError(ErrSubscriptionError, "label %s already registered", label)
	}

	params := map[string]interface{}{
		"query":            query,
		"language":         language,
		"namespace":        namespace,
		"method":           label,
		"report-unchanged": opts.ReportUnchanged != nil && *opts.ReportUnchanged,
	}
	if opts.Schedule != nil {
		if err := opts.Schedule.Validate(); err != nil {
			c.engine.UnregisterMethod(label)
			return nil, err
		}
		params["schedule"] = opts.Schedule.toWire()
	}
	if opts.ReportInitial != nil {
		params["report-initial"] = *opts.ReportInitial
	}
	if opts.DelaySchedule != nil {
		params["delay-schedule"] = *opts.DelaySchedule
	}

	var reg PolledQueryRegistration
	if err := c.engine.Call(ctx, "create-polled-query", params, &reg); err != nil {
		c.engine.UnregisterMethod(label)
		return nil, err
	}
	pq.handle = &reg.Handle
	return pq, nil
}

// dispatch is the label's notification handler; it distinguishes a
// success RowsDelta from an error notification by shape (the latter
// has no "added" key) per spec.md §4.4.4.
func (pq *PolledQuery[T]) dispatch(raw json.RawMessage) (interface{}, error) {
	pq.mu.Lock()
	disposed := pq.disposed
	pq.mu.Unlock()
	if disposed {
		return nil, nil
	}

	var probe struct {
		Added json.RawMessage `json:"added"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.Added != nil {
		var delta RowsDelta[T]
		if err := json.Unmarshal(raw, &delta); err != nil {
			pq.client.log.Warn("client: polled query delta decode failed", "label", pq.label, "error", err)
			return nil, nil
		}
		pq.handler.HandleNotification(delta.Added, delta.Deleted, delta.Timestamp)
		return nil, nil
	}

	var errNotif PolledQueryErrorNotification
	if err := json.Unmarshal(raw, &errNotif); err != nil {
		pq.client.log.Warn("client: polled query notification decode failed", "label", pq.label, "error", err)
		return nil, nil
	}
	pq.handler.HandleError(errNotif.Message, errNotif.Timestamp)
	return nil, nil
}

// Poll issues poll-now to force an on-demand poll, honoring the
// configured rate limit (if any) before sending.
func (pq *PolledQuery[T]) Poll(ctx context.Context, timeout *time.Duration) error {
	pq.mu.Lock()
	if pq.disposed {
		pq.mu.Unlock()
		return wrapError(ErrDisposed, nil)
	}
	if pq.handle == nil {
		pq.mu.Unlock()
		return wrapError(ErrNotRegistered, nil)
	}
	handle := *pq.handle
	pq.mu.Unlock()

	if pq.limiter != nil {
		if err := pq.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	params := []interface{}{handle}
	if timeout != nil {
		params = append(params, timeout.Seconds())
	}
	return pq.client.engine.Call(ctx, "poll-now", params, nil)
}

// Dispose closes the polled query on the server and unregisters its
// label; subsequent notifications under the label are silently
// dropped (the dispatch function checks the disposed flag). Idempotent.
func (pq *PolledQuery[T]) Dispose(ctx context.Context) error {
	pq.mu.Lock()
	if pq.disposed {
		pq.mu.Unlock()
		return nil
	}
	pq.disposed = true
	handle := pq.handle
	pq.mu.Unlock()

	pq.client.engine.UnregisterMethod(pq.label)
	if handle != nil {
		if err := pq.client.engine.Call(ctx, "close-polled-query", []interface{}{*handle}, nil); err != nil {
			pq.client.log.Warn("client: close-polled-query failed during disposal", "handle", *handle, "error", err)
		}
	}
	return nil
}

// Label returns the notification method name this polled query reserved.
func (pq *PolledQuery[T]) Label() string { return pq.label }
