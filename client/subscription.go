package client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/triggerware/tw-go-client/rpc"
)

// SubscriptionHandler receives the tuple notifications a standing
// Subscription observes (spec.md §4.4.6).
type SubscriptionHandler[T any] interface {
	HandleNotification(tuple T)
}

// loggingSubscriptionHandler is the default SubscriptionHandler.
type loggingSubscriptionHandler[T any] struct {
	client *Client
	label  string
}

func (h *loggingSubscriptionHandler[T]) HandleNotification(tuple T) {
	h.client.log.Info("client: subscription update", "label", h.label)
}

// Subscription[T] is a standing interest in a triggering condition. It
// may be activated standalone or added to a BatchSubscription, never
// both at once (spec.md §3, §4.4.6).
type Subscription[T any] struct {
	client    *Client
	label     string
	query     string
	language  string
	namespace string
	handler   SubscriptionHandler[T]

	mu       sync.Mutex
	active   bool
	batch    *BatchSubscription
	disposed bool
}

// NewSubscription reserves a label for a subscription over
// query/language/namespace. It is neither active nor in a batch until
// Activate or AddToBatch is called. namespace, if empty, falls back to
// client's default namespace.
func NewSubscription[T any](c *Client, query, language, namespace string, handler SubscriptionHandler[T]) *Subscription[T] {
	if namespace == "" {
		namespace = c.namespace
	}
	label := c.registerSubscriptionLabel()
	if handler == nil {
		handler = &loggingSubscriptionHandler[T]{client: c, label: label}
	}
	return &Subscription[T]{client: c, label: label, query: query, language: language, namespace: namespace, handler: handler}
}

// Label returns the subscription's reserved notification label.
func (s *Subscription[T]) Label() string { return s.label }

func (s *Subscription[T]) subscribeParams(method string, combine bool) map[string]interface{} {
	return map[string]interface{}{
		"query":     s.query,
		"language":  s.language,
		"namespace": s.namespace,
		"label":     s.label,
		"method":    method,
		"combine":   combine,
	}
}

// Activate transitions inactive → active: calls subscribe with
// combine:false and registers the label's own notification handler.
// Fails with ErrSubscriptionError if already active or currently in a
// batch (spec.md §4.4.6's activate/batch exclusivity invariant).
func (s *Subscription[T]) Activate(ctx context.Context) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return wrapError(ErrDisposed, nil)
	}
	if s.active {
		s.mu.Unlock()
		return newError(ErrSubscriptionError, "subscription %s is already active", s.label)
	}
	if s.batch != nil {
		s.mu.Unlock()
		return newError(ErrSubscriptionError, "subscription %s is in a batch; remove it first", s.label)
	}
	s.mu.Unlock()

	if ok := s.client.engine.RegisterMethod(s.label, rpc.HandlerFunc(s.dispatch)); !ok {
		return newError(ErrSubscriptionError, "label %s already registered", s.label)
	}
	if err := s.client.engine.Call(ctx, "subscribe", s.subscribeParams(s.label, false), nil); err != nil {
		s.client.engine.UnregisterMethod(s.label)
		return err
	}
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
	return nil
}

// Deactivate transitions active → inactive: calls unsubscribe and
// unregisters the label handler. Fails with ErrSubscriptionError if
// not currently active.
func (s *Subscription[T]) Deactivate(ctx context.Context) error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return newError(ErrSubscriptionError, "subscription %s is not active", s.label)
	}
	s.mu.Unlock()

	err := s.client.engine.Call(ctx, "unsubscribe", s.subscribeParams(s.label, false), nil)
	s.client.engine.UnregisterMethod(s.label)
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	return err
}

// addToBatch transitions inactive,no-batch → in-batch: calls subscribe
// with combine:true and records b as the owning batch. Called by
// AddToBatch, which then inserts s into b's member table.
func (s *Subscription[T]) addToBatch(ctx context.Context, b *BatchSubscription) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return wrapError(ErrDisposed, nil)
	}
	if s.active {
		s.mu.Unlock()
		return newError(ErrSubscriptionError, "subscription %s is active; deactivate it first", s.label)
	}
	if s.batch != nil {
		s.mu.Unlock()
		return newError(ErrSubscriptionError, "subscription %s is already in a batch", s.label)
	}
	if b.client != s.client {
		s.mu.Unlock()
		return newError(ErrSubscriptionError, "batch %s belongs to a different client", b.method)
	}
	s.mu.Unlock()

	if err := s.client.engine.Call(ctx, "subscribe", s.subscribeParams(b.method, true), nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.batch = b
	s.mu.Unlock()
	return nil
}

// removeFromBatch transitions in-batch → inactive,no-batch: calls
// unsubscribe. Called by RemoveFromBatch, BatchSubscription.Dispose and
// Subscription.Dispose.
func (s *Subscription[T]) removeFromBatch(ctx context.Context) error {
	s.mu.Lock()
	b := s.batch
	if b == nil {
		s.mu.Unlock()
		return newError(ErrSubscriptionError, "subscription %s is not in a batch", s.label)
	}
	s.mu.Unlock()

	err := s.client.engine.Call(ctx, "unsubscribe", s.subscribeParams(b.method, true), nil)
	s.mu.Lock()
	s.batch = nil
	s.mu.Unlock()
	return err
}

// dispatch is the label's own notification handler, used only in
// standalone (activated) mode; batch-delivered notifications arrive
// under the batch's label instead and are routed to receiveRaw by
// BatchSubscription.dispatch.
func (s *Subscription[T]) dispatch(raw json.RawMessage) (interface{}, error) {
	var tuple T
	if err := json.Unmarshal(raw, &tuple); err != nil {
		s.client.log.Warn("client: subscription notification decode failed", "label", s.label, "error", err)
		return nil, nil
	}
	s.receiveTuple(tuple)
	return nil, nil
}

// receiveTuple invokes the handler under the subscription's own lock,
// per spec.md §4.4.6.
func (s *Subscription[T]) receiveTuple(tuple T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.handler.HandleNotification(tuple)
}

// receiveRaw implements batchMember: it decodes raw into this
// subscription's row type T and dispatches it, letting a single
// BatchSubscription hold members of heterogeneous row types
// (spec.md §8 scenario 6 has one batch with a string-tuple member and
// an int-tuple member side by side).
func (s *Subscription[T]) receiveRaw(raw json.RawMessage) {
	var tuple T
	if err := json.Unmarshal(raw, &tuple); err != nil {
		s.client.log.Warn("client: batch member tuple decode failed", "label", s.label, "error", err)
		return
	}
	s.receiveTuple(tuple)
}

// Dispose deactivates the subscription if active, removes it from its
// batch if batched, and unregisters any standalone label handler.
// Idempotent.
func (s *Subscription[T]) Dispose(ctx context.Context) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.disposed = true
	active := s.active
	inBatch := s.batch != nil
	s.mu.Unlock()

	if active {
		if err := s.Deactivate(ctx); err != nil {
			s.client.log.Warn("client: deactivate failed during disposal", "label", s.label, "error", err)
		}
	}
	if inBatch {
		if err := s.removeFromBatch(ctx); err != nil {
			s.client.log.Warn("client: batch removal failed during disposal", "label", s.label, "error", err)
		}
	}
	s.client.engine.UnregisterMethod(s.label)
	return nil
}
