package client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/triggerware/tw-go-client/internal/obs"
	"github.com/triggerware/tw-go-client/rpc"
)

// batchMember is the type-erased interface a BatchSubscription holds
// its members through, since distinct members of the same batch may
// decode tuples into distinct Go row types (spec.md §8 scenario 6).
type batchMember interface {
	receiveRaw(raw json.RawMessage)
	removeFromBatch(ctx context.Context) error
}

// BatchSubscription groups Subscriptions that must receive coalesced
// notifications from a single server-side transaction (spec.md §3,
// §4.4.7). It owns one method label; members are keyed by their own
// subscription label within the batch's inbound matches.
type BatchSubscription struct {
	client *Client
	method string

	mu       sync.Mutex
	members  map[string]batchMember
	disposed bool
}

// NewBatchSubscription reserves a "batch<N>" label and registers its
// notification handler.
func NewBatchSubscription(c *Client) *BatchSubscription {
	b := &BatchSubscription{client: c, method: c.registerBatchLabel(), members: make(map[string]batchMember)}
	c.engine.RegisterMethod(b.method, rpc.HandlerFunc(b.dispatch))
	return b
}

// Method returns the batch's reserved notification method name.
func (b *BatchSubscription) Method() string { return b.method }

// AddToBatch adds s to b: issues subscribe with combine:true and
// inserts s into b's member table keyed by its own label. Fails with
// ErrSubscriptionError if s is already active, already in a (this or
// another) batch, or belongs to a different client than b.
func AddToBatch[T any](ctx context.Context, b *BatchSubscription, s *Subscription[T]) error {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return wrapError(ErrDisposed, nil)
	}
	b.mu.Unlock()

	if err := s.addToBatch(ctx, b); err != nil {
		return err
	}
	b.mu.Lock()
	b.members[s.Label()] = s
	b.mu.Unlock()
	return nil
}

// RemoveFromBatch removes s from b: issues unsubscribe and deletes it
// from b's member table.
func RemoveFromBatch[T any](ctx context.Context, b *BatchSubscription, s *Subscription[T]) error {
	if err := s.removeFromBatch(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	delete(b.members, s.Label())
	b.mu.Unlock()
	return nil
}

// dispatch is the batch label's notification handler (spec.md §4.4.7,
// §6): for each match, look up the member by label and hand it its raw
// tuples to decode into its own row type.
func (b *BatchSubscription) dispatch(raw json.RawMessage) (interface{}, error) {
	var notif BatchNotification
	if err := json.Unmarshal(raw, &notif); err != nil {
		b.client.log.Warn("client: batch notification decode failed", "method", b.method, "error", err)
		return nil, nil
	}
	if instr := obs.Default(); instr.BatchRows != nil {
		rows := 0
		for _, match := range notif.Matches {
			rows += len(match.Tuples)
		}
		instr.BatchRows.Record(context.Background(), int64(rows))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, match := range notif.Matches {
		member, ok := b.members[match.Label]
		if !ok {
			b.client.log.Warn("client: batch notification for unknown member dropped", "method", b.method, "label", match.Label)
			continue
		}
		for _, tuple := range match.Tuples {
			member.receiveRaw(tuple)
		}
	}
	return nil, nil
}

// Dispose unregisters the batch's label handler, then removes each
// member sequentially (issuing unsubscribe per member). The server
// provides no atomic multi-unsubscribe, so a transaction firing
// concurrently with Dispose may produce a partial batch notification
// seeing only the still-active members; this is documented behavior,
// not a bug (spec.md §4.4.7's atomicity note).
func (b *BatchSubscription) Dispose(ctx context.Context) error {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return nil
	}
	b.disposed = true
	members := b.members
	b.members = nil
	b.mu.Unlock()

	b.client.engine.UnregisterMethod(b.method)
	for label, member := range members {
		if err := member.removeFromBatch(ctx); err != nil {
			b.client.log.Warn("client: member removal failed during batch disposal", "label", label, "error", err)
		}
	}
	return nil
}
