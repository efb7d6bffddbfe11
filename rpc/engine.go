package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/triggerware/tw-go-client/internal/obs"
	"github.com/triggerware/tw-go-client/pkg/logging"
)

// pendingCall is one outstanding request awaiting its response
// (spec.md §3's Outstanding Call).
type pendingCall struct {
	resultCh chan *Envelope
}

// Engine speaks JSON-RPC 2.0 over a Transport for both directions at
// once: outbound calls with response correlation, outbound
// notifications, and inbound requests/notifications dispatched through
// a Registry (spec.md §4.2). One Engine belongs to exactly one Client.
type Engine struct {
	id        string
	transport *Transport
	registry  *Registry
	log       *logging.Logger

	nextID int64

	mu      sync.Mutex
	pending map[int64]*pendingCall

	startedOnce sync.Once
	started     atomic.Bool
	closedOnce  sync.Once
	closed      atomic.Bool
	doneCh      chan struct{}
	runErr      error

	group  *errgroup.Group
	groupC context.Context
}

// NewEngine constructs an Engine over transport. Call Start before
// issuing any Call/Notify (spec.md §4.2: both fail with ErrNotStarted
// beforehand).
func NewEngine(transport *Transport, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Default()
	}
	id := uuid.NewString()
	return &Engine{
		id:        id,
		transport: transport,
		registry:  NewRegistry(),
		log:       log.With("engine_id", id),
		pending:   make(map[int64]*pendingCall),
		doneCh:    make(chan struct{}),
	}
}

// ID returns the engine's process-local connection id, attached to the
// engine's log lines to disambiguate them across concurrently open
// connections in one process (spec.md §9's per-client label scoping
// applies the same idea to notification labels; this applies it to
// diagnostics).
func (e *Engine) ID() string { return e.id }

// Registry exposes the method registry so the client package can
// register/unregister notification-label handlers directly.
func (e *Engine) Registry() *Registry { return e.registry }

// Start spawns the reader goroutine under an errgroup (writes are
// serialized by the Transport on the calling goroutine); ctx's cancellation
// tears the engine down exactly like a transport I/O error would
// (SPEC_FULL.md §4). Start may only be called once.
func (e *Engine) Start(ctx context.Context) error {
	var err = ErrAlreadyStarted
	e.startedOnce.Do(func() {
		e.started.Store(true)
		g, gctx := errgroup.WithContext(ctx)
		e.group = g
		e.groupC = gctx
		g.Go(func() error { return e.readLoop() })
		go func() {
			<-gctx.Done()
			_ = e.transport.Close()
		}()
		err = nil
	})
	return err
}

// Wait blocks until the engine has torn down and returns the error
// that caused teardown (nil on a clean Close).
func (e *Engine) Wait() error {
	<-e.doneCh
	return e.runErr
}

// Call issues a request and blocks until the correlated response
// arrives, decoding its result into out (a pointer), or until the
// connection tears down. Params may be a struct/map (by-name), a
// slice/array (by-position), or any other JSON-encodable value (bare
// scalar) per spec.md §4.2.
func (e *Engine) Call(ctx context.Context, method string, params interface{}, out interface{}) error {
	if !e.started.Load() {
		return ErrNotStarted
	}
	if e.closed.Load() {
		return ErrClosed
	}

	spanCtx, finish := obs.StartSpan(ctx, "rpc.call")
	defer func() { finish(nil) }()
	_ = spanCtx

	start := time.Now()
	defer func() {
		if instr := obs.Default(); instr.CallLatency != nil {
			instr.CallLatency.Record(ctx, time.Since(start).Seconds())
		}
	}()

	id := atomic.AddInt64(&e.nextID, 1) - 1
	req, err := newRequest(id, method, params)
	if err != nil {
		return fmt.Errorf("rpc: encode params for %s: %w", method, err)
	}

	call := &pendingCall{resultCh: make(chan *Envelope, 1)}
	e.mu.Lock()
	e.pending[id] = call
	e.mu.Unlock()
	if instr := obs.Default(); instr.PendingCalls != nil {
		instr.PendingCalls.Add(ctx, 1)
		instr.CallTotal.Add(ctx, 1)
		if instr.PromCallTotal != nil {
			instr.PromCallTotal.Inc()
		}
	}

	defer func() {
		e.mu.Lock()
		delete(e.pending, id)
		e.mu.Unlock()
		if instr := obs.Default(); instr.PendingCalls != nil {
			instr.PendingCalls.Add(ctx, -1)
		}
	}()

	if err := e.transport.Write(req); err != nil {
		e.teardown(fmt.Errorf("rpc: write request: %w", err))
		return ErrDisconnected
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.doneCh:
		// Only reachable if this call's id was never recorded in e.pending
		// when teardown drained it (a narrow Start/Close race); the normal
		// mid-call disconnect path resolves through call.resultCh below
		// with a synthesized ServerError instead.
		return ErrDisconnected
	case resp := <-call.resultCh:
		if resp.Error != nil {
			if instr := obs.Default(); instr.CallErrors != nil {
				instr.CallErrors.Add(ctx, 1)
			}
			return fromWire(resp.Error)
		}
		if out == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			if instr := obs.Default(); instr.CallErrors != nil {
				instr.CallErrors.Add(ctx, 1)
			}
			return internalError(fmt.Sprintf("decode result of %s: %v", method, err))
		}
		return nil
	}
}

// Notify serializes a notification (no id) and hands it to the
// writer without waiting on any response, per spec.md §4.2.
func (e *Engine) Notify(method string, params interface{}) error {
	if !e.started.Load() {
		return ErrNotStarted
	}
	if e.closed.Load() {
		return ErrClosed
	}
	notif, err := newNotification(method, params)
	if err != nil {
		return fmt.Errorf("rpc: encode params for %s: %w", method, err)
	}
	if err := e.transport.Write(notif); err != nil {
		e.teardown(fmt.Errorf("rpc: write notification: %w", err))
		return ErrDisconnected
	}
	return nil
}

// RegisterMethod installs handler under name. See Registry.Register.
func (e *Engine) RegisterMethod(name string, handler Handler) bool {
	return e.registry.Register(name, handler)
}

// UnregisterMethod removes the handler registered under name. See
// Registry.Unregister.
func (e *Engine) UnregisterMethod(name string) bool {
	return e.registry.Unregister(name)
}

// Close tears the engine down: closes the transport and fails every
// outstanding call with a synthesized ServerError response. Idempotent.
func (e *Engine) Close() error {
	e.teardown(nil)
	return nil
}

// teardown closes the transport once, fails every still-outstanding call
// with a synthesized CodeServerError response (spec.md §7's "connection
// lost mid-call" taxonomy entry), and wakes Wait/any caller still blocked
// on e.doneCh as a fallback for calls that never made it into e.pending.
func (e *Engine) teardown(cause error) {
	e.closedOnce.Do(func() {
		e.closed.Store(true)
		_ = e.transport.Close()
		e.runErr = cause
		e.mu.Lock()
		pending := e.pending
		e.pending = make(map[int64]*pendingCall)
		e.mu.Unlock()

		msg := "connection lost mid-call"
		if cause != nil {
			msg = cause.Error()
		}
		serverErr := &WireError{Code: CodeServerError, Message: msg}
		for _, call := range pending {
			call.resultCh <- &Envelope{Error: serverErr}
		}
		close(e.doneCh)
	})
}

// readLoop is the single reader goroutine: it owns message ordering
// off the wire and is the only writer of responses to pending calls
// and the only dispatcher of inbound requests/notifications, per
// spec.md §5's ordering guarantees.
func (e *Engine) readLoop() error {
	for {
		env, err := e.transport.ReadNext()
		if err != nil {
			e.teardown(err)
			return err
		}

		switch {
		case env.IsResponse():
			e.dispatchResponse(env)
		case env.IsNotification():
			// Dispatched synchronously, on this single reader goroutine:
			// spec.md §5 requires notifications be delivered in wire
			// order, which a per-message goroutine cannot guarantee.
			e.dispatchNotification(env)
		case env.IsRequest():
			e.dispatchRequest(env)
		case env.ID != nil:
			// Has an id but is neither a request, notification, nor
			// response: still owed a reply since it carries an id
			// (spec.md §4.2 InvalidRequest).
			e.respondError(*env.ID, invalidRequest("message has an id but no method"))
		default:
			e.log.Warn("rpc: dropping structurally invalid message")
		}
	}
}

func (e *Engine) dispatchResponse(env *Envelope) {
	if env.ID == nil {
		return
	}
	e.mu.Lock()
	call, ok := e.pending[*env.ID]
	if ok {
		delete(e.pending, *env.ID)
	}
	e.mu.Unlock()
	if !ok {
		e.log.Warn("rpc: response for unknown id dropped", "id", *env.ID)
		return
	}
	call.resultCh <- env
}

func (e *Engine) dispatchNotification(env *Envelope) {
	handler, ok := e.registry.Lookup(env.Method)
	if !ok {
		e.log.Warn("rpc: notification for unregistered method dropped", "method", env.Method)
		return
	}
	if instr := obs.Default(); instr.Notifications != nil {
		instr.Notifications.Add(context.Background(), 1)
		if instr.PromNotifications != nil {
			instr.PromNotifications.Inc()
		}
	}
	if _, err := handler.Invoke(env.Params); err != nil {
		e.log.Warn("rpc: notification handler error", "method", env.Method, "error", err)
	}
}

func (e *Engine) dispatchRequest(env *Envelope) {
	id := *env.ID
	if env.Method == "" {
		e.respondError(id, invalidRequest("request missing method"))
		return
	}
	handler, ok := e.registry.Lookup(env.Method)
	if !ok {
		e.respondError(id, methodNotFound(env.Method))
		return
	}
	result, err := handler.Invoke(env.Params)
	if err != nil {
		if rpcErr, ok := err.(*Error); ok {
			e.respondError(id, rpcErr)
			return
		}
		e.respondError(id, internalError(err.Error()))
		return
	}
	resp, err := newResultResponse(id, result)
	if err != nil {
		e.respondError(id, internalError(err.Error()))
		return
	}
	if err := e.transport.Write(resp); err != nil {
		e.teardown(fmt.Errorf("rpc: write response: %w", err))
	}
}

func (e *Engine) respondError(id int64, rpcErr *Error) {
	if err := e.transport.Write(newErrorResponse(id, rpcErr)); err != nil {
		e.teardown(fmt.Errorf("rpc: write error response: %w", err))
	}
}

