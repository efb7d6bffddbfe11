package rpc

import (
	"encoding/json"
	"fmt"
	"sync"
)

// ParamKind describes how a handler's declared parameters are decoded
// from the three wire shapes spec.md §4.2 requires support for.
type ParamKind int

const (
	// ParamKindAny lets the handler decode Params itself (used for
	// bare-value or already-structured notification payloads).
	ParamKindAny ParamKind = iota
	// ParamKindByPosition decodes an array positionally.
	ParamKindByPosition
	// ParamKindByName decodes an object by declared field name.
	ParamKindByName
)

// ParamSpec names one declared parameter slot of a Handler.
type ParamSpec struct {
	Name string
}

// Handler is a registered method descriptor: its declared parameter
// shape plus the thunk that decodes params and produces a result.
// Handle-bound objects in package client implement this to route
// notifications back to themselves (spec.md §4.3/§9).
type Handler interface {
	// Params describes the parameter kind and, for ParamKindByName,
	// the ordered declared parameter names.
	Params() (ParamKind, []ParamSpec)
	// Invoke decodes raw and returns the JSON-encodable result, or an
	// error. For notifications the result is discarded.
	Invoke(raw json.RawMessage) (interface{}, error)
}

// HandlerFunc adapts a plain decode func into a Handler with
// ParamKindAny semantics — the common case for internally-generated
// notification labels that always receive a single structured object.
type HandlerFunc func(raw json.RawMessage) (interface{}, error)

func (f HandlerFunc) Params() (ParamKind, []ParamSpec) { return ParamKindAny, nil }
func (f HandlerFunc) Invoke(raw json.RawMessage) (interface{}, error) { return f(raw) }

// argsHandler adapts a function over ordered, per-parameter raw values
// into a Handler, performing the by-name/by-position/by-value
// resolution spec.md §4.2 requires so application code only writes
// the decode-and-compute thunk, not the shape-sniffing.
type argsHandler struct {
	kind  ParamKind
	specs []ParamSpec
	fn    func(args []json.RawMessage) (interface{}, error)
}

// NewPositionalMethod builds a Handler expecting params as a
// by-position array with len(paramNames) entries.
func NewPositionalMethod(paramNames []string, fn func(args []json.RawMessage) (interface{}, error)) Handler {
	return &argsHandler{kind: ParamKindByPosition, specs: namesToSpecs(paramNames), fn: fn}
}

// NewNamedMethod builds a Handler expecting params as a by-name object
// containing at least the keys in paramNames.
func NewNamedMethod(paramNames []string, fn func(args []json.RawMessage) (interface{}, error)) Handler {
	return &argsHandler{kind: ParamKindByName, specs: namesToSpecs(paramNames), fn: fn}
}

func namesToSpecs(names []string) []ParamSpec {
	specs := make([]ParamSpec, len(names))
	for i, n := range names {
		specs[i] = ParamSpec{Name: n}
	}
	return specs
}

func (h *argsHandler) Params() (ParamKind, []ParamSpec) { return h.kind, h.specs }

func (h *argsHandler) Invoke(raw json.RawMessage) (interface{}, error) {
	args, err := resolveArgs(h.kind, h.specs, raw)
	if err != nil {
		return nil, invalidParams(err.Error())
	}
	return h.fn(args)
}

// resolveArgs reshapes raw params into one json.RawMessage per
// declared parameter, in declared order, regardless of whether the
// peer sent a by-name object, a by-position array, or (for
// ParamKindAny) a bare value passed through untouched.
func resolveArgs(kind ParamKind, specs []ParamSpec, raw json.RawMessage) ([]json.RawMessage, error) {
	switch kind {
	case ParamKindByPosition:
		var arr []json.RawMessage
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &arr); err != nil {
				return nil, fmt.Errorf("expected array params: %w", err)
			}
		}
		if len(arr) < len(specs) {
			return nil, fmt.Errorf("expected %d params, got %d", len(specs), len(arr))
		}
		return arr[:len(specs)], nil
	case ParamKindByName:
		obj := map[string]json.RawMessage{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &obj); err != nil {
				return nil, fmt.Errorf("expected object params: %w", err)
			}
		}
		args := make([]json.RawMessage, len(specs))
		for i, s := range specs {
			v, ok := obj[s.Name]
			if !ok {
				return nil, fmt.Errorf("missing param %q", s.Name)
			}
			args[i] = v
		}
		return args, nil
	default:
		return []json.RawMessage{raw}, nil
	}
}

// Registry is a thread-safe process-local (here: per-Engine) mapping
// from method name to Handler, per spec.md §4.3. It backs both
// application-registered methods (Engine.RegisterMethod) and the labels
// polled queries/subscriptions/batches reserve for themselves.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register inserts handler under name. Returns false without
// replacing anything if name is already registered.
func (r *Registry) Register(name string, handler Handler) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		return false
	}
	r.handlers[name] = handler
	return true
}

// Unregister removes name. Returns false if it was not present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; !exists {
		return false
	}
	delete(r.handlers, name)
	return true
}

// Lookup returns the handler registered under name, if any.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}
