package client

import (
	"context"
	"strings"
	"sync"
)

// PreparedQuery[T] is a parameterized server-side query: an input
// signature of named/typed parameter slots, a current value for each
// slot, and the set of ResultSets it has produced that are still live
// (spec.md §3, §4.4.3).
type PreparedQuery[T any] struct {
	client   *Client
	language string

	mu         sync.Mutex
	handle     *int64
	disposed   bool
	input      []SignatureElement
	output     []SignatureElement
	named      bool
	values     []interface{}
	valueIsSet []bool
	outstanding []*ResultSet[T]
}

// NewPreparedQuery issues prepare-query for query/language/namespace
// and returns a PreparedQuery[T] with every parameter slot unset.
// namespace, if empty, falls back to client's default namespace.
func NewPreparedQuery[T any](ctx context.Context, c *Client, query, language, namespace string) (*PreparedQuery[T], error) {
	if namespace == "" {
		namespace = c.namespace
	}
	var reg PreparedQueryRegistration
	params := map[string]interface{}{"query": query, "language": language, "namespace": namespace}
	if err := c.engine.Call(ctx, "prepare-query", params, &reg); err != nil {
		return nil, err
	}
	n := len(reg.InputSignature)
	return &PreparedQuery[T]{
		client:     c,
		language:   language,
		handle:     &reg.Handle,
		input:      reg.InputSignature,
		output:     reg.OutputSignature,
		named:      reg.UsesNamedParameters,
		values:     make([]interface{}, n),
		valueIsSet: make([]bool, n),
	}, nil
}

// Set assigns value to the 1-based positional parameter slot index.
// 1-based indexing is this client's explicit resolution of spec.md
// §9's positional-indexing open question (the reference source used
// 1-based in one file and 0-based in another); callers porting code
// from a 0-based convention must add one.
//
// Set fails with ErrUnknownParam if the query uses named parameters
// instead, and with ErrParamType if language is "sql" and value's
// runtime type does not match the slot's declared type ("fol" queries
// skip this check).
func (p *PreparedQuery[T]) Set(index int, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return wrapError(ErrDisposed, nil)
	}
	if p.named {
		return newError(ErrUnknownParam, "query uses named parameters; use SetNamed")
	}
	i := index - 1
	if i < 0 || i >= len(p.values) {
		return newError(ErrUnknownParam, "positional index %d out of range [1,%d]", index, len(p.values))
	}
	if p.language == "sql" {
		category := typeCategoryOf(p.input[i].Type)
		if !acceptsValue(category, value) {
			return newError(ErrParamType, "param %d (%s): value %v is not acceptable", index, p.input[i].Name, value)
		}
	}
	p.values[i] = value
	p.valueIsSet[i] = true
	return nil
}

// SetNamed assigns value to the parameter slot named name (matched
// case-insensitively). Fails with ErrUnknownParam if the query uses
// positional parameters instead or the name doesn't exist.
func (p *PreparedQuery[T]) SetNamed(name string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return wrapError(ErrDisposed, nil)
	}
	if !p.named {
		return newError(ErrUnknownParam, "query uses positional parameters; use Set")
	}
	for i, spec := range p.input {
		if strings.EqualFold(spec.Name, name) {
			if p.language == "sql" {
				category := typeCategoryOf(spec.Type)
				if !acceptsValue(category, value) {
					return newError(ErrParamType, "param %s: value %v is not acceptable", spec.Name, value)
				}
			}
			p.values[i] = value
			p.valueIsSet[i] = true
			return nil
		}
	}
	return newError(ErrUnknownParam, "no parameter named %q", name)
}

// Clear resets every parameter slot to unset.
func (p *PreparedQuery[T]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.values {
		p.values[i] = nil
		p.valueIsSet[i] = false
	}
}

// FullyInstantiated reports whether every parameter slot has been set
// at least once since construction or the last Clear.
func (p *PreparedQuery[T]) FullyInstantiated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, set := range p.valueIsSet {
		if !set {
			return false
		}
	}
	return true
}

// Execute runs the prepared query with its current parameter values,
// returning a new ResultSet[T]. Fails with ErrIncompleteParams if any
// slot is still unset. check-update is always sent false, per spec.md
// §9's resolution of that open question.
func (p *PreparedQuery[T]) Execute(ctx context.Context, restriction *Restriction) (*ResultSet[T], error) {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return nil, wrapError(ErrDisposed, nil)
	}
	for _, set := range p.valueIsSet {
		if !set {
			p.mu.Unlock()
			return nil, newError(ErrIncompleteParams, "not every parameter has been set")
		}
	}
	handle := *p.handle
	inputs := append([]interface{}(nil), p.values...)
	p.mu.Unlock()

	params := map[string]interface{}{
		"handle":       handle,
		"inputs":       inputs,
		"check-update": false,
	}
	applyRestriction(params, restriction)

	var result ExecuteQueryResult[T]
	if err := p.client.engine.Call(ctx, "create-resultset", params, &result); err != nil {
		return nil, err
	}
	rs := newResultSet[T](p.client, &result, restriction)

	p.mu.Lock()
	p.outstanding = append(p.outstanding, rs)
	p.mu.Unlock()
	return rs, nil
}

// Dispose cascades disposal to every outstanding result set produced
// by Execute, then releases the prepared-query handle with a single
// release-query call. Idempotent.
func (p *PreparedQuery[T]) Dispose(ctx context.Context) error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return nil
	}
	p.disposed = true
	outstanding := p.outstanding
	p.outstanding = nil
	handle := p.handle
	p.mu.Unlock()

	for _, rs := range outstanding {
		_ = rs.Dispose(ctx)
	}
	if handle != nil {
		if err := p.client.engine.Call(ctx, "release-query", []interface{}{*handle}, nil); err != nil {
			p.client.log.Warn("client: release-query failed during disposal", "handle", *handle, "error", err)
		}
	}
	return nil
}

// InputSignature returns the query's declared parameter slots.
func (p *PreparedQuery[T]) InputSignature() []SignatureElement { return p.input }

// OutputSignature returns the query's declared output columns.
func (p *PreparedQuery[T]) OutputSignature() []SignatureElement { return p.output }

// UsesNamedParameters reports whether Set or SetNamed must be used.
func (p *PreparedQuery[T]) UsesNamedParameters() bool { return p.named }
