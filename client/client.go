// Package client layers the handle-bound object model — View, ResultSet,
// PreparedQuery, PolledQuery, Subscription, BatchSubscription — on top of
// package rpc's JSON-RPC engine, per spec.md §3–§4.
package client

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/triggerware/tw-go-client/internal/config"
	"github.com/triggerware/tw-go-client/pkg/logging"
	"github.com/triggerware/tw-go-client/rpc"
)

// Restriction bounds a query's result set: an optional row limit and an
// optional server-side time limit (spec.md §4.4.1).
type Restriction struct {
	Limit     *int
	TimeLimit *time.Duration
}

// Client owns the RPC engine, default limits, and the per-prefix label
// counters handle-bound objects draw from (spec.md §4.5).
type Client struct {
	engine *rpc.Engine
	log    *logging.Logger

	defaultFetchSize int
	defaultTimeout   time.Duration
	namespace        string

	pollCounter  int64
	subCounter   int64
	batchCounter int64
}

// Option configures a Client at construction.
type Option func(*Client)

// WithDefaultFetchSize overrides the row count ResultSet requests per
// batch fetch when the caller does not specify one.
func WithDefaultFetchSize(n int) Option {
	return func(c *Client) { c.defaultFetchSize = n }
}

// WithDefaultTimeout overrides the server-side timelimit ResultSet
// requests per batch fetch when the caller does not specify one.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

// WithNamespace sets the default query namespace (AP5 table catalog
// scope) used when a query operation does not specify one.
func WithNamespace(ns string) Option {
	return func(c *Client) { c.namespace = ns }
}

// WithLogger overrides the client's logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// FromConfig applies an internal/config.Config's client-relevant
// defaults as Options, so cmd/twcli can build a Client directly off a
// loaded configuration file.
func FromConfig(cfg *config.Config) Option {
	return func(c *Client) {
		c.defaultFetchSize = cfg.DefaultFetchSize
		c.defaultTimeout = cfg.DefaultTimeout
		c.namespace = cfg.Namespace
	}
}

// New wraps an already-constructed *rpc.Engine (dialed and started by
// the caller) in a Client. Engine ownership passes to the Client:
// Close on the Client closes the engine too.
func New(engine *rpc.Engine, opts ...Option) *Client {
	c := &Client{
		engine:           engine,
		log:              logging.Default(),
		defaultFetchSize: 100,
		defaultTimeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial opens a TCP connection to address:port, starts the RPC engine
// over it, and returns a ready-to-use Client.
func Dial(ctx context.Context, address string, port int, connectTimeout time.Duration, opts ...Option) (*Client, error) {
	transport, err := rpc.DialTCP(address, port, connectTimeout)
	if err != nil {
		return nil, err
	}
	engine := rpc.NewEngine(transport, logging.Default())
	if err := engine.Start(ctx); err != nil {
		_ = transport.Close()
		return nil, err
	}
	return New(engine, opts...), nil
}

// Close tears down the underlying RPC engine. Every outstanding call
// observes a synthesized ServerError response (rpc.CodeServerError); any
// live handle-bound object's next operation observes rpc.ErrClosed,
// per spec.md §5's failure-mode contract.
func (c *Client) Close() error {
	return c.engine.Close()
}

// Engine exposes the underlying RPC engine for handle-bound objects in
// this package; application code should not need it directly.
func (c *Client) Engine() *rpc.Engine { return c.engine }

func (c *Client) nextLabel(prefix string, counter *int64) string {
	n := atomic.AddInt64(counter, 1) - 1
	return fmt.Sprintf("%s%d", prefix, n)
}

// registerPolledLabel returns a unique label of the form "poll<N>",
// per spec.md §4.3/§4.5.
func (c *Client) registerPolledLabel() string { return c.nextLabel("poll", &c.pollCounter) }

// registerSubscriptionLabel returns a unique label of the form "sub<N>".
func (c *Client) registerSubscriptionLabel() string { return c.nextLabel("sub", &c.subCounter) }

// registerBatchLabel returns a unique label of the form "batch<N>".
func (c *Client) registerBatchLabel() string { return c.nextLabel("batch", &c.batchCounter) }

// ExecuteQuery is convenience sugar for View(query, language).Execute(restriction),
// per spec.md §4.5.
func ExecuteQuery[T any](ctx context.Context, c *Client, query, language string, restriction *Restriction) (*ResultSet[T], error) {
	v := NewView[T](c, query, language, c.namespace)
	return v.Execute(ctx, restriction)
}

// ValidateQuery calls `validate` and translates a server-reported
// rejection into ErrInvalidQuery, per spec.md §4.5. InternalError and
// ServerError responses are returned unchanged.
func (c *Client) ValidateQuery(ctx context.Context, query, language, schema string) (string, error) {
	var result string
	err := c.engine.Call(ctx, "validate", []interface{}{query, language, schema}, &result)
	if err != nil {
		if rpcErr, ok := err.(*rpc.Error); ok && rpcErr.Code != rpc.CodeInternalError && rpcErr.Code != rpc.CodeServerError {
			return "", wrapError(ErrInvalidQuery, rpcErr)
		}
		return "", err
	}
	return result, nil
}

// Noop calls the `noop` method, used as a liveness check.
func (c *Client) Noop(ctx context.Context) error {
	return c.engine.Call(ctx, "noop", []interface{}{}, nil)
}

// GetRuntimeMeasure calls `runtime` and returns the server's
// runtime/GC-time/bytes-allocated triple.
func (c *Client) GetRuntimeMeasure(ctx context.Context) (*RuntimeMeasure, error) {
	var rm RuntimeMeasure
	if err := c.engine.Call(ctx, "runtime", []interface{}{}, &rm); err != nil {
		return nil, err
	}
	return &rm, nil
}

// GetRelData calls `reldata2017` and returns the server's table
// catalog grouped by relation group.
func (c *Client) GetRelData(ctx context.Context) ([]RelGroup, error) {
	var groups []RelGroup
	if err := c.engine.Call(ctx, "reldata2017", []interface{}{}, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// DefaultFetchSize is consulted by ResultSet construction when the
// caller didn't ask for a specific row limit.
func (c *Client) DefaultFetchSize() int { return c.defaultFetchSize }

// DefaultTimeout is consulted by ResultSet construction when the caller
// didn't ask for a specific server-side timelimit.
func (c *Client) DefaultTimeout() time.Duration { return c.defaultTimeout }

// Namespace is the default query namespace new View/PreparedQuery/
// PolledQuery/Subscription objects use when not given one explicitly.
func (c *Client) Namespace() string { return c.namespace }
