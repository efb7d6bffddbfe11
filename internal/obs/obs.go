// Package obs centralizes the OpenTelemetry tracer/meter handles and
// the small set of instruments the rpc and client packages record
// against, grounded on the teacher's lsp/metrics.go package-level
// otel.Tracer/otel.Meter pattern.
package obs

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("triggerware.client")
	meter  = otel.Meter("triggerware.client")
)

// Instruments bundles the counters/histograms recorded by the rpc
// engine and the client's batch subscriptions. They are created lazily
// and are safe to use even if no MeterProvider was ever configured
// (the default no-op provider satisfies every call).
type Instruments struct {
	CallTotal     metric.Int64Counter
	CallErrors    metric.Int64Counter
	CallLatency   metric.Float64Histogram
	// BatchRows records the number of tuples delivered per inbound
	// BatchSubscription notification, across all of its members.
	BatchRows     metric.Int64Histogram
	PendingCalls  metric.Int64UpDownCounter
	Notifications metric.Int64Counter

	// PromCallTotal mirrors CallTotal on the process's default
	// Prometheus registry, independent of the otel metric pipeline —
	// the teacher keeps both an otel meter and a prometheus registry
	// live side by side (SPEC_FULL.md §3).
	PromCallTotal     prometheus.Counter
	PromNotifications prometheus.Counter
}

var (
	once     sync.Once
	instr    *Instruments
	instrErr error
)

// Default returns the process-wide Instruments, initializing them on
// first use.
func Default() *Instruments {
	once.Do(func() {
		instr = &Instruments{}
		instr.CallTotal, instrErr = meter.Int64Counter(
			"tw_client_call_total",
			metric.WithDescription("Total JSON-RPC calls issued"),
		)
		instr.CallErrors, _ = meter.Int64Counter(
			"tw_client_call_errors_total",
			metric.WithDescription("JSON-RPC calls that returned an error"),
		)
		instr.CallLatency, _ = meter.Float64Histogram(
			"tw_client_call_duration_seconds",
			metric.WithDescription("Duration of JSON-RPC calls"),
			metric.WithUnit("s"),
		)
		instr.BatchRows, _ = meter.Int64Histogram(
			"tw_client_batch_subscription_rows",
			metric.WithDescription("Tuples delivered per batch subscription notification"),
		)
		instr.PendingCalls, _ = meter.Int64UpDownCounter(
			"tw_client_pending_calls",
			metric.WithDescription("Calls currently awaiting a response"),
		)
		instr.Notifications, _ = meter.Int64Counter(
			"tw_client_notifications_total",
			metric.WithDescription("Inbound notifications dispatched"),
		)

		instr.PromCallTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tw_client_call_total",
			Help: "Total JSON-RPC calls issued",
		})
		instr.PromNotifications = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tw_client_notifications_total",
			Help: "Inbound notifications dispatched",
		})
		prometheus.MustRegister(instr.PromCallTotal, instr.PromNotifications)
	})
	return instr
}

// StartSpan starts a span under the package tracer; callers defer the
// returned function, passing the error (if any) the span should record.
func StartSpan(ctx context.Context, name string, attrs ...trace.EventOption) (context.Context, func(error)) {
	ctx, span := tracer.Start(ctx, name)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
}
