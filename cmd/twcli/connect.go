package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/triggerware/tw-go-client/client"
	"github.com/triggerware/tw-go-client/internal/config"
)

// connectClient dials address:port and wires the optional --otel and
// --metrics-addr exporters before returning a ready Client.
func connectClient(ctx context.Context) (*client.Client, error) {
	if flagOTel {
		if err := wireOTel(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "twcli: otel setup failed, continuing without it: %v\n", err)
		}
	}
	if flagMetricsAddr != "" {
		go serveMetrics(flagMetricsAddr)
	}

	opts := []client.Option{client.FromConfig(&config.Global)}
	if flagNamespace != "" {
		opts = append(opts, client.WithNamespace(flagNamespace))
	}
	connectTimeout := config.Global.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	return client.Dial(ctx, flagAddress, flagPort, connectTimeout, opts...)
}

// wireOTel installs stdout trace/metric exporters as the global otel
// providers, so every rpc.Engine/client span and metric in this process
// is printed to stdout — a minimal but real consumer of the tracing
// stack (SPEC_FULL.md §3's DOMAIN STACK entry for the stdout exporters).
func wireOTel(ctx context.Context) error {
	traceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("stdout trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter))
	otel.SetTracerProvider(tp)

	metricExporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("stdout metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(15*time.Second))))
	otel.SetMeterProvider(mp)
	return nil
}

// serveMetrics serves the process's Prometheus registry at addr until
// the process exits; failures are logged, not fatal, since metrics are
// a diagnostic aid rather than part of the CLI's core contract.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "twcli: metrics server stopped: %v\n", err)
	}
}
