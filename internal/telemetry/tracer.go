// Package telemetry bootstraps OpenTelemetry tracing for the mock
// transport: a pretty-printed stdout exporter behind a batched span
// processor, registered as the global tracer provider.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// flushTimeout bounds the final span flush during shutdown.
const flushTimeout = 5 * time.Second

// InitTracer installs the global tracer provider and returns its shutdown
// hook. The hook flushes pending spans with a bounded timeout and logs any
// teardown failure instead of returning it; a tracer that cannot flush must
// never fail the run it was observing.
func InitTracer(serviceName string, logger *slog.Logger) (func(context.Context), error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	logger.Info("tracing enabled", slog.String("service", serviceName))

	shutdown := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, flushTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("tracer shutdown failed", slog.String("error", err.Error()))
		}
	}
	return shutdown, nil
}
