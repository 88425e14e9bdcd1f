package telemetry

import (
	"context"
	"encoding/hex"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// NewTracerProvider builds an SDK tracer provider tagged with the given
// service name. Each exporter gets its own simple (unbatched) processor so
// spans are visible as soon as they end; comparison volume is low enough
// that batching buys nothing.
//
// Callers own the provider and should call Shutdown on it when done.
func NewTracerProvider(serviceName string, exporters ...sdktrace.SpanExporter) (*sdktrace.TracerProvider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, exp := range exporters {
		opts = append(opts, sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exp)))
	}

	return sdktrace.NewTracerProvider(opts...), nil
}

// ParentContext injects a remote parent span context decoded from
// hex-encoded trace and span IDs. Comparison jobs carry these IDs so
// worker spans link back to the submitter's trace. Empty or malformed IDs
// leave the context unchanged.
func ParentContext(ctx context.Context, traceID, spanID string) context.Context {
	if traceID == "" || spanID == "" {
		return ctx
	}

	tidBytes, err := hex.DecodeString(traceID)
	if err != nil || len(tidBytes) != 16 {
		return ctx
	}

	sidBytes, err := hex.DecodeString(spanID)
	if err != nil || len(sidBytes) != 8 {
		return ctx
	}

	var tid trace.TraceID
	copy(tid[:], tidBytes)

	var sid trace.SpanID
	copy(sid[:], sidBytes)

	parent := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    tid,
		SpanID:     sid,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})

	return trace.ContextWithSpanContext(ctx, parent)
}
