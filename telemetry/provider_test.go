package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestNewTracerProvider_ExportsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()

	tp, err := NewTracerProvider("bridge-test", exporter)
	require.NoError(t, err)
	defer func() { require.NoError(t, tp.Shutdown(context.Background())) }()

	_, span := tp.Tracer(scopeName).Start(context.Background(), "compare")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "compare", spans[0].Name)
}

func TestParentContext(t *testing.T) {
	traceID := "0102030405060708090a0b0c0d0e0f10"
	spanID := "0102030405060708"

	t.Run("valid ids are injected", func(t *testing.T) {
		ctx := ParentContext(context.Background(), traceID, spanID)

		sc := trace.SpanContextFromContext(ctx)
		require.True(t, sc.IsValid())
		assert.Equal(t, traceID, sc.TraceID().String())
		assert.Equal(t, spanID, sc.SpanID().String())
		assert.True(t, sc.IsRemote())
		assert.True(t, sc.IsSampled())
	})

	t.Run("empty ids leave context unchanged", func(t *testing.T) {
		ctx := ParentContext(context.Background(), "", "")
		assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
	})

	t.Run("malformed ids leave context unchanged", func(t *testing.T) {
		ctx := ParentContext(context.Background(), "not-hex", spanID)
		assert.False(t, trace.SpanContextFromContext(ctx).IsValid())

		ctx = ParentContext(context.Background(), traceID, "abcd")
		assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
	})
}
