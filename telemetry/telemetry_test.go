package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNewWithProviders(t *testing.T) {
	tel, err := NewWithProviders(tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)
	require.NotNil(t, tel)

	ctx, span := tel.Start(context.Background(), "test.span")
	assert.NotNil(t, ctx)
	span.End()

	// Instruments accept measurements without panicking.
	tel.RecordScore(ctx, 0.95, true)
	tel.AddBetaSteps(ctx, 12)
}

func TestNilReceiverIsSafe(t *testing.T) {
	var tel *Telemetry

	ctx, span := tel.Start(context.Background(), "noop.span")
	assert.NotNil(t, ctx)
	span.End()

	tel.RecordScore(ctx, 0.5, false)
	tel.AddBetaSteps(ctx, 3)
}
