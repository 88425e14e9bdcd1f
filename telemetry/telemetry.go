// Package telemetry wraps the OpenTelemetry tracer and meter used by the
// engine and its boundary services. All methods are nil-receiver safe so
// instrumentation stays strictly optional: a nil *Telemetry traces to a
// no-op tracer and drops measurements.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// scopeName identifies this instrumentation scope.
const scopeName = "github.com/lambda-foundation/bridge"

// Telemetry bundles the tracer and the engine's metric instruments.
type Telemetry struct {
	tracer trace.Tracer

	scoreHist   metric.Float64Histogram
	betaSteps   metric.Int64Counter
	comparisons metric.Int64Counter
}

// New builds a Telemetry backed by the global OpenTelemetry providers.
func New() (*Telemetry, error) {
	return NewWithProviders(otel.GetTracerProvider(), otel.GetMeterProvider())
}

// NewWithProviders builds a Telemetry from explicit providers; used by
// tests and by services that manage their own SDK setup.
func NewWithProviders(tp trace.TracerProvider, mp metric.MeterProvider) (*Telemetry, error) {
	meter := mp.Meter(scopeName)

	scoreHist, err := meter.Float64Histogram(
		"bridge.agreement.score",
		metric.WithDescription("Weighted agreement score per comparison"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create score histogram: %w", err)
	}

	betaSteps, err := meter.Int64Counter(
		"bridge.reduction.beta_steps",
		metric.WithDescription("Beta-reduction steps consumed during canonicalization"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create beta step counter: %w", err)
	}

	comparisons, err := meter.Int64Counter(
		"bridge.comparisons",
		metric.WithDescription("Completed agreement checks"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create comparison counter: %w", err)
	}

	return &Telemetry{
		tracer:      tp.Tracer(scopeName),
		scoreHist:   scoreHist,
		betaSteps:   betaSteps,
		comparisons: comparisons,
	}, nil
}

// Start begins a span. On a nil receiver it returns a no-op span so call
// sites never branch on whether telemetry is configured.
func (t *Telemetry) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if t == nil {
		return noop.NewTracerProvider().Tracer(scopeName).Start(ctx, name)
	}
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordScore records one agreement score and whether it cleared the
// acceptance threshold.
func (t *Telemetry) RecordScore(ctx context.Context, score float64, accepted bool) {
	if t == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("accepted", accepted))
	t.scoreHist.Record(ctx, score, attrs)
	t.comparisons.Add(ctx, 1, attrs)
}

// AddBetaSteps accumulates reduction work done while canonicalizing.
func (t *Telemetry) AddBetaSteps(ctx context.Context, n int64) {
	if t == nil || n == 0 {
		return
	}
	t.betaSteps.Add(ctx, n)
}
