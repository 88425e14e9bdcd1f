package worker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lambda-foundation/bridge"
	"github.com/lambda-foundation/bridge/config"
	"github.com/lambda-foundation/bridge/fact"
	"github.com/lambda-foundation/bridge/ir"
	"github.com/lambda-foundation/bridge/queue"
)

func testJob() queue.CompareJob {
	graph := fact.Graph{Facts: []fact.Atom{
		{Subject: "mars", Predicate: "orbits", Object: "sun", Prov: fact.Provenance{Hash: "h"}},
	}}
	return queue.CompareJob{
		JobID:       "job-1",
		Source:      "doc-1",
		LensA:       "text",
		LensB:       "code",
		RawA:        bridge.Raw{IR: ir.Lam("x", ir.Var("x")), Facts: &graph},
		RawB:        bridge.Raw{IR: ir.Lam("y", ir.Var("y")), Facts: &graph},
		SubmittedAt: time.Now().UnixMilli(),
	}
}

func testEngine(t *testing.T) *bridge.Engine {
	t.Helper()
	e, err := bridge.New()
	require.NoError(t, err)
	return e
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestProcessJob_Agreeing(t *testing.T) {
	result := processJob(context.Background(), testEngine(t), testJob(), "w-1", discard())

	require.NoError(t, result.IsValid())
	assert.False(t, result.HasError())
	assert.True(t, result.Accepted)
	assert.InDelta(t, 1.0, result.Agreement.Score, 1e-9)
	assert.Nil(t, result.Diff)
	assert.Equal(t, result.SoulA, result.SoulB)
	assert.Equal(t, "w-1", result.WorkerID)
}

func TestProcessJob_DisagreeingGetsDiff(t *testing.T) {
	job := testJob()
	job.RawB = bridge.Raw{IR: ir.Num(9)}

	result := processJob(context.Background(), testEngine(t), job, "w-1", discard())

	assert.False(t, result.HasError())
	assert.False(t, result.Accepted)
	require.NotNil(t, result.Diff)
	assert.NotEmpty(t, result.Diff.FactsExtra)
	assert.NotEqual(t, result.SoulA, result.SoulB)
}

func TestProcessJob_InvalidJob(t *testing.T) {
	job := testJob()
	job.Source = ""

	result := processJob(context.Background(), testEngine(t), job, "w-1", discard())

	assert.True(t, result.HasError())
	assert.Contains(t, result.Error, "invalid job")
	assert.NotZero(t, result.CompletedAt)
}

func TestProcessJob_MalformedPayload(t *testing.T) {
	job := testJob()
	job.RawB = bridge.Raw{IR: &ir.Term{Kind: ir.KindLam, Name: "x"}}

	result := processJob(context.Background(), testEngine(t), job, "w-1", discard())

	assert.True(t, result.HasError())
	assert.Contains(t, result.Error, "code payload")
}

func TestGenerateWorkerID_Unique(t *testing.T) {
	a := generateWorkerID()
	b := generateWorkerID()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}

func TestApplyConfig(t *testing.T) {
	cfg := config.Default()

	t.Run("defaults flow through", func(t *testing.T) {
		opts := applyConfig(Options{}, cfg)
		assert.Equal(t, DefaultPoolName, opts.PoolName)
		assert.Equal(t, cfg.Worker.Concurrency, opts.Concurrency)
		assert.Equal(t, 10*time.Second, opts.HeartbeatInterval)
		assert.Equal(t, 30*time.Second, opts.ShutdownTimeout)
	})

	t.Run("explicit values win", func(t *testing.T) {
		opts := applyConfig(Options{
			PoolName:          "custom",
			Concurrency:       2,
			HeartbeatInterval: time.Second,
			ShutdownTimeout:   time.Minute,
		}, cfg)
		assert.Equal(t, "custom", opts.PoolName)
		assert.Equal(t, 2, opts.Concurrency)
		assert.Equal(t, time.Second, opts.HeartbeatInterval)
		assert.Equal(t, time.Minute, opts.ShutdownTimeout)
	})
}
