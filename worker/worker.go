// Package worker runs the queue-driven comparison loop: it pops comparison
// jobs from Redis, drives them through the engine, and publishes results
// back on the job's pub/sub channel.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/lambda-foundation/bridge"
	"github.com/lambda-foundation/bridge/config"
	"github.com/lambda-foundation/bridge/queue"
	"github.com/lambda-foundation/bridge/telemetry"
)

// DefaultPoolName identifies the comparison worker pool in Redis health
// and worker-count keys.
const DefaultPoolName = "compare-engine"

// Options configures the worker behavior.
type Options struct {
	// RedisURL is the Redis connection string (e.g., "redis://localhost:6379")
	RedisURL string

	// PoolName scopes the heartbeat and worker-count keys.
	// If empty, DefaultPoolName is used.
	PoolName string

	// Concurrency is the number of worker goroutines to start.
	// If 0, uses the value from the config file or default (4).
	Concurrency int

	// HeartbeatInterval is the liveness publish interval.
	// If 0, uses the value from the config file or default (10s).
	HeartbeatInterval time.Duration

	// ShutdownTimeout is the time to wait for graceful shutdown.
	// If 0, defaults to 30s.
	ShutdownTimeout time.Duration

	// Logger is the structured logger for worker operations.
	// If nil, a JSON logger on stdout is created.
	Logger *slog.Logger

	// Config carries the engine and worker settings.
	// If nil, config.Default() is used.
	Config *config.Config
}

// Run starts the comparison worker pool. It connects to Redis, builds the
// engine from configuration, starts N worker goroutines, maintains a
// heartbeat, and handles graceful shutdown on SIGTERM/SIGINT.
//
// Configuration priority (highest to lowest):
//  1. Explicit Options values (if non-zero)
//  2. Config file worker section
//  3. Default values
//
// Each worker goroutine:
//  1. Pops a comparison job from the queue
//  2. Canonicalizes both payloads and scores the pair
//  3. Publishes the result back to Redis
//
// The function blocks until a shutdown signal is received or an error
// occurs. On shutdown, it waits for workers to finish their current jobs
// before returning.
func Run(opts Options) error {
	cfg := config.Default()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	opts = applyConfig(opts, cfg)

	if opts.RedisURL == "" {
		opts.RedisURL = "redis://" + cfg.Queue.Addr
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	engine, err := bridge.New(cfg.EngineOptions()...)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	workerID := generateWorkerID()
	logger := opts.Logger.With(
		"pool", opts.PoolName,
		"worker_id", workerID,
	)

	logger.Info("worker starting",
		"concurrency", opts.Concurrency,
		"redis_url", opts.RedisURL,
	)

	redisClient, err := queue.NewRedisClient(queue.RedisOptions{
		URL: opts.RedisURL,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer bridge.CloseWithLog(redisClient, logger, "redis client")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.IncrementWorkerCount(ctx, opts.PoolName); err != nil {
		logger.Error("failed to increment worker count", "error", err)
	}

	// Decrement on exit even when the loop aborts; ctx may already be
	// cancelled, so cleanup gets its own deadline.
	defer func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		if err := redisClient.DecrementWorkerCount(cleanupCtx, opts.PoolName); err != nil {
			logger.Error("failed to decrement worker count", "error", err)
		}
	}()

	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go runHeartbeat(heartbeatCtx, redisClient, opts.PoolName, opts.HeartbeatInterval, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	var wg sync.WaitGroup
	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func(workerNum int) {
			defer wg.Done()
			workerLoop(ctx, workerNum, engine, redisClient, workerID, logger)
		}(i)
	}

	logger.Info("worker started",
		"workers", opts.Concurrency,
		"queue", queue.CompareQueue,
	)

	sig := <-sigChan
	logger.Info("received signal, initiating graceful shutdown", "signal", sig)

	cancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		logger.Info("worker shutdown complete")
	case <-time.After(opts.ShutdownTimeout):
		logger.Warn("worker shutdown timeout exceeded", "timeout", opts.ShutdownTimeout)
	}

	return nil
}

// runHeartbeat sends periodic heartbeats to maintain pool health status.
// It runs in a goroutine and stops when the context is cancelled.
func runHeartbeat(ctx context.Context, client queue.Client, poolName string, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Debug("heartbeat goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("heartbeat goroutine stopped")
			return
		case <-ticker.C:
			if err := client.Heartbeat(ctx, poolName); err != nil {
				// Heartbeat failures are transient; keep the noise down
				logger.Debug("heartbeat failed", "error", err)
			}
		}
	}
}

// workerLoop is the main loop for a single worker goroutine.
// It continuously pops jobs from the queue, processes them, and publishes
// results until the context is cancelled.
func workerLoop(ctx context.Context, workerNum int, engine *bridge.Engine, client queue.Client, workerID string, logger *slog.Logger) {
	logger = logger.With("worker_num", workerNum)
	logger.Debug("worker loop started", "queue", queue.CompareQueue)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("worker loop stopped", "reason", "context_cancelled")
			return
		default:
		}

		job, err := client.Pop(ctx, queue.CompareQueue)
		if err != nil {
			if ctx.Err() != nil {
				logger.Debug("worker loop stopped", "reason", "context_error")
				return
			}
			logger.Error("failed to pop job", "error", err)
			continue
		}

		if job == nil {
			continue
		}

		logger.Info("received job",
			"job_id", job.JobID,
			"source", job.Source,
			"lens_a", job.LensA,
			"lens_b", job.LensB,
		)

		// Link the job's spans to the submitter's trace when one was sent.
		jobCtx := telemetry.ParentContext(ctx, job.TraceID, job.SpanID)

		result := processJob(jobCtx, engine, *job, workerID, logger)

		if err := client.Publish(ctx, queue.ResultChannel(job.JobID), result); err != nil {
			logger.Error("failed to publish result", "error", err)
		}
	}
}

// processJob runs one comparison and returns a result. It handles all
// errors at each step and ensures a result is always returned.
func processJob(ctx context.Context, engine *bridge.Engine, job queue.CompareJob, workerID string, logger *slog.Logger) queue.CompareResult {
	startedAt := time.Now().UnixMilli()

	result := queue.CompareResult{
		JobID:     job.JobID,
		WorkerID:  workerID,
		StartedAt: startedAt,
	}

	if err := job.IsValid(); err != nil {
		result.Error = fmt.Sprintf("invalid job: %v", err)
		result.CompletedAt = time.Now().UnixMilli()
		logger.Error("invalid job", "job_id", job.JobID, "error", err)
		return result
	}

	outA, err := engine.Canonicalize(ctx, job.RawA)
	if err != nil {
		result.Error = fmt.Sprintf("canonicalize %s payload: %v", job.LensA, err)
		result.CompletedAt = time.Now().UnixMilli()
		logger.Error("canonicalization failed", "job_id", job.JobID, "lens", job.LensA, "error", err)
		return result
	}

	outB, err := engine.Canonicalize(ctx, job.RawB)
	if err != nil {
		result.Error = fmt.Sprintf("canonicalize %s payload: %v", job.LensB, err)
		result.CompletedAt = time.Now().UnixMilli()
		logger.Error("canonicalization failed", "job_id", job.JobID, "lens", job.LensB, "error", err)
		return result
	}

	ag := engine.Agree(ctx, outA, outB)
	result.Agreement = ag
	result.Accepted = engine.Accept(ag)
	result.SoulA = outA.Soul
	result.SoulB = outB.Soul
	if !result.Accepted {
		diff := engine.FindDifference(outA, outB)
		result.Diff = &diff
	}
	result.CompletedAt = time.Now().UnixMilli()

	logger.Info("job completed",
		"job_id", job.JobID,
		"score", ag.Score,
		"accepted", result.Accepted,
		"duration_ms", result.CompletedAt-result.StartedAt,
	)

	return result
}

// generateWorkerID creates a unique identifier for this worker instance.
// Uses hostname + PID + UUID for uniqueness.
func generateWorkerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	pid := os.Getpid()

	id := uuid.New().String()[:8]

	return fmt.Sprintf("%s-%d-%s", hostname, pid, id)
}

// applyConfig fills Options from the config file. Explicit Options values
// take priority.
func applyConfig(opts Options, cfg config.Config) Options {
	if opts.PoolName == "" {
		opts.PoolName = DefaultPoolName
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = cfg.Worker.Concurrency
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.HeartbeatInterval == 0 {
		opts.HeartbeatInterval = time.Duration(cfg.Worker.HeartbeatSeconds) * time.Second
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 10 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}
	return opts
}
