// Package queue provides Redis-based work queue primitives for distributed
// bridge comparison.
//
// The queue decouples comparison submission from execution. Submitters push
// comparison jobs carrying two raw lens payloads, workers consume them, run
// the engine, and publish results back through Redis pub/sub.
//
// # Core Components
//
// Client: Interface for interacting with the Redis queue. Provides methods for:
//   - Push/Pop operations for comparison jobs
//   - Publish/Subscribe for result delivery
//   - Lens registration and discovery
//   - Health monitoring and worker tracking
//
// CompareJob: One comparison, carrying both raw payloads and trace context.
//
// CompareResult: The outcome of a CompareJob, including agreement or error.
//
// LensMeta: Metadata about a registered lens adapter for discovery.
//
// # Redis Key Schema
//
// The queue system uses a structured key naming convention:
//   - compare:queue - List for comparison jobs (LPUSH/BRPOP)
//   - lens:<name>:meta - Hash for lens metadata
//   - lens:<name>:health - String with 30s TTL for heartbeat
//   - lens:<name>:workers - Integer counter for active workers
//   - lenses:available - Set of all registered lens names
//   - results:<jobID> - Pub/Sub channel for job results
//
// # Usage
//
// Pushing a comparison:
//
//	err := client.Push(ctx, queue.CompareQueue, queue.CompareJob{
//		JobID: uuid.NewString(),
//		Source: "doc-42",
//		LensA: "text",
//		LensB: "code",
//		RawA: rawText,
//		RawB: rawCode,
//		SubmittedAt: time.Now().UnixMilli(),
//	})
//
// Collecting the result:
//
//	results, err := client.Subscribe(ctx, queue.ResultChannel(jobID))
//	if err != nil {
//		log.Fatal(err)
//	}
//	result := <-results
//
// # Error Handling
//
// All methods return errors for Redis connection failures, serialization
// errors, or context cancellation. Clients should implement retry logic
// with exponential backoff for transient failures.
//
// # Thread Safety
//
// RedisClient is safe for concurrent use by multiple goroutines.
package queue
