package queue

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CompareQueue is the shared list all comparison jobs flow through.
const CompareQueue = "compare:queue"

// ResultChannel returns the pub/sub channel carrying a job's result.
func ResultChannel(jobID string) string {
	return "results:" + jobID
}

// Client defines the interface for interacting with the Redis-backed
// comparison queue.
type Client interface {
	// Push adds a comparison job to the end of a queue (LPUSH).
	Push(ctx context.Context, queue string, job CompareJob) error

	// Pop removes and returns a job from the front of a queue (BRPOP).
	// Blocks until a job is available or context is cancelled.
	Pop(ctx context.Context, queue string) (*CompareJob, error)

	// Publish sends a result to a pub/sub channel.
	Publish(ctx context.Context, channel string, result CompareResult) error

	// Subscribe creates a subscription to a pub/sub channel.
	// Returns a channel that receives results until the subscription is closed.
	Subscribe(ctx context.Context, channel string) (<-chan CompareResult, error)

	// RegisterLens writes lens metadata to Redis and adds to the available set.
	RegisterLens(ctx context.Context, meta LensMeta) error

	// ListLenses returns metadata for all registered lenses.
	ListLenses(ctx context.Context) ([]LensMeta, error)

	// Heartbeat updates the health key for a lens with a 30s TTL.
	Heartbeat(ctx context.Context, lensName string) error

	// GetWorkerCount returns the current worker count for a lens.
	GetWorkerCount(ctx context.Context, lensName string) (int, error)

	// IncrementWorkerCount increments the worker count for a lens.
	IncrementWorkerCount(ctx context.Context, lensName string) error

	// DecrementWorkerCount decrements the worker count for a lens.
	DecrementWorkerCount(ctx context.Context, lensName string) error

	// Close closes the Redis connection.
	Close() error
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration
}

// RedisClient implements the Client interface using go-redis/v9.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis queue client with the given options.
func NewRedisClient(opts RedisOptions) (*RedisClient, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}

	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}

	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// Push adds a comparison job to the end of a queue.
func (c *RedisClient) Push(ctx context.Context, queue string, job CompareJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := c.client.LPush(ctx, queue, data).Err(); err != nil {
		return fmt.Errorf("failed to push to queue %s: %w", queue, err)
	}

	return nil
}

// Pop removes and returns a job from the front of a queue.
// Blocks until a job is available or context is cancelled.
func (c *RedisClient) Pop(ctx context.Context, queue string) (*CompareJob, error) {
	// BRPOP returns [queue_name, value] or empty if timeout
	result, err := c.client.BRPop(ctx, 0, queue).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue %s: %w", queue, err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP result length: %d", len(result))
	}

	var job CompareJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

// Publish sends a result to a pub/sub channel.
func (c *RedisClient) Publish(ctx context.Context, channel string, result CompareResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := c.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}

	return nil
}

// Subscribe creates a subscription to a pub/sub channel.
func (c *RedisClient) Subscribe(ctx context.Context, channel string) (<-chan CompareResult, error) {
	pubsub := c.client.Subscribe(ctx, channel)

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to channel %s: %w", channel, err)
	}

	resultChan := make(chan CompareResult)

	go func() {
		defer close(resultChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var result CompareResult
				if err := json.Unmarshal([]byte(msg.Payload), &result); err != nil {
					// Skip undecodable payloads but keep the subscription alive
					continue
				}

				select {
				case resultChan <- result:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return resultChan, nil
}

// RegisterLens writes lens metadata to Redis and adds to the available set.
func (c *RedisClient) RegisterLens(ctx context.Context, meta LensMeta) error {
	// Convert flavors slice to JSON string for Redis storage
	flavorsJSON, err := json.Marshal(meta.Flavors)
	if err != nil {
		return fmt.Errorf("failed to marshal flavors: %w", err)
	}

	// Build a flat map for HSET - all values must be strings for go-redis
	metaMap := map[string]string{
		"name":         meta.Name,
		"version":      meta.Version,
		"description":  meta.Description,
		"flavors":      string(flavorsJSON),
		"worker_count": strconv.Itoa(meta.WorkerCount),
	}

	// Write metadata to hash using individual field-value pairs
	metaKey := fmt.Sprintf("lens:%s:meta", meta.Name)
	args := make([]interface{}, 0, len(metaMap)*2)
	for k, v := range metaMap {
		args = append(args, k, v)
	}
	if err := c.client.HSet(ctx, metaKey, args...).Err(); err != nil {
		return fmt.Errorf("failed to set lens metadata: %w", err)
	}

	// Add to available lenses set
	if err := c.client.SAdd(ctx, "lenses:available", meta.Name).Err(); err != nil {
		return fmt.Errorf("failed to add lens to available set: %w", err)
	}

	return nil
}

// ListLenses returns metadata for all registered lenses.
func (c *RedisClient) ListLenses(ctx context.Context) ([]LensMeta, error) {
	// Get all lens names from the set
	lensNames, err := c.client.SMembers(ctx, "lenses:available").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get available lenses: %w", err)
	}

	lenses := make([]LensMeta, 0, len(lensNames))

	for _, name := range lensNames {
		metaKey := fmt.Sprintf("lens:%s:meta", name)
		metaMap, err := c.client.HGetAll(ctx, metaKey).Result()
		if err != nil {
			// Skip lenses with missing metadata
			continue
		}

		if len(metaMap) == 0 {
			// Skip empty metadata
			continue
		}

		meta := LensMeta{
			Name:        metaMap["name"],
			Version:     metaMap["version"],
			Description: metaMap["description"],
		}

		// Flavors are stored as a JSON string
		if flavorsStr, ok := metaMap["flavors"]; ok {
			var flavors []string
			if err := json.Unmarshal([]byte(flavorsStr), &flavors); err == nil {
				meta.Flavors = flavors
			}
		}

		if countStr, ok := metaMap["worker_count"]; ok {
			if count, err := strconv.Atoi(countStr); err == nil {
				meta.WorkerCount = count
			}
		}

		lenses = append(lenses, meta)
	}

	return lenses, nil
}

// Heartbeat updates the health key for a lens with a 30s TTL.
func (c *RedisClient) Heartbeat(ctx context.Context, lensName string) error {
	healthKey := fmt.Sprintf("lens:%s:health", lensName)
	if err := c.client.Set(ctx, healthKey, "ok", 30*time.Second).Err(); err != nil {
		return fmt.Errorf("failed to set heartbeat for lens %s: %w", lensName, err)
	}
	return nil
}

// GetWorkerCount returns the current worker count for a lens.
func (c *RedisClient) GetWorkerCount(ctx context.Context, lensName string) (int, error) {
	workerKey := fmt.Sprintf("lens:%s:workers", lensName)
	countStr, err := c.client.Get(ctx, workerKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get worker count for lens %s: %w", lensName, err)
	}

	count, err := strconv.Atoi(countStr)
	if err != nil {
		return 0, fmt.Errorf("invalid worker count value: %w", err)
	}

	return count, nil
}

// IncrementWorkerCount increments the worker count for a lens.
func (c *RedisClient) IncrementWorkerCount(ctx context.Context, lensName string) error {
	workerKey := fmt.Sprintf("lens:%s:workers", lensName)
	if err := c.client.Incr(ctx, workerKey).Err(); err != nil {
		return fmt.Errorf("failed to increment worker count for lens %s: %w", lensName, err)
	}
	return nil
}

// DecrementWorkerCount decrements the worker count for a lens.
func (c *RedisClient) DecrementWorkerCount(ctx context.Context, lensName string) error {
	workerKey := fmt.Sprintf("lens:%s:workers", lensName)
	if err := c.client.Decr(ctx, workerKey).Err(); err != nil {
		return fmt.Errorf("failed to decrement worker count for lens %s: %w", lensName, err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	return c.client.Close()
}
