package queue

import (
	"fmt"
	"time"

	"github.com/lambda-foundation/bridge"
)

// CompareJob is a single comparison submitted to the work queue: two raw
// lens payloads captured from the same source, waiting to be canonicalized
// and scored by a worker.
type CompareJob struct {
	// JobID is a UUID that correlates the job with its result
	JobID string `json:"job_id"`

	// Source identifies what both lenses looked at
	Source string `json:"source"`

	// LensA and LensB name the lenses that produced the payloads
	LensA string `json:"lens_a"`
	LensB string `json:"lens_b"`

	// RawA and RawB are the captured payloads, still in raw form;
	// canonicalization happens on the worker so submitters stay thin
	RawA bridge.Raw `json:"raw_a"`
	RawB bridge.Raw `json:"raw_b"`

	// TraceID is the distributed tracing trace ID for observability
	TraceID string `json:"trace_id,omitempty"`

	// SpanID is the distributed tracing span ID for observability
	SpanID string `json:"span_id,omitempty"`

	// SubmittedAt is the Unix timestamp in milliseconds when the job was submitted
	SubmittedAt int64 `json:"submitted_at"`
}

// CompareResult is the outcome of processing a CompareJob.
// It is published to a job-specific pub/sub channel for the submitter to collect.
type CompareResult struct {
	// JobID correlates this result with the original job
	JobID string `json:"job_id"`

	// Agreement is the four-axis verdict; zero-valued if Error is set
	Agreement bridge.Agreement `json:"agreement"`

	// Accepted reports whether the score cleared the engine threshold
	Accepted bool `json:"accepted"`

	// Diff explains the divergence; present only for rejected comparisons
	Diff *bridge.DifferenceReport `json:"diff,omitempty"`

	// SoulA and SoulB are the short IR souls of the two sides, kept for
	// quick log correlation without re-running the engine
	SoulA string `json:"soul_a,omitempty"`
	SoulB string `json:"soul_b,omitempty"`

	// Error is the error message if processing failed
	// Empty if processing succeeded
	Error string `json:"error,omitempty"`

	// WorkerID is the unique identifier of the worker that processed this job
	WorkerID string `json:"worker_id"`

	// StartedAt is the Unix timestamp in milliseconds when processing started
	StartedAt int64 `json:"started_at"`

	// CompletedAt is the Unix timestamp in milliseconds when processing completed
	CompletedAt int64 `json:"completed_at"`
}

// LensMeta contains metadata about a registered lens adapter.
// It is stored as a Redis hash and used for lens discovery.
type LensMeta struct {
	// Name is the unique lens identifier
	Name string `json:"name"`

	// Version is the semantic version of the lens implementation
	Version string `json:"version"`

	// Description is a human-readable description of the lens's view
	Description string `json:"description"`

	// Flavors are the representations this lens emits ("ir", "facts", "protein")
	Flavors []string `json:"flavors"`

	// WorkerCount is the number of active workers consuming this lens's output
	// Updated by IncrementWorkerCount/DecrementWorkerCount
	WorkerCount int `json:"worker_count"`
}

// IsValid checks if the CompareJob has all required fields populated correctly.
// Returns an error describing any validation failures.
func (j *CompareJob) IsValid() error {
	if j.JobID == "" {
		return fmt.Errorf("job_id is required")
	}
	if j.Source == "" {
		return fmt.Errorf("source is required")
	}
	if j.LensA == "" || j.LensB == "" {
		return fmt.Errorf("both lens names are required")
	}
	if j.SubmittedAt <= 0 {
		return fmt.Errorf("submitted_at must be positive, got %d", j.SubmittedAt)
	}
	return nil
}

// Age returns the duration since this job was submitted.
// Useful for detecting stale jobs and computing queue wait time.
func (j *CompareJob) Age() time.Duration {
	if j.SubmittedAt <= 0 {
		return 0
	}
	now := time.Now().UnixMilli()
	return time.Duration(now-j.SubmittedAt) * time.Millisecond
}

// HasError returns true if the result represents a failed comparison.
func (r *CompareResult) HasError() bool {
	return r.Error != ""
}

// Duration returns the wall-clock time the worker spent on this job.
func (r *CompareResult) Duration() time.Duration {
	if r.StartedAt <= 0 || r.CompletedAt <= 0 {
		return 0
	}
	return time.Duration(r.CompletedAt-r.StartedAt) * time.Millisecond
}

// IsValid checks if the CompareResult has all required fields populated correctly.
func (r *CompareResult) IsValid() error {
	if r.JobID == "" {
		return fmt.Errorf("job_id is required")
	}
	if r.WorkerID == "" {
		return fmt.Errorf("worker_id is required")
	}
	if r.StartedAt <= 0 {
		return fmt.Errorf("started_at must be positive, got %d", r.StartedAt)
	}
	if r.CompletedAt <= 0 {
		return fmt.Errorf("completed_at must be positive, got %d", r.CompletedAt)
	}
	if r.CompletedAt < r.StartedAt {
		return fmt.Errorf("completed_at (%d) cannot be before started_at (%d)", r.CompletedAt, r.StartedAt)
	}
	return nil
}

// IsValid checks if the LensMeta has all required fields populated correctly.
func (m *LensMeta) IsValid() error {
	if m.Name == "" {
		return fmt.Errorf("lens name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("version is required")
	}
	if m.WorkerCount < 0 {
		return fmt.Errorf("worker_count must be non-negative, got %d", m.WorkerCount)
	}
	return nil
}

// EmitsFlavor checks if this lens emits the given representation.
func (m *LensMeta) EmitsFlavor(flavor string) bool {
	for _, f := range m.Flavors {
		if f == flavor {
			return true
		}
	}
	return false
}
