package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lambda-foundation/bridge"
	"github.com/lambda-foundation/bridge/ir"
)

func validJob() CompareJob {
	return CompareJob{
		JobID:       "job-1",
		Source:      "doc-1",
		LensA:       "text",
		LensB:       "code",
		RawA:        bridge.Raw{IR: ir.Num(1)},
		RawB:        bridge.Raw{IR: ir.Num(1)},
		SubmittedAt: time.Now().UnixMilli(),
	}
}

func TestCompareJob_IsValid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CompareJob)
		wantErr string
	}{
		{name: "valid", mutate: func(*CompareJob) {}},
		{
			name:    "missing job id",
			mutate:  func(j *CompareJob) { j.JobID = "" },
			wantErr: "job_id",
		},
		{
			name:    "missing source",
			mutate:  func(j *CompareJob) { j.Source = "" },
			wantErr: "source",
		},
		{
			name:    "missing lens name",
			mutate:  func(j *CompareJob) { j.LensB = "" },
			wantErr: "lens names",
		},
		{
			name:    "zero submitted at",
			mutate:  func(j *CompareJob) { j.SubmittedAt = 0 },
			wantErr: "submitted_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := validJob()
			tt.mutate(&job)
			err := job.IsValid()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCompareJob_Age(t *testing.T) {
	job := validJob()
	job.SubmittedAt = time.Now().Add(-2 * time.Second).UnixMilli()
	assert.GreaterOrEqual(t, job.Age(), 2*time.Second)

	job.SubmittedAt = 0
	assert.Equal(t, time.Duration(0), job.Age())
}

func TestCompareResult_Validation(t *testing.T) {
	now := time.Now().UnixMilli()
	result := CompareResult{
		JobID:       "job-1",
		WorkerID:    "worker-1",
		StartedAt:   now - 50,
		CompletedAt: now,
	}
	require.NoError(t, result.IsValid())
	assert.False(t, result.HasError())
	assert.Equal(t, 50*time.Millisecond, result.Duration())

	result.CompletedAt = result.StartedAt - 1
	assert.Error(t, result.IsValid())

	result.CompletedAt = now
	result.Error = "boom"
	assert.True(t, result.HasError())
	assert.NoError(t, result.IsValid())
}

func TestLensMeta(t *testing.T) {
	meta := LensMeta{
		Name:    "text",
		Version: "1.0.0",
		Flavors: []string{"ir", "facts"},
	}
	require.NoError(t, meta.IsValid())
	assert.True(t, meta.EmitsFlavor("facts"))
	assert.False(t, meta.EmitsFlavor("protein"))

	meta.Name = ""
	assert.Error(t, meta.IsValid())

	meta.Name = "text"
	meta.WorkerCount = -1
	assert.Error(t, meta.IsValid())
}

func TestResultChannel(t *testing.T) {
	assert.Equal(t, "results:job-9", ResultChannel("job-9"))
}
