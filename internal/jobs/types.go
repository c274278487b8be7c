// Package jobs defines the asynchronous pipeline run job model and the
// queue abstractions the API and worker share.
package jobs

import (
	"context"
	"time"
)

// JobType identifies the kind of work a job carries.
type JobType string

const (
	// JobTypePipelineRun runs the full transform pipeline over a pair
	// of raw CSV inputs.
	JobTypePipelineRun JobType = "pipeline_run"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// PipelineRunJob asks the worker to clean, aggregate and score one
// dataset. Input URIs may be local paths or gs:// objects.
type PipelineRunJob struct {
	JobID string `json:"job_id"`

	// CustomersURI and TransactionsURI locate the raw CSV inputs.
	CustomersURI    string `json:"customers_uri"`
	TransactionsURI string `json:"transactions_uri"`

	// RunID is the warehouse run ledger entry, set once the worker
	// has started the run.
	RunID string `json:"run_id,omitempty"`

	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the failure detail for failed or retrying jobs.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is the minimal surface the queue needs from any job type.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *PipelineRunJob) GetID() string        { return j.JobID }
func (j *PipelineRunJob) GetType() JobType     { return JobTypePipelineRun }
func (j *PipelineRunJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs. Implementations may be in-memory or a real
// broker such as Cloud Tasks or Pub/Sub.
type Publisher interface {
	PublishPipelineRun(ctx context.Context, job *PipelineRunJob) error
	Close() error
}

// JobHandler processes one job. A returned error marks the job failed
// and eligible for retry.
type JobHandler func(ctx context.Context, job Job) error

// Consumer drains the queue, invoking the handler per job.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error

	// Stop waits for in-flight jobs before returning.
	Stop(ctx context.Context) error
}

// JobStore tracks job state so the API can answer status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *PipelineRunJob) error
	GetJob(ctx context.Context, jobID string) (*PipelineRunJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*PipelineRunJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}
