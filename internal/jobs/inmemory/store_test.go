package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/banking-pipeline/internal/jobs"
)

func storedJob(id string, status jobs.JobStatus, createdAt time.Time) *jobs.PipelineRunJob {
	return &jobs.PipelineRunJob{
		JobID:     id,
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	job := storedJob("job-1", jobs.JobStatusPending, time.Now())
	require.NoError(t, store.SaveJob(ctx, job))

	got, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, job, got)

	// The store holds a copy, not the caller's pointer.
	job.Status = jobs.JobStatusFailed
	got, err = store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusPending, got.Status)
}

func TestStoreSaveRequiresID(t *testing.T) {
	err := NewStore().SaveJob(context.Background(), &jobs.PipelineRunJob{})
	assert.Error(t, err)
}

func TestStoreGetUnknownJob(t *testing.T) {
	_, err := NewStore().GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestStoreListJobs(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	base := time.Now()
	require.NoError(t, store.SaveJob(ctx, storedJob("job-1", jobs.JobStatusCompleted, base)))
	require.NoError(t, store.SaveJob(ctx, storedJob("job-2", jobs.JobStatusFailed, base.Add(time.Minute))))
	require.NoError(t, store.SaveJob(ctx, storedJob("job-3", jobs.JobStatusCompleted, base.Add(2*time.Minute))))

	all, err := store.ListJobs(ctx, jobs.JobFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "job-3", all[0].JobID)
	assert.Equal(t, "job-1", all[2].JobID)

	completed, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 2)
	assert.Equal(t, "job-3", completed[0].JobID)

	page, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "job-2", page[0].JobID)

	empty, err := store.ListJobs(ctx, jobs.JobFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStoreUpdateJobStatus(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.SaveJob(ctx, storedJob("job-1", jobs.JobStatusPending, time.Now())))

	require.NoError(t, store.UpdateJobStatus(ctx, "job-1", jobs.JobStatusFailed, "boom"))

	got, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)

	assert.ErrorIs(t, store.UpdateJobStatus(ctx, "missing", jobs.JobStatusFailed, ""), ErrJobNotFound)
}
