package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingExecutor records executed jobs and optionally fails them
type recordingExecutor struct {
	mu       sync.Mutex
	executed []*Job
	fail     error
	done     chan struct{}
}

func newRecordingExecutor(expected int) *recordingExecutor {
	return &recordingExecutor{done: make(chan struct{}, expected)}
}

func (e *recordingExecutor) Execute(_ context.Context, job *Job) error {
	e.mu.Lock()
	e.executed = append(e.executed, job)
	e.mu.Unlock()
	e.done <- struct{}{}
	return e.fail
}

func (e *recordingExecutor) waitFor(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-e.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for job %d of %d", i+1, n)
		}
	}
}

func (e *recordingExecutor) jobs() []*Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Job, len(e.executed))
	copy(out, e.executed)
	return out
}

func testSchedulerConfig() SchedulerConfig {
	cfg := DefaultSchedulerConfig()
	cfg.MaxConcurrentJobs = 2
	cfg.JobTimeout = time.Second
	cfg.RetryAttempts = 0
	return cfg
}

func TestJobLifecycle(t *testing.T) {
	orgID := uuid.New()

	t.Run("new job starts pending", func(t *testing.T) {
		job := NewJob(orgID, JobTypeOverdueSweep, time.Now(), 3)
		assert.Equal(t, JobStatusPending, job.Status)
		assert.Equal(t, orgID, job.OrgID)
		assert.Equal(t, 3, job.MaxRetries)
		assert.NotEqual(t, uuid.Nil, job.ID)
	})

	t.Run("complete records timestamp", func(t *testing.T) {
		job := NewJob(orgID, JobTypeOverdueSweep, time.Now(), 3)
		job.Start()
		assert.Equal(t, JobStatusRunning, job.Status)
		require.NotNil(t, job.StartedAt)

		job.Complete()
		assert.Equal(t, JobStatusSuccess, job.Status)
		require.NotNil(t, job.CompletedAt)
	})

	t.Run("failed job retries until exhausted", func(t *testing.T) {
		job := NewJob(orgID, JobTypeChargeExpiry, time.Now(), 2)
		job.Start()
		job.Fail("db down")
		assert.Equal(t, JobStatusFailed, job.Status)
		assert.Equal(t, "db down", job.Error)
		assert.True(t, job.ShouldRetry())

		job.ScheduleRetry(time.Minute)
		assert.Equal(t, JobStatusPending, job.Status)
		assert.Equal(t, 1, job.RetryCount)
		require.NotNil(t, job.NextRetryAt)

		job.Fail("db down")
		job.ScheduleRetry(time.Minute)
		job.Fail("db down")
		assert.False(t, job.ShouldRetry())
	})

	t.Run("generation job carries the billing period", func(t *testing.T) {
		start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
		job := NewInvoiceGenerationJob(orgID, start, end, 1)
		assert.Equal(t, JobTypeInvoiceGeneration, job.Type)
		assert.Equal(t, start, job.PeriodStart)
		assert.Equal(t, end, job.PeriodEnd)
	})
}

func TestSchedulerSubmit(t *testing.T) {
	t.Run("rejects jobs when not running", func(t *testing.T) {
		executor := newRecordingExecutor(0)
		s := NewScheduler(testSchedulerConfig(), executor, zap.NewNop())

		err := s.SubmitJob(NewJob(uuid.New(), JobTypeOverdueSweep, time.Now(), 0))
		assert.ErrorIs(t, err, ErrSchedulerNotRunning)
	})

	t.Run("executes submitted jobs", func(t *testing.T) {
		executor := newRecordingExecutor(1)
		s := NewScheduler(testSchedulerConfig(), executor, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		defer s.Stop(context.Background())

		job := NewJob(uuid.New(), JobTypeOverdueSweep, time.Now(), 0)
		require.NoError(t, s.SubmitJob(job))

		executor.waitFor(t, 1)
		executed := executor.jobs()
		require.Len(t, executed, 1)
		assert.Equal(t, job.ID, executed[0].ID)
	})

	t.Run("daily sweep submits both sweep jobs", func(t *testing.T) {
		executor := newRecordingExecutor(2)
		s := NewScheduler(testSchedulerConfig(), executor, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		defer s.Stop(context.Background())

		orgID := uuid.New()
		require.NoError(t, s.ScheduleDailySweep(orgID, time.Now()))

		executor.waitFor(t, 2)
		types := make(map[JobType]bool)
		for _, job := range executor.jobs() {
			assert.Equal(t, orgID, job.OrgID)
			types[job.Type] = true
		}
		assert.True(t, types[JobTypeOverdueSweep])
		assert.True(t, types[JobTypeChargeExpiry])
	})

	t.Run("start is idempotent", func(t *testing.T) {
		executor := newRecordingExecutor(0)
		s := NewScheduler(testSchedulerConfig(), executor, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Stop(context.Background()))
	})
}

func TestSchedulerStop(t *testing.T) {
	executor := newRecordingExecutor(1)
	s := NewScheduler(testSchedulerConfig(), executor, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.SubmitJob(NewJob(uuid.New(), JobTypeOverdueSweep, time.Now(), 0)))
	executor.waitFor(t, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	// Double stop is a no-op
	require.NoError(t, s.Stop(ctx))
}

func TestFailedJobIsNotRetriedWhenExhausted(t *testing.T) {
	executor := newRecordingExecutor(1)
	executor.fail = errors.New("boom")

	cfg := testSchedulerConfig()
	cfg.RetryAttempts = 0
	s := NewScheduler(cfg, executor, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	job := NewJob(uuid.New(), JobTypeOverdueSweep, time.Now(), cfg.RetryAttempts)
	require.NoError(t, s.SubmitJob(job))

	executor.waitFor(t, 1)
	assert.Len(t, executor.jobs(), 1)
}

func TestCurrentMonthPeriod(t *testing.T) {
	tests := []struct {
		name          string
		now           time.Time
		expectedStart time.Time
		expectedEnd   time.Time
	}{
		{
			name:          "mid-month",
			now:           time.Date(2026, 3, 15, 2, 0, 0, 0, time.UTC),
			expectedStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "february non-leap",
			now:           time.Date(2026, 2, 1, 2, 0, 0, 0, time.UTC),
			expectedStart: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "february leap year",
			now:           time.Date(2028, 2, 10, 2, 0, 0, 0, time.UTC),
			expectedStart: time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "december",
			now:           time.Date(2026, 12, 1, 2, 0, 0, 0, time.UTC),
			expectedStart: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CurrentMonthPeriod(tt.now)
			assert.Equal(t, tt.expectedStart, start)
			assert.Equal(t, tt.expectedEnd, end)
		})
	}
}
