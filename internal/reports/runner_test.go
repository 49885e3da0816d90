package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletledger/internal/services"
)

type stubGenerator struct {
	reports []services.WeeklyReport
	err     error
	delay   time.Duration
}

func (g *stubGenerator) Weekly(ctx context.Context, weeks int) ([]services.WeeklyReport, error) {
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.reports, g.err
}

func TestRunnerCompletesJob(t *testing.T) {
	gen := &stubGenerator{
		reports: []services.WeeklyReport{{TotalTransactionsCount: 3}},
	}
	runner := NewRunner(gen, time.Second, nil)

	jobID := runner.Enqueue(4)
	require.NotEmpty(t, jobID)
	runner.Wait()

	job, ok := runner.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, job.Status)
	assert.Equal(t, 4, job.Weeks)
	require.Len(t, job.Result, 1)
	assert.Equal(t, 3, job.Result[0].TotalTransactionsCount)
	assert.Empty(t, job.Error)
	require.NotNil(t, job.Finished)
}

func TestRunnerRecordsFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("rates unavailable")}
	runner := NewRunner(gen, time.Second, nil)

	jobID := runner.Enqueue(2)
	runner.Wait()

	job, ok := runner.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Equal(t, "rates unavailable", job.Error)
	assert.Nil(t, job.Result)
}

func TestRunnerTimesOutSlowJob(t *testing.T) {
	gen := &stubGenerator{delay: time.Second}
	runner := NewRunner(gen, 10*time.Millisecond, nil)

	jobID := runner.Enqueue(1)
	runner.Wait()

	job, ok := runner.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Contains(t, job.Error, "context deadline exceeded")
}

func TestRunnerUnknownJob(t *testing.T) {
	runner := NewRunner(&stubGenerator{}, time.Second, nil)

	_, ok := runner.Get("no-such-job")
	assert.False(t, ok)
}

func TestRunnerTracksConcurrentJobs(t *testing.T) {
	gen := &stubGenerator{reports: []services.WeeklyReport{}}
	runner := NewRunner(gen, time.Second, nil)

	first := runner.Enqueue(1)
	second := runner.Enqueue(2)
	require.NotEqual(t, first, second)
	runner.Wait()

	for _, id := range []string{first, second} {
		job, ok := runner.Get(id)
		require.True(t, ok)
		assert.Equal(t, StatusCompleted, job.Status)
	}
}
