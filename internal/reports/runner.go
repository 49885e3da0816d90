// Package reports runs weekly report generation as background jobs, so the
// API can hand back a job id immediately and let the caller poll.
package reports

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"walletledger/internal/services"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

type Job struct {
	ID       string                  `json:"id"`
	Weeks    int                     `json:"weeks"`
	Status   Status                  `json:"status"`
	Result   []services.WeeklyReport `json:"result,omitempty"`
	Error    string                  `json:"error,omitempty"`
	Started  time.Time               `json:"started"`
	Finished *time.Time              `json:"finished,omitempty"`
}

type Generator interface {
	Weekly(ctx context.Context, weeks int) ([]services.WeeklyReport, error)
}

type Runner struct {
	mu        sync.RWMutex
	jobs      map[string]*Job
	generator Generator
	timeout   time.Duration
	logger    *zap.Logger
	wg        sync.WaitGroup
}

func NewRunner(generator Generator, timeout time.Duration, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		jobs:      make(map[string]*Job),
		generator: generator,
		timeout:   timeout,
		logger:    logger,
	}
}

// Enqueue starts report generation in the background and returns the job id.
func (r *Runner) Enqueue(weeks int) string {
	job := &Job{
		ID:      uuid.NewString(),
		Weeks:   weeks,
		Status:  StatusPending,
		Started: time.Now().UTC(),
	}
	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run(job.ID, weeks)
	return job.ID
}

func (r *Runner) Get(jobID string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Wait blocks until all enqueued jobs have finished. Used on shutdown and in
// tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(jobID string, weeks int) {
	defer r.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	result, err := r.generator.Weekly(ctx, weeks)
	finished := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	job := r.jobs[jobID]
	job.Finished = &finished
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
		r.logger.Error("report job failed", zap.String("job_id", jobID), zap.Error(err))
		return
	}
	job.Status = StatusCompleted
	job.Result = result
	r.logger.Info("report job completed",
		zap.String("job_id", jobID),
		zap.Int("weeks_with_activity", len(result)),
	)
}
