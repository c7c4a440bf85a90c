package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
	"github.com/fairsailau/conganew/internal/core/ports/driving"
	"github.com/fairsailau/conganew/internal/core/services"
	"github.com/fairsailau/conganew/internal/report"
)

// Worker processes tasks from the task queue. Conversion jobs run the
// document pipeline per document; purge tasks delete expired jobs.
type Worker struct {
	taskQueue driven.TaskQueue
	jobs      driven.JobStore
	converter driving.ConversionService
	jobSvc    driving.JobService
	scheduler *services.Scheduler
	logger    *slog.Logger

	concurrency    int
	dequeueTimeout int // seconds

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds configuration for the worker.
type Config struct {
	TaskQueue driven.TaskQueue
	JobStore  driven.JobStore
	Converter driving.ConversionService
	JobSvc    driving.JobService
	Scheduler *services.Scheduler
	Logger    *slog.Logger

	// Concurrency is the number of concurrent task processors
	Concurrency int

	// DequeueTimeout is how many seconds to wait for a task before
	// checking the stop signal again
	DequeueTimeout int
}

// New creates a new task worker.
func New(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	dequeueTimeout := cfg.DequeueTimeout
	if dequeueTimeout <= 0 {
		dequeueTimeout = 5
	}

	return &Worker{
		taskQueue:      cfg.TaskQueue,
		jobs:           cfg.JobStore,
		converter:      cfg.Converter,
		jobSvc:         cfg.JobSvc,
		scheduler:      cfg.Scheduler,
		logger:         logger,
		concurrency:    concurrency,
		dequeueTimeout: dequeueTimeout,
	}
}

// Start begins the worker loop.
// It runs until Stop is called or the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"dequeue_timeout", w.dequeueTimeout,
	)

	if w.scheduler != nil {
		if err := w.scheduler.Start(ctx); err != nil {
			w.logger.Error("failed to start scheduler", "error", err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processLoop(ctx, workerID)
		}(i)
	}

	go func() {
		wg.Wait()
		close(w.doneCh)
	}()

	return nil
}

// Stop gracefully stops the worker. In-flight tasks finish first.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	if w.scheduler != nil {
		w.scheduler.Stop()
	}

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	<-w.doneCh
}

// processLoop is the main processing loop for one worker goroutine.
func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)
	logger.Info("worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker context cancelled")
			return
		case <-w.stopCh:
			logger.Info("worker stop signal received")
			return
		default:
		}

		task, err := w.taskQueue.DequeueWithTimeout(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Error("failed to dequeue task", "error", err)
			time.Sleep(time.Second) // Back off on error
			continue
		}

		if task == nil {
			continue
		}

		w.processTask(ctx, task, logger)
	}
}

// processTask dispatches a single task and acks or nacks it.
func (w *Worker) processTask(ctx context.Context, task *domain.Task, logger *slog.Logger) {
	logger = logger.With("task_id", task.ID, "task_type", task.Type, "team_id", task.TeamID)
	logger.Info("processing task")

	startTime := time.Now()
	var err error

	switch task.Type {
	case domain.TaskTypeConvertJob:
		err = w.handleConvertJob(ctx, task)
	case domain.TaskTypePurgeJobs:
		err = w.handlePurgeJobs(ctx, task)
	default:
		err = fmt.Errorf("unknown task type: %s", task.Type)
	}

	duration := time.Since(startTime)

	if err != nil {
		logger.Error("task failed",
			"duration", duration,
			"error", err,
		)

		if nackErr := w.taskQueue.Nack(ctx, task.ID, err.Error()); nackErr != nil {
			logger.Error("failed to nack task", "nack_error", nackErr)
		}
		return
	}

	logger.Info("task completed", "duration", duration)

	if ackErr := w.taskQueue.Ack(ctx, task.ID); ackErr != nil {
		logger.Error("failed to ack task", "ack_error", ackErr)
	}
}

// handleConvertJob runs the conversion pipeline over every document of a
// job. One failed document never fails the batch; only jobs whose task
// machinery breaks (store or enqueue errors) are retried.
func (w *Worker) handleConvertJob(ctx context.Context, task *domain.Task) error {
	jobID := task.JobID()
	if jobID == "" {
		return fmt.Errorf("job_id not found in task payload")
	}

	job, err := w.jobs.Get(ctx, jobID)
	if errors.Is(err, domain.ErrNotFound) {
		// Job deleted before the worker got to it
		w.logger.Warn("job gone before processing", "job_id", jobID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}

	if job.IsFinished() {
		// Cancelled while still queued
		return nil
	}

	job.MarkProcessing()
	if err := w.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}

	for _, doc := range job.Documents {
		if doc.Outcome != nil || doc.Error != "" {
			continue // already processed on a previous attempt
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		outcome, err := w.converter.ConvertDocument(ctx, job.TeamID, doc.Sections, job.Options)
		if err != nil {
			doc.Error = err.Error()
			w.logger.Warn("document conversion failed",
				"job_id", job.ID,
				"document", doc.Name,
				"error", err,
			)
		} else {
			doc.Outcome = outcome
			w.logger.Debug("document converted",
				"job_id", job.ID,
				"document", doc.Name,
				"summary", report.Summarize(outcome),
			)
		}

		job.DocumentsDone++
		if err := w.jobs.Save(ctx, job); err != nil {
			return fmt.Errorf("save job progress: %w", err)
		}
	}

	job.MarkCompleted()
	if err := w.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save completed job: %w", err)
	}

	w.logger.Info("job converted",
		"job_id", job.ID,
		"documents", len(job.Documents),
	)
	return nil
}

// handlePurgeJobs deletes finished jobs past the team's retention window.
func (w *Worker) handlePurgeJobs(ctx context.Context, task *domain.Task) error {
	n, err := w.jobSvc.Purge(ctx, task.TeamID)
	if err != nil {
		return err
	}
	if n > 0 {
		w.logger.Info("purge removed jobs", "team_id", task.TeamID, "count", n)
	}
	return nil
}

// Health reports worker liveness and queue reachability.
type Health struct {
	Running     bool   `json:"running"`
	QueueHealth bool   `json:"queue_health"`
	Error       string `json:"error,omitempty"`
}

// Health returns the health status of the worker.
func (w *Worker) Health(ctx context.Context) Health {
	w.mu.RLock()
	running := w.running
	w.mu.RUnlock()

	health := Health{
		Running: running,
	}

	if err := w.taskQueue.Ping(ctx); err != nil {
		health.QueueHealth = false
		health.Error = err.Error()
	} else {
		health.QueueHealth = true
	}

	return health
}
