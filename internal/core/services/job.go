package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
	"github.com/fairsailau/conganew/internal/core/ports/driving"
)

// Ensure jobService implements JobService
var _ driving.JobService = (*jobService)(nil)

// jobService manages batch conversion jobs: persistence plus the task
// that hands the work to the worker pool.
type jobService struct {
	jobs     driven.JobStore
	queue    driven.TaskQueue
	settings driven.SettingsStore
	logger   *slog.Logger
}

// JobServiceConfig wires the job service.
type JobServiceConfig struct {
	JobStore      driven.JobStore
	TaskQueue     driven.TaskQueue
	SettingsStore driven.SettingsStore
	Logger        *slog.Logger
}

// NewJobService creates a new JobService
func NewJobService(cfg JobServiceConfig) driving.JobService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &jobService{
		jobs:     cfg.JobStore,
		queue:    cfg.TaskQueue,
		settings: cfg.SettingsStore,
		logger:   logger,
	}
}

// Create persists a pending job and enqueues its conversion task.
func (s *jobService) Create(ctx context.Context, teamID string, docs []*domain.JobDocument, opts domain.ConversionOptions) (*domain.ConversionJob, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: job needs at least one document", domain.ErrInvalidInput)
	}
	for _, doc := range docs {
		if doc.Name == "" {
			return nil, fmt.Errorf("%w: document without a name", domain.ErrInvalidInput)
		}
	}

	job := domain.NewConversionJob(teamID, docs, opts)
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}

	if err := s.queue.Enqueue(ctx, domain.NewConvertJobTask(teamID, job.ID)); err != nil {
		job.MarkFailed("could not enqueue conversion task")
		if saveErr := s.jobs.Save(ctx, job); saveErr != nil {
			s.logger.Error("failed to persist job failure", "job_id", job.ID, "error", saveErr)
		}
		return nil, fmt.Errorf("enqueue job task: %w", err)
	}

	s.logger.Info("job created", "job_id", job.ID, "team_id", teamID, "documents", len(docs))
	return job, nil
}

// Get retrieves a job, scoped to the caller's team.
func (s *jobService) Get(ctx context.Context, teamID, id string) (*domain.ConversionJob, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.TeamID != teamID {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

// List retrieves job summaries for a team, newest first.
func (s *jobService) List(ctx context.Context, teamID string, limit, offset int) ([]*domain.JobSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.jobs.List(ctx, teamID, limit, offset)
}

// Cancel cancels a pending job. A job already processing finishes its
// in-flight documents instead of leaving partial artifacts.
func (s *jobService) Cancel(ctx context.Context, teamID, id string) error {
	job, err := s.Get(ctx, teamID, id)
	if err != nil {
		return err
	}
	if !job.CanCancel() {
		return domain.ErrJobNotCancellable
	}

	job.MarkCancelled()
	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save cancelled job: %w", err)
	}
	s.logger.Info("job cancelled", "job_id", id)
	return nil
}

// Delete removes a finished job.
func (s *jobService) Delete(ctx context.Context, teamID, id string) error {
	job, err := s.Get(ctx, teamID, id)
	if err != nil {
		return err
	}
	if !job.IsFinished() {
		return domain.ErrJobInProgress
	}
	return s.jobs.Delete(ctx, id)
}

// Purge deletes finished jobs older than the team's retention window.
func (s *jobService) Purge(ctx context.Context, teamID string) (int, error) {
	retention := domain.DefaultSettings(teamID).JobRetentionHours
	if s.settings != nil {
		if settings, err := s.settings.GetSettings(ctx, teamID); err == nil && settings.JobRetentionHours > 0 {
			retention = settings.JobRetentionHours
		}
	}

	cutoff := time.Now().Add(-time.Duration(retention) * time.Hour)
	n, err := s.jobs.PurgeFinished(ctx, teamID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge jobs: %w", err)
	}
	if n > 0 {
		s.logger.Info("purged finished jobs", "team_id", teamID, "count", n)
	}
	return n, nil
}
