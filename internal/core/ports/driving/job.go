package driving

import (
	"context"

	"github.com/fairsailau/conganew/internal/core/domain"
)

// JobService manages batch conversion jobs.
type JobService interface {
	// Create persists a pending job and enqueues its conversion task
	Create(ctx context.Context, teamID string, docs []*domain.JobDocument, opts domain.ConversionOptions) (*domain.ConversionJob, error)

	// Get retrieves a job with its documents and outcomes
	Get(ctx context.Context, teamID, id string) (*domain.ConversionJob, error)

	// List retrieves job summaries for a team, newest first
	List(ctx context.Context, teamID string, limit, offset int) ([]*domain.JobSummary, error)

	// Cancel cancels a pending job. Processing jobs finish their in-flight
	// documents and cannot be cancelled.
	Cancel(ctx context.Context, teamID, id string) error

	// Delete removes a finished job
	Delete(ctx context.Context, teamID, id string) error

	// Purge deletes finished jobs older than the team's retention window
	Purge(ctx context.Context, teamID string) (int, error)
}
