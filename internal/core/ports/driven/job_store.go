package driven

import (
	"context"
	"time"

	"github.com/fairsailau/conganew/internal/core/domain"
)

// JobStore handles conversion job persistence (PostgreSQL)
type JobStore interface {
	// Save creates or updates a job, documents and outcomes included
	Save(ctx context.Context, job *domain.ConversionJob) error

	// Get retrieves a job by ID
	Get(ctx context.Context, id string) (*domain.ConversionJob, error)

	// List retrieves job summaries for a team, newest first
	List(ctx context.Context, teamID string, limit, offset int) ([]*domain.JobSummary, error)

	// Delete deletes a job
	Delete(ctx context.Context, id string) error

	// PurgeFinished deletes finished jobs older than the cutoff and
	// returns how many were removed
	PurgeFinished(ctx context.Context, teamID string, olderThan time.Time) (int, error)

	// Ping checks store health
	Ping(ctx context.Context) error
}
