package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.JobStore = (*JobStore)(nil)

// JobStore implements driven.JobStore using PostgreSQL. Documents and
// their outcomes are stored as one JSONB blob per job; jobs are small
// enough that partial reads are not worth the schema complexity.
type JobStore struct {
	db *DB
}

// NewJobStore creates a new JobStore
func NewJobStore(db *DB) *JobStore {
	return &JobStore{db: db}
}

// Save creates or updates a job
func (s *JobStore) Save(ctx context.Context, job *domain.ConversionJob) error {
	options, err := json.Marshal(job.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	documents, err := json.Marshal(job.Documents)
	if err != nil {
		return fmt.Errorf("marshal documents: %w", err)
	}

	query := `
		INSERT INTO jobs (id, team_id, status, options, documents, documents_done,
						  error, created_at, updated_at, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			documents = EXCLUDED.documents,
			documents_done = EXCLUDED.documents_done,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at
	`

	_, err = s.db.ExecContext(ctx, query,
		job.ID,
		job.TeamID,
		string(job.Status),
		options,
		documents,
		job.DocumentsDone,
		job.Error,
		job.CreatedAt,
		job.UpdatedAt,
		NullTime(job.StartedAt),
		NullTime(job.CompletedAt),
	)
	return err
}

// Get retrieves a job by ID
func (s *JobStore) Get(ctx context.Context, id string) (*domain.ConversionJob, error) {
	query := `
		SELECT id, team_id, status, options, documents, documents_done,
			   error, created_at, updated_at, started_at, completed_at
		FROM jobs
		WHERE id = $1
	`

	var job domain.ConversionJob
	var options, documents []byte
	var startedAt, completedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.TeamID,
		&job.Status,
		&options,
		&documents,
		&job.DocumentsDone,
		&job.Error,
		&job.CreatedAt,
		&job.UpdatedAt,
		&startedAt,
		&completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(options, &job.Options); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}
	if err := json.Unmarshal(documents, &job.Documents); err != nil {
		return nil, fmt.Errorf("unmarshal documents: %w", err)
	}
	job.StartedAt = TimePtr(startedAt)
	job.CompletedAt = TimePtr(completedAt)

	return &job, nil
}

// List retrieves job summaries for a team, newest first
func (s *JobStore) List(ctx context.Context, teamID string, limit, offset int) ([]*domain.JobSummary, error) {
	query := `
		SELECT id, status, jsonb_array_length(documents), documents_done, created_at, completed_at
		FROM jobs
		WHERE team_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, teamID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*domain.JobSummary
	for rows.Next() {
		var summary domain.JobSummary
		var completedAt sql.NullTime

		err := rows.Scan(
			&summary.ID,
			&summary.Status,
			&summary.DocumentCount,
			&summary.DocumentsDone,
			&summary.CreatedAt,
			&completedAt,
		)
		if err != nil {
			return nil, err
		}

		summary.CompletedAt = TimePtr(completedAt)
		summaries = append(summaries, &summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Delete deletes a job
func (s *JobStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PurgeFinished deletes finished jobs older than the cutoff
func (s *JobStore) PurgeFinished(ctx context.Context, teamID string, olderThan time.Time) (int, error) {
	query := `
		DELETE FROM jobs
		WHERE team_id = $1
		  AND status IN ('completed', 'failed', 'cancelled')
		  AND created_at < $2
	`

	result, err := s.db.ExecContext(ctx, query, teamID, olderThan)
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	return int(n), err
}

// Ping checks store health
func (s *JobStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
