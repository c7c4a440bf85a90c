package domain

import "time"

// JobStatus represents the lifecycle state of a conversion job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// JobDocument is one document inside a batch conversion job.
type JobDocument struct {
	// Name is the caller-supplied document identifier (typically a filename)
	Name string `json:"name"`

	// Sections are the flattened text sections of the document
	Sections []DocumentSection `json:"sections"`

	// Outcome is set once the document's pipeline run finished.
	// Documents that were never started (batch cancelled) have a nil
	// outcome.
	Outcome *ConversionOutcome `json:"outcome,omitempty"`

	// Error holds the fatal per-document error, if any. A document fails
	// only on inputs that are not text at all; one failed document never
	// fails the batch.
	Error string `json:"error,omitempty"`
}

// ConversionJob aggregates the conversion of one or more documents.
// Each document's pipeline run is independent; workers may process them
// concurrently with no ordering guarantee.
type ConversionJob struct {
	ID     string    `json:"id"`
	TeamID string    `json:"team_id"`
	Status JobStatus `json:"status"`

	// Options applies to every document in the job
	Options ConversionOptions `json:"options"`

	Documents []*JobDocument `json:"documents"`

	// DocumentsDone counts documents with an outcome or a fatal error
	DocumentsDone int `json:"documents_done"`

	// Error holds the batch-level failure reason, if any
	Error string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewConversionJob creates a pending job for the given documents.
func NewConversionJob(teamID string, docs []*JobDocument, opts ConversionOptions) *ConversionJob {
	now := time.Now()
	return &ConversionJob{
		ID:        GenerateID(),
		TeamID:    teamID,
		Status:    JobStatusPending,
		Options:   opts.Normalize(),
		Documents: docs,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsFinished reports whether the job reached a terminal state.
func (j *ConversionJob) IsFinished() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// CanCancel reports whether the job may still be cancelled. A job that is
// already processing is allowed to finish its in-flight documents; only
// pending jobs are cancellable.
func (j *ConversionJob) CanCancel() bool {
	return j.Status == JobStatusPending
}

// MarkProcessing transitions the job to processing.
func (j *ConversionJob) MarkProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkCompleted transitions the job to completed.
func (j *ConversionJob) MarkCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkFailed transitions the job to failed with a reason.
func (j *ConversionJob) MarkFailed(reason string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.Error = reason
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkCancelled transitions the job to cancelled.
func (j *ConversionJob) MarkCancelled() {
	now := time.Now()
	j.Status = JobStatusCancelled
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// JobSummary is the list-view projection of a job.
type JobSummary struct {
	ID            string     `json:"id"`
	Status        JobStatus  `json:"status"`
	DocumentCount int        `json:"document_count"`
	DocumentsDone int        `json:"documents_done"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Summary returns the list-view projection of the job.
func (j *ConversionJob) Summary() *JobSummary {
	return &JobSummary{
		ID:            j.ID,
		Status:        j.Status,
		DocumentCount: len(j.Documents),
		DocumentsDone: j.DocumentsDone,
		CreatedAt:     j.CreatedAt,
		CompletedAt:   j.CompletedAt,
	}
}
