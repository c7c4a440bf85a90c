package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven/mocks"
)

func testDocs() []*domain.JobDocument {
	return []*domain.JobDocument{
		{Name: "contract.docx", Sections: []domain.DocumentSection{{Text: "{!Name}"}}},
	}
}

func TestJobCreate(t *testing.T) {
	store := &mocks.JobStore{}
	queue := &mocks.TaskQueue{}
	svc := NewJobService(JobServiceConfig{JobStore: store, TaskQueue: queue})

	job, err := svc.Create(context.Background(), "team-1", testDocs(), domain.DefaultConversionOptions())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if job.Status != domain.JobStatusPending {
		t.Errorf("status = %s, want pending", job.Status)
	}
	if len(store.Saved) != 1 {
		t.Fatalf("saved %d times, want 1", len(store.Saved))
	}
	if len(queue.Enqueued) != 1 {
		t.Fatalf("enqueued %d tasks, want 1", len(queue.Enqueued))
	}
	task := queue.Enqueued[0]
	if task.Type != domain.TaskTypeConvertJob || task.JobID() != job.ID {
		t.Errorf("task = %s job %s, want convert_job for %s", task.Type, task.JobID(), job.ID)
	}
}

func TestJobCreateNoDocuments(t *testing.T) {
	svc := NewJobService(JobServiceConfig{JobStore: &mocks.JobStore{}, TaskQueue: &mocks.TaskQueue{}})

	if _, err := svc.Create(context.Background(), "team-1", nil, domain.DefaultConversionOptions()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestJobCreateEnqueueFailure(t *testing.T) {
	store := &mocks.JobStore{}
	queue := &mocks.TaskQueue{
		EnqueueFn: func(ctx context.Context, task *domain.Task) error {
			return errors.New("queue down")
		},
	}
	svc := NewJobService(JobServiceConfig{JobStore: store, TaskQueue: queue})

	_, err := svc.Create(context.Background(), "team-1", testDocs(), domain.DefaultConversionOptions())
	if err == nil {
		t.Fatal("Create should fail when enqueue fails")
	}

	// The job is persisted as failed, not left pending forever.
	if len(store.Saved) != 2 {
		t.Fatalf("saved %d times, want 2 (pending then failed)", len(store.Saved))
	}
	if store.Saved[1].Status != domain.JobStatusFailed {
		t.Errorf("final status = %s, want failed", store.Saved[1].Status)
	}
}

func TestJobGetScopedToTeam(t *testing.T) {
	job := domain.NewConversionJob("team-1", testDocs(), domain.DefaultConversionOptions())
	store := &mocks.JobStore{
		GetFn: func(ctx context.Context, id string) (*domain.ConversionJob, error) {
			return job, nil
		},
	}
	svc := NewJobService(JobServiceConfig{JobStore: store, TaskQueue: &mocks.TaskQueue{}})

	if _, err := svc.Get(context.Background(), "team-1", job.ID); err != nil {
		t.Errorf("same-team Get: %v", err)
	}
	if _, err := svc.Get(context.Background(), "team-2", job.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-team Get error = %v, want ErrNotFound", err)
	}
}

func TestJobCancel(t *testing.T) {
	job := domain.NewConversionJob("team-1", testDocs(), domain.DefaultConversionOptions())
	store := &mocks.JobStore{
		GetFn: func(ctx context.Context, id string) (*domain.ConversionJob, error) {
			return job, nil
		},
	}
	svc := NewJobService(JobServiceConfig{JobStore: store, TaskQueue: &mocks.TaskQueue{}})

	if err := svc.Cancel(context.Background(), "team-1", job.ID); err != nil {
		t.Fatalf("Cancel pending job: %v", err)
	}
	if job.Status != domain.JobStatusCancelled {
		t.Errorf("status = %s, want cancelled", job.Status)
	}
}

func TestJobCancelProcessing(t *testing.T) {
	job := domain.NewConversionJob("team-1", testDocs(), domain.DefaultConversionOptions())
	job.MarkProcessing()
	store := &mocks.JobStore{
		GetFn: func(ctx context.Context, id string) (*domain.ConversionJob, error) {
			return job, nil
		},
	}
	svc := NewJobService(JobServiceConfig{JobStore: store, TaskQueue: &mocks.TaskQueue{}})

	// A processing job finishes its in-flight documents.
	if err := svc.Cancel(context.Background(), "team-1", job.ID); !errors.Is(err, domain.ErrJobNotCancellable) {
		t.Errorf("error = %v, want ErrJobNotCancellable", err)
	}
}

func TestJobDeleteInProgress(t *testing.T) {
	job := domain.NewConversionJob("team-1", testDocs(), domain.DefaultConversionOptions())
	job.MarkProcessing()
	store := &mocks.JobStore{
		GetFn: func(ctx context.Context, id string) (*domain.ConversionJob, error) {
			return job, nil
		},
	}
	svc := NewJobService(JobServiceConfig{JobStore: store, TaskQueue: &mocks.TaskQueue{}})

	if err := svc.Delete(context.Background(), "team-1", job.ID); !errors.Is(err, domain.ErrJobInProgress) {
		t.Errorf("error = %v, want ErrJobInProgress", err)
	}
}

func TestJobPurgeUsesRetention(t *testing.T) {
	var gotCutoff time.Time
	store := &mocks.JobStore{
		PurgeFinishedFn: func(ctx context.Context, teamID string, olderThan time.Time) (int, error) {
			gotCutoff = olderThan
			return 3, nil
		},
	}
	settings := &mocks.SettingsStore{
		GetSettingsFn: func(ctx context.Context, teamID string) (*domain.Settings, error) {
			s := domain.DefaultSettings(teamID)
			s.JobRetentionHours = 48
			return s, nil
		},
	}
	svc := NewJobService(JobServiceConfig{JobStore: store, TaskQueue: &mocks.TaskQueue{}, SettingsStore: settings})

	n, err := svc.Purge(context.Background(), "team-1")
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 3 {
		t.Errorf("purged = %d, want 3", n)
	}

	wantCutoff := time.Now().Add(-48 * time.Hour)
	if gotCutoff.Before(wantCutoff.Add(-time.Minute)) || gotCutoff.After(wantCutoff.Add(time.Minute)) {
		t.Errorf("cutoff = %v, want about %v", gotCutoff, wantCutoff)
	}
}
