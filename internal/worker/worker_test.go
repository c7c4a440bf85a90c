package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven/mocks"
	"github.com/fairsailau/conganew/internal/grammar"
)

// mockConverter implements driving.ConversionService for testing
type mockConverter struct {
	mu        sync.Mutex
	convertFn func(teamID string, sections []domain.DocumentSection) (*domain.ConversionOutcome, error)
	converted int
}

func (m *mockConverter) ConvertDocument(ctx context.Context, teamID string, sections []domain.DocumentSection, opts domain.ConversionOptions) (*domain.ConversionOutcome, error) {
	m.mu.Lock()
	m.converted++
	m.mu.Unlock()
	if m.convertFn != nil {
		return m.convertFn(teamID, sections)
	}
	return &domain.ConversionOutcome{Report: &domain.ValidationReport{}}, nil
}

func (m *mockConverter) ListRules() []*grammar.Rule { return nil }

func (m *mockConverter) AddRule(rule *grammar.Rule) error { return nil }

// mockJobService implements the Purge path of driving.JobService
type mockJobService struct {
	purgeFn func(teamID string) (int, error)
	purged  []string
}

func (m *mockJobService) Create(ctx context.Context, teamID string, docs []*domain.JobDocument, opts domain.ConversionOptions) (*domain.ConversionJob, error) {
	return nil, errors.New("not implemented")
}

func (m *mockJobService) Get(ctx context.Context, teamID, id string) (*domain.ConversionJob, error) {
	return nil, domain.ErrNotFound
}

func (m *mockJobService) List(ctx context.Context, teamID string, limit, offset int) ([]*domain.JobSummary, error) {
	return nil, nil
}

func (m *mockJobService) Cancel(ctx context.Context, teamID, id string) error { return nil }

func (m *mockJobService) Delete(ctx context.Context, teamID, id string) error { return nil }

func (m *mockJobService) Purge(ctx context.Context, teamID string) (int, error) {
	m.purged = append(m.purged, teamID)
	if m.purgeFn != nil {
		return m.purgeFn(teamID)
	}
	return 0, nil
}

func testJob(teamID string, docCount int) *domain.ConversionJob {
	docs := make([]*domain.JobDocument, 0, docCount)
	for i := 0; i < docCount; i++ {
		docs = append(docs, &domain.JobDocument{
			Name:     "doc",
			Sections: []domain.DocumentSection{{Text: "hello {{Name}}"}},
		})
	}
	return domain.NewConversionJob(teamID, docs, domain.DefaultConversionOptions())
}

func newTestWorker(queue *mocks.TaskQueue, jobs *mocks.JobStore, conv *mockConverter, jobSvc *mockJobService) *Worker {
	return New(Config{
		TaskQueue: queue,
		JobStore:  jobs,
		Converter: conv,
		JobSvc:    jobSvc,
	})
}

func TestNewDefaults(t *testing.T) {
	w := New(Config{TaskQueue: &mocks.TaskQueue{}})

	if w.concurrency != 1 {
		t.Errorf("expected default concurrency 1, got %d", w.concurrency)
	}
	if w.dequeueTimeout != 5 {
		t.Errorf("expected default dequeue timeout 5, got %d", w.dequeueTimeout)
	}
}

func TestHandleConvertJob(t *testing.T) {
	job := testJob("team-1", 3)
	jobs := &mocks.JobStore{
		GetFn: func(ctx context.Context, id string) (*domain.ConversionJob, error) {
			if id == job.ID {
				return job, nil
			}
			return nil, domain.ErrNotFound
		},
	}
	queue := &mocks.TaskQueue{}
	conv := &mockConverter{}
	w := newTestWorker(queue, jobs, conv, &mockJobService{})

	task := domain.NewConvertJobTask("team-1", job.ID)
	if err := w.handleConvertJob(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conv.converted != 3 {
		t.Errorf("expected 3 documents converted, got %d", conv.converted)
	}
	if job.Status != domain.JobStatusCompleted {
		t.Errorf("expected completed status, got %s", job.Status)
	}
	if job.DocumentsDone != 3 {
		t.Errorf("expected 3 documents done, got %d", job.DocumentsDone)
	}
	for _, doc := range job.Documents {
		if doc.Outcome == nil {
			t.Error("expected every document to carry an outcome")
		}
	}
}

func TestHandleConvertJobDocumentFailure(t *testing.T) {
	job := testJob("team-1", 2)
	jobs := &mocks.JobStore{
		GetFn: func(ctx context.Context, id string) (*domain.ConversionJob, error) {
			return job, nil
		},
	}
	calls := 0
	conv := &mockConverter{
		convertFn: func(teamID string, sections []domain.DocumentSection) (*domain.ConversionOutcome, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("binary input")
			}
			return &domain.ConversionOutcome{Report: &domain.ValidationReport{}}, nil
		},
	}
	w := newTestWorker(&mocks.TaskQueue{}, jobs, conv, &mockJobService{})

	task := domain.NewConvertJobTask("team-1", job.ID)
	if err := w.handleConvertJob(context.Background(), task); err != nil {
		t.Fatalf("one failed document must not fail the batch: %v", err)
	}

	if job.Status != domain.JobStatusCompleted {
		t.Errorf("expected completed status, got %s", job.Status)
	}
	if job.Documents[0].Error == "" {
		t.Error("expected first document to record its error")
	}
	if job.Documents[1].Outcome == nil {
		t.Error("expected second document to have an outcome")
	}
	if job.DocumentsDone != 2 {
		t.Errorf("expected 2 documents done, got %d", job.DocumentsDone)
	}
}

func TestHandleConvertJobMissingJob(t *testing.T) {
	jobs := &mocks.JobStore{}
	w := newTestWorker(&mocks.TaskQueue{}, jobs, &mockConverter{}, &mockJobService{})

	task := domain.NewConvertJobTask("team-1", "gone")
	if err := w.handleConvertJob(context.Background(), task); err != nil {
		t.Errorf("deleted job should not be an error: %v", err)
	}
}

func TestHandleConvertJobMissingPayload(t *testing.T) {
	w := newTestWorker(&mocks.TaskQueue{}, &mocks.JobStore{}, &mockConverter{}, &mockJobService{})

	task := domain.NewTask(domain.TaskTypeConvertJob, "team-1", nil)
	if err := w.handleConvertJob(context.Background(), task); err == nil {
		t.Error("expected error for task without job_id")
	}
}

func TestHandleConvertJobCancelledJob(t *testing.T) {
	job := testJob("team-1", 2)
	job.MarkCancelled()
	jobs := &mocks.JobStore{
		GetFn: func(ctx context.Context, id string) (*domain.ConversionJob, error) {
			return job, nil
		},
	}
	conv := &mockConverter{}
	w := newTestWorker(&mocks.TaskQueue{}, jobs, conv, &mockJobService{})

	task := domain.NewConvertJobTask("team-1", job.ID)
	if err := w.handleConvertJob(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conv.converted != 0 {
		t.Errorf("expected no conversions for cancelled job, got %d", conv.converted)
	}
	if job.Status != domain.JobStatusCancelled {
		t.Errorf("expected cancelled status preserved, got %s", job.Status)
	}
}

func TestHandleConvertJobSkipsProcessedDocuments(t *testing.T) {
	job := testJob("team-1", 2)
	job.Documents[0].Outcome = &domain.ConversionOutcome{Report: &domain.ValidationReport{}}
	job.DocumentsDone = 1
	jobs := &mocks.JobStore{
		GetFn: func(ctx context.Context, id string) (*domain.ConversionJob, error) {
			return job, nil
		},
	}
	conv := &mockConverter{}
	w := newTestWorker(&mocks.TaskQueue{}, jobs, conv, &mockJobService{})

	task := domain.NewConvertJobTask("team-1", job.ID)
	if err := w.handleConvertJob(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Retried task only converts the remaining document
	if conv.converted != 1 {
		t.Errorf("expected 1 document converted, got %d", conv.converted)
	}
	if job.DocumentsDone != 2 {
		t.Errorf("expected 2 documents done, got %d", job.DocumentsDone)
	}
}

func TestProcessTaskAcks(t *testing.T) {
	job := testJob("team-1", 1)
	jobs := &mocks.JobStore{
		GetFn: func(ctx context.Context, id string) (*domain.ConversionJob, error) {
			return job, nil
		},
	}
	queue := &mocks.TaskQueue{}
	w := newTestWorker(queue, jobs, &mockConverter{}, &mockJobService{})

	task := domain.NewConvertJobTask("team-1", job.ID)
	w.processTask(context.Background(), task, w.logger)

	if len(queue.Acked) != 1 || queue.Acked[0] != task.ID {
		t.Errorf("expected task acked, got %v", queue.Acked)
	}
	if len(queue.Nacked) != 0 {
		t.Errorf("expected no nacks, got %v", queue.Nacked)
	}
}

func TestProcessTaskNacksOnError(t *testing.T) {
	jobs := &mocks.JobStore{
		GetFn: func(ctx context.Context, id string) (*domain.ConversionJob, error) {
			return nil, errors.New("store down")
		},
	}
	queue := &mocks.TaskQueue{}
	w := newTestWorker(queue, jobs, &mockConverter{}, &mockJobService{})

	task := domain.NewConvertJobTask("team-1", "job-1")
	w.processTask(context.Background(), task, w.logger)

	if len(queue.Nacked) != 1 || queue.Nacked[0] != task.ID {
		t.Errorf("expected task nacked, got %v", queue.Nacked)
	}
}

func TestProcessTaskUnknownType(t *testing.T) {
	queue := &mocks.TaskQueue{}
	w := newTestWorker(queue, &mocks.JobStore{}, &mockConverter{}, &mockJobService{})

	task := domain.NewTask("bogus", "team-1", nil)
	w.processTask(context.Background(), task, w.logger)

	if len(queue.Nacked) != 1 {
		t.Errorf("expected unknown task type to be nacked, got %v", queue.Nacked)
	}
}

func TestHandlePurgeJobs(t *testing.T) {
	jobSvc := &mockJobService{
		purgeFn: func(teamID string) (int, error) { return 4, nil },
	}
	w := newTestWorker(&mocks.TaskQueue{}, &mocks.JobStore{}, &mockConverter{}, jobSvc)

	task := domain.NewPurgeJobsTask("team-1")
	if err := w.handlePurgeJobs(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(jobSvc.purged) != 1 || jobSvc.purged[0] != "team-1" {
		t.Errorf("expected purge for team-1, got %v", jobSvc.purged)
	}
}

func TestStartStop(t *testing.T) {
	job := testJob("team-1", 1)
	jobs := &mocks.JobStore{
		GetFn: func(ctx context.Context, id string) (*domain.ConversionJob, error) {
			return job, nil
		},
	}
	acked := make(chan string, 1)
	queue := &mocks.TaskQueue{
		AckFn: func(ctx context.Context, taskID string) error {
			acked <- taskID
			return nil
		},
	}
	task := domain.NewConvertJobTask("team-1", job.ID)
	_ = queue.Enqueue(context.Background(), task)

	w := newTestWorker(queue, jobs, &mockConverter{}, &mockJobService{})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Starting again is a no-op
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error on double start: %v", err)
	}

	select {
	case id := <-acked:
		if id != task.ID {
			t.Errorf("expected ack for %s, got %s", task.ID, id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for task to be processed")
	}

	w.Stop()
	w.Stop() // idempotent

	health := w.Health(context.Background())
	if health.Running {
		t.Error("expected worker not running after stop")
	}
	if !health.QueueHealth {
		t.Error("expected healthy queue")
	}
}
