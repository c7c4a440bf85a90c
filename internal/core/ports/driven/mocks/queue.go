package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
)

// TaskQueue is an in-memory mock of the task queue port. The default
// behavior is a working FIFO queue; function fields override per-method.
type TaskQueue struct {
	mu    sync.Mutex
	tasks []*domain.Task

	EnqueueFn func(ctx context.Context, task *domain.Task) error
	DequeueFn func(ctx context.Context) (*domain.Task, error)
	AckFn     func(ctx context.Context, taskID string) error
	NackFn    func(ctx context.Context, taskID string, reason string) error

	Enqueued []*domain.Task
	Acked    []string
	Nacked   []string
}

var _ driven.TaskQueue = (*TaskQueue)(nil)

func (m *TaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	m.Enqueued = append(m.Enqueued, task)
	m.mu.Unlock()
	if m.EnqueueFn != nil {
		return m.EnqueueFn(ctx, task)
	}
	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()
	return nil
}

func (m *TaskQueue) EnqueueBatch(ctx context.Context, tasks []*domain.Task) error {
	for _, t := range tasks {
		if err := m.Enqueue(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (m *TaskQueue) Dequeue(ctx context.Context) (*domain.Task, error) {
	if m.DequeueFn != nil {
		return m.DequeueFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tasks) == 0 {
		return nil, nil
	}
	task := m.tasks[0]
	m.tasks = m.tasks[1:]
	task.MarkProcessing()
	return task, nil
}

func (m *TaskQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	return m.Dequeue(ctx)
}

func (m *TaskQueue) Ack(ctx context.Context, taskID string) error {
	m.mu.Lock()
	m.Acked = append(m.Acked, taskID)
	m.mu.Unlock()
	if m.AckFn != nil {
		return m.AckFn(ctx, taskID)
	}
	return nil
}

func (m *TaskQueue) Nack(ctx context.Context, taskID string, reason string) error {
	m.mu.Lock()
	m.Nacked = append(m.Nacked, taskID)
	m.mu.Unlock()
	if m.NackFn != nil {
		return m.NackFn(ctx, taskID, reason)
	}
	return nil
}

func (m *TaskQueue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *TaskQueue) ListTasks(ctx context.Context, filter driven.TaskFilter) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Task, len(m.tasks))
	copy(out, m.tasks)
	return out, nil
}

func (m *TaskQueue) CancelTask(ctx context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tasks {
		if t.ID == taskID {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *TaskQueue) PurgeTasks(ctx context.Context, olderThan int) (int, error) {
	return 0, nil
}

func (m *TaskQueue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &driven.QueueStats{PendingCount: int64(len(m.tasks))}, nil
}

func (m *TaskQueue) Ping(ctx context.Context) error { return nil }

func (m *TaskQueue) Close() error { return nil }

// DistributedLock is a mock lock that always acquires unless told otherwise.
type DistributedLock struct {
	AcquireFn func(ctx context.Context, name string, ttl time.Duration) (bool, error)

	Acquired []string
	Released []string
}

var _ driven.DistributedLock = (*DistributedLock)(nil)

func (m *DistributedLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	m.Acquired = append(m.Acquired, name)
	if m.AcquireFn != nil {
		return m.AcquireFn(ctx, name, ttl)
	}
	return true, nil
}

func (m *DistributedLock) Release(ctx context.Context, name string) error {
	m.Released = append(m.Released, name)
	return nil
}

func (m *DistributedLock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	return nil
}

func (m *DistributedLock) Ping(ctx context.Context) error { return nil }

// SchedulerStore is an in-memory mock of the scheduler store port.
type SchedulerStore struct {
	mu    sync.Mutex
	tasks map[string]*domain.ScheduledTask

	GetDueFn func(ctx context.Context) ([]*domain.ScheduledTask, error)
}

var _ driven.SchedulerStore = (*SchedulerStore)(nil)

func (m *SchedulerStore) GetScheduledTask(ctx context.Context, id string) (*domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (m *SchedulerStore) ListScheduledTasks(ctx context.Context, teamID string) ([]*domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ScheduledTask
	for _, t := range m.tasks {
		if t.TeamID == teamID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *SchedulerStore) SaveScheduledTask(ctx context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tasks == nil {
		m.tasks = make(map[string]*domain.ScheduledTask)
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *SchedulerStore) DeleteScheduledTask(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return nil
}

func (m *SchedulerStore) GetDueScheduledTasks(ctx context.Context) ([]*domain.ScheduledTask, error) {
	if m.GetDueFn != nil {
		return m.GetDueFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*domain.ScheduledTask
	for _, t := range m.tasks {
		if t.IsDue() {
			due = append(due, t)
		}
	}
	return due, nil
}

func (m *SchedulerStore) UpdateLastRun(ctx context.Context, id string, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.UpdateNextRun()
		t.LastError = lastError
	}
	return nil
}
