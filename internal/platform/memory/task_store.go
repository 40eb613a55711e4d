package memory

import (
	"bytes"
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// TaskStore implements store.TaskStore in memory.
type TaskStore struct {
	mu     sync.RWMutex
	tasks  map[uuid.UUID]*domain.Task
	logger *slog.Logger
}

// NewTaskStore returns an empty task store.
func NewTaskStore(logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		tasks:  make(map[uuid.UUID]*domain.Task),
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var (
	_ store.TaskStore = (*TaskStore)(nil)
	_ store.Pinger    = (*TaskStore)(nil)
)

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return store.NewStoreError("task", "create", "duplicate task id", store.ErrDuplicate)
	}
	s.tasks[task.ID] = cloneTask(task)

	logger.FromContextOrDefault(ctx, s.logger).Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// List implements store.TaskStore.List
func (s *TaskStore) List(
	_ context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
	page domain.Page,
) ([]*domain.Task, int64, error) {
	s.mu.RLock()
	matched := make([]*domain.Task, 0)
	for _, t := range s.tasks {
		if t.UserID == ownerID && filter.Matches(t) {
			matched = append(matched, cloneTask(t))
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) > 0
	})

	total := int64(len(matched))
	start := page.Offset()
	if start >= len(matched) {
		return []*domain.Task{}, total, nil
	}
	end := start + page.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// Get implements store.TaskStore.Get
func (s *TaskStore) Get(_ context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	patch domain.TaskPatch,
	updatedAt time.Time,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}

	updated := cloneTask(t)
	patch.Apply(updated, updatedAt)
	s.tasks[taskID] = updated

	logger.FromContextOrDefault(ctx, s.logger).Debug("task updated", slog.String("task_id", taskID.String()))
	return cloneTask(updated), nil
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, taskID)

	logger.FromContextOrDefault(ctx, s.logger).Debug("task deleted", slog.String("task_id", taskID.String()))
	return nil
}

// Stats implements store.TaskStore.Stats
func (s *TaskStore) Stats(_ context.Context, ownerID uuid.UUID) (domain.TaskStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.NewTaskStats()
	for _, t := range s.tasks {
		if t.UserID == ownerID {
			stats.Add(t.Status, t.Priority, 1)
		}
	}
	return stats, nil
}

// Ping implements store.Pinger. The memory store is always available.
func (s *TaskStore) Ping(context.Context) error {
	return nil
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	return &c
}
