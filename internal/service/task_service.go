package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// StatsCache is an optional read-through cache for per-owner statistics.
// Implementations must treat their own failures as misses.
//
// Get also returns the owner's cache generation. Set must discard stats whose
// generation was superseded by a task mutation in the meantime.
type StatsCache interface {
	Get(ctx context.Context, ownerID uuid.UUID) (domain.TaskStats, int64, bool)
	Set(ctx context.Context, ownerID uuid.UUID, generation int64, stats domain.TaskStats)
}

// TaskPage is one page of a task listing with its pagination metadata.
type TaskPage struct {
	Tasks []*domain.Task
	Page  int
	Limit int
	Total int64
	Pages int
}

// TaskService provides the ownership-scoped task operations. Every method
// takes the owner id from the authenticated caller; tasks of other owners
// are reported as store.ErrTaskNotFound.
type TaskService interface {
	CreateTask(ctx context.Context, ownerID uuid.UUID, fields domain.TaskFields) (*domain.Task, error)
	ListTasks(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter, page domain.Page) (*TaskPage, error)
	GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error
	Stats(ctx context.Context, ownerID uuid.UUID) (domain.TaskStats, error)
}

// TaskServiceOption customizes a task service.
type TaskServiceOption func(*taskServiceImpl)

// WithStatsCache enables read-through caching of Stats.
func WithStatsCache(cache StatsCache) TaskServiceOption {
	return func(s *taskServiceImpl) { s.cache = cache }
}

// WithClock replaces time.Now as the source of task timestamps.
func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *taskServiceImpl) { s.timeFunc = now }
}

type taskServiceImpl struct {
	tasks    store.TaskStore
	emitter  events.EventEmitter
	cache    StatsCache
	timeFunc func() time.Time
	logger   *slog.Logger
}

// NewTaskService creates a TaskService. A nil emitter discards events.
func NewTaskService(
	tasks store.TaskStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...TaskServiceOption,
) (TaskService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("%w: task store", ErrMissingDependency)
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &taskServiceImpl{
		tasks:    tasks,
		emitter:  emitter,
		timeFunc: time.Now,
		logger:   logger.With(slog.String("component", "task_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	fields domain.TaskFields,
) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, fields, s.timeFunc())
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, NewServiceError("task", "create", err)
	}

	s.emit(ctx, events.TaskCreated, ownerID, task.ID, task)
	return task, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
	page domain.Page,
) (*TaskPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	tasks, total, err := s.tasks.List(ctx, ownerID, filter, page)
	if err != nil {
		return nil, NewServiceError("task", "list", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	return &TaskPage{
		Tasks: tasks,
		Page:  page.Number,
		Limit: page.Limit,
		Total: total,
		Pages: page.Pages(total),
	}, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, ownerID, taskID)
	if err != nil {
		return nil, s.wrapLookup("get", err)
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask. The patch is validated before
// the store is touched.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	task, err := s.tasks.Update(ctx, ownerID, taskID, patch, domain.Stamp(s.timeFunc()))
	if err != nil {
		return nil, s.wrapLookup("update", err)
	}

	s.emit(ctx, events.TaskUpdated, ownerID, taskID, task)
	return task, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if err := s.tasks.Delete(ctx, ownerID, taskID); err != nil {
		return s.wrapLookup("delete", err)
	}

	s.emit(ctx, events.TaskDeleted, ownerID, taskID, nil)
	return nil
}

// Stats implements TaskService.Stats
func (s *taskServiceImpl) Stats(ctx context.Context, ownerID uuid.UUID) (domain.TaskStats, error) {
	var generation int64
	if s.cache != nil {
		stats, gen, ok := s.cache.Get(ctx, ownerID)
		if ok {
			return stats, nil
		}
		generation = gen
	}

	stats, err := s.tasks.Stats(ctx, ownerID)
	if err != nil {
		return domain.TaskStats{}, NewServiceError("task", "stats", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, ownerID, generation, stats)
	}
	return stats, nil
}

func (s *taskServiceImpl) wrapLookup(op string, err error) error {
	if errors.Is(err, store.ErrTaskNotFound) {
		return err
	}
	return NewServiceError("task", op, err)
}

// emit publishes a task event. The mutation has already been committed, so a
// failing handler is logged and never reported to the caller.
func (s *taskServiceImpl) emit(ctx context.Context, eventType string, ownerID, taskID uuid.UUID, task *domain.Task) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var payload any
	if task != nil {
		payload = task
	}

	event, err := events.NewTaskEvent(eventType, ownerID, taskID, payload)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Warn("failed to emit task event",
			slog.String("event_type", eventType),
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
	}
}
