package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// TestifyMockTaskStore is a mock of store.TaskStore interface for use with testify/mock
type TestifyMockTaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*TestifyMockTaskStore)(nil)

// Create is a mock implementation of store.TaskStore.Create
func (m *TestifyMockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// List is a mock implementation of store.TaskStore.List
func (m *TestifyMockTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
	page domain.Page,
) ([]*domain.Task, int64, error) {
	args := m.Called(ctx, ownerID, filter, page)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Get(1).(int64), args.Error(2)
}

// Get is a mock implementation of store.TaskStore.Get
func (m *TestifyMockTaskStore) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, taskID)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// Update is a mock implementation of store.TaskStore.Update
func (m *TestifyMockTaskStore) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	patch domain.TaskPatch,
	updatedAt time.Time,
) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, taskID, patch, updatedAt)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete is a mock implementation of store.TaskStore.Delete
func (m *TestifyMockTaskStore) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	args := m.Called(ctx, ownerID, taskID)
	return args.Error(0)
}

// Stats is a mock implementation of store.TaskStore.Stats
func (m *TestifyMockTaskStore) Stats(ctx context.Context, ownerID uuid.UUID) (domain.TaskStats, error) {
	args := m.Called(ctx, ownerID)
	stats, _ := args.Get(0).(domain.TaskStats)
	return stats, args.Error(1)
}
