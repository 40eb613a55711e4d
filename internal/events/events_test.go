package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskEvent(t *testing.T) {
	type taskPayload struct {
		ID    uuid.UUID `json:"id"`
		Title string    `json:"title"`
	}

	owner, taskID := uuid.New(), uuid.New()
	payload := taskPayload{ID: taskID, Title: "Write report"}

	event, err := NewTaskEvent(TaskCreated, owner, taskID, payload)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TaskCreated, event.Type)
	assert.Equal(t, owner, event.OwnerID)
	assert.Equal(t, taskID, event.TaskID)
	assert.WithinDuration(t, time.Now(), event.OccurredAt, 2*time.Second)

	var decoded taskPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewTaskEventWithoutPayload(t *testing.T) {
	event, err := NewTaskEvent(TaskDeleted, uuid.New(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, event.Payload)

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "payload")
}

func TestNewTaskEventUnencodablePayload(t *testing.T) {
	_, err := NewTaskEvent(TaskUpdated, uuid.New(), uuid.New(), make(chan int))
	assert.Error(t, err)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *TaskEvent
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *TaskEvent) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestHandlerFunc(t *testing.T) {
	var got *TaskEvent
	h := HandlerFunc(func(_ context.Context, e *TaskEvent) error {
		got = e
		return errors.New("boom")
	})

	event, err := NewTaskEvent(TaskUpdated, uuid.New(), uuid.New(), nil)
	require.NoError(t, err)

	assert.EqualError(t, h.HandleEvent(context.Background(), event), "boom")
	assert.Same(t, event, got)
}

func TestNopEmitter(t *testing.T) {
	assert.NoError(t, NopEmitter{}.EmitEvent(context.Background(), &TaskEvent{}))
}
