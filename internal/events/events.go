package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Task event types.
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

// TaskEvent records a mutation of a single task.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of TaskCreated, TaskUpdated or TaskDeleted
	Type string `json:"type"`

	OwnerID uuid.UUID `json:"ownerId"`
	TaskID  uuid.UUID `json:"taskId"`

	// Payload holds the task as stored after the mutation, serialized as
	// JSON. It is empty for deletions.
	Payload json.RawMessage `json:"payload,omitempty"`

	OccurredAt time.Time `json:"occurredAt"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskEvent creates an event of the given type. A nil payload produces an
// event without a payload.
func NewTaskEvent(eventType string, ownerID, taskID uuid.UUID, payload any) (*TaskEvent, error) {
	event := &TaskEvent{
		ID:         uuid.New(),
		Type:       eventType,
		OwnerID:    ownerID,
		TaskID:     taskID,
		OccurredAt: time.Now().UTC(),
	}

	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		event.Payload = payloadBytes
	}

	return event, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *TaskEvent) error { return nil }

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *TaskEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *TaskEvent) error {
	return f(ctx, event)
}
