package events

import (
	"time"
)

// EventType represents the type of lifecycle event published by the registry
// and the repository.
type EventType string

const (
	// Category lifecycle
	// EventTypeCategoryCreated indicates a category was added explicitly or by filing a task
	EventTypeCategoryCreated EventType = "category_created"
	// EventTypeCategoryDeleted indicates a user deleted a category and all its tasks
	EventTypeCategoryDeleted EventType = "category_deleted"
	// EventTypeCategoryPruned indicates reconcile dropped a category that became empty
	EventTypeCategoryPruned EventType = "category_pruned"
	// EventTypeCategoryColorAssigned indicates a category received its color
	EventTypeCategoryColorAssigned EventType = "category_color_assigned"

	// Task lifecycle
	// EventTypeTaskCreated indicates a task was filed
	EventTypeTaskCreated EventType = "task_created"
	// EventTypeTaskUpdated indicates a task's fields were saved
	EventTypeTaskUpdated EventType = "task_updated"
	// EventTypeTaskMoved indicates a task was recategorized
	EventTypeTaskMoved EventType = "task_moved"
	// EventTypeTaskDeleted indicates a task was removed from every bucket
	EventTypeTaskDeleted EventType = "task_deleted"

	// EventTypeMalformedState indicates a persisted value failed to parse and was replaced by an empty default
	EventTypeMalformedState EventType = "malformed_state"
)

// Event is a single lifecycle notification
type Event struct {
	// ID is the unique identifier for this event
	ID string `json:"id"`
	// Type is the type of event
	Type EventType `json:"type"`
	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`
	// Category is the category the event concerns (the new category for moves)
	Category string `json:"category,omitempty"`
	// Task is the title of the task the event concerns, if any
	Task string `json:"task,omitempty"`
	// Message is a human-readable description
	Message string `json:"message"`
	// Data contains type-specific details (must be JSON-serializable)
	Data map[string]interface{} `json:"data,omitempty"`
}

// TaskMovedData contains structured data for task move events.
type TaskMovedData struct {
	// From is the category the task was filed under before the edit
	From string `json:"from"`
	// To is the category the task is filed under now
	To string `json:"to"`
}

// CategoryDeletedData contains structured data for category deletion events.
type CategoryDeletedData struct {
	// TasksRemoved is how many tasks were removed along with the category
	TasksRemoved int `json:"tasks_removed"`
}
