package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New creates an event with a fresh ID and the current time
func New(typ EventType, category, task, message string) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      typ,
		Timestamp: time.Now(),
		Category:  category,
		Task:      task,
		Message:   message,
	}
}

// NewCategoryCreatedEvent reports a new category and its color
func NewCategoryCreatedEvent(name, color string) *Event {
	e := New(EventTypeCategoryCreated, name, "", fmt.Sprintf("category %q created", name))
	e.Data = map[string]interface{}{"color": color}
	return e
}

// NewCategoryDeletedEvent reports an explicit category deletion
func NewCategoryDeletedEvent(name string, data CategoryDeletedData) *Event {
	e := New(EventTypeCategoryDeleted, name, "", fmt.Sprintf("category %q deleted", name))
	e.Data = map[string]interface{}{"tasks_removed": data.TasksRemoved}
	return e
}

// NewCategoryPrunedEvent reports a category dropped because it has no tasks
func NewCategoryPrunedEvent(name string) *Event {
	return New(EventTypeCategoryPruned, name, "", fmt.Sprintf("category %q became empty", name))
}

// NewTaskEvent reports a create, update or delete of a task
func NewTaskEvent(typ EventType, category, title string) *Event {
	return New(typ, category, title, fmt.Sprintf("%s: %q in %q", typ, title, category))
}

// NewTaskMovedEvent reports a recategorization
func NewTaskMovedEvent(title string, data TaskMovedData) *Event {
	e := New(EventTypeTaskMoved, data.To, title, fmt.Sprintf("task %q moved from %q to %q", title, data.From, data.To))
	e.Data = map[string]interface{}{"from": data.From, "to": data.To}
	return e
}

// NewMalformedStateEvent reports a persisted key that was replaced by an empty default
func NewMalformedStateEvent(key string, err error) *Event {
	e := New(EventTypeMalformedState, "", "", fmt.Sprintf("persisted value %q is malformed", key))
	e.Data = map[string]interface{}{"key": key, "error": err.Error()}
	return e
}
