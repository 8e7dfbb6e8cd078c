package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Bucket keys and reserved store keys
const (
	// BucketAll holds every filed task
	BucketAll = "All"
	// BucketUpcoming holds tasks due today or later
	BucketUpcoming = "Upcoming"

	// KeyCategories stores the ordered category name list
	KeyCategories = "categories"
	// KeyCategoryColors stores the name -> #rrggbb map
	KeyCategoryColors = "categoryColors"

	// LegacyExpired is a category name older data may contain; it is never valid
	LegacyExpired = "Expired"
)

// Colors used when a category has no stored color
const (
	// ReservedColor is the fixed color of "Upcoming" and "All"
	ReservedColor = "#FE6D66"
	// FallbackColor is shown for a real category missing from the color map
	FallbackColor = "#6BD8E7"
)

// DateLayout is the calendar date format of Task.Date
const DateLayout = "2006-01-02"

// ErrValidation is returned when a task is missing required fields
var ErrValidation = errors.New("validation failed")

// ErrSubtaskIndex is returned for out-of-range subtask positions
var ErrSubtaskIndex = errors.New("subtask index out of range")

// Task is a titled, dated item with an ordered checklist of subtasks.
// Title identifies the task within a bucket.
type Task struct {
	Title            string   `json:"title" yaml:"title"`
	Description      string   `json:"description" yaml:"description,omitempty"`
	Date             string   `json:"date" yaml:"date"`
	Subtasks         []string `json:"subtasks" yaml:"subtasks,omitempty"`
	OriginalCategory string   `json:"originalCategory" yaml:"category"`
}

// Validate checks the fields required to file a task
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(t.Date) == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if _, err := ParseDate(t.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for i, s := range t.Subtasks {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: subtask %d is empty", ErrValidation, i)
		}
	}
	return nil
}

// Normalize makes Subtasks non-nil so buckets always encode it as an array
func (t *Task) Normalize() {
	if t.Subtasks == nil {
		t.Subtasks = []string{}
	}
}

// Clone returns a copy that shares no slices with t
func (t Task) Clone() Task {
	c := t
	c.Subtasks = append([]string{}, t.Subtasks...)
	return c
}

// IsUpcoming reports whether the task is due today or later, where "today"
// is the calendar date of now in now's location. Unparsable dates are never
// upcoming.
func (t Task) IsUpcoming(now time.Time) bool {
	due, err := ParseDate(t.Date)
	if err != nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	dy, dm, dd := due.Date()
	dueDay := time.Date(dy, dm, dd, 0, 0, 0, 0, now.Location())
	return !dueDay.Before(today)
}

// AddSubtask appends a checklist item
func (t *Task) AddSubtask(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: subtask text is required", ErrValidation)
	}
	t.Subtasks = append(t.Subtasks, text)
	return nil
}

// EditSubtask replaces the checklist item at index
func (t *Task) EditSubtask(index int, text string) error {
	if index < 0 || index >= len(t.Subtasks) {
		return fmt.Errorf("%w: %d (have %d)", ErrSubtaskIndex, index, len(t.Subtasks))
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: subtask text is required", ErrValidation)
	}
	t.Subtasks[index] = text
	return nil
}

// RemoveSubtask drops the checklist item at index, keeping the order of the rest
func (t *Task) RemoveSubtask(index int) error {
	if index < 0 || index >= len(t.Subtasks) {
		return fmt.Errorf("%w: %d (have %d)", ErrSubtaskIndex, index, len(t.Subtasks))
	}
	t.Subtasks = append(t.Subtasks[:index:index], t.Subtasks[index+1:]...)
	return nil
}

// ParseDate parses a calendar date. Full RFC 3339 timestamps are accepted
// and truncated to their date part.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := ts.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
}

// Category is a user-defined bucket name with its display color
type Category struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color,omitempty"`
}

// IsProtected reports whether name is one of the synthetic categories
// that always exist and cannot be deleted
func IsProtected(name string) bool {
	return name == BucketAll || name == BucketUpcoming
}

// IsReservedKey reports whether key is store metadata rather than a bucket
func IsReservedKey(key string) bool {
	switch key {
	case BucketAll, BucketUpcoming, KeyCategories, KeyCategoryColors:
		return true
	}
	return false
}

// IsValidCategoryName reports whether name can be used for a real category
func IsValidCategoryName(name string) bool {
	if strings.TrimSpace(name) == "" || name != strings.TrimSpace(name) {
		return false
	}
	if name == LegacyExpired || IsReservedKey(name) {
		return false
	}
	return true
}
