package types

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{"valid", Task{Title: "Pay rent", Date: "2026-11-01"}, false},
		{"missing title", Task{Date: "2026-11-01"}, true},
		{"blank title", Task{Title: "   ", Date: "2026-11-01"}, true},
		{"missing date", Task{Title: "Pay rent"}, true},
		{"bad date", Task{Title: "Pay rent", Date: "next tuesday"}, true},
		{"rfc3339 date", Task{Title: "Pay rent", Date: "2026-11-01T09:00:00Z"}, false},
		{"empty subtask", Task{Title: "Pay rent", Date: "2026-11-01", Subtasks: []string{"a", ""}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestTaskIsUpcoming(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	now := time.Date(2026, 10, 19, 23, 30, 0, 0, loc)

	tests := []struct {
		date string
		want bool
	}{
		{"2026-10-18", false},
		{"2026-10-19", true}, // today counts
		{"2026-10-20", true},
		{"2027-01-01", true},
		{"garbage", false},
	}
	for _, tt := range tests {
		got := Task{Title: "x", Date: tt.date}.IsUpcoming(now)
		if got != tt.want {
			t.Errorf("IsUpcoming(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestSubtaskEditing(t *testing.T) {
	task := Task{Title: "Groceries", Date: "2026-10-20"}

	for _, s := range []string{"milk", "eggs", "bread"} {
		if err := task.AddSubtask(s); err != nil {
			t.Fatalf("AddSubtask(%q) failed: %v", s, err)
		}
	}
	if err := task.AddSubtask(""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty subtask, got %v", err)
	}

	if err := task.EditSubtask(1, "oat milk"); err != nil {
		t.Fatalf("EditSubtask failed: %v", err)
	}
	if err := task.RemoveSubtask(0); err != nil {
		t.Fatalf("RemoveSubtask failed: %v", err)
	}
	if got := strings.Join(task.Subtasks, ","); got != "oat milk,bread" {
		t.Errorf("subtasks = %q, want %q", got, "oat milk,bread")
	}

	if err := task.EditSubtask(5, "x"); !errors.Is(err, ErrSubtaskIndex) {
		t.Errorf("expected ErrSubtaskIndex, got %v", err)
	}
	if err := task.RemoveSubtask(-1); !errors.Is(err, ErrSubtaskIndex) {
		t.Errorf("expected ErrSubtaskIndex, got %v", err)
	}
}

func TestCloneDoesNotShareSubtasks(t *testing.T) {
	orig := Task{Title: "a", Date: "2026-10-20", Subtasks: []string{"one"}}
	c := orig.Clone()
	c.Subtasks[0] = "changed"
	if orig.Subtasks[0] != "one" {
		t.Errorf("clone mutated original subtasks: %v", orig.Subtasks)
	}
}

// TestTaskJSONFieldNames pins the persisted bucket layout
func TestTaskJSONFieldNames(t *testing.T) {
	task := Task{Title: "T", Date: "2026-10-20", OriginalCategory: "Work"}
	task.Normalize()

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"title":"T","description":"","date":"2026-10-20","subtasks":[],"originalCategory":"Work"}`
	if string(data) != want {
		t.Errorf("json = %s\nwant %s", data, want)
	}
}

func TestCategoryNames(t *testing.T) {
	if !IsProtected("All") || !IsProtected("Upcoming") || IsProtected("Work") {
		t.Error("IsProtected misclassified names")
	}
	for _, name := range []string{"", " ", "Expired", "All", "Upcoming", "categories", "categoryColors", " Work"} {
		if IsValidCategoryName(name) {
			t.Errorf("IsValidCategoryName(%q) = true, want false", name)
		}
	}
	if !IsValidCategoryName("Work") {
		t.Error("IsValidCategoryName(Work) = false")
	}
}
