package model

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not_started"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// String returns the string representation of the status.
func (s TaskStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// Task is a unit of work, optionally linked to a count-type key result.
// Completed tasks linked to a count-type KR contribute +1 toward its current
// value when the KR has no check-ins.
type Task struct {
	ID          string     `json:"id"`
	KrID        string     `json:"kr_id,omitempty"`
	Title       string     `json:"title"`
	Status      TaskStatus `json:"status"`
	Priority    int        `json:"priority"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CreatedBy   string     `json:"created_by,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
