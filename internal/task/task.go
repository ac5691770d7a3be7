package task

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
	StatusCancelled  TaskStatus = "cancelled"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

type Task struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	UserID       string       `json:"user_id" db:"user_id"`
	Title        string       `json:"title" db:"title"`
	Description  *string      `json:"description,omitempty" db:"description"`
	Status       TaskStatus   `json:"status" db:"status"`
	Priority     TaskPriority `json:"priority" db:"priority"`
	DueDate      *time.Time   `json:"due_date,omitempty" db:"due_date"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
	ParentTaskID *uuid.UUID   `json:"parent_task_id,omitempty" db:"parent_task_id"`
	ProjectID    *uuid.UUID   `json:"project_id,omitempty" db:"project_id"`
	Tags         []string     `json:"tags" db:"tags"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

type Project struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Color       *string   `json:"color,omitempty" db:"color"`
	Icon        *string   `json:"icon,omitempty" db:"icon"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	IsArchived  bool      `json:"is_archived" db:"is_archived"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// IsOverdue reports whether the task is past due and still open.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	if t.Status == StatusCompleted || t.Status == StatusCancelled {
		return false
	}
	return now.After(*t.DueDate)
}
