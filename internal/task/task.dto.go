package task

import (
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title        string       `json:"title"`
	Description  *string      `json:"description,omitempty"`
	Priority     TaskPriority `json:"priority,omitempty"`
	DueDate      *time.Time   `json:"due_date,omitempty"`
	ParentTaskID *uuid.UUID   `json:"parent_task_id,omitempty"`
	ProjectID    *uuid.UUID   `json:"project_id,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	ProjectID   *uuid.UUID    `json:"project_id,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
}

// TaskFilter narrows the task list endpoint.
type TaskFilter struct {
	Status    *TaskStatus
	Priority  *TaskPriority
	ProjectID *uuid.UUID
	Overdue   bool
	Search    string
	Limit     int
	Offset    int
}

type CreateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsArchived  *bool   `json:"is_archived,omitempty"`
}
