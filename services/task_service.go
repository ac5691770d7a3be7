package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"momentumAPI/internal/stats"
	"momentumAPI/internal/task"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskService struct {
	db *pgxpool.Pool
}

func NewTaskService(db *pgxpool.Pool) *TaskService {
	return &TaskService{db: db}
}

const taskColumns = `id, user_id, title, description, status, priority, due_date, completed_at,
	parent_task_id, project_id, tags, created_at, updated_at`

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.CompletedAt,
		&t.ParentTaskID,
		&t.ProjectID,
		&t.Tags,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *TaskService) CreateTask(ctx context.Context, clerkID string, req *task.CreateTaskRequest) (*task.Task, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	priority := req.Priority
	if priority == "" {
		priority = task.PriorityMedium
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	if req.ParentTaskID != nil {
		if _, err := s.GetTask(ctx, clerkID, *req.ParentTaskID); err != nil {
			return nil, fmt.Errorf("%w: parent task", ErrInvalidArgument)
		}
	}

	query := `
	INSERT INTO tasks (id, user_id, title, description, status, priority, due_date,
		parent_task_id, project_id, tags, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	RETURNING ` + taskColumns

	t, err := scanTask(s.db.QueryRow(
		ctx,
		query,
		uuid.New(),
		clerkID,
		req.Title,
		req.Description,
		task.StatusPending,
		priority,
		req.DueDate,
		req.ParentTaskID,
		req.ProjectID,
		tags,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

func (s *TaskService) GetTasks(ctx context.Context, clerkID string, filter *task.TaskFilter) ([]*task.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE user_id = $1 AND NOT is_deleted`
	args := []any{clerkID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	if filter.Overdue {
		query += ` AND due_date < NOW() AND status NOT IN ('completed', 'cancelled')`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return s.queryTasks(ctx, query, args...)
}

func (s *TaskService) GetTask(ctx context.Context, clerkID string, taskID uuid.UUID) (*task.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted`

	t, err := scanTask(s.db.QueryRow(ctx, query, taskID, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, clerkID string, taskID uuid.UUID, req *task.UpdateTaskRequest) (*task.Task, error) {
	var tags any
	if req.Tags != nil {
		tags = req.Tags
	}

	query := `
	UPDATE tasks
	SET
		title = COALESCE($3, title),
		description = COALESCE($4, description),
		status = COALESCE($5, status),
		priority = COALESCE($6, priority),
		due_date = COALESCE($7, due_date),
		project_id = COALESCE($8, project_id),
		tags = COALESCE($9, tags),
		completed_at = CASE
			WHEN $5::text = 'completed' THEN NOW()
			WHEN $5::text IS NOT NULL AND $5::text != 'completed' THEN NULL
			ELSE completed_at
		END,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted
	RETURNING ` + taskColumns

	t, err := scanTask(s.db.QueryRow(ctx, query, taskID, clerkID, req.Title, req.Description, req.Status, req.Priority, req.DueDate, req.ProjectID, tags))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, clerkID string, taskID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `
	UPDATE tasks
	SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted`, taskID, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteTask toggles completion: a completed task goes back to pending.
func (s *TaskService) CompleteTask(ctx context.Context, clerkID string, taskID uuid.UUID) (*task.Task, error) {
	query := `
	UPDATE tasks
	SET
		status = CASE WHEN status = 'completed' THEN 'pending' ELSE 'completed' END,
		completed_at = CASE WHEN status = 'completed' THEN NULL ELSE NOW() END,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted
	RETURNING ` + taskColumns

	t, err := scanTask(s.db.QueryRow(ctx, query, taskID, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}
	return t, nil
}

func (s *TaskService) GetSubtasks(ctx context.Context, clerkID string, taskID uuid.UUID) ([]*task.Task, error) {
	if _, err := s.GetTask(ctx, clerkID, taskID); err != nil {
		return nil, err
	}
	return s.queryTasks(ctx, `
	SELECT `+taskColumns+`
	FROM tasks
	WHERE parent_task_id = $1 AND user_id = $2 AND NOT is_deleted
	ORDER BY created_at ASC`, taskID, clerkID)
}

func (s *TaskService) GetOverdueTasks(ctx context.Context, clerkID string) ([]*task.Task, error) {
	return s.queryTasks(ctx, `
	SELECT `+taskColumns+`
	FROM tasks
	WHERE user_id = $1 AND NOT is_deleted
		AND due_date < NOW() AND status NOT IN ('completed', 'cancelled')
	ORDER BY due_date ASC`, clerkID)
}

func (s *TaskService) GetStats(ctx context.Context, clerkID string) (*stats.TaskStats, error) {
	st := &stats.TaskStats{}
	today := time.Now().Truncate(24 * time.Hour)

	err := s.db.QueryRow(ctx, `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'pending'),
		COUNT(*) FILTER (WHERE status = 'in_progress'),
		COUNT(*) FILTER (WHERE status = 'completed'),
		COUNT(*) FILTER (WHERE due_date < NOW() AND status NOT IN ('completed', 'cancelled')),
		COUNT(*) FILTER (WHERE status = 'completed' AND completed_at >= $2)
	FROM tasks
	WHERE user_id = $1 AND NOT is_deleted`, clerkID, today).Scan(
		&st.Total,
		&st.Pending,
		&st.InProgress,
		&st.Completed,
		&st.Overdue,
		&st.CompletedToday,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get task stats: %w", err)
	}
	return st, nil
}

const projectColumns = `id, user_id, name, description, color, icon, is_active, is_archived, created_at, updated_at`

func scanProject(row pgx.Row) (*task.Project, error) {
	p := &task.Project{}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Description,
		&p.Color,
		&p.Icon,
		&p.IsActive,
		&p.IsArchived,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *TaskService) CreateProject(ctx context.Context, clerkID string, req *task.CreateProjectRequest) (*task.Project, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}

	query := `
	INSERT INTO projects (id, user_id, name, description, color, icon, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	RETURNING ` + projectColumns

	p, err := scanProject(s.db.QueryRow(ctx, query, uuid.New(), clerkID, req.Name, req.Description, req.Color, req.Icon))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

func (s *TaskService) GetProjects(ctx context.Context, clerkID string) ([]*task.Project, error) {
	rows, err := s.db.Query(ctx, `
	SELECT `+projectColumns+`
	FROM projects
	WHERE user_id = $1 AND NOT is_deleted
	ORDER BY created_at ASC`, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}
	defer rows.Close()

	projects := []*task.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *TaskService) GetProject(ctx context.Context, clerkID string, projectID uuid.UUID) (*task.Project, error) {
	p, err := scanProject(s.db.QueryRow(ctx, `
	SELECT `+projectColumns+`
	FROM projects
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted`, projectID, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (s *TaskService) UpdateProject(ctx context.Context, clerkID string, projectID uuid.UUID, req *task.UpdateProjectRequest) (*task.Project, error) {
	query := `
	UPDATE projects
	SET
		name = COALESCE($3, name),
		description = COALESCE($4, description),
		color = COALESCE($5, color),
		icon = COALESCE($6, icon),
		is_active = COALESCE($7, is_active),
		is_archived = COALESCE($8, is_archived),
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted
	RETURNING ` + projectColumns

	p, err := scanProject(s.db.QueryRow(ctx, query, projectID, clerkID, req.Name, req.Description, req.Color, req.Icon, req.IsActive, req.IsArchived))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return p, nil
}

func (s *TaskService) DeleteProject(ctx context.Context, clerkID string, projectID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Detach tasks first so they survive the project.
	if _, err := tx.Exec(ctx, `
	UPDATE tasks SET project_id = NULL, updated_at = NOW()
	WHERE project_id = $1 AND user_id = $2`, projectID, clerkID); err != nil {
		return fmt.Errorf("failed to detach project tasks: %w", err)
	}

	result, err := tx.Exec(ctx, `
	UPDATE projects
	SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted`, projectID, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func (s *TaskService) GetProjectTasks(ctx context.Context, clerkID string, projectID uuid.UUID) ([]*task.Task, error) {
	if _, err := s.GetProject(ctx, clerkID, projectID); err != nil {
		return nil, err
	}
	return s.queryTasks(ctx, `
	SELECT `+taskColumns+`
	FROM tasks
	WHERE project_id = $1 AND user_id = $2 AND NOT is_deleted
	ORDER BY created_at DESC`, projectID, clerkID)
}
