package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notexe/studydash/internal/model"
)

const taskColumns = `id, user_id, title, due_date, priority, category, status, created_at, completed_at`

// NewTask holds the fields a caller supplies when creating a task.
type NewTask struct {
	Title    string
	DueDate  *time.Time
	Priority model.Priority
	Category string
}

// TaskFilter narrows ListTasks. Zero values mean no filtering.
type TaskFilter struct {
	Status     model.TaskStatus
	DueFrom    *time.Time // inclusive
	DueTo      *time.Time // inclusive
	HasDueDate bool
	Limit      int
}

// TaskUpdate holds optional fields for a partial update.
type TaskUpdate struct {
	Title    *string
	DueDate  *time.Time
	ClearDue bool
	Priority *model.Priority
	Category *string
}

// CreateTask inserts a task and records a "created" activity.
func (s *Store) CreateTask(ctx context.Context, userID string, in NewTask) (*model.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrInvalidArgs)
	}
	priority := model.PriorityMedium
	if in.Priority != "" {
		p, ok := model.ParsePriority(string(in.Priority))
		if !ok {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidArgs, in.Priority)
		}
		priority = p
	}

	t := model.Task{
		ID:        newID(),
		UserID:    userID,
		Title:     title,
		DueDate:   in.DueDate,
		Priority:  priority,
		Category:  strings.TrimSpace(in.Category),
		Status:    model.StatusIncomplete,
		CreatedAt: s.timestamp(),
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (`+taskColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.ID, t.UserID, t.Title, formatNullTime(t.DueDate), t.Priority, t.Category,
			t.Status, formatTime(t.CreatedAt), formatNullTime(nil))
		if err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}
		return s.recordActivity(ctx, tx, userID, model.ActionCreated, t.Title)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTask(ctx, userID, t.ID)
}

// ListTasks returns the user's tasks ordered by due date, tasks without a
// due date last.
func (s *Store) ListTasks(ctx context.Context, userID string, f TaskFilter) ([]model.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	where := []string{"user_id = ?"}
	args := []any{userID}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.HasDueDate {
		where = append(where, "due_date IS NOT NULL")
	}
	if f.DueFrom != nil {
		where = append(where, "due_date >= ?")
		args = append(args, formatTime(*f.DueFrom))
	}
	if f.DueTo != nil {
		where = append(where, "due_date <= ?")
		args = append(args, formatTime(*f.DueTo))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY due_date IS NULL, due_date ASC, created_at ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// GetTask returns a single task owned by userID.
func (s *Store) GetTask(ctx context.Context, userID, id string) (*model.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND id = ?
	`, userID, id)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// UpdateTask applies partial updates to a task.
func (s *Store) UpdateTask(ctx context.Context, userID, id string, u TaskUpdate) (*model.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var b setBuilder
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: task title is required", ErrInvalidArgs)
		}
		b.add("title", title)
	}
	switch {
	case u.ClearDue:
		b.add("due_date", nil)
	case u.DueDate != nil:
		b.add("due_date", formatTime(*u.DueDate))
	}
	if u.Priority != nil {
		p, ok := model.ParsePriority(string(*u.Priority))
		if !ok {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidArgs, *u.Priority)
		}
		b.add("priority", p)
	}
	if u.Category != nil {
		b.add("category", strings.TrimSpace(*u.Category))
	}

	if b.empty() {
		return s.GetTask(ctx, userID, id)
	}

	args := append(b.args, userID, id)
	result, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+b.sql()+` WHERE user_id = ? AND id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if err := checkAffected(result, "task", id); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, userID, id)
}

// SetTaskStatus marks a task completed or incomplete. Completing records an
// activity and stamps CompletedAt; reopening clears it.
func (s *Store) SetTaskStatus(ctx context.Context, userID, id string, status model.TaskStatus) (*model.Task, error) {
	if status != model.StatusCompleted && status != model.StatusIncomplete {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidArgs, status)
	}
	t, err := s.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if t.Status == status {
		return t, nil
	}

	var completedAt *time.Time
	if status == model.StatusCompleted {
		now := s.timestamp()
		completedAt = &now
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE tasks SET status = ?, completed_at = ? WHERE user_id = ? AND id = ?
		`, status, formatNullTime(completedAt), userID, id)
		if err != nil {
			return fmt.Errorf("failed to update task status: %w", err)
		}
		if err := checkAffected(result, "task", id); err != nil {
			return err
		}
		if status != model.StatusCompleted {
			return nil
		}
		return s.recordActivity(ctx, tx, userID, model.ActionCompleted, t.Title)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTask(ctx, userID, id)
}

// CompleteTask is SetTaskStatus with StatusCompleted.
func (s *Store) CompleteTask(ctx context.Context, userID, id string) (*model.Task, error) {
	return s.SetTaskStatus(ctx, userID, id, model.StatusCompleted)
}

// DeleteTask removes a task and records a "deleted" activity.
func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	t, err := s.GetTask(ctx, userID, id)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = ? AND id = ?`, userID, id)
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		if err := checkAffected(result, "task", id); err != nil {
			return err
		}
		return s.recordActivity(ctx, tx, userID, model.ActionDeleted, t.Title)
	})
}

func scanTask(row rowScanner) (*model.Task, error) {
	var t model.Task
	var dueDate, completedAt sql.NullString
	var createdAt string

	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &dueDate, &t.Priority,
		&t.Category, &t.Status, &createdAt, &completedAt); err != nil {
		return nil, err
	}

	var err error
	if t.DueDate, err = parseNullTime(dueDate); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
