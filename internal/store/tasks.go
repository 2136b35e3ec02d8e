package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrTaskNotFound = errors.New("task not found")

type Task struct {
	ID        string
	Title     string
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdateTaskInput changes only the fields that are set.
type UpdateTaskInput struct {
	Title     *string
	Completed *bool
}

func (s *Store) CreateTask(ctx context.Context, title string) (Task, error) {
	now := s.now().Truncate(time.Second)
	task := Task{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tasks (id, title, completed, created_at_unix, updated_at_unix)
		 VALUES (?, ?, 0, ?, ?)`,
		task.ID,
		task.Title,
		now.Unix(),
		now.Unix(),
	)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// ListTasks returns tasks in creation order.
func (s *Store) ListTasks(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, title, completed, created_at_unix, updated_at_unix
		 FROM tasks
		 ORDER BY created_at_unix ASC, rowid ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) LookupTask(ctx context.Context, id string) (Task, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, title, completed, created_at_unix, updated_at_unix FROM tasks WHERE id = ?`,
		strings.TrimSpace(id),
	)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	return task, err
}

func (s *Store) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (Task, error) {
	task, err := s.LookupTask(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	task.UpdatedAt = s.now().Truncate(time.Second)

	result, err := s.db.ExecContext(
		ctx,
		`UPDATE tasks SET title = ?, completed = ?, updated_at_unix = ? WHERE id = ?`,
		task.Title,
		boolToInt(task.Completed),
		task.UpdatedAt.Unix(),
		task.ID,
	)
	if err != nil {
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return Task{}, fmt.Errorf("read task rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return Task{}, ErrTaskNotFound
	}
	return task, nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read task rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var task Task
	var completed int
	var createdUnix, updatedUnix int64
	if err := row.Scan(&task.ID, &task.Title, &completed, &createdUnix, &updatedUnix); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, err
		}
		return Task{}, fmt.Errorf("scan task: %w", err)
	}
	task.Completed = completed == 1
	task.CreatedAt = time.Unix(createdUnix, 0).UTC()
	task.UpdatedAt = time.Unix(updatedUnix, 0).UTC()
	return task, nil
}
