package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const taskColumns = `id, text, completed, total_time, tag_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (Task, error) {
	var t Task
	var completed int
	var tagID sql.NullString
	var createdAt, updatedAt string
	if err := r.Scan(&t.ID, &t.Text, &completed, &t.TotalTime, &tagID, &createdAt, &updatedAt); err != nil {
		return t, err
	}
	t.Completed = completed == 1
	if tagID.Valid {
		t.TagID = &tagID.String
	}
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return t, nil
}

func (s *Store) CreateTask(text string, tagID *string) (*Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	id := uuid.NewString()
	now := formatTime(time.Now())
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, user_id, text, tag_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, s.userID, text, tagID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	task, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	s.feed.publish(Change{Table: TableTasks, Type: ChangeInsert, ID: id, Row: *task})
	return task, nil
}

func (s *Store) GetTask(id string) (*Task, error) {
	row := s.db.QueryRow(
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, s.userID,
	)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &t, nil
}

// ListTasks returns the user's tasks without their sessions.
func (s *Store) ListTasks() ([]Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at, id`, s.userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTaskText(id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	return s.updateTask(id, `text = ?`, text)
}

// UpdateTaskTag sets or (with nil) clears the task's tag.
func (s *Store) UpdateTaskTag(id string, tagID *string) error {
	return s.updateTask(id, `tag_id = ?`, tagID)
}

func (s *Store) SetTaskCompleted(id string, completed bool) error {
	v := 0
	if completed {
		v = 1
	}
	return s.updateTask(id, `completed = ?`, v)
}

func (s *Store) updateTask(id, set string, value any) error {
	now := formatTime(time.Now())
	res, err := s.db.Exec(
		`UPDATE tasks SET `+set+`, updated_at = ? WHERE id = ? AND user_id = ?`,
		value, now, id, s.userID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update task %s: %w", id, ErrNotFound)
	}
	task, err := s.GetTask(id)
	if err != nil {
		return err
	}
	s.feed.publish(Change{Table: TableTasks, Type: ChangeUpdate, ID: id, Row: *task})
	return nil
}

// DeleteTask removes the task. Its sessions stay behind, orphaned.
func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, s.userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete task %s: %w", id, ErrNotFound)
	}
	s.feed.publish(Change{Table: TableTasks, Type: ChangeDelete, ID: id})
	return nil
}
