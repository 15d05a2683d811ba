package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jharlan/notedeck/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, title, status, priority, due_date, reminder, project_id, subtasks, sort_order, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var dueDate, reminder sql.NullTime
	var subtasks string

	err := scanner.Scan(
		&t.ID, &t.Title, &t.Status, &t.Priority, &dueDate, &reminder,
		&t.ProjectID, &subtasks, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	if reminder.Valid {
		r := reminder.Time
		t.Reminder = &r
	}
	if err := json.Unmarshal([]byte(subtasks), &t.Subtasks); err != nil {
		return nil, err
	}
	return &t, nil
}

// Upsert inserts or replaces a task by id. New tasks (no existing row) are
// appended at the end of the manual order; replacing keeps the old order.
func (s *TaskStore) Upsert(t *model.Task) (*model.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = model.TaskStatusTodo
	}
	if !model.ValidTaskStatus(t.Status) {
		return nil, fmt.Errorf("upsert task: invalid status %q", t.Status)
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	subtasks := t.Subtasks
	if subtasks == nil {
		subtasks = []model.Subtask{}
	}
	subtasksJSON, err := json.Marshal(subtasks)
	if err != nil {
		return nil, storageErr("encode subtasks", err)
	}

	var dueDate, reminder sql.NullTime
	if t.DueDate != nil {
		dueDate = sql.NullTime{Time: t.DueDate.UTC(), Valid: true}
	}
	if t.Reminder != nil {
		reminder = sql.NullTime{Time: t.Reminder.UTC(), Valid: true}
	}

	_, err = s.db.Exec(
		`INSERT INTO tasks (`+taskCols+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM tasks), ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title, status = excluded.status, priority = excluded.priority,
		   due_date = excluded.due_date, reminder = excluded.reminder,
		   project_id = excluded.project_id, subtasks = excluded.subtasks,
		   updated_at = excluded.updated_at`,
		t.ID, t.Title, t.Status, t.Priority, dueDate, reminder,
		t.ProjectID, string(subtasksJSON), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return nil, storageErr("upsert task", err)
	}
	return s.GetByID(t.ID)
}

func (s *TaskStore) GetByID(id string) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get task", err)
	}
	return t, nil
}

func (s *TaskStore) List() ([]model.Task, error) {
	return s.list(`SELECT `+taskCols+` FROM tasks ORDER BY sort_order ASC`, "list tasks")
}

func (s *TaskStore) ListByStatus(status string) ([]model.Task, error) {
	return s.list(`SELECT `+taskCols+` FROM tasks WHERE status = ? ORDER BY sort_order ASC`,
		"list tasks by status", status)
}

func (s *TaskStore) ListByProject(projectID string) ([]model.Task, error) {
	return s.list(`SELECT `+taskCols+` FROM tasks WHERE project_id = ? ORDER BY sort_order ASC`,
		"list tasks by project", projectID)
}

func (s *TaskStore) list(query, op string, args ...any) ([]model.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return tasks, nil
}

// SetStatus moves a task between board columns.
func (s *TaskStore) SetStatus(id, status string) error {
	if !model.ValidTaskStatus(status) {
		return fmt.Errorf("set task status: invalid status %q", status)
	}
	result, err := s.db.Exec(
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return storageErr("set task status", err)
	}
	return requireRow(result, "set task status")
}

// Reorder rewrites sort_order to match the caller-supplied sequence, same
// discipline as WorkspaceStore.Reorder.
func (s *TaskStore) Reorder(ids []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("reorder tasks", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		result, err := tx.Exec(`UPDATE tasks SET sort_order = ? WHERE id = ?`, i, id)
		if err != nil {
			return storageErr("reorder tasks", err)
		}
		count, err := result.RowsAffected()
		if err != nil {
			return storageErr("reorder tasks", err)
		}
		if count == 0 {
			return fmt.Errorf("reorder tasks: id %s: %w", id, ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("reorder tasks", err)
	}
	return nil
}

func (s *TaskStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return storageErr("delete task", err)
	}
	return nil
}
