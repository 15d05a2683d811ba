package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jharlan/notedeck/internal/model"
)

type WorkspaceStore struct {
	db *sql.DB
}

func NewWorkspaceStore(db *sql.DB) *WorkspaceStore {
	return &WorkspaceStore{db: db}
}

const workspaceCols = `id, name, color, icon, sort_order, created_at`

func scanWorkspace(scanner interface{ Scan(...any) error }) (*model.Workspace, error) {
	var w model.Workspace
	err := scanner.Scan(&w.ID, &w.Name, &w.Color, &w.Icon, &w.SortOrder, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Create appends a workspace at the end of the manual order; the first
// workspace gets order 0.
func (s *WorkspaceStore) Create(name, color, icon string) (*model.Workspace, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO workspaces (id, name, color, icon, sort_order, created_at)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM workspaces), ?)`,
		id, name, color, icon, time.Now().UTC(),
	)
	if err != nil {
		return nil, storageErr("create workspace", err)
	}
	return s.GetByID(id)
}

func (s *WorkspaceStore) GetByID(id string) (*model.Workspace, error) {
	row := s.db.QueryRow(`SELECT `+workspaceCols+` FROM workspaces WHERE id = ?`, id)
	w, err := scanWorkspace(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get workspace", err)
	}
	return w, nil
}

func (s *WorkspaceStore) List() ([]model.Workspace, error) {
	rows, err := s.db.Query(`SELECT ` + workspaceCols + ` FROM workspaces ORDER BY sort_order ASC, created_at ASC`)
	if err != nil {
		return nil, storageErr("list workspaces", err)
	}
	defer rows.Close()

	var workspaces []model.Workspace
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, storageErr("scan workspace", err)
		}
		workspaces = append(workspaces, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list workspaces", err)
	}
	return workspaces, nil
}

func (s *WorkspaceStore) Update(id, name, color, icon string) (*model.Workspace, error) {
	result, err := s.db.Exec(
		`UPDATE workspaces SET name = ?, color = ?, icon = ? WHERE id = ?`,
		name, color, icon, id,
	)
	if err != nil {
		return nil, storageErr("update workspace", err)
	}
	if err := requireRow(result, "update workspace"); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Reorder rewrites sort_order for every id in the given sequence: position in
// the slice becomes the new order. Unknown ids abort the whole reorder.
// Deletion does not renumber survivors, so gaps between orders are normal.
func (s *WorkspaceStore) Reorder(ids []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("reorder workspaces", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		result, err := tx.Exec(`UPDATE workspaces SET sort_order = ? WHERE id = ?`, i, id)
		if err != nil {
			return storageErr("reorder workspaces", err)
		}
		count, err := result.RowsAffected()
		if err != nil {
			return storageErr("reorder workspaces", err)
		}
		if count == 0 {
			return fmt.Errorf("reorder workspaces: id %s: %w", id, ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("reorder workspaces", err)
	}
	return nil
}

func (s *WorkspaceStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM workspaces WHERE id = ?`, id)
	if err != nil {
		return storageErr("delete workspace", err)
	}
	return nil
}
