package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jharlan/notedeck/internal/model"
)

type SubcategoryStore struct {
	db *sql.DB
}

func NewSubcategoryStore(db *sql.DB) *SubcategoryStore {
	return &SubcategoryStore{db: db}
}

const subcategoryCols = `id, name, workspace_id, created_at`

// Create adds a subcategory. No uniqueness is enforced on (workspace, name);
// consumers must tolerate duplicates.
func (s *SubcategoryStore) Create(name, workspaceID string) (*model.Subcategory, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO subcategories (id, name, workspace_id, created_at) VALUES (?, ?, ?, ?)`,
		id, name, workspaceID, time.Now().UTC(),
	)
	if err != nil {
		return nil, storageErr("create subcategory", err)
	}
	return s.GetByID(id)
}

func (s *SubcategoryStore) GetByID(id string) (*model.Subcategory, error) {
	var sc model.Subcategory
	err := s.db.QueryRow(`SELECT `+subcategoryCols+` FROM subcategories WHERE id = ?`, id).
		Scan(&sc.ID, &sc.Name, &sc.WorkspaceID, &sc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get subcategory", err)
	}
	return &sc, nil
}

func (s *SubcategoryStore) ListByWorkspace(workspaceID string) ([]model.Subcategory, error) {
	rows, err := s.db.Query(
		`SELECT `+subcategoryCols+` FROM subcategories WHERE workspace_id = ? ORDER BY created_at ASC`,
		workspaceID,
	)
	if err != nil {
		return nil, storageErr("list subcategories", err)
	}
	defer rows.Close()

	var subs []model.Subcategory
	for rows.Next() {
		var sc model.Subcategory
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.WorkspaceID, &sc.CreatedAt); err != nil {
			return nil, storageErr("scan subcategory", err)
		}
		subs = append(subs, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list subcategories", err)
	}
	return subs, nil
}

func (s *SubcategoryStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM subcategories WHERE id = ?`, id)
	if err != nil {
		return storageErr("delete subcategory", err)
	}
	return nil
}
