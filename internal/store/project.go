package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jharlan/notedeck/internal/model"
)

type ProjectStore struct {
	db *sql.DB
}

func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

const projectCols = `id, name, color, icon, created_at`

func (s *ProjectStore) Create(name, color, icon string) (*model.Project, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO projects (id, name, color, icon, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, color, icon, time.Now().UTC(),
	)
	if err != nil {
		return nil, storageErr("create project", err)
	}
	return s.GetByID(id)
}

func (s *ProjectStore) GetByID(id string) (*model.Project, error) {
	var p model.Project
	err := s.db.QueryRow(`SELECT `+projectCols+` FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Color, &p.Icon, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get project", err)
	}
	return &p, nil
}

func (s *ProjectStore) List() ([]model.Project, error) {
	rows, err := s.db.Query(`SELECT ` + projectCols + ` FROM projects ORDER BY created_at ASC`)
	if err != nil {
		return nil, storageErr("list projects", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Icon, &p.CreatedAt); err != nil {
			return nil, storageErr("scan project", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list projects", err)
	}
	return projects, nil
}

func (s *ProjectStore) Update(id, name, color, icon string) (*model.Project, error) {
	result, err := s.db.Exec(
		`UPDATE projects SET name = ?, color = ?, icon = ? WHERE id = ?`,
		name, color, icon, id,
	)
	if err != nil {
		return nil, storageErr("update project", err)
	}
	if err := requireRow(result, "update project"); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *ProjectStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return storageErr("delete project", err)
	}
	return nil
}
