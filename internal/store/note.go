package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jharlan/notedeck/internal/model"
)

type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

const noteCols = `id, title, content, workspace_id, subcategory, color, is_pinned, is_starred, is_deleted, deleted_at, tags, created_at, updated_at`

// Active listings are pinned-first, then most recently updated.
const noteActiveOrder = ` ORDER BY is_pinned DESC, updated_at DESC`

func scanNote(scanner interface{ Scan(...any) error }) (*model.Note, error) {
	var n model.Note
	var pinned, starred, deleted int
	var deletedAt sql.NullTime
	var tags string

	err := scanner.Scan(
		&n.ID, &n.Title, &n.Content, &n.WorkspaceID, &n.Subcategory, &n.Color,
		&pinned, &starred, &deleted, &deletedAt, &tags, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Pinned = pinned != 0
	n.Starred = starred != 0
	n.Deleted = deleted != 0
	if deletedAt.Valid {
		t := deletedAt.Time
		n.DeletedAt = &t
	}
	if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil {
		// Rows written before tags existed hold the column default "[]",
		// so a parse failure means corruption, not an old shape.
		return nil, err
	}
	return &n, nil
}

// Upsert inserts or replaces a note by id. A missing id gets a fresh uuid, a
// zero CreatedAt gets the current time, and UpdatedAt is always bumped. The
// deleted invariant is normalized here: an active note never carries a
// deletion timestamp.
func (s *NoteStore) Upsert(n *model.Note) (*model.Note, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	if !n.Deleted {
		n.DeletedAt = nil
	}

	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, storageErr("encode tags", err)
	}

	var deletedAt sql.NullTime
	if n.DeletedAt != nil {
		deletedAt = sql.NullTime{Time: n.DeletedAt.UTC(), Valid: true}
	}

	_, err = s.db.Exec(
		`INSERT INTO notes (`+noteCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title, content = excluded.content,
		   workspace_id = excluded.workspace_id, subcategory = excluded.subcategory,
		   color = excluded.color, is_pinned = excluded.is_pinned,
		   is_starred = excluded.is_starred, is_deleted = excluded.is_deleted,
		   deleted_at = excluded.deleted_at, tags = excluded.tags,
		   updated_at = excluded.updated_at`,
		n.ID, n.Title, n.Content, n.WorkspaceID, n.Subcategory, n.Color,
		boolInt(n.Pinned), boolInt(n.Starred), boolInt(n.Deleted),
		deletedAt, string(tagsJSON), n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return nil, storageErr("upsert note", err)
	}
	return s.GetByID(n.ID)
}

func (s *NoteStore) GetByID(id string) (*model.Note, error) {
	row := s.db.QueryRow(`SELECT `+noteCols+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get note", err)
	}
	return n, nil
}

// ListActive returns all non-deleted notes, pinned group first, each group
// most-recently-updated first.
func (s *NoteStore) ListActive() ([]model.Note, error) {
	return s.list(`SELECT `+noteCols+` FROM notes WHERE is_deleted = 0`+noteActiveOrder, "list active notes")
}

// ListByWorkspace returns active notes in the given workspace. An empty id
// selects uncategorized notes.
func (s *NoteStore) ListByWorkspace(workspaceID string) ([]model.Note, error) {
	return s.list(`SELECT `+noteCols+` FROM notes WHERE is_deleted = 0 AND workspace_id = ?`+noteActiveOrder,
		"list notes by workspace", workspaceID)
}

func (s *NoteStore) ListStarred() ([]model.Note, error) {
	return s.list(`SELECT `+noteCols+` FROM notes WHERE is_deleted = 0 AND is_starred = 1`+noteActiveOrder,
		"list starred notes")
}

// ListDeleted returns trashed notes, most recently deleted first.
func (s *NoteStore) ListDeleted() ([]model.Note, error) {
	return s.list(`SELECT `+noteCols+` FROM notes WHERE is_deleted = 1 ORDER BY deleted_at DESC`,
		"list deleted notes")
}

func (s *NoteStore) list(query, op string, args ...any) ([]model.Note, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return notes, nil
}

// SoftDelete marks a note as trashed and stamps the deletion time.
func (s *NoteStore) SoftDelete(id string) error {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`UPDATE notes SET is_deleted = 1, deleted_at = ?, updated_at = ? WHERE id = ?`,
		now, now, id,
	)
	if err != nil {
		return storageErr("soft delete note", err)
	}
	return requireRow(result, "soft delete note")
}

// Restore brings a trashed note back. The deletion timestamp is cleared so
// the active-note invariant holds.
func (s *NoteStore) Restore(id string) error {
	result, err := s.db.Exec(
		`UPDATE notes SET is_deleted = 0, deleted_at = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return storageErr("restore note", err)
	}
	return requireRow(result, "restore note")
}

// Delete permanently removes a note. Deleting a missing id is not an error;
// the retention sweeper relies on that.
func (s *NoteStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return storageErr("delete note", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(result sql.Result, op string) error {
	count, err := result.RowsAffected()
	if err != nil {
		return storageErr(op, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
