package store

import (
	"database/sql"
	"time"

	"github.com/jharlan/notedeck/internal/model"
)

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get reads the singleton settings row. If it has never been written, the
// defaults are returned; absence is not an error.
func (s *SettingsStore) Get() (model.Settings, error) {
	var st model.Settings
	err := s.db.QueryRow(
		`SELECT theme, font, font_size, accent_color, updated_at FROM settings WHERE id = ?`,
		model.SettingsID,
	).Scan(&st.Theme, &st.Font, &st.FontSize, &st.AccentColor, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, storageErr("get settings", err)
	}
	return st, nil
}

// Save writes the singleton settings row, creating it on first save.
func (s *SettingsStore) Save(st model.Settings) (model.Settings, error) {
	st.UpdatedAt = time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO settings (id, theme, font, font_size, accent_color, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   theme = excluded.theme, font = excluded.font, font_size = excluded.font_size,
		   accent_color = excluded.accent_color, updated_at = excluded.updated_at`,
		model.SettingsID, st.Theme, st.Font, st.FontSize, st.AccentColor, st.UpdatedAt,
	)
	if err != nil {
		return model.Settings{}, storageErr("save settings", err)
	}
	return st, nil
}
