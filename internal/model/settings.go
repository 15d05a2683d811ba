package model

import "time"

// SettingsID is the fixed id of the singleton settings row.
const SettingsID = "settings"

type Settings struct {
	Theme       string    `json:"theme"`
	Font        string    `json:"font"`
	FontSize    int       `json:"font_size"`
	AccentColor string    `json:"accent_color"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultSettings is what a reader gets when no settings row has ever been
// written. Absence is not an error.
func DefaultSettings() Settings {
	return Settings{
		Theme:    "system",
		FontSize: 16,
	}
}
