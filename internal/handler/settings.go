package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jharlan/notedeck/internal/model"
	"github.com/jharlan/notedeck/internal/store"
)

type SettingsHandler struct {
	settings *store.SettingsStore
}

func NewSettingsHandler(settings *store.SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get always succeeds with either the stored settings or the defaults.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get()
	if err != nil {
		writeStoreError(w, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	saved, err := h.settings.Save(settings)
	if err != nil {
		writeStoreError(w, "save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
