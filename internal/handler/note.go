package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jharlan/notedeck/internal/model"
	"github.com/jharlan/notedeck/internal/retention"
	"github.com/jharlan/notedeck/internal/store"
	"github.com/jharlan/notedeck/internal/websocket"
)

type NoteHandler struct {
	notes   *store.NoteStore
	sweeper *retention.Sweeper
	hub     *websocket.Hub
}

func NewNoteHandler(notes *store.NoteStore, sweeper *retention.Sweeper, hub *websocket.Hub) *NoteHandler {
	return &NoteHandler{notes: notes, sweeper: sweeper, hub: hub}
}

func (h *NoteHandler) broadcast(action, id string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("note", action, id, nil))
	}
}

// List serves active notes; ?workspace= narrows to one workspace and
// ?starred=1 narrows to starred notes.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	var notes []model.Note
	var err error

	switch {
	case r.URL.Query().Get("starred") == "1":
		notes, err = h.notes.ListStarred()
	case r.URL.Query().Has("workspace"):
		notes, err = h.notes.ListByWorkspace(r.URL.Query().Get("workspace"))
	default:
		notes, err = h.notes.ListActive()
	}
	if err != nil {
		writeStoreError(w, "list notes", err)
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// ListTrash sweeps expired trash first, then serves what is left. Opening the
// trash view is one of the two retention trigger points.
func (h *NoteHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sweeper.Sweep(); err != nil {
		writeStoreError(w, "retention sweep", err)
		return
	}
	notes, err := h.notes.ListDeleted()
	if err != nil {
		writeStoreError(w, "list trash", err)
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.GetByID(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get note", err)
		return
	}
	if note == nil {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Upsert creates or replaces a note wholesale. Notes being actively edited
// go through the editor endpoints instead, which coalesce writes.
func (h *NoteHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var note model.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	saved, err := h.notes.Upsert(&note)
	if err != nil {
		writeStoreError(w, "upsert note", err)
		return
	}

	h.broadcast("updated", saved.ID)
	writeJSON(w, http.StatusOK, saved)
}

func (h *NoteHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.notes.SoftDelete(id); err != nil {
		writeStoreError(w, "soft delete note", err)
		return
	}
	h.broadcast("trashed", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *NoteHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.notes.Restore(id); err != nil {
		writeStoreError(w, "restore note", err)
		return
	}
	h.broadcast("restored", id)
	w.WriteHeader(http.StatusNoContent)
}

// HardDelete permanently removes a note ("delete forever").
func (h *NoteHandler) HardDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.notes.Delete(id); err != nil {
		writeStoreError(w, "delete note", err)
		return
	}
	h.broadcast("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
