package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jharlan/notedeck/internal/editor"
	"github.com/jharlan/notedeck/internal/store"
	"github.com/jharlan/notedeck/internal/websocket"
)

// EditorHandler exposes the save coordinator to the editing surface. The
// surface reports edits and lifecycle events (visibility loss, close); the
// coordinator decides when anything is actually written.
type EditorHandler struct {
	manager *editor.Manager
	notes   *store.NoteStore
	hub     *websocket.Hub
}

func NewEditorHandler(manager *editor.Manager, notes *store.NoteStore, hub *websocket.Hub) *EditorHandler {
	return &EditorHandler{manager: manager, notes: notes, hub: hub}
}

// stateCallback pushes editor state transitions over the change feed so the
// surface can render Dirty/Saving/Saved indicators.
func (h *EditorHandler) stateCallback(noteID string) func(editor.State) {
	return func(st editor.State) {
		if h.hub != nil {
			h.hub.Broadcast(websocket.NewMessage("editor", string(st), noteID, nil))
		}
	}
}

// Open starts an editing session for an existing note and returns the
// snapshot the surface should render.
func (h *EditorHandler) Open(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	note, err := h.notes.GetByID(id)
	if err != nil {
		writeStoreError(w, "get note", err)
		return
	}
	if note == nil {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}

	session, err := h.manager.Open(*note, h.stateCallback(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "open editor")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"note":  session.Snapshot(),
		"state": session.State(),
	})
}

func (h *EditorHandler) session(w http.ResponseWriter, r *http.Request) *editor.Session {
	session := h.manager.Get(r.PathValue("id"))
	if session == nil {
		writeError(w, http.StatusNotFound, "no open editor for note")
		return nil
	}
	return session
}

// Mutate applies one field edit. The write happens later, after the debounce
// window, unless another trigger forces it earlier.
func (h *EditorHandler) Mutate(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	if session == nil {
		return
	}

	var req struct {
		Field string          `json:"field"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var value any
	if editor.Field(req.Field) == editor.FieldTags {
		var tags []string
		if err := json.Unmarshal(req.Value, &tags); err != nil {
			writeError(w, http.StatusBadRequest, "tags must be an array of strings")
			return
		}
		value = tags
	} else {
		var s string
		if err := json.Unmarshal(req.Value, &s); err != nil {
			writeError(w, http.StatusBadRequest, "value must be a string")
			return
		}
		value = s
	}

	if err := session.Mutate(editor.Field(req.Field), value); err != nil {
		if errors.Is(err, editor.ErrClosed) {
			writeError(w, http.StatusConflict, "editor closed")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": session.State()})
}

// Save is the explicit manual-save action.
func (h *EditorHandler) Save(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	if session == nil {
		return
	}
	if err := session.SaveNow(); err != nil {
		writeStoreError(w, "save note", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": session.State()})
}

// Flush is hit by the surface on visibility loss (sent as a beacon, so the
// response may never be read). The write is issued before responding.
func (h *EditorHandler) Flush(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	if session == nil {
		return
	}
	if err := session.FlushIfDirty(); err != nil {
		writeStoreError(w, "flush note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Close force-flushes and discards the session. On a failed flush the session
// survives so the edits are not lost.
func (h *EditorHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Close(r.PathValue("id")); err != nil {
		writeStoreError(w, "close editor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
