package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jharlan/notedeck/internal/model"
	"github.com/jharlan/notedeck/internal/store"
	"github.com/jharlan/notedeck/internal/websocket"
)

type WorkspaceHandler struct {
	workspaces    *store.WorkspaceStore
	subcategories *store.SubcategoryStore
	hub           *websocket.Hub
}

func NewWorkspaceHandler(ws *store.WorkspaceStore, sc *store.SubcategoryStore, hub *websocket.Hub) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: ws, subcategories: sc, hub: hub}
}

func (h *WorkspaceHandler) broadcast(entity, action, id string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(entity, action, id, nil))
	}
}

type workspaceRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.workspaces.List()
	if err != nil {
		writeStoreError(w, "list workspaces", err)
		return
	}
	if workspaces == nil {
		workspaces = []model.Workspace{}
	}
	writeJSON(w, http.StatusOK, workspaces)
}

func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req workspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ws, err := h.workspaces.Create(req.Name, req.Color, req.Icon)
	if err != nil {
		writeStoreError(w, "create workspace", err)
		return
	}
	h.broadcast("workspace", "created", ws.ID)
	writeJSON(w, http.StatusCreated, ws)
}

func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req workspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ws, err := h.workspaces.Update(r.PathValue("id"), strings.TrimSpace(req.Name), req.Color, req.Icon)
	if err != nil {
		writeStoreError(w, "update workspace", err)
		return
	}
	h.broadcast("workspace", "updated", ws.ID)
	writeJSON(w, http.StatusOK, ws)
}

// Reorder rewrites the manual order to match the submitted id sequence.
func (h *WorkspaceHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}

	if err := h.workspaces.Reorder(req.IDs); err != nil {
		writeStoreError(w, "reorder workspaces", err)
		return
	}
	h.broadcast("workspace", "reordered", "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.workspaces.Delete(id); err != nil {
		writeStoreError(w, "delete workspace", err)
		return
	}
	h.broadcast("workspace", "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkspaceHandler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subcategories.ListByWorkspace(r.URL.Query().Get("workspace"))
	if err != nil {
		writeStoreError(w, "list subcategories", err)
		return
	}
	if subs == nil {
		subs = []model.Subcategory{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *WorkspaceHandler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		WorkspaceID string `json:"workspace_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	sub, err := h.subcategories.Create(req.Name, req.WorkspaceID)
	if err != nil {
		writeStoreError(w, "create subcategory", err)
		return
	}
	h.broadcast("subcategory", "created", sub.ID)
	writeJSON(w, http.StatusCreated, sub)
}

func (h *WorkspaceHandler) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.subcategories.Delete(id); err != nil {
		writeStoreError(w, "delete subcategory", err)
		return
	}
	h.broadcast("subcategory", "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
