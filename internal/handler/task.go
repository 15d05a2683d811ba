package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jharlan/notedeck/internal/model"
	"github.com/jharlan/notedeck/internal/store"
	"github.com/jharlan/notedeck/internal/websocket"
)

type TaskHandler struct {
	tasks    *store.TaskStore
	projects *store.ProjectStore
	hub      *websocket.Hub
}

func NewTaskHandler(tasks *store.TaskStore, projects *store.ProjectStore, hub *websocket.Hub) *TaskHandler {
	return &TaskHandler{tasks: tasks, projects: projects, hub: hub}
}

func (h *TaskHandler) broadcast(entity, action, id string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(entity, action, id, nil))
	}
}

// List serves all tasks in manual order; ?status= and ?project= narrow the
// listing for board columns and project views.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var tasks []model.Task
	var err error

	switch {
	case r.URL.Query().Has("status"):
		tasks, err = h.tasks.ListByStatus(r.URL.Query().Get("status"))
	case r.URL.Query().Has("project"):
		tasks, err = h.tasks.ListByProject(r.URL.Query().Get("project"))
	default:
		tasks, err = h.tasks.List()
	}
	if err != nil {
		writeStoreError(w, "list tasks", err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.GetByID(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get task", err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var task model.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	saved, err := h.tasks.Upsert(&task)
	if err != nil {
		writeStoreError(w, "upsert task", err)
		return
	}
	h.broadcast("task", "updated", saved.ID)
	writeJSON(w, http.StatusOK, saved)
}

// SetStatus moves a task between board columns.
func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !model.ValidTaskStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "status must be todo, in-progress, or done")
		return
	}

	id := r.PathValue("id")
	if err := h.tasks.SetStatus(id, req.Status); err != nil {
		writeStoreError(w, "set task status", err)
		return
	}
	h.broadcast("task", "moved", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Reorder(w http.ResponseWriter, r *http.Request) {
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

	if err := h.tasks.Reorder(req.IDs); err != nil {
		writeStoreError(w, "reorder tasks", err)
		return
	}
	h.broadcast("task", "reordered", "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.tasks.Delete(id); err != nil {
		writeStoreError(w, "delete task", err)
		return
	}
	h.broadcast("task", "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List()
	if err != nil {
		writeStoreError(w, "list projects", err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *TaskHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
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

	p, err := h.projects.Create(req.Name, req.Color, req.Icon)
	if err != nil {
		writeStoreError(w, "create project", err)
		return
	}
	h.broadcast("project", "created", p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (h *TaskHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.projects.Delete(id); err != nil {
		writeStoreError(w, "delete project", err)
		return
	}
	h.broadcast("project", "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
