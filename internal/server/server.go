package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/jharlan/notedeck/internal/config"
	"github.com/jharlan/notedeck/internal/doccache"
	"github.com/jharlan/notedeck/internal/editor"
	"github.com/jharlan/notedeck/internal/handler"
	"github.com/jharlan/notedeck/internal/middleware"
	"github.com/jharlan/notedeck/internal/retention"
	"github.com/jharlan/notedeck/internal/store"
	ws "github.com/jharlan/notedeck/internal/websocket"
)

type Server struct {
	db      *sql.DB
	hub     *ws.Hub
	sweeper *retention.Sweeper
	editors *editor.Manager
	logger  *slog.Logger

	noteH      *handler.NoteHandler
	workspaceH *handler.WorkspaceHandler
	taskH      *handler.TaskHandler
	settingsH  *handler.SettingsHandler
	documentH  *handler.DocumentHandler
	editorH    *handler.EditorHandler
	exportH    *handler.ExportHandler
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	noteStore := store.NewNoteStore(db)
	workspaceStore := store.NewWorkspaceStore(db)
	subcategoryStore := store.NewSubcategoryStore(db)
	taskStore := store.NewTaskStore(db)
	projectStore := store.NewProjectStore(db)
	settingsStore := store.NewSettingsStore(db)

	sweeper := retention.NewSweeper(noteStore, cfg.RetentionWindow, logger.With("component", "retention"))
	editors := editor.NewManager(noteStore, editor.Config{
		DebounceInterval: cfg.DebounceInterval,
		SavedPulse:       cfg.SavedPulse,
	}, logger.With("component", "editor"))
	cache := doccache.New(db, cfg.CacheCapacity, logger.With("component", "doccache"))

	return &Server{
		db:         db,
		hub:        hub,
		sweeper:    sweeper,
		editors:    editors,
		logger:     logger,
		noteH:      handler.NewNoteHandler(noteStore, sweeper, hub),
		workspaceH: handler.NewWorkspaceHandler(workspaceStore, subcategoryStore, hub),
		taskH:      handler.NewTaskHandler(taskStore, projectStore, hub),
		settingsH:  handler.NewSettingsHandler(settingsStore),
		documentH:  handler.NewDocumentHandler(cache),
		editorH:    handler.NewEditorHandler(editors, noteStore, hub),
		exportH:    handler.NewExportHandler(db),
	}
}

// Sweeper exposes the retention sweeper for the startup trigger.
func (s *Server) Sweeper() *retention.Sweeper { return s.sweeper }

// Editors exposes the save coordinator for the shutdown flush.
func (s *Server) Editors() *editor.Manager { return s.editors }

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Notes and trash
	mux.HandleFunc("GET /api/notes", s.noteH.List)
	mux.HandleFunc("POST /api/notes", s.noteH.Upsert)
	mux.HandleFunc("GET /api/notes/{id}", s.noteH.Get)
	mux.HandleFunc("DELETE /api/notes/{id}", s.noteH.HardDelete)
	mux.HandleFunc("POST /api/notes/{id}/trash", s.noteH.SoftDelete)
	mux.HandleFunc("POST /api/notes/{id}/restore", s.noteH.Restore)
	mux.HandleFunc("GET /api/trash", s.noteH.ListTrash)

	// Editor sessions
	mux.HandleFunc("POST /api/editor/{id}/open", s.editorH.Open)
	mux.HandleFunc("POST /api/editor/{id}/mutate", s.editorH.Mutate)
	mux.HandleFunc("POST /api/editor/{id}/save", s.editorH.Save)
	mux.HandleFunc("POST /api/editor/{id}/flush", s.editorH.Flush)
	mux.HandleFunc("POST /api/editor/{id}/close", s.editorH.Close)

	// Workspaces and subcategories
	mux.HandleFunc("GET /api/workspaces", s.workspaceH.List)
	mux.HandleFunc("POST /api/workspaces", s.workspaceH.Create)
	mux.HandleFunc("PUT /api/workspaces/reorder", s.workspaceH.Reorder)
	mux.HandleFunc("PUT /api/workspaces/{id}", s.workspaceH.Update)
	mux.HandleFunc("DELETE /api/workspaces/{id}", s.workspaceH.Delete)
	mux.HandleFunc("GET /api/subcategories", s.workspaceH.ListSubcategories)
	mux.HandleFunc("POST /api/subcategories", s.workspaceH.CreateSubcategory)
	mux.HandleFunc("DELETE /api/subcategories/{id}", s.workspaceH.DeleteSubcategory)

	// Tasks and projects
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Upsert)
	mux.HandleFunc("PUT /api/tasks/reorder", s.taskH.Reorder)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}/status", s.taskH.SetStatus)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("GET /api/projects", s.taskH.ListProjects)
	mux.HandleFunc("POST /api/projects", s.taskH.CreateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", s.taskH.DeleteProject)

	// Settings
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Save)

	// Cached documents
	mux.HandleFunc("GET /api/documents", s.documentH.List)
	mux.HandleFunc("POST /api/documents", s.documentH.Put)
	mux.HandleFunc("HEAD /api/documents/{id}", s.documentH.Head)
	mux.HandleFunc("GET /api/documents/{id}", s.documentH.Get)
	mux.HandleFunc("DELETE /api/documents/{id}", s.documentH.Remove)

	// Snapshot export
	mux.HandleFunc("POST /api/export", s.exportH.Export)

	// Change feed
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return middleware.RequestLogger(s.logger)(mux)
}
