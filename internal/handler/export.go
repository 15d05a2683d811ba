package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jharlan/notedeck/internal/export"
)

type ExportHandler struct {
	db *sql.DB
}

func NewExportHandler(db *sql.DB) *ExportHandler {
	return &ExportHandler{db: db}
}

// Export writes an encrypted snapshot of the whole database to a path on the
// same device.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path       string `json:"path"`
		Passphrase string `json:"passphrase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Path == "" || req.Passphrase == "" {
		writeError(w, http.StatusBadRequest, "path and passphrase are required")
		return
	}

	if err := export.Export(h.db, req.Path, req.Passphrase); err != nil {
		slog.Error("export snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": req.Path})
}
