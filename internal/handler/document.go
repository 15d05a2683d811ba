package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jharlan/notedeck/internal/doccache"
	"github.com/jharlan/notedeck/internal/model"
)

type DocumentHandler struct {
	cache *doccache.Cache
}

func NewDocumentHandler(cache *doccache.Cache) *DocumentHandler {
	return &DocumentHandler{cache: cache}
}

type documentMeta struct {
	model.CachedDocument
	// SizeDisplay is the human-readable size the viewer shows, e.g. "40 MiB".
	SizeDisplay string `json:"size_display"`
}

// List serves metadata for everything in the cache, oldest first.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.cache.List()
	if err != nil {
		writeStoreError(w, "list documents", err)
		return
	}

	metas := make([]documentMeta, 0, len(docs))
	for _, d := range docs {
		metas = append(metas, documentMeta{CachedDocument: d, SizeDisplay: doccache.FormatSize(d.Size)})
	}
	writeJSON(w, http.StatusOK, metas)
}

// Head answers "is this file already cached" without transferring the payload.
func (h *DocumentHandler) Head(w http.ResponseWriter, r *http.Request) {
	cached, err := h.cache.IsCached(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "check document", err)
		return
	}
	if !cached {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Get streams the raw payload.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	payload, err := h.cache.Get(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get document", err)
		return
	}
	if payload == nil {
		writeError(w, http.StatusNotFound, "document not cached")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(payload)
}

// Put admits a document into the cache. The payload arrives base64-encoded in
// JSON; the id is derived server-side from (file_name, size).
func (h *DocumentHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileName string `json:"file_name"`
		Payload  []byte `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.FileName == "" {
		writeError(w, http.StatusBadRequest, "file_name is required")
		return
	}

	doc := &model.CachedDocument{FileName: req.FileName, Payload: req.Payload}
	if err := h.cache.Put(doc); err != nil {
		writeStoreError(w, "cache document", err)
		return
	}

	writeJSON(w, http.StatusCreated, documentMeta{
		CachedDocument: model.CachedDocument{
			ID:       doc.ID,
			FileName: doc.FileName,
			Size:     doc.Size,
			CachedAt: doc.CachedAt,
		},
		SizeDisplay: doccache.FormatSize(doc.Size),
	})
}

func (h *DocumentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Remove(r.PathValue("id")); err != nil {
		writeStoreError(w, "remove document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
