// Package api serves the read-only status API: download history, batch
// detail and live progress over JSON.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cesargomez89/tunegrab/internal/logger"
	"github.com/cesargomez89/tunegrab/internal/store"
)

const defaultHistoryLimit = 50

// HistoryStore reads download history.
type HistoryStore interface {
	ListDownloads(limit int) ([]store.Download, error)
	ListBatch(batchID string) ([]store.Download, error)
}

type Handler struct {
	store    HistoryStore
	progress *ProgressState
	log      *logger.Logger
}

func NewHandler(store HistoryStore, progress *ProgressState, log *logger.Logger) *Handler {
	return &Handler{
		store:    store,
		progress: progress,
		log:      log.WithComponent("api"),
	}
}

// Router builds the chi router for the status API.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/health", h.Health)
	r.Get("/api/downloads", h.Downloads)
	r.Get("/api/batches/{id}", h.Batch)
	r.Get("/api/progress", h.Progress)
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Downloads(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	downloads, err := h.store.ListDownloads(limit)
	if err != nil {
		h.log.Error("failed to list downloads", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if downloads == nil {
		downloads = []store.Download{}
	}
	h.writeJSON(w, http.StatusOK, downloads)
}

func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")
	downloads, err := h.store.ListBatch(batchID)
	if err != nil {
		h.log.Error("failed to list batch", "batch_id", batchID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(downloads) == 0 {
		http.Error(w, "batch not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, downloads)
}

func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.progress.Snapshot())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}
