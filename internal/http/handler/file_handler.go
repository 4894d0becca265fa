package handler

import (
	"io"
	"net/http"
	"path"

	"github.com/bora-tech/crm-api/internal/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileHandler serves stored documents back to clients
type FileHandler struct {
	store  storage.Storage
	logger *zap.Logger
}

func NewFileHandler(store storage.Storage, logger *zap.Logger) *FileHandler {
	return &FileHandler{store: store, logger: logger}
}

// Download handles GET /api/files/* and streams the stored document.
// The wildcard carries the storage path returned at upload time.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	storagePath := chi.URLParam(r, "*")
	if storagePath == "" || path.Clean("/"+storagePath) != "/"+storagePath {
		respondWithError(w, http.StatusBadRequest, "Invalid file path")
		return
	}

	reader, err := h.store.Download(r.Context(), storagePath)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "File not found")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Disposition", "attachment; filename="+path.Base(storagePath))
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream file",
			zap.String("storage_path", storagePath),
			zap.Error(err),
		)
	}
}
