package handlers

import (
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// StaticAsset serves re-hosted artifacts from the file store.
func (a *App) StaticAsset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		a.error(w, http.StatusBadRequest, "Missing asset key")
		return
	}
	data, err := a.Store.Read(r.Context(), key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			a.error(w, http.StatusNotFound, "Asset not found")
			return
		}
		a.Logger.Error().Err(err).Str("key", key).Msg("read asset failed")
		a.error(w, http.StatusInternalServerError, "Failed to read asset")
		return
	}
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
