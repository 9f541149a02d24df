package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/prolifel/ceker/internal/core/preview"
)

// Screenshot serves a stored preview image. Filenames are restricted to
// fingerprint-shaped names, which also blocks traversal.
func (a *API) Screenshot(w http.ResponseWriter, r *http.Request) {
	if a.Previews == nil {
		respondError(w, http.StatusNotFound, "Screenshot not found")
		return
	}

	filename := chi.URLParam(r, "filename")
	path, err := a.Previews.Resolve(filename)
	if err != nil {
		if errors.Is(err, preview.ErrInvalidName) {
			respondError(w, http.StatusBadRequest, "Invalid filename")
			return
		}
		if os.IsNotExist(err) {
			respondError(w, http.StatusNotFound, "Screenshot not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFile(w, r, path)
}
