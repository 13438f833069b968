package httpapi

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
)

const maxUploadBytes = 5 << 20

func (a *API) upload(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "multipart form is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	key, err := a.blobs.Save(header.Filename, file)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"filename":     key,
		"originalName": header.Filename,
		"url":          "/uploads/" + key,
	})
}

func (a *API) serveUpload(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	f, err := a.blobs.Open(key)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	defer f.Close()

	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	_, _ = io.Copy(w, f)
}
