package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-insurance-api/internal/application/file"
	"github.com/go-insurance-api/internal/transport/http/middleware"
)

// maxUploadBytes caps proof document uploads at 10 MiB.
const maxUploadBytes = 10 << 20

type FileHandler struct {
	svc file.Service
}

func NewFileHandler(svc file.Service) *FileHandler {
	return &FileHandler{svc: svc}
}

// Upload handles POST /files. Expects multipart form data with a "file" part.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer f.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	meta, err := h.svc.Upload(r.Context(), claims.UserID, header.Filename, contentType, header.Size, f)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}

// Get handles GET /files/{id}: returns metadata with a fresh download URL.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	meta, err := h.svc.GetDownloadURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// Delete handles DELETE /files/{id} (uploader only).
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "file deleted"})
}
