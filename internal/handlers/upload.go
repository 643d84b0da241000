package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
)

const maxUploadBytes = 10 << 20

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// UploadFile handles POST /api/upload with a multipart "file" field and
// returns the hosted image URL.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.caller(w, r, ""); !ok {
		return
	}
	if h.svc.Uploader == nil {
		writeJSON(w, http.StatusServiceUnavailable, UploadResponse{Success: false, Message: "File uploads are not available"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, r, apperr.Validation("file", "File must be an image under 10MB"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, apperr.Validation("file", "No file provided"))
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		h.writeError(w, r, apperr.Validation("file", "Only images can be uploaded"))
		return
	}

	url, err := h.svc.Uploader.Upload(r.Context(), file, header.Filename)
	if err != nil {
		h.writeError(w, r, apperr.Upstream("upload failed", err))
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{Success: true, Message: "File uploaded successfully", URL: url})
}
