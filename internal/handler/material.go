package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/service"
)

// multipartOverhead is the room left for multipart boundaries and headers on
// top of the file size limit.
const multipartOverhead = 64 << 10

// MaterialHandler serves uploads and the material library.
type MaterialHandler struct {
	materials *service.MaterialService
	maxBytes  int64
	logger    *slog.Logger
}

func NewMaterialHandler(materials *service.MaterialService, maxBytes int64, logger *slog.Logger) *MaterialHandler {
	return &MaterialHandler{materials: materials, maxBytes: maxBytes, logger: logger}
}

// UploadResponse describes a stored upload.
type UploadResponse struct {
	ID   int64  `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// HandleUpload accepts one image in the multipart field "image".
//
// HTTP: POST /api/upload → {id, url, name}
//
// The body is capped with MaxBytesReader before parsing, so an oversized
// upload is cut off while streaming rather than after it has been buffered.
func (h *MaterialHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes + multipartOverhead); err != nil {
		writeError(w, r, h.logger, h.uploadError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, h.logger, apperror.ValidationFailed("image", "no file uploaded"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("reading upload: %w", err))
		return
	}

	m, err := h.materials.Upload(r.Context(), owner, service.UploadInput{
		Filename:     header.Filename,
		DeclaredType: header.Header.Get("Content-Type"),
		Data:         data,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, UploadResponse{ID: m.ID, URL: m.URL, Name: m.Name})
}

func (h *MaterialHandler) uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.ValidationFailed("image", fmt.Sprintf("file exceeds the %d MiB limit", h.maxBytes>>20))
	}
	return apperror.ValidationFailed("image", "request must be multipart/form-data with an \"image\" file")
}

// HandleList returns the caller's materials of one type.
//
// HTTP: GET /api/materials?type=image|emoji|divider
func (h *MaterialHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	materials, err := h.materials.List(r.Context(), owner, r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, materials)
}
