package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/cloo-solutions/docchat/internal/api"
	"github.com/cloo-solutions/docchat/internal/api/middleware"
	"github.com/google/uuid"
)

type UploadStorage interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	Bucket() string
}

// UploadHandler issues presigned upload URLs so clients can push a PDF to
// object storage and then ingest it by its s3:// URL.
type UploadHandler struct {
	storage UploadStorage
}

func NewUploadHandler(storage UploadStorage) *UploadHandler {
	return &UploadHandler{storage: storage}
}

type InitUploadRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

type InitUploadResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

func (h *UploadHandler) InitUpload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if h.storage == nil {
		api.Error(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	var req InitUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FileName == "" {
		api.Error(w, http.StatusBadRequest, "file_name is required")
		return
	}
	if strings.Contains(req.FileName, "/") || strings.Contains(req.FileName, "..") {
		api.Error(w, http.StatusBadRequest, "invalid file_name")
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	key := path.Join("uploads", uuid.NewString(), req.FileName)

	uploadURL, err := h.storage.GenerateUploadURL(r.Context(), key, contentType)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to generate upload URL")
		return
	}

	api.Success(w, http.StatusOK, InitUploadResponse{
		UploadURL: uploadURL,
		FileURL:   fmt.Sprintf("s3://%s/%s", h.storage.Bucket(), key),
		Key:       key,
	})
}
