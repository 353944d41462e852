// Package handlers contains the HTTP handlers for the docchat API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/docchat/internal/api"
	"github.com/cloo-solutions/docchat/internal/api/middleware"
	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/cloo-solutions/docchat/internal/metrics"
	"github.com/cloo-solutions/docchat/internal/service"
)

type IngestService interface {
	Ingest(ctx context.Context, input service.IngestInput) (*domain.Document, error)
}

type IngestHandler struct {
	svc IngestService
}

func NewIngestHandler(svc IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

type IngestRequest struct {
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
}

type IngestResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// Ingest runs the full pipeline synchronously and responds once the document
// is queryable.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FileURL == "" {
		api.Error(w, http.StatusBadRequest, "file_url is required")
		return
	}
	if req.FileName == "" {
		api.Error(w, http.StatusBadRequest, "file_name is required")
		return
	}

	doc, err := h.svc.Ingest(r.Context(), service.IngestInput{
		UserID:   userID,
		FileURL:  req.FileURL,
		FileName: req.FileName,
	})
	if err != nil {
		metrics.RecordIngestion("failure")
		api.ErrorWithDetails(w, api.DomainErrorToHTTP(err), "ingestion failed", err.Error())
		return
	}

	metrics.RecordIngestion("success")
	api.JSON(w, http.StatusOK, IngestResponse{Success: true, ID: doc.ID})
}
