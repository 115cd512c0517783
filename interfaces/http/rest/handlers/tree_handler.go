package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/stoat/Mewton-family-tree/application/services"
	apperrors "github.com/stoat/Mewton-family-tree/pkg/errors"

	"go.uber.org/zap"
)

// DefaultMaxBodyBytes caps the size of a replacement document.
const DefaultMaxBodyBytes = 2 << 20

// TreeHandler handles the whole-document tree endpoints
type TreeHandler struct {
	service      *services.TreeService
	errors       *apperrors.ErrorHandler
	logger       *zap.Logger
	maxBodyBytes int64
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(service *services.TreeService, errs *apperrors.ErrorHandler, logger *zap.Logger, maxBodyBytes int64) *TreeHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &TreeHandler{
		service:      service,
		errors:       errs,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// GetTree handles GET /api/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GetTree(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		h.logger.Error("Failed to write tree", zap.Error(err))
	}
}

// PutTree handles PUT /api/tree
func (h *TreeHandler) PutTree(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errors.HandleStatus(w, r, http.StatusRequestEntityTooLarge, "Tree document too large")
			return
		}
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := h.service.ReplaceTree(r.Context(), body); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, okResponse{OK: true})
}

type okResponse struct {
	OK bool `json:"ok"`
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
