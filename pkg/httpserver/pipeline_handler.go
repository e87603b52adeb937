package httpserver

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// PipelineHandler serves the pipeline status snapshot.
type PipelineHandler struct {
	pipeline PipelineStatus
	logger   *zap.Logger
}

// NewPipelineHandler creates a new pipeline status handler.
func NewPipelineHandler(pipeline PipelineStatus, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandlePipeline handles GET /api/pipeline requests.
func (h *PipelineHandler) HandlePipeline(w http.ResponseWriter, r *http.Request) {
	status := h.pipeline.GetStatus()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.logger.Error("pipeline-status-encode-failed", zap.Error(err))
	}
}
