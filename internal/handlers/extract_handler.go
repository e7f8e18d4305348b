package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/services/knowledge"
)

// ExtractRequest selects a hosted repository or a local directory
type ExtractRequest struct {
	Username string `json:"username" validate:"required_without=Path,max=100"`
	Repo     string `json:"repo" validate:"required_with=Username,max=200"`
	Path     string `json:"path" validate:"required_without=Username"`
}

type ExtractHandler struct {
	extractor       KnowledgeExtractor
	allowLocalPaths bool
	logger          arbor.ILogger
}

// NewExtractHandler creates the extraction handler. Requests naming a local
// path are refused unless allowLocalPaths is set.
func NewExtractHandler(extractor KnowledgeExtractor, allowLocalPaths bool, logger arbor.ILogger) *ExtractHandler {
	return &ExtractHandler{
		extractor:       extractor,
		allowLocalPaths: allowLocalPaths,
		logger:          logger,
	}
}

// ExtractHandler handles POST /api/extract. The run is synchronous; progress
// is streamed on /ws while it executes.
func (h *ExtractHandler) ExtractHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ExtractRequest
	if err := DecodeJSON(r, &req, false); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Username == "" && !h.allowLocalPaths {
		h.logger.Warn().Str("path", req.Path).Str("remote", r.RemoteAddr).Msg("Refused local path extraction")
		WriteError(w, http.StatusForbidden, "Local path extraction is disabled")
		return
	}

	var target string
	var err error
	var result *models.ExtractionResult
	if req.Username != "" {
		target = req.Username + "/" + req.Repo
		result, err = h.extractor.ExtractRepo(r.Context(), req.Username, req.Repo)
	} else {
		target = req.Path
		result, err = h.extractor.ExtractPath(r.Context(), req.Path)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("target", target).Msg("Knowledge extraction failed")
		status := http.StatusInternalServerError
		if errors.Is(err, knowledge.ErrNoRepositoryHost) {
			status = http.StatusServiceUnavailable
		}
		WriteError(w, status, fmt.Sprintf("Extraction failed: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Knowledge extraction completed",
		"result":  result,
	})
}
