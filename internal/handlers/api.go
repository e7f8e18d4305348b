package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
)

// APIHandler serves the system endpoints: health, version and the JSON 404
type APIHandler struct {
	started time.Time
	logger  arbor.ILogger
}

func NewAPIHandler(logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		started: time.Now(),
		logger:  logger,
	}
}

// VersionHandler handles GET /api/version
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.Build,
		"git_commit": common.GitCommit,
		"go":         runtime.Version(),
	})
}

// HealthHandler handles GET /api/health. Uptime is rounded to seconds.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": common.GetVersion(),
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// NotFoundHandler answers unmatched routes in the same envelope as WriteError
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("No route")
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"status": "error",
		"error":  "No StackScout endpoint at this path",
		"method": r.Method,
		"path":   r.URL.Path,
	})
}
