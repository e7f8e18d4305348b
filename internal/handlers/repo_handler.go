package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
)

// RepoHandler serves repository scans and tech-profile exports
type RepoHandler struct {
	scanner  RepoScanner
	exporter ProfileExporter
	logger   arbor.ILogger
}

func NewRepoHandler(scanner RepoScanner, exporter ProfileExporter, logger arbor.ILogger) *RepoHandler {
	return &RepoHandler{
		scanner:  scanner,
		exporter: exporter,
		logger:   logger,
	}
}

// ScanHandler handles GET /api/repos/{username}
func (h *RepoHandler) ScanHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	username := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/repos/"), "/")
	if username == "" || strings.Contains(username, "/") {
		WriteError(w, http.StatusBadRequest, "username is required")
		return
	}

	records, err := h.scanner.ScanUser(r.Context(), username)
	if err != nil {
		h.logger.Error().Err(err).Str("username", username).Msg("Repository scan failed")
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Failed to fetch repos: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, records)
}

// ExportHandler handles GET /api/export/{username}.pdf
func (h *RepoHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/export/")
	if !strings.HasSuffix(name, ".pdf") {
		WriteError(w, http.StatusNotFound, "Export must be requested as {username}.pdf")
		return
	}
	username := strings.TrimSuffix(name, ".pdf")
	if username == "" || strings.Contains(username, "/") {
		WriteError(w, http.StatusBadRequest, "username is required")
		return
	}

	records, err := h.scanner.ScanUser(r.Context(), username)
	if err != nil {
		h.logger.Error().Err(err).Str("username", username).Msg("Repository scan for export failed")
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Failed to fetch repos: %v", err))
		return
	}

	report, err := h.exporter.TechProfile(r.Context(), username, records)
	if err != nil {
		h.logger.Error().Err(err).Str("username", username).Msg("Tech profile export failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Export failed: %v", err))
		return
	}

	if report.ArchiveURL != "" {
		w.Header().Set("X-Archive-URL", report.ArchiveURL)
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(report.Content)
}
