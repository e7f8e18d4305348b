package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/services/vectorsearch"
)

// SearchRequest searches one collection. Question is accepted as an alias of Query.
type SearchRequest struct {
	Query          string   `json:"query" validate:"required_without=Question,max=2000"`
	Question       string   `json:"question" validate:"max=2000"`
	CollectionName string   `json:"collection_name"`
	K              int      `json:"k" validate:"gte=0,lte=100"`
	ScoreThreshold *float64 `json:"score_threshold" validate:"omitempty,gt=0"`
}

// SearchAllRequest searches every collection
type SearchAllRequest struct {
	Query                   string   `json:"query" validate:"required_without=Question,max=2000"`
	Question                string   `json:"question" validate:"max=2000"`
	MaxResultsPerCollection int      `json:"max_results_per_collection" validate:"gte=0,lte=50"`
	ScoreThreshold          *float64 `json:"score_threshold" validate:"omitempty,gt=0"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// SearchHandler serves the vector search endpoints
type SearchHandler struct {
	searcher ContributionSearcher
	logger   arbor.ILogger
}

func NewSearchHandler(searcher ContributionSearcher, logger arbor.ILogger) *SearchHandler {
	return &SearchHandler{
		searcher: searcher,
		logger:   logger,
	}
}

func (h *SearchHandler) threshold(requested *float64) float64 {
	if requested != nil {
		return *requested
	}
	return h.searcher.DefaultThreshold()
}

// CollectionsHandler handles GET /api/collections
func (h *SearchHandler) CollectionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	names, err := h.searcher.ListCollections(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list collections")
		WriteError(w, http.StatusInternalServerError, "Failed to list collections")
		return
	}

	details := make([]*models.CollectionInfo, 0, len(names))
	for _, name := range names {
		info, err := h.searcher.CollectionInfo(r.Context(), name)
		if err != nil {
			h.logger.Warn().Err(err).Str("collection", name).Msg("Failed to describe collection")
			continue
		}
		details = append(details, info)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"collections":        names,
		"collection_details": details,
		"total_collections":  len(names),
	})
}

// CollectionInfoHandler handles GET /api/collections/{name}/info
func (h *SearchHandler) CollectionInfoHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/collections/")
	name, suffix, ok := strings.Cut(rest, "/")
	if !ok || suffix != "info" || name == "" {
		WriteError(w, http.StatusNotFound, "Unknown collection route")
		return
	}

	names, err := h.searcher.ListCollections(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list collections")
		return
	}
	if !contains(names, name) {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Collection '%s' not found. Available: %v", name, names))
		return
	}

	info, err := h.searcher.CollectionInfo(r.Context(), name)
	if err != nil {
		if errors.Is(err, interfaces.ErrCollectionNotFound) {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Collection '%s' not found", name))
			return
		}
		h.logger.Error().Err(err).Str("collection", name).Msg("Failed to get collection information")
		WriteError(w, http.StatusInternalServerError, "Failed to get collection information")
		return
	}

	WriteJSON(w, http.StatusOK, info)
}

// SearchHandler handles POST /api/search. Without a collection name the
// first available collection is searched.
func (h *SearchHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req SearchRequest
	if err := DecodeJSON(r, &req, false); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	names, err := h.searcher.ListCollections(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list collections")
		return
	}
	if len(names) == 0 {
		WriteError(w, http.StatusNotFound, "No collections found")
		return
	}

	collection := req.CollectionName
	if collection == "" {
		collection = names[0]
	} else if !contains(names, collection) {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Collection '%s' not found. Available: %v", collection, names))
		return
	}

	question := firstNonEmpty(req.Query, req.Question)
	resp := h.searcher.SearchCollection(r.Context(), question, collection, req.K, h.threshold(req.ScoreThreshold))
	WriteJSON(w, http.StatusOK, resp)
}

// SearchAllHandler handles POST /api/search/all
func (h *SearchHandler) SearchAllHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req SearchAllRequest
	if err := DecodeJSON(r, &req, false); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	question := firstNonEmpty(req.Query, req.Question)
	resp, err := h.searcher.SearchAll(r.Context(), question, req.MaxResultsPerCollection, h.threshold(req.ScoreThreshold))
	if err != nil {
		if errors.Is(err, vectorsearch.ErrNoCollections) {
			WriteError(w, http.StatusNotFound, "No collections found")
			return
		}
		h.logger.Error().Err(err).Msg("Cross-collection search failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Search failed: %v", err))
		return
	}
	if len(resp.Results) == 0 {
		WriteError(w, http.StatusNotFound, "No results found in any collection")
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
