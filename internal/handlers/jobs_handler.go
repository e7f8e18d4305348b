package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/services/jobsearch"
)

// JobSearchRequest holds explicit criteria, or a username whose scanned
// repositories supply the tech stack
type JobSearchRequest struct {
	TechStack       []string `json:"tech_stack" validate:"required_without=Username,max=50,dive,min=1,max=100"`
	Username        string   `json:"username" validate:"max=100"`
	Location        string   `json:"location" validate:"max=100"`
	ExperienceLevel string   `json:"experience_level" validate:"max=50"`
	Role            string   `json:"role" validate:"max=100"`
}

// SaveJobRequest is the body of POST /api/jobs/saved
type SaveJobRequest struct {
	Title               string     `json:"title" validate:"required,max=300"`
	Location            string     `json:"location" validate:"max=200"`
	Description         string     `json:"description"`
	JobURL              string     `json:"job_url" validate:"required,url"`
	InterviewURL        string     `json:"interview_url" validate:"omitempty,url"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
}

// JobsHandler serves job search, run history and saved jobs
type JobsHandler struct {
	searcher JobSearcher
	scanner  RepoScanner
	saved    interfaces.SavedJobStorage
	index    interfaces.SavedJobSearcher
	runs     interfaces.JobRunStorage
	logger   arbor.ILogger
}

// NewJobsHandler creates the handler. index and runs may be nil; full-text
// search and run history are then unavailable.
func NewJobsHandler(
	searcher JobSearcher,
	scanner RepoScanner,
	saved interfaces.SavedJobStorage,
	index interfaces.SavedJobSearcher,
	runs interfaces.JobRunStorage,
	logger arbor.ILogger,
) *JobsHandler {
	return &JobsHandler{
		searcher: searcher,
		scanner:  scanner,
		saved:    saved,
		index:    index,
		runs:     runs,
		logger:   logger,
	}
}

// SearchHandler handles POST /api/jobs/search
func (h *JobsHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req JobSearchRequest
	if err := DecodeJSON(r, &req, false); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	criteria := models.SearchCriteria{
		TechStack:       req.TechStack,
		Location:        req.Location,
		ExperienceLevel: req.ExperienceLevel,
		Role:            req.Role,
	}

	if len(criteria.TechStack) == 0 {
		if req.Username == "" {
			WriteError(w, http.StatusBadRequest, "tech_stack or username is required")
			return
		}
		records, err := h.scanner.ScanUser(r.Context(), req.Username)
		if err != nil {
			h.logger.Error().Err(err).Str("username", req.Username).Msg("Repository scan for job search failed")
			WriteError(w, http.StatusBadGateway, fmt.Sprintf("Failed to fetch repos: %v", err))
			return
		}
		criteria.TechStack = jobsearch.CriteriaFromRepos(records).TechStack
		if len(criteria.TechStack) == 0 {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("No languages or frameworks found for %s", req.Username))
			return
		}
	}

	result, err := h.searcher.Search(r.Context(), criteria)
	if err != nil {
		if errors.Is(err, jobsearch.ErrWebSearchFailed) {
			WriteError(w, http.StatusBadGateway, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("Job search failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Job search failed: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// RunsHandler handles GET /api/jobs/runs?limit=N
func (h *JobsHandler) RunsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if h.runs == nil {
		WriteError(w, http.StatusServiceUnavailable, "Run history is not configured")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list job search runs")
		WriteError(w, http.StatusInternalServerError, "Failed to list job search runs")
		return
	}
	WriteJSON(w, http.StatusOK, runs)
}

// ListSavedHandler handles GET /api/jobs/saved with an optional full-text q
func (h *JobsHandler) ListSavedHandler(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	var jobs []*models.SavedJob
	var err error
	if q != "" {
		if h.index == nil {
			WriteError(w, http.StatusServiceUnavailable, "Saved job search is not configured")
			return
		}
		jobs, err = h.index.SearchJobs(r.Context(), q, 0)
	} else {
		jobs, err = h.saved.ListJobs(r.Context())
	}
	if err != nil {
		h.logger.Error().Err(err).Str("q", q).Msg("Failed to list saved jobs")
		WriteError(w, http.StatusInternalServerError, "Failed to list saved jobs")
		return
	}
	if jobs == nil {
		jobs = []*models.SavedJob{}
	}

	WriteJSON(w, http.StatusOK, jobs)
}

// SaveJobHandler handles POST /api/jobs/saved
func (h *JobsHandler) SaveJobHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveJobRequest
	if err := DecodeJSON(r, &req, false); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &models.SavedJob{
		Title:               req.Title,
		Location:            req.Location,
		Description:         req.Description,
		JobURL:              req.JobURL,
		InterviewURL:        req.InterviewURL,
		ApplicationDeadline: req.ApplicationDeadline,
	}
	if err := h.saved.SaveJob(r.Context(), job); err != nil {
		h.logger.Error().Err(err).Str("job_url", req.JobURL).Msg("Failed to save job")
		WriteError(w, http.StatusInternalServerError, "Failed to save job")
		return
	}

	h.logger.Info().Str("job_id", job.ID).Str("title", job.Title).Msg("Job saved")
	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"data":   job,
	})
}

func savedJobID(r *http.Request) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/jobs/saved/"), "/")
}

// GetSavedJobHandler handles GET /api/jobs/saved/{id}
func (h *JobsHandler) GetSavedJobHandler(w http.ResponseWriter, r *http.Request) {
	id := savedJobID(r)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "job id is required")
		return
	}

	job, err := h.saved.GetJob(r.Context(), id)
	if err != nil {
		h.writeJobError(w, id, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// DeleteSavedJobHandler handles DELETE /api/jobs/saved/{id}
func (h *JobsHandler) DeleteSavedJobHandler(w http.ResponseWriter, r *http.Request) {
	id := savedJobID(r)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "job id is required")
		return
	}

	if err := h.saved.DeleteJob(r.Context(), id); err != nil {
		h.writeJobError(w, id, err)
		return
	}
	h.logger.Info().Str("job_id", id).Msg("Saved job deleted")
	WriteSuccess(w, "Job deleted")
}

func (h *JobsHandler) writeJobError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, interfaces.ErrJobNotFound) {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Job '%s' not found", id))
		return
	}
	h.logger.Error().Err(err).Str("job_id", id).Msg("Saved job operation failed")
	WriteError(w, http.StatusInternalServerError, err.Error())
}
