package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/services/scheduler"
)

// ScheduledJobs is the part of the scheduler exposed over HTTP
type ScheduledJobs interface {
	GetAllJobStatuses() []*scheduler.JobStatus
	TriggerJob(name string) error
}

// SchedulerHandler handles scheduler-related endpoints
type SchedulerHandler struct {
	scheduler ScheduledJobs
	logger    arbor.ILogger
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(jobs ScheduledJobs, logger arbor.ILogger) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: jobs,
		logger:    logger,
	}
}

// ListHandler handles GET /api/scheduler/jobs
func (h *SchedulerHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, h.scheduler.GetAllJobStatuses())
}

// TriggerHandler handles POST /api/scheduler/jobs/{name}/trigger
func (h *SchedulerHandler) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/scheduler/jobs/")
	name, action, ok := strings.Cut(rest, "/")
	if !ok || action != "trigger" || name == "" {
		WriteError(w, http.StatusNotFound, "Unknown scheduler route")
		return
	}

	if err := h.scheduler.TriggerJob(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().Str("job_name", name).Msg("Scheduled job triggered manually")
	WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":  "started",
		"message": "Job triggered",
	})
}
