package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - System
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	// API routes - Repository scan and export
	mux.HandleFunc("/api/repos/", s.app.RepoHandler.ScanHandler)        // GET /{username}
	mux.HandleFunc("/api/export/", s.app.RepoHandler.ExportHandler)     // GET /{username}.pdf
	mux.HandleFunc("/api/extract", s.app.ExtractHandler.ExtractHandler) // POST

	// API routes - Vector search
	mux.HandleFunc("/api/collections", s.app.SearchHandler.CollectionsHandler)
	mux.HandleFunc("/api/collections/", s.app.SearchHandler.CollectionInfoHandler) // GET /{name}/info
	mux.HandleFunc("/api/search", s.app.SearchHandler.SearchHandler)
	mux.HandleFunc("/api/search/all", s.app.SearchHandler.SearchAllHandler)

	// API routes - Jobs
	mux.HandleFunc("/api/jobs/search", s.app.JobsHandler.SearchHandler)
	mux.HandleFunc("/api/jobs/runs", s.app.JobsHandler.RunsHandler)
	mux.HandleFunc("/api/jobs/saved", s.handleSavedJobsRoute)
	mux.HandleFunc("/api/jobs/saved/", s.handleSavedJobRoutes)

	// API routes - Scheduler
	mux.HandleFunc("/api/scheduler/jobs", s.app.SchedulerHandler.ListHandler)
	mux.HandleFunc("/api/scheduler/jobs/", s.app.SchedulerHandler.TriggerHandler) // POST /{name}/trigger

	// 404 handler for unmatched API routes
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleSavedJobsRoute routes /api/jobs/saved (GET list, POST create)
func (s *Server) handleSavedJobsRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r, s.app.JobsHandler.ListSavedHandler, s.app.JobsHandler.SaveJobHandler)
}

// handleSavedJobRoutes routes /api/jobs/saved/{id} (GET, DELETE)
func (s *Server) handleSavedJobRoutes(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		http.MethodGet:    s.app.JobsHandler.GetSavedJobHandler,
		http.MethodDelete: s.app.JobsHandler.DeleteSavedJobHandler,
	})
}
