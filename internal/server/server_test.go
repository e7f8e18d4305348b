package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/app"
	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/handlers"
	"github.com/ternarybob/stackscout/internal/services/scheduler"
)

// newTestServer wires handlers without backing services; only routes that
// answer before touching a service are exercised
func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := arbor.NewLogger()
	ws := handlers.NewWebSocketHandler(logger, 0)
	t.Cleanup(ws.Close)

	application := &app.App{
		Config:           common.NewDefaultConfig(),
		Logger:           logger,
		APIHandler:       handlers.NewAPIHandler(logger),
		WSHandler:        ws,
		RepoHandler:      handlers.NewRepoHandler(nil, nil, logger),
		ExtractHandler:   handlers.NewExtractHandler(nil, false, logger),
		SearchHandler:    handlers.NewSearchHandler(nil, logger),
		JobsHandler:      handlers.NewJobsHandler(nil, nil, nil, nil, nil, logger),
		SchedulerHandler: handlers.NewSchedulerHandler(scheduler.NewService(logger), logger),
	}
	return New(application)
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRoutes_Health(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutes_UnknownPathIsJSON404(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodGet, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"path":"/api/nope"`)
}

func TestRoutes_MethodRouting(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusMethodNotAllowed, serve(s, http.MethodPut, "/api/jobs/saved").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(s, http.MethodPost, "/api/jobs/saved/job_1").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(s, http.MethodGet, "/api/extract").Code)
	assert.Equal(t, http.StatusBadRequest, serve(s, http.MethodDelete, "/api/jobs/saved/").Code)
	assert.Equal(t, http.StatusBadRequest, serve(s, http.MethodGet, "/api/repos/").Code)

	rec := serve(s, http.MethodPut, "/api/jobs/saved/job_1")
	assert.Equal(t, "DELETE, GET", rec.Header().Get("Allow"))
}

func TestRoutes_RequestID(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodGet, "/api/health")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "trace-42")
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "trace-42", rec.Header().Get("X-Request-ID"))
}

func TestRoutes_ExtractLocalPathRefused(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(`{"path":"/etc"}`))
	req.Header.Set("Origin", "https://attacker.example")
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Local path extraction is disabled")
}

func TestRoutes_Preflight(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodOptions, "/api/search")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestRoutes_SchedulerList(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodGet, "/api/scheduler/jobs")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(s, http.MethodPost, "/api/scheduler/jobs/missing/trigger")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	s := newTestServer(t)
	h := s.withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/anything", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestRoutes_WebSocketBypassesMiddleware(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg handlers.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "connected", msg.Type)
}
