package server

import (
	"encoding/json"
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *OkrServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/plans", s.handleCreatePlan)
	mux.HandleFunc("GET /v1/plans", s.handleListPlans)
	mux.HandleFunc("GET /v1/plans/{id}", s.handleGetPlan)
	mux.HandleFunc("PATCH /v1/plans/{id}", s.handleUpdatePlan)
	mux.HandleFunc("DELETE /v1/plans/{id}", s.handleDeletePlan)
	mux.HandleFunc("GET /v1/plans/{id}/progress", s.handlePlanProgress)
	mux.HandleFunc("GET /v1/plans/{id}/mindmap", s.handleMindmap)
	mux.HandleFunc("PUT /v1/plans/{id}/mindmap/positions", s.handleSavePositions)
	mux.HandleFunc("DELETE /v1/plans/{id}/mindmap/positions", s.handleResetPositions)
	mux.HandleFunc("POST /v1/objectives", s.handleCreateObjective)
	mux.HandleFunc("GET /v1/objectives", s.handleListObjectives)
	mux.HandleFunc("GET /v1/objectives/{id}", s.handleGetObjective)
	mux.HandleFunc("PATCH /v1/objectives/{id}", s.handleUpdateObjective)
	mux.HandleFunc("DELETE /v1/objectives/{id}", s.handleDeleteObjective)
	mux.HandleFunc("POST /v1/krs", s.handleCreateKeyResult)
	mux.HandleFunc("GET /v1/krs", s.handleListKeyResults)
	mux.HandleFunc("GET /v1/krs/{id}", s.handleGetKeyResult)
	mux.HandleFunc("PATCH /v1/krs/{id}", s.handleUpdateKeyResult)
	mux.HandleFunc("DELETE /v1/krs/{id}", s.handleDeleteKeyResult)
	mux.HandleFunc("POST /v1/krs/{id}/checkins", s.handleAddCheckIn)
	mux.HandleFunc("GET /v1/krs/{id}/checkins", s.handleGetCheckIns)
	mux.HandleFunc("GET /v1/krs/{id}/progress", s.handleKrProgress)
	mux.HandleFunc("PUT /v1/krs/{id}/quarters", s.handleSetQuarterTarget)
	mux.HandleFunc("GET /v1/krs/{id}/quarters", s.handleGetQuarterTargets)
	mux.HandleFunc("DELETE /v1/krs/{id}/quarters/{quarter}", s.handleDeleteQuarterTarget)
	mux.HandleFunc("POST /v1/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /v1/tasks", s.handleListTasks)
	mux.HandleFunc("GET /v1/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PATCH /v1/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /v1/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("POST /v1/tasks/{id}/complete", s.handleCompleteTask)
	mux.HandleFunc("PUT /v1/configs/{key...}", s.handleSetConfig)
	mux.HandleFunc("GET /v1/configs/{key...}", s.handleGetConfig)
	mux.HandleFunc("GET /v1/configs", s.handleListConfigs)
	mux.HandleFunc("DELETE /v1/configs/{key...}", s.handleDeleteConfig)
	mux.HandleFunc("GET /v1/stats", s.handleGetStats)
	mux.HandleFunc("GET /v1/events/{id}", s.handleGetEvents)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, RecoveryMiddleware(LoggingMiddleware(mux)))
}

// handleHealth handles GET /v1/health.
func (s *OkrServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
