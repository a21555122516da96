package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/groblegark/okrd/internal/model"
	"github.com/groblegark/okrd/internal/progress"
)

// setConfigRequest is the JSON body for PUT /v1/configs/{key}.
type setConfigRequest struct {
	Value json.RawMessage `json:"value"`
}

// handleSetConfig handles PUT /v1/configs/{key}.
func (s *OkrServer) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	var req setConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	config := &model.Config{
		Key:   key,
		Value: req.Value,
	}

	if err := s.store.SetConfig(r.Context(), config); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to set config")
		return
	}

	writeJSON(w, http.StatusOK, config)
}

// handleGetConfig handles GET /v1/configs/{key}.
func (s *OkrServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	config, err := s.store.GetConfig(r.Context(), key)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "config not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get config")
		return
	}

	writeJSON(w, http.StatusOK, config)
}

// handleListConfigs handles GET /v1/configs?namespace=...
// Without a namespace all configs are returned.
func (s *OkrServer) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	var (
		configs []*model.Config
		err     error
	)
	if namespace := r.URL.Query().Get("namespace"); namespace != "" {
		configs, err = s.store.ListConfigs(r.Context(), namespace)
	} else {
		configs, err = s.store.ListAllConfigs(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list configs")
		return
	}

	if configs == nil {
		configs = []*model.Config{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"configs": configs})
}

// handleDeleteConfig handles DELETE /v1/configs/{key}.
func (s *OkrServer) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	if err := s.store.DeleteConfig(r.Context(), key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "config not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete config")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// statsResponse wraps entity counts with a pace breakdown over one year's
// key results.
type statsResponse struct {
	*model.Stats
	Year int                      `json:"year"`
	Pace map[model.PaceStatus]int `json:"pace"`
}

// handleGetStats handles GET /v1/stats?year=...
// The pace breakdown defaults to the current year.
func (s *OkrServer) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	now := time.Now().UTC()
	year := now.Year()
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = n
	}

	pace := make(map[model.PaceStatus]int)
	plans, err := s.store.ListPlans(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list plans")
		return
	}
	for _, p := range plans {
		plan, err := s.store.GetPlan(r.Context(), p.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to get plan")
			return
		}
		for _, obj := range plan.Objectives {
			for _, kr := range obj.KeyResults {
				kp := progress.ComputeKr(kr, kr.CheckIns, kr.Tasks, plan.Year, now)
				pace[progress.Display(kp.Progress, kp.PaceStatus)]++
			}
		}
	}

	writeJSON(w, http.StatusOK, statsResponse{Stats: stats, Year: year, Pace: pace})
}

// handleGetEvents handles GET /v1/events/{id}: the persisted audit trail for
// one entity.
func (s *OkrServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	evts, err := s.store.GetEvents(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get events")
		return
	}

	if evts == nil {
		evts = []*model.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": evts})
}
