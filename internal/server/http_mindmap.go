package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/groblegark/okrd/internal/mindmap"
	"github.com/groblegark/okrd/internal/model"
	"github.com/groblegark/okrd/internal/progress"
)

// mindmapResponse is the positioned graph returned by GET /v1/plans/{id}/mindmap.
type mindmapResponse struct {
	PlanID string               `json:"plan_id"`
	Layout string               `json:"layout"`
	Nodes  []*mindmap.Node      `json:"nodes"`
	Edges  []*mindmap.Edge      `json:"edges"`
	Config mindmap.LayoutConfig `json:"config"`
}

// handleMindmap handles GET /v1/plans/{id}/mindmap.
// Query params: layout=tree|radial|focus (default tree), focus=<node id>,
// direction=TB|LR, show_tasks, show_quarters, node_spacing, level_spacing.
// Saved custom positions for the requested layout are layered over the
// computed coordinates.
func (s *OkrServer) handleMindmap(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	plan, err := s.store.GetPlan(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get plan")
		return
	}

	q := r.URL.Query()
	layout := q.Get("layout")
	if layout == "" {
		layout = "tree"
	}

	cfg := mindmap.DefaultLayoutConfig()
	if v := q.Get("direction"); v == "TB" || v == "LR" {
		cfg.Direction = v
	}
	if v := q.Get("show_tasks"); v != "" {
		cfg.ShowTasks = v == "true" || v == "1"
	}
	if v := q.Get("show_quarters"); v != "" {
		cfg.ShowQuarters = v == "true" || v == "1"
	}
	if v := q.Get("node_spacing"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.NodeSpacing = f
		}
	}
	if v := q.Get("level_spacing"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.LevelSpacing = f
		}
	}

	nodes, edges := mindmap.Transform(plan, planMetrics(plan, time.Now().UTC()), cfg)

	var positions map[string]mindmap.Position
	switch layout {
	case "tree":
		positions = mindmap.TreeLayout(nodes, edges, cfg)
	case "radial":
		positions = mindmap.RadialLayout(nodes, edges, cfg)
	case "focus":
		positions = mindmap.FocusLayout(nodes, edges, q.Get("focus"), cfg)
	default:
		writeError(w, http.StatusBadRequest, "invalid layout, want tree, radial, or focus")
		return
	}
	nodes = mindmap.ApplyLayout(nodes, positions)

	// Layer saved custom positions over the computed coordinates.
	if saved, err := s.store.GetLayout(r.Context(), id, layout); err == nil && len(saved.Positions) > 0 {
		var custom map[string]mindmap.Position
		if err := json.Unmarshal(saved.Positions, &custom); err == nil {
			nodes = mindmap.ApplyLayout(nodes, custom)
		}
	}

	writeJSON(w, http.StatusOK, mindmapResponse{
		PlanID: id,
		Layout: layout,
		Nodes:  nodes,
		Edges:  edges,
		Config: cfg,
	})
}

// planMetrics runs the progress engine over the plan tree and flattens the
// results into the per-entity metric map the mindmap transform consumes.
func planMetrics(plan *model.Plan, asOf time.Time) map[string]mindmap.Metric {
	metrics := make(map[string]mindmap.Metric)
	pp := computePlanProgress(plan, asOf)
	metrics[pp.PlanID] = mindmap.Metric{Progress: pp.Progress, PaceStatus: pp.PaceStatus}
	for _, op := range pp.Objectives {
		metrics[op.ObjectiveID] = mindmap.Metric{Progress: op.Progress, PaceStatus: op.PaceStatus}
		for _, kp := range op.KeyResults {
			metrics[kp.KrID] = mindmap.Metric{
				Progress:     kp.Progress,
				PaceStatus:   kp.PaceStatus,
				CurrentValue: kp.CurrentValue,
			}
		}
	}
	return metrics
}

type savePositionsInput struct {
	View      string                      `json:"view"` // tree, radial, or focus
	Positions map[string]mindmap.Position `json:"positions"`
}

// handleSavePositions handles PUT /v1/plans/{id}/mindmap/positions.
// Partial maps are fine; unsaved nodes keep their computed coordinates.
func (s *OkrServer) handleSavePositions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in savePositionsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.View == "" {
		in.View = "tree"
	}
	if in.View != "tree" && in.View != "radial" && in.View != "focus" {
		writeError(w, http.StatusBadRequest, "invalid view, want tree, radial, or focus")
		return
	}

	raw, err := json.Marshal(in.Positions)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid positions")
		return
	}

	layout := &model.Layout{PlanID: id, View: in.View, Positions: raw}
	if err := s.store.SaveLayout(r.Context(), layout); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save positions")
		return
	}

	writeJSON(w, http.StatusOK, layout)
}

// handleResetPositions handles DELETE /v1/plans/{id}/mindmap/positions.
// Removes the saved custom positions so the computed layout shows again.
func (s *OkrServer) handleResetPositions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	view := r.URL.Query().Get("view")
	if view == "" {
		view = "tree"
	}

	if err := s.store.DeleteLayout(r.Context(), id, view); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "no saved positions")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to reset positions")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// krProgressAsOf computes a single KR's progress for display endpoints.
func krProgressAsOf(kr *model.KeyResult, asOf time.Time) progress.KrProgress {
	kp := progress.ComputeKr(kr, kr.CheckIns, kr.Tasks, kr.Year, asOf)
	kp.PaceStatus = progress.Display(kp.Progress, kp.PaceStatus)
	return kp
}
