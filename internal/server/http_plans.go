package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/groblegark/okrd/internal/events"
	"github.com/groblegark/okrd/internal/idgen"
	"github.com/groblegark/okrd/internal/model"
	"github.com/groblegark/okrd/internal/progress"
)

type createPlanInput struct {
	Year      int    `json:"year"`
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
}

type updatePlanInput struct {
	Year *int    `json:"year"`
	Name *string `json:"name"`
}

// handleCreatePlan handles POST /v1/plans.
func (s *OkrServer) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var in createPlanInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	plan, err := s.createPlan(r.Context(), in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, plan)
}

func (s *OkrServer) createPlan(ctx context.Context, in createPlanInput) (*model.Plan, error) {
	now := time.Now().UTC()
	plan := &model.Plan{
		Year:      in.Year,
		Name:      in.Name,
		CreatedAt: now,
		CreatedBy: in.CreatedBy,
		UpdatedAt: now,
	}
	if err := model.ValidatePlan(plan); err != nil {
		return nil, inputError(err.Error())
	}

	id, err := idgen.Generate(idgen.PlanPrefix)
	if err != nil {
		return nil, fmt.Errorf("generate plan id: %w", err)
	}
	plan.ID = id

	if err := s.store.CreatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	s.recordAndPublish(ctx, events.TopicPlanCreated, plan.ID, plan.CreatedBy, events.PlanCreated{Plan: plan})
	return plan, nil
}

// handleListPlans handles GET /v1/plans.
func (s *OkrServer) handleListPlans(w http.ResponseWriter, r *http.Request) {
	year := 0
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = n
	}

	plans, err := s.store.ListPlans(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list plans")
		return
	}

	// Ensure plans is never null in JSON output.
	if plans == nil {
		plans = []*model.Plan{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"plans": plans,
		"total": len(plans),
	})
}

// handleGetPlan handles GET /v1/plans/{id}. The response includes the full
// objective and key-result tree.
func (s *OkrServer) handleGetPlan(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, plan)
}

// handleUpdatePlan handles PATCH /v1/plans/{id}.
func (s *OkrServer) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in updatePlanInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	plan, err := s.updatePlan(r.Context(), id, in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "plan not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

func (s *OkrServer) updatePlan(ctx context.Context, id string, in updatePlanInput) (*model.Plan, error) {
	plan, err := s.store.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	if in.Year != nil && *in.Year != plan.Year {
		plan.Year = *in.Year
		changes["year"] = *in.Year
	}
	if in.Name != nil && *in.Name != plan.Name {
		plan.Name = *in.Name
		changes["name"] = *in.Name
	}

	if len(changes) == 0 {
		return plan, nil
	}

	if err := model.ValidatePlan(plan); err != nil {
		return nil, inputError(err.Error())
	}
	if err := s.store.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicPlanUpdated, plan.ID, "", events.PlanUpdated{Plan: plan, Changes: changes})
	return plan, nil
}

// handleDeletePlan handles DELETE /v1/plans/{id}. Objectives, key results,
// and check-ins under the plan are removed by cascade.
func (s *OkrServer) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeletePlan(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "plan not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete plan")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicPlanDeleted, id, "", events.PlanDeleted{PlanID: id})

	w.WriteHeader(http.StatusNoContent)
}

// handlePlanProgress handles GET /v1/plans/{id}/progress.
// Returns the plan, objective, and KR level progress snapshot with pace
// statuses mapped for display (finished KRs read "complete").
func (s *OkrServer) handlePlanProgress(w http.ResponseWriter, r *http.Request) {
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

	asOf := time.Now().UTC()
	if v := r.URL.Query().Get("as_of"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid as_of, want RFC 3339")
			return
		}
		asOf = t
	}

	pp := computePlanProgress(plan, asOf)
	writeJSON(w, http.StatusOK, pp)
}

// computePlanProgress runs the progress engine over a fully loaded plan tree
// and applies the display mapping to every pace status.
func computePlanProgress(plan *model.Plan, asOf time.Time) progress.PlanProgress {
	objectives := make([]progress.ObjectiveProgress, 0, len(plan.Objectives))
	for _, obj := range plan.Objectives {
		krs := make([]progress.KrProgress, 0, len(obj.KeyResults))
		for _, kr := range obj.KeyResults {
			kp := progress.ComputeKr(kr, kr.CheckIns, kr.Tasks, plan.Year, asOf)
			kp.PaceStatus = progress.Display(kp.Progress, kp.PaceStatus)
			krs = append(krs, kp)
		}
		op := progress.ComputeObjective(obj.ID, krs, plan.Year, asOf)
		op.PaceStatus = progress.Display(op.Progress, op.PaceStatus)
		objectives = append(objectives, op)
	}
	pp := progress.ComputePlan(plan.ID, objectives, plan.Year, asOf)
	pp.PaceStatus = progress.Display(pp.Progress, pp.PaceStatus)
	return pp
}
