package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/groblegark/okrd/internal/events"
	"github.com/groblegark/okrd/internal/idgen"
	"github.com/groblegark/okrd/internal/model"
)

type createObjectiveInput struct {
	PlanID    string `json:"plan_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
}

type updateObjectiveInput struct {
	Code *string `json:"code"`
	Name *string `json:"name"`
}

// handleCreateObjective handles POST /v1/objectives.
func (s *OkrServer) handleCreateObjective(w http.ResponseWriter, r *http.Request) {
	var in createObjectiveInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	obj, err := s.createObjective(r.Context(), in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, obj)
}

func (s *OkrServer) createObjective(ctx context.Context, in createObjectiveInput) (*model.Objective, error) {
	now := time.Now().UTC()
	obj := &model.Objective{
		PlanID:    in.PlanID,
		Code:      in.Code,
		Name:      in.Name,
		CreatedAt: now,
		CreatedBy: in.CreatedBy,
		UpdatedAt: now,
	}
	if err := model.ValidateObjective(obj); err != nil {
		return nil, inputError(err.Error())
	}

	// Reject objectives pointing at a plan that does not exist; the foreign
	// key would catch it anyway but the error message is friendlier here.
	if _, err := s.store.GetPlan(ctx, in.PlanID); errors.Is(err, sql.ErrNoRows) {
		return nil, inputError("plan not found: " + in.PlanID)
	} else if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}

	id, err := idgen.Generate(idgen.ObjectivePrefix)
	if err != nil {
		return nil, fmt.Errorf("generate objective id: %w", err)
	}
	obj.ID = id

	if err := s.store.CreateObjective(ctx, obj); err != nil {
		return nil, fmt.Errorf("create objective: %w", err)
	}

	s.recordAndPublish(ctx, events.TopicObjectiveCreated, obj.ID, obj.CreatedBy, events.ObjectiveCreated{Objective: obj})
	return obj, nil
}

// handleListObjectives handles GET /v1/objectives?plan=<id>.
func (s *OkrServer) handleListObjectives(w http.ResponseWriter, r *http.Request) {
	planID := r.URL.Query().Get("plan")
	if planID == "" {
		writeError(w, http.StatusBadRequest, "plan is required")
		return
	}

	objs, err := s.store.ListObjectives(r.Context(), planID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list objectives")
		return
	}

	if objs == nil {
		objs = []*model.Objective{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"objectives": objs,
		"total":      len(objs),
	})
}

// handleGetObjective handles GET /v1/objectives/{id}.
func (s *OkrServer) handleGetObjective(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	obj, err := s.store.GetObjective(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "objective not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get objective")
		return
	}

	writeJSON(w, http.StatusOK, obj)
}

// handleUpdateObjective handles PATCH /v1/objectives/{id}.
func (s *OkrServer) handleUpdateObjective(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in updateObjectiveInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	obj, err := s.updateObjective(r.Context(), id, in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "objective not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, obj)
}

func (s *OkrServer) updateObjective(ctx context.Context, id string, in updateObjectiveInput) (*model.Objective, error) {
	obj, err := s.store.GetObjective(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	if in.Code != nil && *in.Code != obj.Code {
		obj.Code = *in.Code
		changes["code"] = *in.Code
	}
	if in.Name != nil && *in.Name != obj.Name {
		obj.Name = *in.Name
		changes["name"] = *in.Name
	}

	if len(changes) == 0 {
		return obj, nil
	}

	if err := model.ValidateObjective(obj); err != nil {
		return nil, inputError(err.Error())
	}
	if err := s.store.UpdateObjective(ctx, obj); err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicObjectiveUpdated, obj.ID, "", events.ObjectiveUpdated{Objective: obj, Changes: changes})
	return obj, nil
}

// handleDeleteObjective handles DELETE /v1/objectives/{id}.
func (s *OkrServer) handleDeleteObjective(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeleteObjective(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "objective not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete objective")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicObjectiveDeleted, id, "", events.ObjectiveDeleted{ObjectiveID: id})

	w.WriteHeader(http.StatusNoContent)
}
