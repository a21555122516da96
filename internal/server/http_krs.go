package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/groblegark/okrd/internal/events"
	"github.com/groblegark/okrd/internal/idgen"
	"github.com/groblegark/okrd/internal/model"
	"github.com/groblegark/okrd/internal/progress"
	"github.com/groblegark/okrd/internal/store"
)

type createKeyResultInput struct {
	ObjectiveID string  `json:"objective_id"`
	Title       string  `json:"title"`
	KrType      string  `json:"kr_type"`
	StartValue  float64 `json:"start_value"`
	TargetValue float64 `json:"target_value"`
	Unit        string  `json:"unit"`
	Direction   string  `json:"direction"`
	Year        int     `json:"year"`
	CreatedBy   string  `json:"created_by"`
}

type updateKeyResultInput struct {
	Title *string `json:"title"`
	Unit  *string `json:"unit"`
}

// handleCreateKeyResult handles POST /v1/krs.
func (s *OkrServer) handleCreateKeyResult(w http.ResponseWriter, r *http.Request) {
	var in createKeyResultInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	kr, err := s.createKeyResult(r.Context(), in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, kr)
}

func (s *OkrServer) createKeyResult(ctx context.Context, in createKeyResultInput) (*model.KeyResult, error) {
	now := time.Now().UTC()
	kr := &model.KeyResult{
		ObjectiveID: in.ObjectiveID,
		Title:       in.Title,
		KrType:      model.KrType(in.KrType),
		StartValue:  in.StartValue,
		TargetValue: in.TargetValue,
		Unit:        in.Unit,
		Direction:   model.Direction(in.Direction),
		Year:        in.Year,
		CreatedAt:   now,
		CreatedBy:   in.CreatedBy,
		UpdatedAt:   now,
	}
	if kr.Direction == "" {
		kr.Direction = model.DirectionIncrease
	}
	if kr.Year == 0 {
		kr.Year = now.Year()
	}
	// Binary types measure done/not-done; normalize the scale so progress
	// math holds regardless of what the caller sent.
	if kr.KrType.Binary() {
		kr.StartValue = 0
		kr.TargetValue = 1
	}
	if err := model.ValidateKeyResult(kr); err != nil {
		return nil, inputError(err.Error())
	}

	if _, err := s.store.GetObjective(ctx, in.ObjectiveID); errors.Is(err, sql.ErrNoRows) {
		return nil, inputError("objective not found: " + in.ObjectiveID)
	} else if err != nil {
		return nil, fmt.Errorf("get objective: %w", err)
	}

	id, err := idgen.Generate(idgen.KrPrefix)
	if err != nil {
		return nil, fmt.Errorf("generate kr id: %w", err)
	}
	kr.ID = id

	if err := s.store.CreateKeyResult(ctx, kr); err != nil {
		return nil, fmt.Errorf("create key result: %w", err)
	}

	s.recordAndPublish(ctx, events.TopicKrCreated, kr.ID, kr.CreatedBy, events.KrCreated{KeyResult: kr})
	return kr, nil
}

// handleListKeyResults handles GET /v1/krs.
func (s *OkrServer) handleListKeyResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.KeyResultFilter{
		ObjectiveID: q.Get("objective"),
		PlanID:      q.Get("plan"),
		Search:      q.Get("search"),
		Sort:        q.Get("sort"),
	}

	if v := q.Get("type"); v != "" {
		for _, t := range strings.Split(v, ",") {
			filter.KrType = append(filter.KrType, model.KrType(t))
		}
	}
	if v := q.Get("direction"); v != "" {
		for _, d := range strings.Split(v, ",") {
			filter.Direction = append(filter.Direction, model.Direction(d))
		}
	}
	if v := q.Get("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Year = &n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	krs, total, err := s.store.ListKeyResults(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list key results")
		return
	}

	// Ensure krs is never null in JSON output.
	if krs == nil {
		krs = []*model.KeyResult{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"key_results": krs,
		"total":       total,
	})
}

// handleGetKeyResult handles GET /v1/krs/{id}. The response carries the KR's
// check-ins, quarterly targets, and linked tasks.
func (s *OkrServer) handleGetKeyResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	kr, err := s.store.GetKeyResult(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "key result not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get key result")
		return
	}

	writeJSON(w, http.StatusOK, kr)
}

// handleUpdateKeyResult handles PATCH /v1/krs/{id}.
// The measurement definition (type, start, target, direction, year) is
// immutable once created; only the title and unit can change. Measurement
// happens through check-ins.
func (s *OkrServer) handleUpdateKeyResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in updateKeyResultInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	kr, err := s.updateKeyResult(r.Context(), id, in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "key result not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, kr)
}

func (s *OkrServer) updateKeyResult(ctx context.Context, id string, in updateKeyResultInput) (*model.KeyResult, error) {
	kr, err := s.store.GetKeyResult(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	if in.Title != nil && *in.Title != kr.Title {
		kr.Title = *in.Title
		changes["title"] = *in.Title
	}
	if in.Unit != nil && *in.Unit != kr.Unit {
		kr.Unit = *in.Unit
		changes["unit"] = *in.Unit
	}

	if len(changes) == 0 {
		return kr, nil
	}

	if err := model.ValidateKeyResult(kr); err != nil {
		return nil, inputError(err.Error())
	}
	if err := s.store.UpdateKeyResult(ctx, kr); err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicKrUpdated, kr.ID, "", events.KrUpdated{KeyResult: kr, Changes: changes})
	return kr, nil
}

// handleDeleteKeyResult handles DELETE /v1/krs/{id}.
func (s *OkrServer) handleDeleteKeyResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeleteKeyResult(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "key result not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete key result")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicKrDeleted, id, "", events.KrDeleted{KrID: id})

	w.WriteHeader(http.StatusNoContent)
}

type addCheckInInput struct {
	Value      float64    `json:"value"`
	Note       string     `json:"note"`
	RecordedAt *time.Time `json:"recorded_at"`
	RecordedBy string     `json:"recorded_by"`
}

// handleAddCheckIn handles POST /v1/krs/{id}/checkins.
// Check-ins are append-only. The check-in and the recomputation run in one
// transaction so the previous_value snapshot is consistent; the pace-changed
// event fires when the new reading moves the KR between pace buckets.
func (s *OkrServer) handleAddCheckIn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in addCheckInInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	checkIn, paceEvent, err := s.addCheckIn(r.Context(), id, in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "key result not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordAndPublish(r.Context(), events.TopicCheckInRecorded, id, checkIn.RecordedBy, events.CheckInRecorded{CheckIn: checkIn})
	if paceEvent != nil {
		s.recordAndPublish(r.Context(), events.TopicPaceChanged, id, checkIn.RecordedBy, *paceEvent)
	}

	writeJSON(w, http.StatusCreated, checkIn)
}

func (s *OkrServer) addCheckIn(ctx context.Context, krID string, in addCheckInInput) (*model.CheckIn, *events.PaceChanged, error) {
	recordedAt := time.Now().UTC()
	if in.RecordedAt != nil {
		recordedAt = in.RecordedAt.UTC()
	}

	var (
		checkIn   *model.CheckIn
		paceEvent *events.PaceChanged
	)
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		kr, err := tx.GetKeyResult(ctx, krID)
		if err != nil {
			return err
		}

		before := progress.ComputeKr(kr, kr.CheckIns, kr.Tasks, kr.Year, recordedAt)

		id, err := idgen.Generate(idgen.CheckInPrefix)
		if err != nil {
			return fmt.Errorf("generate check-in id: %w", err)
		}
		checkIn = &model.CheckIn{
			ID:            id,
			KrID:          krID,
			Value:         in.Value,
			PreviousValue: before.CurrentValue,
			Note:          in.Note,
			RecordedAt:    recordedAt,
			RecordedBy:    in.RecordedBy,
		}
		if err := model.ValidateCheckIn(checkIn); err != nil {
			return inputError(err.Error())
		}
		if err := tx.AddCheckIn(ctx, checkIn); err != nil {
			return fmt.Errorf("add check-in: %w", err)
		}

		after := progress.ComputeKr(kr, append(kr.CheckIns, checkIn), kr.Tasks, kr.Year, recordedAt)
		if after.PaceStatus != before.PaceStatus {
			paceEvent = &events.PaceChanged{
				KrID:     krID,
				Previous: before.PaceStatus,
				Current:  after.PaceStatus,
				Progress: after.Progress,
				Expected: after.Expected,
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return checkIn, paceEvent, nil
}

// handleGetCheckIns handles GET /v1/krs/{id}/checkins.
func (s *OkrServer) handleGetCheckIns(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	checkIns, err := s.store.GetCheckIns(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get check-ins")
		return
	}

	if checkIns == nil {
		checkIns = []*model.CheckIn{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"check_ins": checkIns,
		"total":     len(checkIns),
	})
}

// handleKrProgress handles GET /v1/krs/{id}/progress.
// Returns the raw engine output including the unclamped overshoot ratio.
func (s *OkrServer) handleKrProgress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	kr, err := s.store.GetKeyResult(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "key result not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get key result")
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

	writeJSON(w, http.StatusOK, krProgressAsOf(kr, asOf))
}

type setQuarterTargetInput struct {
	Quarter     int     `json:"quarter"`
	TargetValue float64 `json:"target_value"`
}

// handleSetQuarterTarget handles PUT /v1/krs/{id}/quarters.
// Upserts the target for the given quarter.
func (s *OkrServer) handleSetQuarterTarget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in setQuarterTargetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	qt := &model.QuarterTarget{
		KrID:        id,
		Quarter:     in.Quarter,
		TargetValue: in.TargetValue,
	}
	if err := model.ValidateQuarterTarget(qt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	qtID, err := idgen.Generate(idgen.QuarterPrefix)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate id")
		return
	}
	qt.ID = qtID

	if err := s.store.SetQuarterTarget(r.Context(), qt); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to set quarter target")
		return
	}

	writeJSON(w, http.StatusOK, qt)
}

// handleGetQuarterTargets handles GET /v1/krs/{id}/quarters.
func (s *OkrServer) handleGetQuarterTargets(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	quarters, err := s.store.GetQuarterTargets(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get quarter targets")
		return
	}

	if quarters == nil {
		quarters = []*model.QuarterTarget{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"quarters": quarters,
		"total":    len(quarters),
	})
}

// handleDeleteQuarterTarget handles DELETE /v1/krs/{id}/quarters/{quarter}.
func (s *OkrServer) handleDeleteQuarterTarget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	quarter, err := strconv.Atoi(r.PathValue("quarter"))
	if err != nil || quarter < 1 || quarter > 4 {
		writeError(w, http.StatusBadRequest, "quarter must be between 1 and 4")
		return
	}

	if err := s.store.DeleteQuarterTarget(r.Context(), id, quarter); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "quarter target not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete quarter target")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
