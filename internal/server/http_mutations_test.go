package server

import (
	"strings"
	"testing"
	"time"

	"github.com/groblegark/okrd/internal/events"
	"github.com/groblegark/okrd/internal/mindmap"
	"github.com/groblegark/okrd/internal/model"
	"github.com/groblegark/okrd/internal/progress"
)

func TestHandleCreatePlan(t *testing.T) {
	_, ms, handler := newTestServer()

	rec := doJSON(t, handler, "POST", "/v1/plans", map[string]any{
		"year": 2026, "name": "2026 OKRs", "created_by": "alice",
	})
	requireStatus(t, rec, 201)

	var plan model.Plan
	decodeJSON(t, rec, &plan)
	if !strings.HasPrefix(plan.ID, "plan-") {
		t.Errorf("expected plan- prefixed ID, got %q", plan.ID)
	}
	if plan.Year != 2026 || plan.Name != "2026 OKRs" {
		t.Errorf("unexpected plan: %+v", plan)
	}
	if _, ok := ms.plans[plan.ID]; !ok {
		t.Fatal("plan was not stored")
	}
	if len(ms.events) != 1 || ms.events[0].Topic != events.TopicPlanCreated {
		t.Errorf("expected one plan.created event, got %+v", ms.events)
	}
}

func TestHandleUpdatePlan(t *testing.T) {
	_, ms, handler := newTestServer()
	planID, _, _ := seedPlan(ms, 2026)

	rec := doJSON(t, handler, "PATCH", "/v1/plans/"+planID, map[string]any{
		"name": "Renamed",
	})
	requireStatus(t, rec, 200)

	if ms.plans[planID].Name != "Renamed" {
		t.Errorf("name not updated: %q", ms.plans[planID].Name)
	}
	if len(ms.events) != 1 || ms.events[0].Topic != events.TopicPlanUpdated {
		t.Errorf("expected one plan.updated event, got %+v", ms.events)
	}

	// No-op patch publishes nothing.
	rec = doJSON(t, handler, "PATCH", "/v1/plans/"+planID, map[string]any{"name": "Renamed"})
	requireStatus(t, rec, 200)
	if len(ms.events) != 1 {
		t.Errorf("no-op patch published an event: %+v", ms.events)
	}
}

func TestHandleDeletePlan(t *testing.T) {
	_, ms, handler := newTestServer()
	planID, _, _ := seedPlan(ms, 2026)

	rec := doJSON(t, handler, "DELETE", "/v1/plans/"+planID, nil)
	requireStatus(t, rec, 204)

	if _, ok := ms.plans[planID]; ok {
		t.Fatal("plan still present after delete")
	}
	if len(ms.events) != 1 || ms.events[0].Topic != events.TopicPlanDeleted {
		t.Errorf("expected one plan.deleted event, got %+v", ms.events)
	}
}

func TestHandleCreateObjective(t *testing.T) {
	_, ms, handler := newTestServer()
	planID, _, _ := seedPlan(ms, 2026)

	rec := doJSON(t, handler, "POST", "/v1/objectives", map[string]any{
		"plan_id": planID, "code": "O2", "name": "Grow revenue",
	})
	requireStatus(t, rec, 201)

	var obj model.Objective
	decodeJSON(t, rec, &obj)
	if !strings.HasPrefix(obj.ID, "obj-") {
		t.Errorf("expected obj- prefixed ID, got %q", obj.ID)
	}
	if _, ok := ms.objectives[obj.ID]; !ok {
		t.Fatal("objective was not stored")
	}
}

func TestHandleCreateKeyResult(t *testing.T) {
	_, ms, handler := newTestServer()
	_, objID, _ := seedPlan(ms, 2026)

	rec := doJSON(t, handler, "POST", "/v1/krs", map[string]any{
		"objective_id": objID, "title": "NPS above 60", "kr_type": "metric",
		"start_value": 40, "target_value": 60, "unit": "points",
		"direction": "increase", "year": 2026,
	})
	requireStatus(t, rec, 201)

	var kr model.KeyResult
	decodeJSON(t, rec, &kr)
	if !strings.HasPrefix(kr.ID, "kr-") {
		t.Errorf("expected kr- prefixed ID, got %q", kr.ID)
	}
	if kr.StartValue != 40 || kr.TargetValue != 60 {
		t.Errorf("unexpected KR values: %+v", kr)
	}
}

func TestHandleCreateKeyResult_BinaryNormalized(t *testing.T) {
	// Milestone and boolean KRs measure done/not-done; whatever scale the
	// caller sends is normalized to 0..1.
	_, ms, handler := newTestServer()
	_, objID, _ := seedPlan(ms, 2026)

	rec := doJSON(t, handler, "POST", "/v1/krs", map[string]any{
		"objective_id": objID, "title": "Launch v2", "kr_type": "milestone",
		"start_value": 10, "target_value": 500, "year": 2026,
	})
	requireStatus(t, rec, 201)

	var kr model.KeyResult
	decodeJSON(t, rec, &kr)
	if kr.StartValue != 0 || kr.TargetValue != 1 {
		t.Errorf("binary KR not normalized: start=%g target=%g", kr.StartValue, kr.TargetValue)
	}
}

func TestHandleUpdateKeyResult_DefinitionImmutable(t *testing.T) {
	// Only title and unit are mutable; target/start/type silently keep their
	// values because the input struct does not carry them.
	_, ms, handler := newTestServer()
	_, _, krID := seedPlan(ms, 2026)

	rec := doJSON(t, handler, "PATCH", "/v1/krs/"+krID, map[string]any{
		"title": "Revenue (ARR)", "target_value": 9999,
	})
	requireStatus(t, rec, 200)

	kr := ms.krs[krID]
	if kr.Title != "Revenue (ARR)" {
		t.Errorf("title not updated: %q", kr.Title)
	}
	if kr.TargetValue != 100 {
		t.Errorf("target value changed through PATCH: %g", kr.TargetValue)
	}
}

func TestHandleAddCheckIn(t *testing.T) {
	_, ms, handler := newTestServer()
	_, _, krID := seedPlan(ms, 2026)

	rec := doJSON(t, handler, "POST", "/v1/krs/"+krID+"/checkins", map[string]any{
		"value": 30, "note": "good month", "recorded_by": "alice",
	})
	requireStatus(t, rec, 201)

	var ci model.CheckIn
	decodeJSON(t, rec, &ci)
	if !strings.HasPrefix(ci.ID, "ci-") {
		t.Errorf("expected ci- prefixed ID, got %q", ci.ID)
	}
	if ci.Value != 30 || ci.PreviousValue != 0 {
		t.Errorf("unexpected check-in: %+v", ci)
	}
	if len(ms.checkIns[krID]) != 1 {
		t.Fatal("check-in was not stored")
	}

	// Second check-in snapshots the first one's value.
	rec = doJSON(t, handler, "POST", "/v1/krs/"+krID+"/checkins", map[string]any{"value": 45})
	requireStatus(t, rec, 201)
	decodeJSON(t, rec, &ci)
	if ci.PreviousValue != 30 {
		t.Errorf("expected previous_value 30, got %g", ci.PreviousValue)
	}
}

func TestHandleAddCheckIn_PaceChangedEvent(t *testing.T) {
	// A mid-year check-in jumping from 0 to 60/100 crosses from off_track to
	// ahead, so both checkin.recorded and pace.changed must be published.
	_, ms, handler := newTestServer()
	_, _, krID := seedPlan(ms, 2026)

	recordedAt := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	rec := doJSON(t, handler, "POST", "/v1/krs/"+krID+"/checkins", map[string]any{
		"value": 60, "recorded_at": recordedAt.Format(time.RFC3339),
	})
	requireStatus(t, rec, 201)

	var topics []string
	for _, e := range ms.events {
		topics = append(topics, e.Topic)
	}
	if len(topics) != 2 || topics[0] != events.TopicCheckInRecorded || topics[1] != events.TopicPaceChanged {
		t.Fatalf("expected [checkin.recorded, pace.changed], got %v", topics)
	}
}

func TestHandleAddCheckIn_NoPaceEventWithinBucket(t *testing.T) {
	// Mid-year, 0.48/0.5 expected stays on_track after a bump to 0.52: no
	// pace.changed event.
	_, ms, handler := newTestServer()
	_, _, krID := seedPlan(ms, 2026)

	mid := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	ms.checkIns[krID] = []*model.CheckIn{
		{ID: "ci-seed", KrID: krID, Value: 48, RecordedAt: mid.Add(-24 * time.Hour)},
	}

	rec := doJSON(t, handler, "POST", "/v1/krs/"+krID+"/checkins", map[string]any{
		"value": 52, "recorded_at": mid.Format(time.RFC3339),
	})
	requireStatus(t, rec, 201)

	for _, e := range ms.events {
		if e.Topic == events.TopicPaceChanged {
			t.Fatalf("unexpected pace.changed event: %+v", e)
		}
	}
}

func TestHandleKrProgress(t *testing.T) {
	_, ms, handler := newTestServer()
	_, _, krID := seedPlan(ms, 2026)
	mid := time.Date(2026, time.July, 2, 0, 0, 0, 0, time.UTC)
	ms.checkIns[krID] = []*model.CheckIn{
		{ID: "ci-1", KrID: krID, Value: 50, RecordedAt: mid.Add(-time.Hour)},
	}

	rec := doJSON(t, handler, "GET", "/v1/krs/"+krID+"/progress?as_of="+mid.Format(time.RFC3339), nil)
	requireStatus(t, rec, 200)

	var kp progress.KrProgress
	decodeJSON(t, rec, &kp)
	if kp.CurrentValue != 50 || kp.Progress != 0.5 {
		t.Errorf("unexpected progress: %+v", kp)
	}
	if kp.PaceStatus != model.PaceOnTrack {
		t.Errorf("expected on_track, got %s", kp.PaceStatus)
	}
}

func TestHandlePlanProgress_CompleteMapping(t *testing.T) {
	// A KR at target reads "complete" in the dashboard even though the
	// engine itself never emits that status.
	_, ms, handler := newTestServer()
	planID, _, krID := seedPlan(ms, 2026)
	ms.checkIns[krID] = []*model.CheckIn{
		{ID: "ci-1", KrID: krID, Value: 100, RecordedAt: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)},
	}

	asOf := time.Date(2026, time.July, 2, 0, 0, 0, 0, time.UTC)
	rec := doJSON(t, handler, "GET", "/v1/plans/"+planID+"/progress?as_of="+asOf.Format(time.RFC3339), nil)
	requireStatus(t, rec, 200)

	var pp progress.PlanProgress
	decodeJSON(t, rec, &pp)
	if pp.Progress != 1 || pp.Completed != 1 {
		t.Fatalf("unexpected plan progress: %+v", pp)
	}
	if pp.PaceStatus != model.PaceComplete {
		t.Errorf("expected complete, got %s", pp.PaceStatus)
	}
	if pp.Objectives[0].KeyResults[0].PaceStatus != model.PaceComplete {
		t.Errorf("KR pace not mapped: %s", pp.Objectives[0].KeyResults[0].PaceStatus)
	}
}

func TestHandleSetQuarterTarget(t *testing.T) {
	_, ms, handler := newTestServer()
	_, _, krID := seedPlan(ms, 2026)

	rec := doJSON(t, handler, "PUT", "/v1/krs/"+krID+"/quarters", map[string]any{
		"quarter": 2, "target_value": 50,
	})
	requireStatus(t, rec, 200)

	// Upsert replaces, never duplicates.
	rec = doJSON(t, handler, "PUT", "/v1/krs/"+krID+"/quarters", map[string]any{
		"quarter": 2, "target_value": 55,
	})
	requireStatus(t, rec, 200)

	if len(ms.quarters[krID]) != 1 || ms.quarters[krID][0].TargetValue != 55 {
		t.Errorf("unexpected quarters: %+v", ms.quarters[krID])
	}

	rec = doJSON(t, handler, "DELETE", "/v1/krs/"+krID+"/quarters/2", nil)
	requireStatus(t, rec, 204)
	if len(ms.quarters[krID]) != 0 {
		t.Errorf("quarter target not deleted: %+v", ms.quarters[krID])
	}
}

func TestHandleCreateTask(t *testing.T) {
	_, ms, handler := newTestServer()
	_, _, krID := seedPlan(ms, 2026)

	rec := doJSON(t, handler, "POST", "/v1/tasks", map[string]any{
		"kr_id": krID, "title": "Write launch post",
	})
	requireStatus(t, rec, 201)

	var task model.Task
	decodeJSON(t, rec, &task)
	if !strings.HasPrefix(task.ID, "task-") {
		t.Errorf("expected task- prefixed ID, got %q", task.ID)
	}
	if task.Status != model.TaskNotStarted || task.Priority != 2 {
		t.Errorf("unexpected defaults: %+v", task)
	}
	if _, ok := ms.tasks[task.ID]; !ok {
		t.Fatal("task was not stored")
	}
}

func TestHandleCompleteTask(t *testing.T) {
	_, ms, handler := newTestServer()
	now := time.Now().UTC()
	ms.tasks["task-c1"] = &model.Task{
		ID: "task-c1", Title: "Ship", Status: model.TaskInProgress, Priority: 2,
		CreatedAt: now, UpdatedAt: now,
	}

	rec := doJSON(t, handler, "POST", "/v1/tasks/task-c1/complete", nil)
	requireStatus(t, rec, 200)

	var task model.Task
	decodeJSON(t, rec, &task)
	if task.Status != model.TaskCompleted || task.CompletedAt == nil {
		t.Fatalf("task not completed: %+v", task)
	}

	// Completing again is idempotent and publishes nothing new.
	before := len(ms.events)
	rec = doJSON(t, handler, "POST", "/v1/tasks/task-c1/complete", nil)
	requireStatus(t, rec, 200)
	if len(ms.events) != before {
		t.Errorf("idempotent complete published an event")
	}
}

func TestHandleUpdateTask_StatusClearsCompletedAt(t *testing.T) {
	_, ms, handler := newTestServer()
	now := time.Now().UTC()
	ms.tasks["task-u1"] = &model.Task{
		ID: "task-u1", Title: "Ship", Status: model.TaskCompleted, CompletedAt: &now,
		Priority: 2, CreatedAt: now, UpdatedAt: now,
	}

	rec := doJSON(t, handler, "PATCH", "/v1/tasks/task-u1", map[string]any{"status": "in_progress"})
	requireStatus(t, rec, 200)

	if ms.tasks["task-u1"].CompletedAt != nil {
		t.Error("completed_at not cleared on reopen")
	}
}

func TestHandleMindmap(t *testing.T) {
	_, ms, handler := newTestServer()
	planID, _, _ := seedPlan(ms, 2026)

	rec := doJSON(t, handler, "GET", "/v1/plans/"+planID+"/mindmap", nil)
	requireStatus(t, rec, 200)

	var resp mindmapResponse
	decodeJSON(t, rec, &resp)
	if resp.Layout != "tree" {
		t.Errorf("expected default tree layout, got %q", resp.Layout)
	}
	// plan + objective + kr
	if len(resp.Nodes) != 3 || len(resp.Edges) != 2 {
		t.Fatalf("expected 3 nodes 2 edges, got %d/%d", len(resp.Nodes), len(resp.Edges))
	}
	if resp.Nodes[0].Type != mindmap.NodePlan || resp.Nodes[0].Position.X != 0 || resp.Nodes[0].Position.Y != 0 {
		t.Errorf("root not at origin: %+v", resp.Nodes[0])
	}
}

func TestHandleMindmap_InvalidLayout(t *testing.T) {
	_, ms, handler := newTestServer()
	planID, _, _ := seedPlan(ms, 2026)

	rec := doJSON(t, handler, "GET", "/v1/plans/"+planID+"/mindmap?layout=spiral", nil)
	requireStatus(t, rec, 400)
}

func TestHandleMindmap_FocusCoversAllNodes(t *testing.T) {
	_, ms, handler := newTestServer()
	planID, _, krID := seedPlan(ms, 2026)
	now := time.Now().UTC()
	ms.objectives["obj-test2"] = &model.Objective{
		ID: "obj-test2", PlanID: planID, Code: "O2", Name: "Grow", CreatedAt: now, UpdatedAt: now,
	}
	ms.krs["kr-test2"] = &model.KeyResult{
		ID: "kr-test2", ObjectiveID: "obj-test2", Title: "Signups",
		KrType: model.KrCount, StartValue: 0, TargetValue: 50,
		Direction: model.DirectionIncrease, Year: 2026,
		CreatedAt: now, UpdatedAt: now,
	}

	rec := doJSON(t, handler, "GET", "/v1/plans/"+planID+"/mindmap?layout=focus&focus="+krID, nil)
	requireStatus(t, rec, 200)

	var resp mindmapResponse
	decodeJSON(t, rec, &resp)
	if len(resp.Nodes) != 5 {
		t.Fatalf("expected 5 nodes, got %d", len(resp.Nodes))
	}

	// The second objective's branch is outside the focus node's ancestor
	// chain; it still gets its own coordinates instead of stacking at the
	// origin with the focus node.
	at := make(map[mindmap.Position]string, len(resp.Nodes))
	for _, n := range resp.Nodes {
		if other, ok := at[n.Position]; ok {
			t.Errorf("nodes %s and %s stacked at %+v", n.ID, other, n.Position)
		}
		at[n.Position] = n.ID
		if n.ID == krID && (n.Position.X != 0 || n.Position.Y != 0) {
			t.Errorf("focus node at %+v, want (0,0)", n.Position)
		}
	}
}

func TestHandleMindmap_SavedPositionsLayered(t *testing.T) {
	_, ms, handler := newTestServer()
	planID, objID, _ := seedPlan(ms, 2026)

	rec := doJSON(t, handler, "PUT", "/v1/plans/"+planID+"/mindmap/positions", map[string]any{
		"view": "tree",
		"positions": map[string]any{
			objID: map[string]float64{"x": 999, "y": -42},
		},
	})
	requireStatus(t, rec, 200)

	rec = doJSON(t, handler, "GET", "/v1/plans/"+planID+"/mindmap?layout=tree", nil)
	requireStatus(t, rec, 200)

	var resp mindmapResponse
	decodeJSON(t, rec, &resp)
	for _, n := range resp.Nodes {
		if n.ID == objID {
			if n.Position.X != 999 || n.Position.Y != -42 {
				t.Errorf("saved position not layered: %+v", n.Position)
			}
			return
		}
	}
	t.Fatal("objective node missing from response")
}

func TestHandleResetPositions(t *testing.T) {
	_, ms, handler := newTestServer()
	planID, _, _ := seedPlan(ms, 2026)
	ms.layouts[planID+"/tree"] = &model.Layout{PlanID: planID, View: "tree"}

	rec := doJSON(t, handler, "DELETE", "/v1/plans/"+planID+"/mindmap/positions?view=tree", nil)
	requireStatus(t, rec, 204)

	if _, ok := ms.layouts[planID+"/tree"]; ok {
		t.Fatal("layout not deleted")
	}

	rec = doJSON(t, handler, "DELETE", "/v1/plans/"+planID+"/mindmap/positions?view=tree", nil)
	requireStatus(t, rec, 404)
}
