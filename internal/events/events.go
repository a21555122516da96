package events

import (
	"context"

	"github.com/groblegark/okrd/internal/model"
)

// Event topic constants
const (
	TopicPlanCreated = "okr.plan.created"
	TopicPlanUpdated = "okr.plan.updated"
	TopicPlanDeleted = "okr.plan.deleted"

	TopicObjectiveCreated = "okr.objective.created"
	TopicObjectiveUpdated = "okr.objective.updated"
	TopicObjectiveDeleted = "okr.objective.deleted"

	TopicKrCreated = "okr.kr.created"
	TopicKrUpdated = "okr.kr.updated"
	TopicKrDeleted = "okr.kr.deleted"

	TopicCheckInRecorded = "okr.checkin.recorded"

	TopicTaskCreated = "okr.task.created"
	TopicTaskUpdated = "okr.task.updated"
	TopicTaskDeleted = "okr.task.deleted"

	// Emitted alongside a check-in when the recomputed pace bucket differs
	// from the one before the check-in.
	TopicPaceChanged = "okr.pace.changed"
)

// Event types

type PlanCreated struct {
	Plan *model.Plan `json:"plan"`
}

type PlanUpdated struct {
	Plan    *model.Plan    `json:"plan"`
	Changes map[string]any `json:"changes"` // field name -> new value
}

type PlanDeleted struct {
	PlanID string `json:"plan_id"`
}

type ObjectiveCreated struct {
	Objective *model.Objective `json:"objective"`
}

type ObjectiveUpdated struct {
	Objective *model.Objective `json:"objective"`
	Changes   map[string]any   `json:"changes"`
}

type ObjectiveDeleted struct {
	ObjectiveID string `json:"objective_id"`
}

type KrCreated struct {
	KeyResult *model.KeyResult `json:"key_result"`
}

type KrUpdated struct {
	KeyResult *model.KeyResult `json:"key_result"`
	Changes   map[string]any   `json:"changes"`
}

type KrDeleted struct {
	KrID string `json:"kr_id"`
}

type CheckInRecorded struct {
	CheckIn *model.CheckIn `json:"check_in"`
}

type TaskCreated struct {
	Task *model.Task `json:"task"`
}

type TaskUpdated struct {
	Task    *model.Task    `json:"task"`
	Changes map[string]any `json:"changes"`
}

type TaskDeleted struct {
	TaskID string `json:"task_id"`
}

type PaceChanged struct {
	KrID     string           `json:"kr_id"`
	Previous model.PaceStatus `json:"previous"`
	Current  model.PaceStatus `json:"current"`
	Progress float64          `json:"progress"`
	Expected float64          `json:"expected"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
