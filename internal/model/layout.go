package model

import (
	"encoding/json"
	"time"
)

// Layout is a saved set of mindmap node positions for one plan and view.
// Positions is a JSON object mapping node ID to {x, y}; the server layers it
// over freshly computed coordinates, so partial maps are fine.
type Layout struct {
	PlanID    string          `json:"plan_id"`
	View      string          `json:"view"`
	Positions json.RawMessage `json:"positions"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Stats holds aggregate entity counts for the stats endpoint.
type Stats struct {
	TotalPlans       int `json:"total_plans"`
	TotalObjectives  int `json:"total_objectives"`
	TotalKeyResults  int `json:"total_key_results"`
	TotalCheckIns    int `json:"total_check_ins"`
	TasksNotStarted  int `json:"tasks_not_started"`
	TasksInProgress  int `json:"tasks_in_progress"`
	TasksCompleted   int `json:"tasks_completed"`
	TasksCancelled   int `json:"tasks_cancelled"`
}
