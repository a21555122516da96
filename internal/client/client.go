// Package client provides a transport-agnostic interface for the okrd service
// and an HTTP/JSON implementation that talks to the okrd REST API.
package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/groblegark/okrd/internal/mindmap"
	"github.com/groblegark/okrd/internal/model"
	"github.com/groblegark/okrd/internal/progress"
)

// OkrClient is the interface that all okr CLI commands use to communicate
// with the okrd server. It is implemented by HTTPClient (default) and can be
// backed by any transport.
type OkrClient interface {
	// Plans
	CreatePlan(ctx context.Context, req *CreatePlanRequest) (*model.Plan, error)
	GetPlan(ctx context.Context, id string) (*model.Plan, error)
	ListPlans(ctx context.Context, year int) ([]*model.Plan, error)
	UpdatePlan(ctx context.Context, id string, req *UpdatePlanRequest) (*model.Plan, error)
	DeletePlan(ctx context.Context, id string) error
	GetPlanProgress(ctx context.Context, id string, asOf *time.Time) (*progress.PlanProgress, error)
	GetMindmap(ctx context.Context, id string, req *MindmapRequest) (*MindmapResponse, error)
	SavePositions(ctx context.Context, id, view string, positions map[string]mindmap.Position) error
	ResetPositions(ctx context.Context, id, view string) error

	// Objectives
	CreateObjective(ctx context.Context, req *CreateObjectiveRequest) (*model.Objective, error)
	GetObjective(ctx context.Context, id string) (*model.Objective, error)
	ListObjectives(ctx context.Context, planID string) ([]*model.Objective, error)
	UpdateObjective(ctx context.Context, id string, req *UpdateObjectiveRequest) (*model.Objective, error)
	DeleteObjective(ctx context.Context, id string) error

	// Key results
	CreateKeyResult(ctx context.Context, req *CreateKeyResultRequest) (*model.KeyResult, error)
	GetKeyResult(ctx context.Context, id string) (*model.KeyResult, error)
	ListKeyResults(ctx context.Context, req *ListKeyResultsRequest) (*ListKeyResultsResponse, error)
	UpdateKeyResult(ctx context.Context, id string, req *UpdateKeyResultRequest) (*model.KeyResult, error)
	DeleteKeyResult(ctx context.Context, id string) error
	AddCheckIn(ctx context.Context, krID string, req *AddCheckInRequest) (*model.CheckIn, error)
	GetCheckIns(ctx context.Context, krID string) ([]*model.CheckIn, error)
	GetKrProgress(ctx context.Context, krID string, asOf *time.Time) (*progress.KrProgress, error)
	SetQuarterTarget(ctx context.Context, krID string, quarter int, targetValue float64) (*model.QuarterTarget, error)
	GetQuarterTargets(ctx context.Context, krID string) ([]*model.QuarterTarget, error)
	DeleteQuarterTarget(ctx context.Context, krID string, quarter int) error

	// Tasks
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*model.Task, error)
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
	UpdateTask(ctx context.Context, id string, req *UpdateTaskRequest) (*model.Task, error)
	CompleteTask(ctx context.Context, id string) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error

	// Config
	SetConfig(ctx context.Context, key string, value json.RawMessage) (*model.Config, error)
	GetConfig(ctx context.Context, key string) (*model.Config, error)
	ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error)
	DeleteConfig(ctx context.Context, key string) error

	// Aggregates
	GetStats(ctx context.Context, year int) (*StatsResponse, error)
	GetEvents(ctx context.Context, entityID string) ([]*model.Event, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreatePlanRequest holds parameters for creating a plan.
type CreatePlanRequest struct {
	Year      int    `json:"year"`
	Name      string `json:"name"`
	CreatedBy string `json:"created_by,omitempty"`
}

// UpdatePlanRequest holds optional parameters for updating a plan.
// Nil pointer fields mean "don't change".
type UpdatePlanRequest struct {
	Year *int    `json:"year,omitempty"`
	Name *string `json:"name,omitempty"`
}

// CreateObjectiveRequest holds parameters for creating an objective.
type CreateObjectiveRequest struct {
	PlanID    string `json:"plan_id"`
	Code      string `json:"code,omitempty"`
	Name      string `json:"name"`
	CreatedBy string `json:"created_by,omitempty"`
}

// UpdateObjectiveRequest holds optional parameters for updating an objective.
type UpdateObjectiveRequest struct {
	Code *string `json:"code,omitempty"`
	Name *string `json:"name,omitempty"`
}

// CreateKeyResultRequest holds parameters for creating a key result.
type CreateKeyResultRequest struct {
	ObjectiveID string  `json:"objective_id"`
	Title       string  `json:"title"`
	KrType      string  `json:"kr_type"`
	StartValue  float64 `json:"start_value"`
	TargetValue float64 `json:"target_value"`
	Unit        string  `json:"unit,omitempty"`
	Direction   string  `json:"direction,omitempty"`
	Year        int     `json:"year,omitempty"`
	CreatedBy   string  `json:"created_by,omitempty"`
}

// UpdateKeyResultRequest holds the mutable KR fields. The measurement
// definition is immutable; progress moves through check-ins.
type UpdateKeyResultRequest struct {
	Title *string `json:"title,omitempty"`
	Unit  *string `json:"unit,omitempty"`
}

// ListKeyResultsRequest holds parameters for listing key results.
type ListKeyResultsRequest struct {
	ObjectiveID string   `json:"objective_id,omitempty"`
	PlanID      string   `json:"plan_id,omitempty"`
	KrType      []string `json:"kr_type,omitempty"`
	Direction   []string `json:"direction,omitempty"`
	Year        *int     `json:"year,omitempty"`
	Search      string   `json:"search,omitempty"`
	Sort        string   `json:"sort,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	Offset      int      `json:"offset,omitempty"`
}

// ListKeyResultsResponse is the response from ListKeyResults.
type ListKeyResultsResponse struct {
	KeyResults []*model.KeyResult `json:"key_results"`
	Total      int                `json:"total"`
}

// AddCheckInRequest holds parameters for recording a check-in.
type AddCheckInRequest struct {
	Value      float64    `json:"value"`
	Note       string     `json:"note,omitempty"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
	RecordedBy string     `json:"recorded_by,omitempty"`
}

// CreateTaskRequest holds parameters for creating a task.
type CreateTaskRequest struct {
	KrID      string     `json:"kr_id,omitempty"`
	Title     string     `json:"title"`
	Priority  *int       `json:"priority,omitempty"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	CreatedBy string     `json:"created_by,omitempty"`
}

// UpdateTaskRequest holds optional parameters for updating a task.
type UpdateTaskRequest struct {
	KrID     *string    `json:"kr_id,omitempty"`
	Title    *string    `json:"title,omitempty"`
	Status   *string    `json:"status,omitempty"`
	Priority *int       `json:"priority,omitempty"`
	DueAt    *time.Time `json:"due_at,omitempty"`
}

// ListTasksRequest holds parameters for listing tasks.
type ListTasksRequest struct {
	KrID     string   `json:"kr_id,omitempty"`
	Status   []string `json:"status,omitempty"`
	Priority *int     `json:"priority,omitempty"`
	Sort     string   `json:"sort,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Offset   int      `json:"offset,omitempty"`
}

// ListTasksResponse is the response from ListTasks.
type ListTasksResponse struct {
	Tasks []*model.Task `json:"tasks"`
	Total int           `json:"total"`
}

// MindmapRequest holds parameters for fetching a positioned mindmap.
type MindmapRequest struct {
	Layout       string // tree, radial, or focus; empty means tree
	Focus        string // node ID for the focus layout
	Direction    string // TB or LR
	ShowTasks    *bool
	ShowQuarters *bool
}

// MindmapResponse is the positioned graph returned by the server.
type MindmapResponse struct {
	PlanID string               `json:"plan_id"`
	Layout string               `json:"layout"`
	Nodes  []*mindmap.Node      `json:"nodes"`
	Edges  []*mindmap.Edge      `json:"edges"`
	Config mindmap.LayoutConfig `json:"config"`
}

// StatsResponse is the response from GetStats.
type StatsResponse struct {
	model.Stats
	Year int            `json:"year"`
	Pace map[string]int `json:"pace"`
}
