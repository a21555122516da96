package store

import (
	"context"

	"github.com/groblegark/okrd/internal/model"
)

// Store defines the persistence interface for OKR data.
type Store interface {
	// Plans
	CreatePlan(ctx context.Context, plan *model.Plan) error
	GetPlan(ctx context.Context, id string) (*model.Plan, error) // loads the full objective/KR tree
	ListPlans(ctx context.Context, year int) ([]*model.Plan, error)
	UpdatePlan(ctx context.Context, plan *model.Plan) error
	DeletePlan(ctx context.Context, id string) error

	// Objectives
	CreateObjective(ctx context.Context, obj *model.Objective) error
	GetObjective(ctx context.Context, id string) (*model.Objective, error)
	ListObjectives(ctx context.Context, planID string) ([]*model.Objective, error)
	UpdateObjective(ctx context.Context, obj *model.Objective) error
	DeleteObjective(ctx context.Context, id string) error

	// Key results
	CreateKeyResult(ctx context.Context, kr *model.KeyResult) error
	GetKeyResult(ctx context.Context, id string) (*model.KeyResult, error) // loads check-ins, quarters, tasks
	ListKeyResults(ctx context.Context, filter model.KeyResultFilter) ([]*model.KeyResult, int, error) // returns KRs, total count, error
	UpdateKeyResult(ctx context.Context, kr *model.KeyResult) error
	DeleteKeyResult(ctx context.Context, id string) error

	// Check-ins (append-only; no update or delete)
	AddCheckIn(ctx context.Context, checkIn *model.CheckIn) error
	GetCheckIns(ctx context.Context, krID string) ([]*model.CheckIn, error)

	// Quarterly targets
	SetQuarterTarget(ctx context.Context, qt *model.QuarterTarget) error // upsert on (kr_id, quarter)
	GetQuarterTargets(ctx context.Context, krID string) ([]*model.QuarterTarget, error)
	DeleteQuarterTarget(ctx context.Context, krID string, quarter int) error

	// Tasks
	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, int, error)
	UpdateTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, id string) error

	// Saved mindmap layouts
	SaveLayout(ctx context.Context, layout *model.Layout) error // upsert on (plan_id, view)
	GetLayout(ctx context.Context, planID, view string) (*model.Layout, error)
	DeleteLayout(ctx context.Context, planID, view string) error

	// Events
	RecordEvent(ctx context.Context, event *model.Event) error
	GetEvents(ctx context.Context, entityID string) ([]*model.Event, error)

	// Configs
	SetConfig(ctx context.Context, config *model.Config) error
	GetConfig(ctx context.Context, key string) (*model.Config, error)
	ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error)
	ListAllConfigs(ctx context.Context) ([]*model.Config, error)
	DeleteConfig(ctx context.Context, key string) error

	// Aggregates
	GetStats(ctx context.Context) (*model.Stats, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
