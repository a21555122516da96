package sync

import (
	"context"
	"database/sql"
	"sort"

	"github.com/groblegark/okrd/internal/model"
	"github.com/groblegark/okrd/internal/store"
)

// mockStore is a minimal in-memory store for sync tests.
type mockStore struct {
	plans      map[string]*model.Plan
	objectives map[string]*model.Objective
	krs        map[string]*model.KeyResult
	checkIns   map[string][]*model.CheckIn
	quarters   map[string][]*model.QuarterTarget
	tasks      map[string]*model.Task
	configs    map[string]*model.Config
}

func newMockStore() *mockStore {
	return &mockStore{
		plans:      make(map[string]*model.Plan),
		objectives: make(map[string]*model.Objective),
		krs:        make(map[string]*model.KeyResult),
		checkIns:   make(map[string][]*model.CheckIn),
		quarters:   make(map[string][]*model.QuarterTarget),
		tasks:      make(map[string]*model.Task),
		configs:    make(map[string]*model.Config),
	}
}

func (m *mockStore) CreatePlan(_ context.Context, plan *model.Plan) error {
	m.plans[plan.ID] = plan
	return nil
}

// GetPlan assembles the full objective/KR tree, sorted by ID.
func (m *mockStore) GetPlan(_ context.Context, id string) (*model.Plan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	plan := *p
	plan.Objectives = nil
	for _, o := range m.objectives {
		if o.PlanID != id {
			continue
		}
		obj := *o
		obj.KeyResults = nil
		for _, k := range m.krs {
			if k.ObjectiveID != obj.ID {
				continue
			}
			kr := *k
			kr.CheckIns = m.checkIns[kr.ID]
			kr.Quarters = m.quarters[kr.ID]
			for _, t := range m.tasks {
				if t.KrID == kr.ID {
					kr.Tasks = append(kr.Tasks, t)
				}
			}
			obj.KeyResults = append(obj.KeyResults, &kr)
		}
		sort.Slice(obj.KeyResults, func(i, j int) bool { return obj.KeyResults[i].ID < obj.KeyResults[j].ID })
		plan.Objectives = append(plan.Objectives, &obj)
	}
	sort.Slice(plan.Objectives, func(i, j int) bool { return plan.Objectives[i].ID < plan.Objectives[j].ID })
	return &plan, nil
}

func (m *mockStore) ListPlans(_ context.Context, year int) ([]*model.Plan, error) {
	var result []*model.Plan
	for _, p := range m.plans {
		if year != 0 && p.Year != year {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) UpdatePlan(_ context.Context, plan *model.Plan) error {
	m.plans[plan.ID] = plan
	return nil
}

func (m *mockStore) DeletePlan(_ context.Context, id string) error {
	delete(m.plans, id)
	return nil
}

func (m *mockStore) CreateObjective(_ context.Context, obj *model.Objective) error {
	m.objectives[obj.ID] = obj
	return nil
}

func (m *mockStore) GetObjective(_ context.Context, id string) (*model.Objective, error) {
	o, ok := m.objectives[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return o, nil
}

func (m *mockStore) ListObjectives(_ context.Context, planID string) ([]*model.Objective, error) {
	var result []*model.Objective
	for _, o := range m.objectives {
		if o.PlanID == planID {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) UpdateObjective(_ context.Context, obj *model.Objective) error {
	m.objectives[obj.ID] = obj
	return nil
}

func (m *mockStore) DeleteObjective(_ context.Context, id string) error {
	delete(m.objectives, id)
	return nil
}

func (m *mockStore) CreateKeyResult(_ context.Context, kr *model.KeyResult) error {
	m.krs[kr.ID] = kr
	return nil
}

func (m *mockStore) GetKeyResult(_ context.Context, id string) (*model.KeyResult, error) {
	k, ok := m.krs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return k, nil
}

func (m *mockStore) ListKeyResults(_ context.Context, _ model.KeyResultFilter) ([]*model.KeyResult, int, error) {
	var result []*model.KeyResult
	for _, k := range m.krs {
		result = append(result, k)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *mockStore) UpdateKeyResult(_ context.Context, kr *model.KeyResult) error {
	m.krs[kr.ID] = kr
	return nil
}

func (m *mockStore) DeleteKeyResult(_ context.Context, id string) error {
	delete(m.krs, id)
	return nil
}

func (m *mockStore) AddCheckIn(_ context.Context, ci *model.CheckIn) error {
	m.checkIns[ci.KrID] = append(m.checkIns[ci.KrID], ci)
	return nil
}

func (m *mockStore) GetCheckIns(_ context.Context, krID string) ([]*model.CheckIn, error) {
	return m.checkIns[krID], nil
}

func (m *mockStore) SetQuarterTarget(_ context.Context, qt *model.QuarterTarget) error {
	m.quarters[qt.KrID] = append(m.quarters[qt.KrID], qt)
	return nil
}

func (m *mockStore) GetQuarterTargets(_ context.Context, krID string) ([]*model.QuarterTarget, error) {
	return m.quarters[krID], nil
}

func (m *mockStore) DeleteQuarterTarget(_ context.Context, krID string, quarter int) error {
	return nil
}

func (m *mockStore) CreateTask(_ context.Context, task *model.Task) error {
	m.tasks[task.ID] = task
	return nil
}

func (m *mockStore) GetTask(_ context.Context, id string) (*model.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (m *mockStore) ListTasks(_ context.Context, _ model.TaskFilter) ([]*model.Task, int, error) {
	var result []*model.Task
	for _, t := range m.tasks {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *mockStore) UpdateTask(_ context.Context, task *model.Task) error {
	m.tasks[task.ID] = task
	return nil
}

func (m *mockStore) DeleteTask(_ context.Context, id string) error {
	delete(m.tasks, id)
	return nil
}

func (m *mockStore) SaveLayout(_ context.Context, _ *model.Layout) error { return nil }

func (m *mockStore) GetLayout(_ context.Context, _, _ string) (*model.Layout, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) DeleteLayout(_ context.Context, _, _ string) error { return nil }

func (m *mockStore) RecordEvent(_ context.Context, _ *model.Event) error { return nil }

func (m *mockStore) GetEvents(_ context.Context, _ string) ([]*model.Event, error) {
	return nil, nil
}

func (m *mockStore) SetConfig(_ context.Context, config *model.Config) error {
	m.configs[config.Key] = config
	return nil
}

func (m *mockStore) GetConfig(_ context.Context, key string) (*model.Config, error) {
	c, ok := m.configs[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (m *mockStore) ListConfigs(_ context.Context, namespace string) ([]*model.Config, error) {
	var result []*model.Config
	for _, c := range m.configs {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (m *mockStore) ListAllConfigs(ctx context.Context) ([]*model.Config, error) {
	return m.ListConfigs(ctx, "")
}

func (m *mockStore) DeleteConfig(_ context.Context, key string) error {
	delete(m.configs, key)
	return nil
}

func (m *mockStore) GetStats(_ context.Context) (*model.Stats, error) {
	return &model.Stats{}, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
