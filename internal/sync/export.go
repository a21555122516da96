package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/groblegark/okrd/internal/model"
	"github.com/groblegark/okrd/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	PlanCount   int       `json:"plan_count"`
	KrCount     int       `json:"kr_count"`
	TaskCount   int       `json:"task_count"`
	ConfigCount int       `json:"config_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes the full OKR dataset from the store as JSONL to w.
// Records are flattened: each plan, objective, key result, check-in,
// quarter target, task, and config is its own typed line, sorted by ID
// within each type so exports diff cleanly.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	summaries, err := s.ListPlans(ctx, 0)
	if err != nil {
		return fmt.Errorf("list plans: %w", err)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})

	// Load full trees; the flattened child records come from here.
	var (
		plans      []*model.Plan
		objectives []*model.Objective
		krs        []*model.KeyResult
		checkIns   []*model.CheckIn
		quarters   []*model.QuarterTarget
	)
	for _, summary := range summaries {
		plan, err := s.GetPlan(ctx, summary.ID)
		if err != nil {
			return fmt.Errorf("get plan %s: %w", summary.ID, err)
		}
		for _, obj := range plan.Objectives {
			for _, kr := range obj.KeyResults {
				checkIns = append(checkIns, kr.CheckIns...)
				quarters = append(quarters, kr.Quarters...)

				flat := *kr
				flat.CheckIns = nil
				flat.Quarters = nil
				flat.Tasks = nil
				krs = append(krs, &flat)
			}
			flat := *obj
			flat.KeyResults = nil
			objectives = append(objectives, &flat)
		}
		flat := *plan
		flat.Objectives = nil
		plans = append(plans, &flat)
	}

	// Tasks come from their own listing so unlinked tasks are included too.
	tasks, _, err := s.ListTasks(ctx, model.TaskFilter{})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	configs, err := s.ListAllConfigs(ctx)
	if err != nil {
		return fmt.Errorf("list configs: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:     "1",
		Type:        "header",
		Timestamp:   time.Now().UTC(),
		PlanCount:   len(plans),
		KrCount:     len(krs),
		TaskCount:   len(tasks),
		ConfigCount: len(configs),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	writeAll := func(typ string, n int, at func(int) (string, any)) error {
		for i := 0; i < n; i++ {
			id, data := at(i)
			if err := enc.Encode(record{Type: typ, Data: data}); err != nil {
				return fmt.Errorf("encode %s %s: %w", typ, id, err)
			}
		}
		return nil
	}

	if err := writeAll("plan", len(plans), func(i int) (string, any) { return plans[i].ID, plans[i] }); err != nil {
		return err
	}
	if err := writeAll("objective", len(objectives), func(i int) (string, any) { return objectives[i].ID, objectives[i] }); err != nil {
		return err
	}
	if err := writeAll("kr", len(krs), func(i int) (string, any) { return krs[i].ID, krs[i] }); err != nil {
		return err
	}
	if err := writeAll("checkin", len(checkIns), func(i int) (string, any) { return checkIns[i].ID, checkIns[i] }); err != nil {
		return err
	}
	if err := writeAll("quarter", len(quarters), func(i int) (string, any) { return quarters[i].ID, quarters[i] }); err != nil {
		return err
	}
	if err := writeAll("task", len(tasks), func(i int) (string, any) { return tasks[i].ID, tasks[i] }); err != nil {
		return err
	}
	return writeAll("config", len(configs), func(i int) (string, any) { return configs[i].Key, configs[i] })
}
