package mindmap

import (
	"fmt"

	"github.com/groblegark/okrd/internal/model"
)

// Metric is the caller-supplied progress snapshot attached to a node.
// Keyed by entity ID in the map passed to Transform; entities without an
// entry render with zero progress.
type Metric struct {
	Progress     float64
	PaceStatus   model.PaceStatus
	CurrentValue float64
}

// Transform builds the node/edge graph for a plan. The plan must carry its
// relational fields (Objectives, KeyResults, and their Quarters/Tasks) as
// loaded by the store. Nodes come out unpositioned; run a layout function
// and ApplyLayout to place them.
func Transform(plan *model.Plan, metrics map[string]Metric, cfg LayoutConfig) ([]*Node, []*Edge) {
	var nodes []*Node
	var edges []*Edge

	nodes = append(nodes, &Node{
		ID:         plan.ID,
		Type:       NodePlan,
		Label:      plan.Name,
		Progress:   metrics[plan.ID].Progress,
		PaceStatus: metrics[plan.ID].PaceStatus,
	})

	for _, obj := range plan.Objectives {
		nodes = append(nodes, &Node{
			ID:         obj.ID,
			Type:       NodeObjective,
			Label:      obj.Name,
			Progress:   metrics[obj.ID].Progress,
			PaceStatus: metrics[obj.ID].PaceStatus,
		})
		edges = append(edges, &Edge{Source: plan.ID, Target: obj.ID})

		for _, kr := range obj.KeyResults {
			m := metrics[kr.ID]
			nodes = append(nodes, &Node{
				ID:           kr.ID,
				Type:         NodeKr,
				Label:        kr.Title,
				Progress:     m.Progress,
				PaceStatus:   m.PaceStatus,
				CurrentValue: m.CurrentValue,
				TargetValue:  kr.TargetValue,
				Unit:         kr.Unit,
				Direction:    kr.Direction,
			})
			edges = append(edges, &Edge{Source: obj.ID, Target: kr.ID})

			if cfg.ShowQuarters {
				for _, qt := range kr.Quarters {
					nodes = append(nodes, &Node{
						ID:    qt.ID,
						Type:  NodeQuarter,
						Label: fmt.Sprintf("Q%d: %g", qt.Quarter, qt.TargetValue),
					})
					edges = append(edges, &Edge{Source: kr.ID, Target: qt.ID})
				}
			}

			if cfg.ShowTasks {
				for _, task := range kr.Tasks {
					p := 0.0
					if task.Status == model.TaskCompleted {
						p = 1
					}
					nodes = append(nodes, &Node{
						ID:       task.ID,
						Type:     NodeTask,
						Label:    task.Title,
						Progress: p,
					})
					edges = append(edges, &Edge{Source: kr.ID, Target: task.ID})
				}
			}
		}
	}

	return nodes, edges
}
