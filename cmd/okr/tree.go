package main

import (
	"context"
	"fmt"

	"github.com/groblegark/okrd/internal/mindmap"
	"github.com/groblegark/okrd/internal/ui"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:     "tree <plan-id>",
	Short:   "Show the plan hierarchy as an ASCII tree with progress",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showTasks, _ := cmd.Flags().GetBool("tasks")
		showQuarters, _ := cmd.Flags().GetBool("quarters")

		plan, err := okrClient.GetPlan(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching plan: %w", err)
		}
		pp, err := okrClient.GetPlanProgress(context.Background(), args[0], nil)
		if err != nil {
			return fmt.Errorf("fetching progress: %w", err)
		}

		metrics := map[string]mindmap.Metric{
			pp.PlanID: {Progress: pp.Progress, PaceStatus: pp.PaceStatus},
		}
		for _, op := range pp.Objectives {
			metrics[op.ObjectiveID] = mindmap.Metric{Progress: op.Progress, PaceStatus: op.PaceStatus}
			for _, kp := range op.KeyResults {
				metrics[kp.KrID] = mindmap.Metric{
					Progress:     kp.Progress,
					PaceStatus:   kp.PaceStatus,
					CurrentValue: kp.CurrentValue,
				}
			}
		}

		cfg := mindmap.DefaultLayoutConfig()
		cfg.ShowTasks = showTasks
		cfg.ShowQuarters = showQuarters
		nodes, edges := mindmap.Transform(plan, metrics, cfg)

		if jsonOutput {
			printJSON(map[string]any{"nodes": nodes, "edges": edges})
			return nil
		}

		byID := make(map[string]*mindmap.Node, len(nodes))
		for _, n := range nodes {
			byID[n.ID] = n
		}
		printTreeNode(byID, childOrder(edges), plan.ID, "")
		return nil
	},
}

// childOrder groups edge targets by source. Edge order is the transform's
// sibling order; keeping it means the ASCII tree matches the mindmap views.
func childOrder(edges []*mindmap.Edge) map[string][]string {
	children := make(map[string][]string, len(edges))
	for _, e := range edges {
		children[e.Source] = append(children[e.Source], e.Target)
	}
	return children
}

func printTreeNode(byID map[string]*mindmap.Node, children map[string][]string, id, prefix string) {
	n, ok := byID[id]
	if !ok {
		return
	}

	line := n.Label
	switch n.Type {
	case mindmap.NodePlan, mindmap.NodeObjective, mindmap.NodeKr:
		line = fmt.Sprintf("%s  %3.0f%% %s", n.Label, n.Progress*100, ui.RenderPace(n.PaceStatus))
	}
	fmt.Println(line)

	kids := children[id]
	for i, child := range kids {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(kids)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}
		fmt.Print(prefix + connector)
		printTreeNode(byID, children, child, childPrefix)
	}
}

func init() {
	treeCmd.Flags().Bool("tasks", false, "include task nodes")
	treeCmd.Flags().Bool("quarters", false, "include quarter target nodes")
}
