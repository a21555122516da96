package main

import (
	"context"
	"fmt"

	"github.com/groblegark/okrd/internal/client"
	"github.com/spf13/cobra"
)

var mindmapCmd = &cobra.Command{
	Use:     "mindmap <plan-id>",
	Short:   "Fetch the positioned mindmap graph for a plan as JSON",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, _ := cmd.Flags().GetString("layout")
		focus, _ := cmd.Flags().GetString("focus")
		direction, _ := cmd.Flags().GetString("direction")

		req := &client.MindmapRequest{
			Layout:    layout,
			Focus:     focus,
			Direction: direction,
		}
		if cmd.Flags().Changed("tasks") {
			showTasks, _ := cmd.Flags().GetBool("tasks")
			req.ShowTasks = &showTasks
		}
		if cmd.Flags().Changed("quarters") {
			showQuarters, _ := cmd.Flags().GetBool("quarters")
			req.ShowQuarters = &showQuarters
		}

		resp, err := okrClient.GetMindmap(context.Background(), args[0], req)
		if err != nil {
			return fmt.Errorf("fetching mindmap: %w", err)
		}

		// The positioned graph is structured data; always print JSON.
		printJSON(resp)
		return nil
	},
}

func init() {
	mindmapCmd.Flags().String("layout", "tree", "layout algorithm (tree, radial, focus)")
	mindmapCmd.Flags().String("focus", "", "node ID for the focus layout")
	mindmapCmd.Flags().String("direction", "", "tree direction (TB or LR)")
	mindmapCmd.Flags().Bool("tasks", true, "include task nodes")
	mindmapCmd.Flags().Bool("quarters", true, "include quarter target nodes")
}
