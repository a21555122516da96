package main

import (
	"context"
	"fmt"

	"github.com/groblegark/okrd/internal/client"
	"github.com/spf13/cobra"
)

var objectiveCmd = &cobra.Command{
	Use:     "objective",
	Short:   "Manage objectives",
	GroupID: "plans",
}

var objectiveCreateCmd = &cobra.Command{
	Use:   "create <plan-id> <name>",
	Short: "Create an objective under a plan",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("code")

		obj, err := okrClient.CreateObjective(context.Background(), &client.CreateObjectiveRequest{
			PlanID:    args[0],
			Code:      code,
			Name:      args[1],
			CreatedBy: actor,
		})
		if err != nil {
			return fmt.Errorf("creating objective: %w", err)
		}

		if jsonOutput {
			printJSON(obj)
		} else {
			printObjectiveTable(obj)
		}
		return nil
	},
}

var objectiveListCmd = &cobra.Command{
	Use:   "list <plan-id>",
	Short: "List objectives for a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		objs, err := okrClient.ListObjectives(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("listing objectives: %w", err)
		}

		if jsonOutput {
			printJSON(objs)
		} else {
			printObjectiveListTable(objs)
		}
		return nil
	},
}

func init() {
	objectiveCreateCmd.Flags().String("code", "", "short handle like O1")

	objectiveCmd.AddCommand(objectiveCreateCmd)
	objectiveCmd.AddCommand(objectiveListCmd)
}
