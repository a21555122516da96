package main

import (
	"context"
	"fmt"
	"time"

	"github.com/groblegark/okrd/internal/client"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:     "plan",
	Short:   "Manage annual plans",
	GroupID: "plans",
}

var planCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")
		if year == 0 {
			year = time.Now().Year()
		}

		plan, err := okrClient.CreatePlan(context.Background(), &client.CreatePlanRequest{
			Year:      year,
			Name:      args[0],
			CreatedBy: actor,
		})
		if err != nil {
			return fmt.Errorf("creating plan: %w", err)
		}

		if jsonOutput {
			printJSON(plan)
		} else {
			printPlanTable(plan)
		}
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")

		plans, err := okrClient.ListPlans(context.Background(), year)
		if err != nil {
			return fmt.Errorf("listing plans: %w", err)
		}

		if jsonOutput {
			printJSON(plans)
		} else {
			printPlanListTable(plans)
		}
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show <plan-id>",
	Short: "Show a plan with its full objective/KR tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := okrClient.GetPlan(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching plan: %w", err)
		}

		if jsonOutput {
			printJSON(plan)
			return nil
		}

		printPlanTable(plan)
		for _, obj := range plan.Objectives {
			fmt.Printf("\n%s %s\n", obj.Code, obj.Name)
			for _, kr := range obj.KeyResults {
				fmt.Printf("  %s  %s\n", kr.ID, kr.Title)
			}
		}
		return nil
	},
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete <plan-id>",
	Short: "Delete a plan and everything under it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := okrClient.DeletePlan(context.Background(), args[0]); err != nil {
			return fmt.Errorf("deleting plan: %w", err)
		}
		fmt.Printf("plan %s deleted\n", args[0])
		return nil
	},
}

func init() {
	planCreateCmd.Flags().Int("year", 0, "plan year (default: current year)")
	planListCmd.Flags().Int("year", 0, "filter by year")

	planCmd.AddCommand(planCreateCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planDeleteCmd)
}
