package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status [<plan-id>]",
	Short:   "Show a progress dashboard for a plan (or overall stats)",
	GroupID: "views",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return runPlanStatus(cmd, args[0])
		}
		return runOverallStatus(cmd)
	},
}

func runPlanStatus(cmd *cobra.Command, planID string) error {
	var asOf *time.Time
	if asOfStr, _ := cmd.Flags().GetString("as-of"); asOfStr != "" {
		t, err := time.Parse("2006-01-02", asOfStr)
		if err != nil {
			return fmt.Errorf("invalid --as-of %q (want YYYY-MM-DD)", asOfStr)
		}
		asOf = &t
	}

	plan, err := okrClient.GetPlan(context.Background(), planID)
	if err != nil {
		return fmt.Errorf("fetching plan: %w", err)
	}
	pp, err := okrClient.GetPlanProgress(context.Background(), planID, asOf)
	if err != nil {
		return fmt.Errorf("fetching progress: %w", err)
	}

	if jsonOutput {
		printJSON(pp)
		return nil
	}

	// Index names for display; the progress payload carries IDs only.
	objNames := make(map[string]string)
	krTitles := make(map[string]string)
	krUnits := make(map[string]string)
	for _, obj := range plan.Objectives {
		label := obj.Name
		if obj.Code != "" {
			label = obj.Code + " " + obj.Name
		}
		objNames[obj.ID] = label
		for _, kr := range obj.KeyResults {
			krTitles[kr.ID] = kr.Title
			krUnits[kr.ID] = kr.Unit
		}
	}

	fmt.Printf("%s (%d)\n", plan.Name, plan.Year)
	fmt.Printf("  %s\n", paceLine(pp.Progress, pp.PaceStatus))
	fmt.Printf("  %d/%d key results complete, expected %.0f%%\n", pp.Completed, pp.KrCount, pp.Expected*100)

	for _, op := range pp.Objectives {
		fmt.Println()
		fmt.Printf("%s\n", objNames[op.ObjectiveID])
		fmt.Printf("  %s\n", paceLine(op.Progress, op.PaceStatus))
		for _, kp := range op.KeyResults {
			title := krTitles[kp.KrID]
			if len(title) > 40 {
				title = title[:37] + "..."
			}
			fmt.Printf("  %-40s %s  now %s\n",
				title, paceLine(kp.Progress, kp.PaceStatus), formatValue(kp.CurrentValue, krUnits[kp.KrID]))
		}
	}
	return nil
}

func runOverallStatus(cmd *cobra.Command) error {
	year, _ := cmd.Flags().GetInt("year")

	stats, err := okrClient.GetStats(context.Background(), year)
	if err != nil {
		return fmt.Errorf("fetching stats: %w", err)
	}

	if jsonOutput {
		printJSON(stats)
		return nil
	}

	fmt.Printf("Year:         %d\n", stats.Year)
	fmt.Printf("Plans:        %d\n", stats.TotalPlans)
	fmt.Printf("Objectives:   %d\n", stats.TotalObjectives)
	fmt.Printf("Key results:  %d\n", stats.TotalKeyResults)
	fmt.Printf("Check-ins:    %d\n", stats.TotalCheckIns)
	if len(stats.Pace) > 0 {
		fmt.Println()
		fmt.Println("Pace:")
		for _, status := range []string{"complete", "ahead", "on_track", "at_risk", "off_track"} {
			if n, ok := stats.Pace[status]; ok {
				fmt.Printf("  %-10s %d\n", status, n)
			}
		}
	}
	return nil
}

func init() {
	statusCmd.Flags().String("as-of", "", "evaluate progress as of a date (YYYY-MM-DD)")
	statusCmd.Flags().Int("year", 0, "stats year (default: current year)")
}
