package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/groblegark/okrd/internal/client"
	"github.com/spf13/cobra"
)

var krCmd = &cobra.Command{
	Use:     "kr",
	Short:   "Manage key results",
	GroupID: "krs",
}

var krCreateCmd = &cobra.Command{
	Use:   "create <objective-id> <title>",
	Short: "Create a key result under an objective",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		krType, _ := cmd.Flags().GetString("type")
		start, _ := cmd.Flags().GetFloat64("start")
		target, _ := cmd.Flags().GetFloat64("target")
		unit, _ := cmd.Flags().GetString("unit")
		direction, _ := cmd.Flags().GetString("direction")
		year, _ := cmd.Flags().GetInt("year")

		kr, err := okrClient.CreateKeyResult(context.Background(), &client.CreateKeyResultRequest{
			ObjectiveID: args[0],
			Title:       args[1],
			KrType:      krType,
			StartValue:  start,
			TargetValue: target,
			Unit:        unit,
			Direction:   direction,
			Year:        year,
			CreatedBy:   actor,
		})
		if err != nil {
			return fmt.Errorf("creating key result: %w", err)
		}

		if jsonOutput {
			printJSON(kr)
		} else {
			printKrTable(kr)
		}
		return nil
	},
}

var krListCmd = &cobra.Command{
	Use:   "list",
	Short: "List key results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		objective, _ := cmd.Flags().GetString("objective")
		plan, _ := cmd.Flags().GetString("plan")
		types, _ := cmd.Flags().GetStringSlice("type")
		directions, _ := cmd.Flags().GetStringSlice("direction")
		search, _ := cmd.Flags().GetString("search")
		sort, _ := cmd.Flags().GetString("sort")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		req := &client.ListKeyResultsRequest{
			ObjectiveID: objective,
			PlanID:      plan,
			KrType:      types,
			Direction:   directions,
			Search:      search,
			Sort:        sort,
			Limit:       limit,
			Offset:      offset,
		}
		if yearStr, _ := cmd.Flags().GetString("year"); yearStr != "" {
			year, err := strconv.Atoi(yearStr)
			if err != nil {
				return fmt.Errorf("invalid year %q", yearStr)
			}
			req.Year = &year
		}

		resp, err := okrClient.ListKeyResults(context.Background(), req)
		if err != nil {
			return fmt.Errorf("listing key results: %w", err)
		}

		if jsonOutput {
			printJSON(resp)
		} else {
			printKrListTable(resp.KeyResults, resp.Total)
		}
		return nil
	},
}

var krShowCmd = &cobra.Command{
	Use:   "show <kr-id>",
	Short: "Show a key result with check-ins and quarter targets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kr, err := okrClient.GetKeyResult(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching key result: %w", err)
		}

		if jsonOutput {
			printJSON(kr)
			return nil
		}

		printKrTable(kr)

		kp, err := okrClient.GetKrProgress(context.Background(), args[0], nil)
		if err == nil {
			fmt.Println()
			fmt.Printf("Current:     %s\n", formatValue(kp.CurrentValue, kr.Unit))
			fmt.Printf("Progress:    %s\n", paceLine(kp.Progress, kp.PaceStatus))
		}
		return nil
	},
}

var krUpdateCmd = &cobra.Command{
	Use:   "update <kr-id>",
	Short: "Update a key result's title or unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.UpdateKeyResultRequest{}
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			req.Title = &title
		}
		if cmd.Flags().Changed("unit") {
			unit, _ := cmd.Flags().GetString("unit")
			req.Unit = &unit
		}

		kr, err := okrClient.UpdateKeyResult(context.Background(), args[0], req)
		if err != nil {
			return fmt.Errorf("updating key result: %w", err)
		}

		if jsonOutput {
			printJSON(kr)
		} else {
			printKrTable(kr)
		}
		return nil
	},
}

var krDeleteCmd = &cobra.Command{
	Use:   "delete <kr-id>",
	Short: "Delete a key result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := okrClient.DeleteKeyResult(context.Background(), args[0]); err != nil {
			return fmt.Errorf("deleting key result: %w", err)
		}
		fmt.Printf("key result %s deleted\n", args[0])
		return nil
	},
}

func init() {
	krCreateCmd.Flags().StringP("type", "t", "metric", "kr type (metric, count, milestone, rate, average, boolean)")
	krCreateCmd.Flags().Float64("start", 0, "starting value")
	krCreateCmd.Flags().Float64("target", 0, "target value")
	krCreateCmd.Flags().StringP("unit", "u", "", "unit label")
	krCreateCmd.Flags().StringP("direction", "d", "increase", "direction (increase, decrease, maintain)")
	krCreateCmd.Flags().Int("year", 0, "kr year (default: current year)")

	krListCmd.Flags().String("objective", "", "filter by objective ID")
	krListCmd.Flags().String("plan", "", "filter by plan ID")
	krListCmd.Flags().StringSlice("type", nil, "filter by type (repeatable)")
	krListCmd.Flags().StringSlice("direction", nil, "filter by direction (repeatable)")
	krListCmd.Flags().String("year", "", "filter by year")
	krListCmd.Flags().String("search", "", "substring match on title")
	krListCmd.Flags().String("sort", "", "sort field (prefix - for descending)")
	krListCmd.Flags().Int("limit", 0, "max results")
	krListCmd.Flags().Int("offset", 0, "results offset")

	krUpdateCmd.Flags().String("title", "", "new title")
	krUpdateCmd.Flags().String("unit", "", "new unit label")

	krCmd.AddCommand(krCreateCmd)
	krCmd.AddCommand(krListCmd)
	krCmd.AddCommand(krShowCmd)
	krCmd.AddCommand(krUpdateCmd)
	krCmd.AddCommand(krDeleteCmd)
}
