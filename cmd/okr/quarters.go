package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var quartersCmd = &cobra.Command{
	Use:     "quarters",
	Short:   "Manage quarterly targets for a key result",
	GroupID: "krs",
}

var quartersSetCmd = &cobra.Command{
	Use:   "set <kr-id> <quarter> <target>",
	Short: "Set (or replace) a quarter target",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		quarter, err := strconv.Atoi(args[1])
		if err != nil || quarter < 1 || quarter > 4 {
			return fmt.Errorf("invalid quarter %q (want 1-4)", args[1])
		}
		target, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid target %q", args[2])
		}

		qt, err := okrClient.SetQuarterTarget(context.Background(), args[0], quarter, target)
		if err != nil {
			return fmt.Errorf("setting quarter target: %w", err)
		}

		if jsonOutput {
			printJSON(qt)
		} else {
			fmt.Printf("Q%d target for %s set to %s\n", qt.Quarter, qt.KrID, formatValue(qt.TargetValue, ""))
		}
		return nil
	},
}

var quartersShowCmd = &cobra.Command{
	Use:   "show <kr-id>",
	Short: "Show quarter targets for a key result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quarters, err := okrClient.GetQuarterTargets(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching quarter targets: %w", err)
		}

		if jsonOutput {
			printJSON(quarters)
			return nil
		}

		if len(quarters) == 0 {
			fmt.Println("no quarter targets set")
			return nil
		}
		for _, qt := range quarters {
			fmt.Printf("Q%d: %s\n", qt.Quarter, formatValue(qt.TargetValue, ""))
		}
		return nil
	},
}

var quartersRemoveCmd = &cobra.Command{
	Use:   "remove <kr-id> <quarter>",
	Short: "Remove a quarter target",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quarter, err := strconv.Atoi(args[1])
		if err != nil || quarter < 1 || quarter > 4 {
			return fmt.Errorf("invalid quarter %q (want 1-4)", args[1])
		}

		if err := okrClient.DeleteQuarterTarget(context.Background(), args[0], quarter); err != nil {
			return fmt.Errorf("removing quarter target: %w", err)
		}
		fmt.Printf("Q%d target for %s removed\n", quarter, args[0])
		return nil
	},
}

func init() {
	quartersCmd.AddCommand(quartersSetCmd)
	quartersCmd.AddCommand(quartersShowCmd)
	quartersCmd.AddCommand(quartersRemoveCmd)
}
