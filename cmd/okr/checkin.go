package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/groblegark/okrd/internal/client"
	"github.com/spf13/cobra"
)

var checkinCmd = &cobra.Command{
	Use:     "checkin <kr-id> <value>",
	Short:   "Record a check-in for a key result",
	GroupID: "krs",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q", args[1])
		}

		note, _ := cmd.Flags().GetString("note")

		req := &client.AddCheckInRequest{
			Value:      value,
			Note:       note,
			RecordedBy: actor,
		}
		if atStr, _ := cmd.Flags().GetString("at"); atStr != "" {
			at, err := time.Parse("2006-01-02", atStr)
			if err != nil {
				at, err = time.Parse(time.RFC3339, atStr)
				if err != nil {
					return fmt.Errorf("invalid --at %q (want YYYY-MM-DD or RFC3339)", atStr)
				}
			}
			req.RecordedAt = &at
		}

		ci, err := okrClient.AddCheckIn(context.Background(), args[0], req)
		if err != nil {
			return fmt.Errorf("recording check-in: %w", err)
		}

		if jsonOutput {
			printJSON(ci)
			return nil
		}

		fmt.Printf("check-in %s recorded: %s", ci.ID, formatValue(ci.Value, ""))
		if ci.PreviousValue != ci.Value {
			fmt.Printf(" (was %s)", formatValue(ci.PreviousValue, ""))
		}
		fmt.Println()

		kp, err := okrClient.GetKrProgress(context.Background(), args[0], nil)
		if err == nil {
			fmt.Printf("Progress:    %s\n", paceLine(kp.Progress, kp.PaceStatus))
		}
		return nil
	},
}

func init() {
	checkinCmd.Flags().StringP("note", "n", "", "check-in note")
	checkinCmd.Flags().String("at", "", "record date (YYYY-MM-DD or RFC3339; default now)")
}
