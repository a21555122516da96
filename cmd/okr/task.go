package main

import (
	"context"
	"fmt"
	"time"

	"github.com/groblegark/okrd/internal/client"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Short:   "Manage tasks",
	GroupID: "krs",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a task, optionally linked to a key result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		krID, _ := cmd.Flags().GetString("kr")
		priority, _ := cmd.Flags().GetInt("priority")

		req := &client.CreateTaskRequest{
			KrID:      krID,
			Title:     args[0],
			Priority:  &priority,
			CreatedBy: actor,
		}
		if dueStr, _ := cmd.Flags().GetString("due"); dueStr != "" {
			due, err := time.Parse("2006-01-02", dueStr)
			if err != nil {
				return fmt.Errorf("invalid --due %q (want YYYY-MM-DD)", dueStr)
			}
			req.DueAt = &due
		}

		task, err := okrClient.CreateTask(context.Background(), req)
		if err != nil {
			return fmt.Errorf("creating task: %w", err)
		}

		if jsonOutput {
			printJSON(task)
		} else {
			printTaskTable(task)
		}
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		krID, _ := cmd.Flags().GetString("kr")
		statuses, _ := cmd.Flags().GetStringSlice("status")
		sort, _ := cmd.Flags().GetString("sort")
		limit, _ := cmd.Flags().GetInt("limit")

		req := &client.ListTasksRequest{
			KrID:   krID,
			Status: statuses,
			Sort:   sort,
			Limit:  limit,
		}
		if cmd.Flags().Changed("priority") {
			priority, _ := cmd.Flags().GetInt("priority")
			req.Priority = &priority
		}

		resp, err := okrClient.ListTasks(context.Background(), req)
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}

		if jsonOutput {
			printJSON(resp)
		} else {
			printTaskListTable(resp.Tasks, resp.Total)
		}
		return nil
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := okrClient.CompleteTask(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("completing task: %w", err)
		}

		if jsonOutput {
			printJSON(task)
		} else {
			printTaskTable(task)
		}
		return nil
	},
}

func init() {
	taskCreateCmd.Flags().String("kr", "", "key result ID to link the task to")
	taskCreateCmd.Flags().IntP("priority", "p", 2, "task priority")
	taskCreateCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")

	taskListCmd.Flags().String("kr", "", "filter by key result ID")
	taskListCmd.Flags().StringSlice("status", nil, "filter by status (repeatable)")
	taskListCmd.Flags().IntP("priority", "p", 0, "filter by priority")
	taskListCmd.Flags().String("sort", "", "sort field")
	taskListCmd.Flags().Int("limit", 0, "max results")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskDoneCmd)
}
