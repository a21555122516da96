package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/groblegark/okrd/internal/model"
	"github.com/groblegark/okrd/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printPlanTable(plan *model.Plan) {
	fmt.Printf("ID:          %s\n", plan.ID)
	fmt.Printf("Year:        %d\n", plan.Year)
	fmt.Printf("Name:        %s\n", plan.Name)
	fmt.Printf("Created By:  %s\n", plan.CreatedBy)
	if !plan.CreatedAt.IsZero() {
		fmt.Printf("Created At:  %s\n", plan.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if len(plan.Objectives) > 0 {
		fmt.Printf("Objectives:  %d\n", len(plan.Objectives))
	}
}

func printPlanListTable(plans []*model.Plan) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tYEAR\tNAME")
	for _, p := range plans {
		fmt.Fprintf(w, "%s\t%d\t%s\n", p.ID, p.Year, p.Name)
	}
	w.Flush()
	fmt.Printf("\n%d plans\n", len(plans))
}

func printObjectiveTable(obj *model.Objective) {
	fmt.Printf("ID:          %s\n", obj.ID)
	fmt.Printf("Plan:        %s\n", obj.PlanID)
	if obj.Code != "" {
		fmt.Printf("Code:        %s\n", obj.Code)
	}
	fmt.Printf("Name:        %s\n", obj.Name)
	fmt.Printf("Created By:  %s\n", obj.CreatedBy)
}

func printObjectiveListTable(objs []*model.Objective) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tKRS")
	for _, o := range objs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", o.ID, o.Code, o.Name, len(o.KeyResults))
	}
	w.Flush()
	fmt.Printf("\n%d objectives\n", len(objs))
}

func printKrTable(kr *model.KeyResult) {
	fmt.Printf("ID:          %s\n", kr.ID)
	fmt.Printf("Objective:   %s\n", kr.ObjectiveID)
	fmt.Printf("Title:       %s\n", kr.Title)
	fmt.Printf("Type:        %s\n", kr.KrType)
	fmt.Printf("Direction:   %s\n", kr.Direction)
	fmt.Printf("Year:        %d\n", kr.Year)
	if kr.KrType.Binary() {
		fmt.Printf("Target:      done\n")
	} else {
		fmt.Printf("Start:       %s\n", formatValue(kr.StartValue, kr.Unit))
		fmt.Printf("Target:      %s\n", formatValue(kr.TargetValue, kr.Unit))
	}
	if kr.Degenerate() {
		fmt.Printf("Warning:     start equals target; progress reads as complete\n")
	}
	fmt.Printf("Created By:  %s\n", kr.CreatedBy)
	if len(kr.CheckIns) > 0 {
		fmt.Println()
		fmt.Println("Check-ins:")
		for _, ci := range kr.CheckIns {
			fmt.Printf("  [%s] %s", ci.RecordedAt.Format("2006-01-02"), formatValue(ci.Value, kr.Unit))
			if ci.Note != "" {
				fmt.Printf("  %s", ci.Note)
			}
			fmt.Println()
		}
	}
	if len(kr.Quarters) > 0 {
		fmt.Println()
		fmt.Println("Quarter targets:")
		for _, qt := range kr.Quarters {
			fmt.Printf("  Q%d: %s\n", qt.Quarter, formatValue(qt.TargetValue, kr.Unit))
		}
	}
}

func printKrListTable(krs []*model.KeyResult, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tDIRECTION\tTARGET\tTITLE")
	for _, kr := range krs {
		title := kr.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			kr.ID,
			kr.KrType,
			kr.Direction,
			formatValue(kr.TargetValue, kr.Unit),
			title,
		)
	}
	w.Flush()
	fmt.Printf("\n%d key results (%d total)\n", len(krs), total)
}

func printTaskTable(task *model.Task) {
	fmt.Printf("ID:          %s\n", task.ID)
	if task.KrID != "" {
		fmt.Printf("KR:          %s\n", task.KrID)
	}
	fmt.Printf("Title:       %s\n", task.Title)
	fmt.Printf("Status:      %s\n", task.Status)
	fmt.Printf("Priority:    %d\n", task.Priority)
	if task.DueAt != nil {
		fmt.Printf("Due At:      %s\n", task.DueAt.Format("2006-01-02"))
	}
	if task.CompletedAt != nil {
		fmt.Printf("Completed:   %s\n", task.CompletedAt.Format("2006-01-02 15:04:05"))
	}
}

func printTaskListTable(tasks []*model.Task, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tKR\tTITLE")
	for _, t := range tasks {
		title := t.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", t.ID, t.Status, t.Priority, t.KrID, title)
	}
	w.Flush()
	fmt.Printf("\n%d tasks (%d total)\n", len(tasks), total)
}

// formatValue renders a measurement value with its unit suffix, trimming
// trailing zeros so "10.00" prints as "10".
func formatValue(v float64, unit string) string {
	s := fmt.Sprintf("%.2f", v)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if unit != "" {
		return s + " " + unit
	}
	return s
}

// paceLine renders "bar percent% pace" for dashboard rows.
func paceLine(progress float64, status model.PaceStatus) string {
	return fmt.Sprintf("%s %3.0f%%  %s", ui.ProgressBar(progress, 20), progress*100, ui.RenderPace(status))
}
