package progress

import (
	"time"

	"github.com/groblegark/okrd/internal/model"
)

// ObjectiveProgress is the aggregated result for one objective.
type ObjectiveProgress struct {
	ObjectiveID string           `json:"objective_id"`
	Progress    float64          `json:"progress"`
	Expected    float64          `json:"expected_progress"`
	PaceStatus  model.PaceStatus `json:"pace_status"`
	KrCount     int              `json:"kr_count"`
	Completed   int              `json:"completed"` // KRs with progress >= 1
	KeyResults  []KrProgress     `json:"key_results"`
}

// PlanProgress is the aggregated result for a whole plan.
type PlanProgress struct {
	PlanID     string              `json:"plan_id"`
	Progress   float64             `json:"progress"`
	Expected   float64             `json:"expected_progress"`
	PaceStatus model.PaceStatus    `json:"pace_status"`
	KrCount    int                 `json:"kr_count"`
	Completed  int                 `json:"completed"`
	Objectives []ObjectiveProgress `json:"objectives"`
}

// ComputeObjective aggregates per-KR results into an objective-level
// progress: the unweighted mean of child KR progress fractions, fed back
// through the same pace table. An objective with no KRs reads as zero
// progress.
func ComputeObjective(objectiveID string, krs []KrProgress, year int, asOf time.Time) ObjectiveProgress {
	expected := expectedProgress(year, asOf)

	op := ObjectiveProgress{
		ObjectiveID: objectiveID,
		Expected:    expected,
		KrCount:     len(krs),
		KeyResults:  krs,
	}

	if len(krs) == 0 {
		op.PaceStatus = Classify(0, expected)
		return op
	}

	sum := 0.0
	for _, kp := range krs {
		sum += kp.Progress
		if kp.Progress >= 1 {
			op.Completed++
		}
	}
	op.Progress = sum / float64(len(krs))
	op.PaceStatus = Classify(op.Progress, expected)
	return op
}

// ComputePlan aggregates objective results into a plan-level progress.
// The plan mean is taken over all KRs flattened across objectives, not over
// objective means, so an objective with one KR does not weigh as much as one
// with ten.
func ComputePlan(planID string, objectives []ObjectiveProgress, year int, asOf time.Time) PlanProgress {
	expected := expectedProgress(year, asOf)

	pp := PlanProgress{
		PlanID:     planID,
		Expected:   expected,
		Objectives: objectives,
	}

	sum := 0.0
	for _, op := range objectives {
		for _, kp := range op.KeyResults {
			sum += kp.Progress
			pp.KrCount++
			if kp.Progress >= 1 {
				pp.Completed++
			}
		}
	}

	if pp.KrCount > 0 {
		pp.Progress = sum / float64(pp.KrCount)
	}
	pp.PaceStatus = Classify(pp.Progress, expected)
	return pp
}
