// Package progress computes key-result progress and pace classification.
// All functions are pure and total: malformed input degrades to a defined
// result instead of an error, so a dashboard rendering stale data never
// crashes.
package progress

import (
	"time"

	"github.com/groblegark/okrd/internal/model"
)

// KrProgress is the engine output for a single key result.
type KrProgress struct {
	KrID          string           `json:"kr_id"`
	CurrentValue  float64          `json:"current_value"`
	Progress      float64          `json:"progress"`     // clamped to [0,1]
	RawProgress   float64          `json:"raw_progress"` // unclamped; >1 means past target
	ExpectedValue float64          `json:"expected_value"`
	Expected      float64          `json:"expected_progress"` // [0,1]
	PaceStatus    model.PaceStatus `json:"pace_status"`
}

// ComputeKr computes the current value, normalized progress, expected pace
// baseline, and pace status for one key result as of a reference date.
// checkIns and tasks may be in any order; only those belonging to the KR
// should be passed.
func ComputeKr(kr *model.KeyResult, checkIns []*model.CheckIn, tasks []*model.Task, year int, asOf time.Time) KrProgress {
	current := currentValue(kr, checkIns, tasks, asOf)
	raw := rawProgress(kr, current)
	prog := clamp01(raw)

	expected := expectedProgress(year, asOf)
	expectedVal := kr.StartValue + (kr.TargetValue-kr.StartValue)*expected

	return KrProgress{
		KrID:          kr.ID,
		CurrentValue:  current,
		Progress:      prog,
		RawProgress:   raw,
		ExpectedValue: expectedVal,
		Expected:      expected,
		PaceStatus:    Classify(prog, expected),
	}
}

// currentValue determines the KR's value as of asOf. The latest check-in on
// or before asOf wins; a count-type KR without check-ins falls back to its
// completed-task count; otherwise the start value stands.
func currentValue(kr *model.KeyResult, checkIns []*model.CheckIn, tasks []*model.Task, asOf time.Time) float64 {
	if len(checkIns) > 0 {
		var latest *model.CheckIn
		for _, c := range checkIns {
			if c.RecordedAt.After(asOf) {
				continue
			}
			if latest == nil || c.RecordedAt.After(latest.RecordedAt) {
				latest = c
			}
		}
		if latest != nil {
			return latest.Value
		}
		// All check-ins are in the future relative to asOf.
		return kr.StartValue
	}

	if kr.KrType == model.KrCount && len(tasks) > 0 {
		n := 0
		for _, t := range tasks {
			if t.Status == model.TaskCompleted && t.CompletedAt != nil && !t.CompletedAt.After(asOf) {
				n++
			}
		}
		return float64(n)
	}

	return kr.StartValue
}

// rawProgress is the unclamped progress ratio. Milestone and boolean KRs are
// binary: done once the current value reaches 1. For ratio types a decrease
// direction needs no special casing since target < start flips the
// denominator's sign and the ratio inverts naturally. target == start is
// defined as already met (progress 1); see model.KeyResult.Degenerate.
func rawProgress(kr *model.KeyResult, current float64) float64 {
	if kr.KrType.Binary() {
		if current >= 1 {
			return 1
		}
		return 0
	}

	denom := kr.TargetValue - kr.StartValue
	if denom == 0 {
		return 1
	}
	return (current - kr.StartValue) / denom
}

// expectedProgress is the linear pacing baseline: the fraction of the plan
// year elapsed at asOf, clamped to [0,1] for dates outside the year.
func expectedProgress(year int, asOf time.Time) float64 {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	total := end.Sub(start).Hours() / 24
	if total <= 0 {
		return 1
	}

	elapsed := asOf.Sub(start).Hours() / 24
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > total {
		elapsed = total
	}
	return elapsed / total
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
