package progress

import (
	"testing"

	"github.com/groblegark/okrd/internal/model"
)

func TestComputeObjective(t *testing.T) {
	mid := yearMidpoint(2026)
	krs := []KrProgress{
		{KrID: "kr-1", Progress: 1},
		{KrID: "kr-2", Progress: 0.5},
		{KrID: "kr-3", Progress: 0},
	}

	got := ComputeObjective("obj-1", krs, 2026, mid)
	if got.Progress != 0.5 {
		t.Errorf("Progress = %v, want 0.5", got.Progress)
	}
	if got.KrCount != 3 {
		t.Errorf("KrCount = %d, want 3", got.KrCount)
	}
	if got.Completed != 1 {
		t.Errorf("Completed = %d, want 1", got.Completed)
	}
	if got.PaceStatus != model.PaceOnTrack {
		t.Errorf("PaceStatus = %v, want on_track", got.PaceStatus)
	}
}

func TestComputeObjective_NoKRs(t *testing.T) {
	got := ComputeObjective("obj-empty", nil, 2026, yearMidpoint(2026))
	if got.Progress != 0 {
		t.Errorf("Progress = %v, want 0", got.Progress)
	}
	if got.PaceStatus != model.PaceOffTrack {
		t.Errorf("PaceStatus = %v, want off_track at mid-year with no KRs", got.PaceStatus)
	}
}

// Plan progress averages over all KRs flattened, so a one-KR objective does
// not carry the same weight as a ten-KR objective.
func TestComputePlan_FlattensKRs(t *testing.T) {
	mid := yearMidpoint(2026)
	objectives := []ObjectiveProgress{
		{ObjectiveID: "obj-1", KeyResults: []KrProgress{
			{KrID: "kr-1", Progress: 1},
		}},
		{ObjectiveID: "obj-2", KeyResults: []KrProgress{
			{KrID: "kr-2", Progress: 0},
			{KrID: "kr-3", Progress: 0},
			{KrID: "kr-4", Progress: 0},
		}},
	}

	got := ComputePlan("plan-1", objectives, 2026, mid)
	if got.Progress != 0.25 {
		t.Errorf("Progress = %v, want 0.25 (mean of means would be 0.5)", got.Progress)
	}
	if got.KrCount != 4 {
		t.Errorf("KrCount = %d, want 4", got.KrCount)
	}
	if got.Completed != 1 {
		t.Errorf("Completed = %d, want 1", got.Completed)
	}
}

func TestComputePlan_Empty(t *testing.T) {
	got := ComputePlan("plan-1", nil, 2026, yearMidpoint(2026))
	if got.Progress != 0 || got.KrCount != 0 {
		t.Errorf("empty plan: got progress %v, kr count %d", got.Progress, got.KrCount)
	}
}
