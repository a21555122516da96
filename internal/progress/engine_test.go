package progress

import (
	"testing"
	"time"

	"github.com/groblegark/okrd/internal/model"
)

func metricKR(start, target float64) *model.KeyResult {
	return &model.KeyResult{
		ID:          "kr-test",
		ObjectiveID: "obj-test",
		Title:       "test",
		KrType:      model.KrMetric,
		StartValue:  start,
		TargetValue: target,
		Direction:   model.DirectionIncrease,
		Year:        2026,
	}
}

func checkInAt(value float64, at time.Time) *model.CheckIn {
	return &model.CheckIn{KrID: "kr-test", Value: value, RecordedAt: at}
}

// yearMidpoint returns the instant halfway between Jan 1 and Dec 31 of year,
// so expectedProgress is exactly 0.5.
func yearMidpoint(year int) time.Time {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return start.Add(end.Sub(start) / 2)
}

func TestComputeKr_CurrentValueFromLatestCheckIn(t *testing.T) {
	kr := metricKR(0, 100)
	asOf := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	checkIns := []*model.CheckIn{
		checkInAt(10, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)),
		checkInAt(40, time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)),
		checkInAt(25, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)),
		// In the future relative to asOf; must be ignored.
		checkInAt(90, time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)),
	}

	got := ComputeKr(kr, checkIns, nil, 2026, asOf)
	if got.CurrentValue != 40 {
		t.Errorf("CurrentValue = %v, want 40", got.CurrentValue)
	}
}

func TestComputeKr_AllCheckInsInFuture(t *testing.T) {
	kr := metricKR(5, 100)
	asOf := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	checkIns := []*model.CheckIn{
		checkInAt(50, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)),
	}

	got := ComputeKr(kr, checkIns, nil, 2026, asOf)
	if got.CurrentValue != 5 {
		t.Errorf("CurrentValue = %v, want start value 5", got.CurrentValue)
	}
}

func TestComputeKr_CountTypeFallsBackToTasks(t *testing.T) {
	kr := metricKR(0, 10)
	kr.KrType = model.KrCount
	asOf := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	done := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC)
	tasks := []*model.Task{
		{ID: "t1", Status: model.TaskCompleted, CompletedAt: &done},
		{ID: "t2", Status: model.TaskCompleted, CompletedAt: &done},
		{ID: "t3", Status: model.TaskCompleted, CompletedAt: &late}, // after asOf
		{ID: "t4", Status: model.TaskInProgress},
		{ID: "t5", Status: model.TaskCancelled},
	}

	got := ComputeKr(kr, nil, tasks, 2026, asOf)
	if got.CurrentValue != 2 {
		t.Errorf("CurrentValue = %v, want 2", got.CurrentValue)
	}

	// Check-ins take precedence over tasks when present.
	checkIns := []*model.CheckIn{
		checkInAt(7, time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)),
	}
	got = ComputeKr(kr, checkIns, tasks, 2026, asOf)
	if got.CurrentValue != 7 {
		t.Errorf("CurrentValue with check-ins = %v, want 7", got.CurrentValue)
	}
}

func TestComputeKr_NoData(t *testing.T) {
	kr := metricKR(3, 100)
	got := ComputeKr(kr, nil, nil, 2026, yearMidpoint(2026))
	if got.CurrentValue != 3 {
		t.Errorf("CurrentValue = %v, want start value 3", got.CurrentValue)
	}
	if got.Progress != 0.03 {
		t.Errorf("Progress = %v, want 0.03", got.Progress)
	}
}

// Progress is non-decreasing as successive check-in values climb toward the
// target for an increase-direction KR.
func TestComputeKr_Monotonicity(t *testing.T) {
	kr := metricKR(0, 100)
	asOf := time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC)

	prev := -1.0
	for i, v := range []float64{0, 10, 25, 25, 60, 99, 100} {
		checkIns := []*model.CheckIn{
			checkInAt(v, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)),
		}
		got := ComputeKr(kr, checkIns, nil, 2026, asOf)
		if got.Progress < prev {
			t.Errorf("step %d: progress %v decreased below %v", i, got.Progress, prev)
		}
		prev = got.Progress
	}
}

func TestComputeKr_ClampingAndRawProgress(t *testing.T) {
	kr := metricKR(0, 100)
	asOf := yearMidpoint(2026)
	checkIns := []*model.CheckIn{
		checkInAt(126, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)),
	}

	got := ComputeKr(kr, checkIns, nil, 2026, asOf)
	if got.Progress != 1 {
		t.Errorf("Progress = %v, want clamped 1", got.Progress)
	}
	if got.RawProgress != 1.26 {
		t.Errorf("RawProgress = %v, want 1.26", got.RawProgress)
	}

	// Negative movement clamps to zero but stays visible raw.
	checkIns[0].Value = -10
	got = ComputeKr(kr, checkIns, nil, 2026, asOf)
	if got.Progress != 0 {
		t.Errorf("Progress = %v, want clamped 0", got.Progress)
	}
	if got.RawProgress != -0.1 {
		t.Errorf("RawProgress = %v, want -0.1", got.RawProgress)
	}
}

// Milestone and boolean KRs report exactly 0 or 1, never a fraction,
// regardless of the magnitude of the recorded value.
func TestComputeKr_BinaryLaw(t *testing.T) {
	for _, typ := range []model.KrType{model.KrMilestone, model.KrBoolean} {
		kr := metricKR(0, 1)
		kr.KrType = typ
		asOf := yearMidpoint(2026)

		for _, v := range []float64{-5, 0, 0.4, 0.99, 1, 1.5, 100} {
			checkIns := []*model.CheckIn{
				checkInAt(v, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)),
			}
			got := ComputeKr(kr, checkIns, nil, 2026, asOf)
			if got.Progress != 0 && got.Progress != 1 {
				t.Errorf("%s KR with value %v: progress = %v, want 0 or 1", typ, v, got.Progress)
			}
			want := 0.0
			if v >= 1 {
				want = 1
			}
			if got.Progress != want {
				t.Errorf("%s KR with value %v: progress = %v, want %v", typ, v, got.Progress, want)
			}
		}
	}
}

func TestComputeKr_DecreaseDirection(t *testing.T) {
	kr := metricKR(100, 20)
	kr.Direction = model.DirectionDecrease
	asOf := yearMidpoint(2026)

	checkIns := []*model.CheckIn{
		checkInAt(60, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)),
	}
	got := ComputeKr(kr, checkIns, nil, 2026, asOf)
	// (60-100)/(20-100) = 0.5 — the inverted denominator needs no special case.
	if got.Progress != 0.5 {
		t.Errorf("Progress = %v, want 0.5", got.Progress)
	}
}

func TestComputeKr_DegenerateTarget(t *testing.T) {
	kr := metricKR(50, 50)
	got := ComputeKr(kr, nil, nil, 2026, yearMidpoint(2026))
	if got.Progress != 1 {
		t.Errorf("Progress = %v, want 1 for target == start", got.Progress)
	}
}

func TestExpectedProgress_ClampsOutsideYear(t *testing.T) {
	before := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2027, time.February, 1, 0, 0, 0, 0, time.UTC)

	if got := expectedProgress(2026, before); got != 0 {
		t.Errorf("expectedProgress before year = %v, want 0", got)
	}
	if got := expectedProgress(2026, after); got != 1 {
		t.Errorf("expectedProgress after year = %v, want 1", got)
	}
	if got := expectedProgress(2026, yearMidpoint(2026)); got != 0.5 {
		t.Errorf("expectedProgress at midpoint = %v, want 0.5", got)
	}
}

// End-to-end scenario: one check-in of 50/100 recorded exactly at the
// midpoint of the year reads as on track.
func TestComputeKr_MidYearOnTrack(t *testing.T) {
	kr := metricKR(0, 100)
	mid := yearMidpoint(2026)
	checkIns := []*model.CheckIn{checkInAt(50, mid)}

	got := ComputeKr(kr, checkIns, nil, 2026, mid)
	if got.Progress != 0.5 {
		t.Errorf("Progress = %v, want 0.5", got.Progress)
	}
	if got.Expected != 0.5 {
		t.Errorf("Expected = %v, want 0.5", got.Expected)
	}
	if got.PaceStatus != model.PaceOnTrack {
		t.Errorf("PaceStatus = %v, want on_track", got.PaceStatus)
	}
	if got.ExpectedValue != 50 {
		t.Errorf("ExpectedValue = %v, want 50", got.ExpectedValue)
	}
}
