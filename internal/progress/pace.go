package progress

import "github.com/groblegark/okrd/internal/model"

// Pace ratio cutoffs. This table is the single source of truth for pace
// classification; every badge, chart, and mindmap node derives its color
// from these exact values.
const (
	aheadThreshold   = 1.10
	onTrackThreshold = 0.90
	atRiskThreshold  = 0.70
)

// Classify maps clamped progress against expected progress to one of the
// four pace statuses. When nothing is expected yet (expected <= 0) the ratio
// is defined as 1, i.e. on track. The engine never emits PaceComplete;
// callers aggregating finished KRs apply that mapping themselves.
func Classify(progress, expected float64) model.PaceStatus {
	ratio := 1.0
	if expected > 0 {
		ratio = clamp01(progress) / expected
	}

	switch {
	case ratio >= aheadThreshold:
		return model.PaceAhead
	case ratio >= onTrackThreshold:
		return model.PaceOnTrack
	case ratio >= atRiskThreshold:
		return model.PaceAtRisk
	default:
		return model.PaceOffTrack
	}
}

// Display maps a computed pace status to the value shown in aggregated
// dashboard responses: finished KRs read "complete" rather than "ahead".
func Display(progress float64, status model.PaceStatus) model.PaceStatus {
	if progress >= 1 {
		return model.PaceComplete
	}
	return status
}
