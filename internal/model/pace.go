package model

// PaceStatus classifies actual progress against expected progress to date.
type PaceStatus string

const (
	PaceAhead    PaceStatus = "ahead"
	PaceOnTrack  PaceStatus = "on_track"
	PaceAtRisk   PaceStatus = "at_risk"
	PaceOffTrack PaceStatus = "off_track"

	// PaceComplete is not emitted by the progress engine itself; dashboard
	// aggregation maps progress >= 1 to this value.
	PaceComplete PaceStatus = "complete"
)

// String returns the string representation of the pace status.
func (p PaceStatus) String() string {
	return string(p)
}

// IsValid checks whether the pace status is a known value.
func (p PaceStatus) IsValid() bool {
	switch p {
	case PaceAhead, PaceOnTrack, PaceAtRisk, PaceOffTrack, PaceComplete:
		return true
	}
	return false
}
