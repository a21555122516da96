package model

import "time"

// KrType is the measurement type of a key result.
type KrType string

const (
	KrMetric    KrType = "metric"
	KrCount     KrType = "count"
	KrMilestone KrType = "milestone"
	KrRate      KrType = "rate"
	KrAverage   KrType = "average"
	KrBoolean   KrType = "boolean"
)

// String returns the string representation of the KR type.
func (t KrType) String() string {
	return string(t)
}

// IsValid checks whether the KR type is a known value.
func (t KrType) IsValid() bool {
	switch t {
	case KrMetric, KrCount, KrMilestone, KrRate, KrAverage, KrBoolean:
		return true
	}
	return false
}

// Binary reports whether the type is measured as done/not-done rather than
// as a ratio between start and target.
func (t KrType) Binary() bool {
	return t == KrMilestone || t == KrBoolean
}

// Direction describes which way a key result is supposed to move.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
	DirectionMaintain Direction = "maintain"
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	return string(d)
}

// IsValid checks whether the direction is a known value.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionIncrease, DirectionDecrease, DirectionMaintain:
		return true
	}
	return false
}

// KeyResult is a measurable target belonging to an objective. The definition
// is immutable once created; measurement happens through check-ins.
type KeyResult struct {
	ID          string    `json:"id"`
	ObjectiveID string    `json:"objective_id"`
	Title       string    `json:"title"`
	KrType      KrType    `json:"kr_type"`
	StartValue  float64   `json:"start_value"`
	TargetValue float64   `json:"target_value"`
	Unit        string    `json:"unit,omitempty"`
	Direction   Direction `json:"direction"`
	Year        int       `json:"year"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relational data -- populated by queries, not stored in the krs table.
	CheckIns []*CheckIn       `json:"check_ins,omitempty"`
	Quarters []*QuarterTarget `json:"quarters,omitempty"`
	Tasks    []*Task          `json:"tasks,omitempty"`
}

// Degenerate reports whether the KR has identical start and target values.
// Progress for such a KR is defined as 1, which may mask a data-entry error;
// callers can use this to badge suspect definitions.
func (kr *KeyResult) Degenerate() bool {
	return kr.TargetValue == kr.StartValue && !kr.KrType.Binary()
}

// CheckIn is an append-only recorded reading for a key result. Check-ins are
// never mutated or deleted; the latest one on or before a reference date
// determines the KR's value as of that date.
type CheckIn struct {
	ID            string    `json:"id"`
	KrID          string    `json:"kr_id"`
	Value         float64   `json:"value"`
	PreviousValue float64   `json:"previous_value"`
	Note          string    `json:"note,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
	RecordedBy    string    `json:"recorded_by,omitempty"`
}

// QuarterTarget is an optional intermediate target for one quarter of the
// plan year.
type QuarterTarget struct {
	ID          string  `json:"id"`
	KrID        string  `json:"kr_id"`
	Quarter     int     `json:"quarter"` // 1..4
	TargetValue float64 `json:"target_value"`
}
