package model

import "time"

// Plan is the top-level container for one year of objectives.
type Plan struct {
	ID        string    `json:"id"`
	Year      int       `json:"year"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relational data -- populated by queries, not stored in the plans table.
	Objectives []*Objective `json:"objectives,omitempty"`
}

// Objective groups key results under a plan.
type Objective struct {
	ID        string    `json:"id"`
	PlanID    string    `json:"plan_id"`
	Code      string    `json:"code,omitempty"` // short handle like "O1"
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relational data -- populated by queries.
	KeyResults []*KeyResult `json:"key_results,omitempty"`
}
