package model

// KeyResultFilter holds criteria for querying key results.
type KeyResultFilter struct {
	ObjectiveID string      `json:"objective_id,omitempty"`
	PlanID      string      `json:"plan_id,omitempty"`
	KrType      []KrType    `json:"kr_type,omitempty"`
	Direction   []Direction `json:"direction,omitempty"`
	Year        *int        `json:"year,omitempty"`
	Search      string      `json:"search,omitempty"` // substring match on title
	Sort        string      `json:"sort,omitempty"`   // e.g. "-created_at"; prefix "-" = descending
	Limit       int         `json:"limit,omitempty"`
	Offset      int         `json:"offset,omitempty"`
}

// TaskFilter holds criteria for querying tasks.
type TaskFilter struct {
	KrID     string       `json:"kr_id,omitempty"`
	Status   []TaskStatus `json:"status,omitempty"`
	Priority *int         `json:"priority,omitempty"`
	Sort     string       `json:"sort,omitempty"`
	Limit    int          `json:"limit,omitempty"`
	Offset   int          `json:"offset,omitempty"`
}
