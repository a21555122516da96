// Package mindmap turns a plan hierarchy into a typed node/edge graph and
// computes 2D positions for it. The layout functions are pure: they never
// mutate their inputs and return fresh position maps, so callers may invoke
// them concurrently from multiple views.
package mindmap

import "github.com/groblegark/okrd/internal/model"

// NodeType identifies what kind of entity a mindmap node represents.
type NodeType string

const (
	NodePlan      NodeType = "plan"
	NodeObjective NodeType = "objective"
	NodeKr        NodeType = "kr"
	NodeQuarter   NodeType = "quarter"
	NodeTask      NodeType = "task"
)

func (t NodeType) String() string { return string(t) }

func (t NodeType) IsValid() bool {
	switch t {
	case NodePlan, NodeObjective, NodeKr, NodeQuarter, NodeTask:
		return true
	}
	return false
}

// Node box dimensions in pixels. These are design constants shared with the
// rendering layer, not measurements.
func (t NodeType) Width() float64 {
	switch t {
	case NodePlan:
		return 280
	case NodeObjective:
		return 240
	case NodeKr:
		return 220
	case NodeQuarter:
		return 120
	case NodeTask:
		return 160
	}
	return 160
}

func (t NodeType) Height() float64 {
	switch t {
	case NodePlan:
		return 80
	case NodeObjective:
		return 70
	case NodeKr:
		return 100
	case NodeQuarter:
		return 50
	case NodeTask:
		return 60
	}
	return 60
}

// Position is a 2D node coordinate (node center).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one element of the mindmap graph. Nodes are built fresh on every
// Transform call; progress and pace are carried through from the caller's
// precomputed values, never recomputed here.
type Node struct {
	ID         string           `json:"id"`
	Type       NodeType         `json:"type"`
	Label      string           `json:"label"`
	Progress   float64          `json:"progress"`
	PaceStatus model.PaceStatus `json:"pace_status,omitempty"`

	// KR-specific fields, zero for other node types.
	CurrentValue float64         `json:"current_value,omitempty"`
	TargetValue  float64         `json:"target_value,omitempty"`
	Unit         string          `json:"unit,omitempty"`
	Direction    model.Direction `json:"direction,omitempty"`

	Position Position `json:"position"`
}

// Edge is a directed parent -> child hierarchy link. The layout algorithms
// assume a strict tree: single parent per node, no cycles.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// LayoutConfig holds the knobs shared by all layout algorithms. ShowTasks
// and ShowQuarters act upstream of layout, in Transform.
type LayoutConfig struct {
	NodeSpacing  float64 `json:"node_spacing"`
	LevelSpacing float64 `json:"level_spacing"`
	Direction    string  `json:"direction"` // "TB" or "LR"
	ShowTasks    bool    `json:"show_tasks"`
	ShowQuarters bool    `json:"show_quarters"`
}

// DefaultLayoutConfig returns the spacing used when a view has no saved
// configuration.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		NodeSpacing:  60,
		LevelSpacing: 150,
		Direction:    "TB",
		ShowTasks:    true,
		ShowQuarters: true,
	}
}
