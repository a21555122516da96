package mindmap

// adjacency is the tree structure the layout algorithms walk. Children keep
// edge order so sibling order is deterministic.
type adjacency struct {
	children map[string][]string
	parent   map[string]string
	byID     map[string]*Node
}

func buildAdjacency(nodes []*Node, edges []*Edge) *adjacency {
	a := &adjacency{
		children: make(map[string][]string, len(nodes)),
		parent:   make(map[string]string, len(nodes)),
		byID:     make(map[string]*Node, len(nodes)),
	}
	for _, n := range nodes {
		a.byID[n.ID] = n
	}
	for _, e := range edges {
		if a.byID[e.Source] == nil || a.byID[e.Target] == nil {
			continue
		}
		a.children[e.Source] = append(a.children[e.Source], e.Target)
		a.parent[e.Target] = e.Source
	}
	return a
}

// root returns the unique parentless node, or "" when the edge set does not
// describe a single-rooted tree (cycle, forest, or empty input). Callers
// fall back to gridLayout in that case.
func (a *adjacency) root(nodes []*Node) string {
	var roots []string
	for _, n := range nodes {
		if _, ok := a.parent[n.ID]; !ok {
			roots = append(roots, n.ID)
		}
	}
	if len(roots) != 1 {
		return ""
	}
	return roots[0]
}

// nodeType reports the type for an id, defaulting to task-sized boxes for
// unknown ids so width lookups stay total.
func (a *adjacency) nodeType(id string) NodeType {
	if n := a.byID[id]; n != nil {
		return n.Type
	}
	return NodeTask
}

var gridBands = []NodeType{NodePlan, NodeObjective, NodeKr, NodeQuarter, NodeTask}

// gridLayout is the named fallback for malformed trees: nodes are grouped by
// type into horizontal bands, one band per type, left-aligned at x=0.
func gridLayout(nodes []*Node, cfg LayoutConfig) map[string]Position {
	positions := make(map[string]Position, len(nodes))
	y := 0.0
	for _, band := range gridBands {
		x := 0.0
		placed := false
		for _, n := range nodes {
			if n.Type != band {
				continue
			}
			positions[n.ID] = Position{X: x + band.Width()/2, Y: y}
			x += band.Width() + cfg.NodeSpacing
			placed = true
		}
		if placed {
			y += band.Height() + cfg.LevelSpacing
		}
	}
	// Nodes with an unrecognized type still get a spot below the bands.
	x := 0.0
	for _, n := range nodes {
		if _, ok := positions[n.ID]; ok {
			continue
		}
		positions[n.ID] = Position{X: x, Y: y}
		x += n.Type.Width() + cfg.NodeSpacing
	}
	return positions
}
