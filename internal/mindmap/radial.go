package mindmap

import "math"

// RadialLayout positions nodes on concentric rings around the root. Angular
// sweep is divided among siblings proportionally to subtree size, so bushy
// subtrees get wider wedges. The root sits at exactly (0,0); its direct
// children sweep the full circle at radius LevelSpacing * 1.5, and every
// deeper generation adds LevelSpacing to the radius.
func RadialLayout(nodes []*Node, edges []*Edge, cfg LayoutConfig) map[string]Position {
	if len(nodes) == 0 {
		return map[string]Position{}
	}

	adj := buildAdjacency(nodes, edges)
	root := adj.root(nodes)
	if root == "" {
		return gridLayout(nodes, cfg)
	}

	sizes := make(map[string]int, len(nodes))
	subtreeSize(adj, root, sizes)

	positions := make(map[string]Position, len(nodes))
	positions[root] = Position{X: 0, Y: 0}
	placeWedge(adj, root, -math.Pi, math.Pi, cfg.LevelSpacing*1.5, cfg, sizes, positions)
	return positions
}

// subtreeSize counts the nodes in a subtree: 1 for a leaf, the sum of child
// sizes for an internal node.
func subtreeSize(adj *adjacency, id string, sizes map[string]int) int {
	if s, ok := sizes[id]; ok {
		return s
	}
	sizes[id] = 1

	children := adj.children[id]
	if len(children) == 0 {
		return 1
	}

	total := 0
	for _, c := range children {
		total += subtreeSize(adj, c, sizes)
	}
	sizes[id] = total
	return total
}

// placeWedge divides [startAngle, endAngle] among the children of id by
// subtree size and places each child at the midpoint of its wedge.
func placeWedge(adj *adjacency, id string, startAngle, endAngle, radius float64, cfg LayoutConfig, sizes map[string]int, positions map[string]Position) {
	children := adj.children[id]
	if len(children) == 0 {
		return
	}

	total := 0
	for _, c := range children {
		total += sizes[c]
	}
	if total == 0 {
		total = len(children)
	}

	sweep := endAngle - startAngle
	cursor := startAngle
	for _, c := range children {
		if _, ok := positions[c]; ok {
			continue
		}
		wedge := sweep * float64(sizes[c]) / float64(total)
		angle := cursor + wedge/2
		positions[c] = Position{
			X: radius * math.Cos(angle),
			Y: radius * math.Sin(angle),
		}
		placeWedge(adj, c, cursor, cursor+wedge, radius+cfg.LevelSpacing, cfg, sizes, positions)
		cursor += wedge
	}
}
