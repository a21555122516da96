package mindmap

// TreeLayout positions nodes as a top-down tree. Each subtree is allotted a
// horizontal span equal to its subtree width; a node sits centered in its
// span with its children packed left to right beneath it. The root is
// centered at (0,0) so the tree straddles x=0. Direction "LR" transposes the
// result so the tree grows rightward instead.
func TreeLayout(nodes []*Node, edges []*Edge, cfg LayoutConfig) map[string]Position {
	if len(nodes) == 0 {
		return map[string]Position{}
	}

	adj := buildAdjacency(nodes, edges)
	root := adj.root(nodes)
	if root == "" {
		return gridLayout(nodes, cfg)
	}

	widths := make(map[string]float64, len(nodes))
	subtreeWidth(adj, root, cfg, widths)

	positions := make(map[string]Position, len(nodes))
	placeSubtree(adj, root, 0, 0, cfg, widths, positions)

	if cfg.Direction == "LR" {
		for id, p := range positions {
			positions[id] = Position{X: p.Y, Y: p.X}
		}
	}
	return positions
}

// subtreeWidth computes the horizontal span a node's subtree needs: a leaf
// needs its own box width, an internal node the greater of its own width and
// its children's spans plus spacing.
func subtreeWidth(adj *adjacency, id string, cfg LayoutConfig, widths map[string]float64) float64 {
	if w, ok := widths[id]; ok {
		return w
	}
	own := adj.nodeType(id).Width()
	// Mark before recursing so a cycle that slipped past root detection
	// cannot loop forever.
	widths[id] = own

	children := adj.children[id]
	if len(children) == 0 {
		return own
	}

	sum := 0.0
	for _, c := range children {
		sum += subtreeWidth(adj, c, cfg, widths)
	}
	sum += float64(len(children)-1) * cfg.NodeSpacing

	w := own
	if sum > w {
		w = sum
	}
	widths[id] = w
	return w
}

// placeSubtree centers a node at (x, y) and distributes its children across
// the node's span, each child centered within its own subtree width.
func placeSubtree(adj *adjacency, id string, x, y float64, cfg LayoutConfig, widths map[string]float64, positions map[string]Position) {
	if _, ok := positions[id]; ok {
		return
	}
	positions[id] = Position{X: x, Y: y}

	children := adj.children[id]
	if len(children) == 0 {
		return
	}

	childY := y + adj.nodeType(id).Height() + cfg.LevelSpacing
	cursor := x - widths[id]/2
	for _, c := range children {
		cw := widths[c]
		placeSubtree(adj, c, cursor+cw/2, childY, cfg, widths, positions)
		cursor += cw + cfg.NodeSpacing
	}
}
