package mindmap

// FocusLayout is the ego-centric view: the focus node sits at (0,0), its
// ancestor chain runs straight up (direct parent nearest, root furthest),
// and its descendants layer downward breadth-first. Subtrees branching off
// the ancestor chain are laid out the same way, pushed out to the right of
// the ego column so every node keeps a distinct finite position. An unknown
// focusID falls back to TreeLayout on the full graph.
func FocusLayout(nodes []*Node, edges []*Edge, focusID string, cfg LayoutConfig) map[string]Position {
	if len(nodes) == 0 {
		return map[string]Position{}
	}

	adj := buildAdjacency(nodes, edges)
	if adj.byID[focusID] == nil {
		return TreeLayout(nodes, edges, cfg)
	}

	positions := make(map[string]Position, len(nodes))
	positions[focusID] = Position{X: 0, Y: 0}

	// Ancestors stack on a vertical line above the focus node. The seen set
	// guards against a cyclic parent chain.
	seen := map[string]bool{focusID: true}
	chain := []string{focusID}
	depth := 1
	for cur := adj.parent[focusID]; cur != ""; cur = adj.parent[cur] {
		if seen[cur] {
			break
		}
		seen[cur] = true
		positions[cur] = Position{X: 0, Y: -cfg.LevelSpacing * float64(depth)}
		chain = append(chain, cur)
		depth++
	}

	// Descendants layer downward generation by generation, each sibling
	// group centered under its parent.
	layerDescendants(adj, cfg, positions, seen, focusID)

	rightEdge := 0.0
	for id, p := range positions {
		if e := p.X + adj.nodeType(id).Width()/2; e > rightEdge {
			rightEdge = e
		}
	}

	// Subtrees branching off the ancestor chain (the focus node's siblings,
	// uncles, and their descendants) hang one level below the ancestor they
	// branch from, shifted right of everything placed so far.
	for _, anc := range chain[1:] {
		for _, c := range adj.children[anc] {
			if seen[c] {
				continue
			}
			seen[c] = true
			sub := map[string]Position{c: {X: 0, Y: positions[anc].Y + cfg.LevelSpacing}}
			layerDescendants(adj, cfg, sub, seen, c)

			leftEdge := 0.0
			for id, p := range sub {
				if e := p.X - adj.nodeType(id).Width()/2; e < leftEdge {
					leftEdge = e
				}
			}
			shift := rightEdge + cfg.NodeSpacing - leftEdge
			for id, p := range sub {
				p.X += shift
				positions[id] = p
				if e := p.X + adj.nodeType(id).Width()/2; e > rightEdge {
					rightEdge = e
				}
			}
		}
	}

	// Anything still unplaced (disconnected from the focus node's tree)
	// lines up in a row below the lowest placed level.
	bottom := 0.0
	for _, p := range positions {
		if p.Y > bottom {
			bottom = p.Y
		}
	}
	x := 0.0
	for _, n := range nodes {
		if seen[n.ID] {
			continue
		}
		positions[n.ID] = Position{X: x + n.Type.Width()/2, Y: bottom + cfg.LevelSpacing}
		x += n.Type.Width() + cfg.NodeSpacing
	}

	return positions
}

// layerDescendants places root's descendants breadth-first below it, each
// sibling group centered under its parent. The root must already have an
// entry in positions.
func layerDescendants(adj *adjacency, cfg LayoutConfig, positions map[string]Position, seen map[string]bool, root string) {
	frontier := []string{root}
	for len(frontier) > 0 {
		var next []string
		for _, parent := range frontier {
			children := adj.children[parent]
			if len(children) == 0 {
				continue
			}

			total := 0.0
			for _, c := range children {
				total += adj.nodeType(c).Width()
			}
			total += float64(len(children)-1) * cfg.NodeSpacing

			cursor := positions[parent].X - total/2
			for _, c := range children {
				if seen[c] {
					continue
				}
				seen[c] = true
				w := adj.nodeType(c).Width()
				positions[c] = Position{
					X: cursor + w/2,
					Y: positions[parent].Y + cfg.LevelSpacing,
				}
				cursor += w + cfg.NodeSpacing
				next = append(next, c)
			}
		}
		frontier = next
	}
}
