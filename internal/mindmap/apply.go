package mindmap

// ApplyLayout merges computed positions into a fresh node slice. Nodes
// absent from the map keep the position they already carry, which is how
// saved per-node overrides survive a recompute. The input slice and its
// nodes are not mutated.
func ApplyLayout(nodes []*Node, positions map[string]Position) []*Node {
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		c := *n
		if p, ok := positions[n.ID]; ok {
			c.Position = p
		}
		out[i] = &c
	}
	return out
}
