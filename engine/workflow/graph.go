package workflow

// ParentNodes returns the names of all ancestors of the given node,
// following connections backward. Unknown node names yield an empty
// result; absence is a valid negative answer for selection logic.
//
// The reverse adjacency is rebuilt on every call. Workflows are small and
// this runs once per execution request, so a cached index is not worth
// the invalidation it would need.
func (c *Config) ParentNodes(name string) []string {
	if c.GetNode(name) == nil {
		return nil
	}
	parentsOf := make(map[string][]string, len(c.Connections))
	for from, targets := range c.Connections {
		for _, to := range targets {
			parentsOf[to] = append(parentsOf[to], from)
		}
	}
	var (
		order   []string
		visited = map[string]struct{}{name: {}}
		queue   = []string{name}
	)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, parent := range parentsOf[current] {
			if _, seen := visited[parent]; seen {
				continue
			}
			visited[parent] = struct{}{}
			order = append(order, parent)
			queue = append(queue, parent)
		}
	}
	return order
}

// HasParent reports whether candidate is an ancestor of the given node.
func (c *Config) HasParent(name, candidate string) bool {
	for _, parent := range c.ParentNodes(name) {
		if parent == candidate {
			return true
		}
	}
	return false
}
