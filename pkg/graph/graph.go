// Package graph holds the directed-graph algorithms shared by the workflow
// validator and the scheduler. All iteration is deterministic: ties between
// simultaneously ready nodes are broken by node insertion order, so the same
// workflow always produces the same order and the same diagnostics.
package graph

// Directed is an adjacency view over a workflow graph. Node insertion order
// is preserved and drives every traversal.
type Directed struct {
	order     []string
	exists    map[string]struct{}
	adjacency map[string][]string
	inDegree  map[string]int
	outDegree map[string]int
}

// New builds a graph over the given node ids, preserving their order.
// Duplicate ids are collapsed; callers validate uniqueness separately.
func New(nodeIDs []string) *Directed {
	g := &Directed{
		order:     []string{},
		exists:    map[string]struct{}{},
		adjacency: map[string][]string{},
		inDegree:  map[string]int{},
		outDegree: map[string]int{},
	}

	for _, id := range nodeIDs {
		if _, ok := g.exists[id]; ok {
			continue
		}

		g.exists[id] = struct{}{}
		g.order = append(g.order, id)
		g.inDegree[id] = 0
		g.outDegree[id] = 0
	}

	return g
}

// AddEdge records a directed edge. Edges referencing unknown nodes are
// dropped; the structure validator reports those separately so the
// algorithms here can assume a closed node set.
func (g *Directed) AddEdge(source, target string) {
	if _, ok := g.exists[source]; !ok {
		return
	}

	if _, ok := g.exists[target]; !ok {
		return
	}

	g.adjacency[source] = append(g.adjacency[source], target)
	g.outDegree[source]++
	g.inDegree[target]++
}

func (g *Directed) Nodes() []string {
	return g.order
}

func (g *Directed) InDegree(nodeID string) int {
	return g.inDegree[nodeID]
}

func (g *Directed) OutDegree(nodeID string) int {
	return g.outDegree[nodeID]
}

// TopologicalSort runs Kahn's algorithm. The queue is seeded with in-degree
// zero nodes in insertion order; neighbors reaching in-degree zero are
// enqueued in edge order. When the graph contains a cycle the returned
// remaining slice holds the unprocessed node ids in insertion order.
func (g *Directed) TopologicalSort() (ordered []string, remaining []string) {
	inDegree := make(map[string]int, len(g.inDegree))
	for id, degree := range g.inDegree {
		inDegree[id] = degree
	}

	queue := []string{}
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	ordered = []string{}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		ordered = append(ordered, current)

		for _, neighbor := range g.adjacency[current] {
			inDegree[neighbor]--

			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(ordered) == len(g.order) {
		return ordered, nil
	}

	processed := make(map[string]struct{}, len(ordered))
	for _, id := range ordered {
		processed[id] = struct{}{}
	}

	remaining = []string{}
	for _, id := range g.order {
		if _, ok := processed[id]; !ok {
			remaining = append(remaining, id)
		}
	}

	return ordered, remaining
}

// ReachableFrom runs a breadth-first traversal over the directed adjacency
// and returns the set of visited node ids, including the start itself.
func (g *Directed) ReachableFrom(startID string) map[string]struct{} {
	visited := map[string]struct{}{}

	if _, ok := g.exists[startID]; !ok {
		return visited
	}

	visited[startID] = struct{}{}
	queue := []string{startID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range g.adjacency[current] {
			if _, ok := visited[neighbor]; ok {
				continue
			}

			visited[neighbor] = struct{}{}
			queue = append(queue, neighbor)
		}
	}

	return visited
}
