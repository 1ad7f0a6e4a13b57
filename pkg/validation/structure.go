package validation

import (
	"fmt"
	"strings"

	"github.com/insightloop/insightloop/pkg/domain"
	"github.com/insightloop/insightloop/pkg/graph"
)

// maxCycleNodesNamed caps how many unprocessed node ids a cycle error names.
const maxCycleNodesNamed = 3

// StructureValidator proves the workflow graph is a well-formed DAG: unique
// node ids, closed edge set, exactly one start node, at least one end node,
// no cycles, and full reachability from the start. All findings are collected
// before returning; no check short-circuits another.
type StructureValidator struct{}

func NewStructureValidator() *StructureValidator {
	return &StructureValidator{}
}

func (v *StructureValidator) Validate(workflow domain.Workflow) *domain.ValidationResult {
	result := domain.NewValidationResult()

	seen := map[string]struct{}{}
	for _, node := range workflow.Nodes {
		if _, ok := seen[node.ID]; ok {
			result.AddError(fmt.Sprintf("duplicate node id %q", node.ID))
			continue
		}

		seen[node.ID] = struct{}{}
	}

	nodeIDs := make([]string, 0, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		nodeIDs = append(nodeIDs, node.ID)
	}

	g := graph.New(nodeIDs)

	for _, edge := range workflow.Edges {
		if _, ok := seen[edge.Source]; !ok {
			result.AddError(fmt.Sprintf("edge %q references unknown source node %q", edge.ID, edge.Source))
		}

		if _, ok := seen[edge.Target]; !ok {
			result.AddError(fmt.Sprintf("edge %q references unknown target node %q", edge.ID, edge.Target))
		}

		g.AddEdge(edge.Source, edge.Target)
	}

	startNodes := workflow.NodesOfType(domain.NodeTypeStart)
	endNodes := workflow.NodesOfType(domain.NodeTypeEnd)

	switch {
	case len(startNodes) == 0:
		result.AddError("workflow must have exactly one start node")
	case len(startNodes) > 1:
		result.AddError(fmt.Sprintf("workflow must have exactly one start node, found %d", len(startNodes)))
	}

	if len(endNodes) == 0 {
		result.AddError("workflow must have at least one end node")
	}

	_, remaining := g.TopologicalSort()
	hasCycle := len(remaining) > 0

	if hasCycle {
		named := remaining
		if len(named) > maxCycleNodesNamed {
			named = named[:maxCycleNodesNamed]
		}

		result.AddError(fmt.Sprintf("workflow contains a cycle involving nodes: %s", strings.Join(named, ", ")))
	}

	// Orphan detection only means anything on a graph with a single start
	// node and no cycle.
	if len(startNodes) == 1 && !hasCycle {
		visited := g.ReachableFrom(startNodes[0].ID)

		for _, node := range workflow.Nodes {
			if _, ok := visited[node.ID]; !ok {
				result.AddError(fmt.Sprintf("node %q (%s) is unreachable from the start node", node.DisplayName(), node.ID))
			}
		}
	}

	for _, node := range workflow.Nodes {
		if node.Type == domain.NodeTypeStart || node.Type == domain.NodeTypeEnd {
			continue
		}

		if g.InDegree(node.ID) == 0 && g.OutDegree(node.ID) == 0 {
			result.AddWarning(fmt.Sprintf("node %q (%s) is not connected to any other node", node.DisplayName(), node.ID))
		}
	}

	return result
}
