package engine

import (
	"github.com/insightloop/insightloop/pkg/domain"
	"github.com/insightloop/insightloop/pkg/graph"
)

// Scheduler computes the execution order for a workflow. It re-derives the
// order from the graph with its own Kahn pass rather than reusing validator
// state, so the two stay decoupled. Ties between simultaneously ready nodes
// are broken by node insertion order; the same workflow always schedules
// identically.
type Scheduler struct{}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Order returns node ids in topological order. Callers are expected to have
// validated acyclicity already; a cycle still surfaces as a CycleError.
func (s *Scheduler) Order(workflow domain.Workflow) ([]string, error) {
	nodeIDs := make([]string, 0, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		nodeIDs = append(nodeIDs, node.ID)
	}

	g := graph.New(nodeIDs)

	for _, edge := range workflow.Edges {
		g.AddEdge(edge.Source, edge.Target)
	}

	ordered, remaining := g.TopologicalSort()
	if len(remaining) > 0 {
		return nil, &domain.CycleError{
			WorkflowID: workflow.ID,
			Remaining:  remaining,
		}
	}

	return ordered, nil
}
