package engine

import (
	"context"

	"github.com/insightloop/insightloop/pkg/domain"
	"github.com/insightloop/insightloop/pkg/expressions"
)

// StartExecutor marks the beginning of a run. It has no behavior beyond
// seeding its own result entry.
type StartExecutor struct{}

func NewStartExecutor() *StartExecutor {
	return &StartExecutor{}
}

func (e *StartExecutor) Execute(ctx context.Context, node domain.Node, executionContext *domain.ExecutionContext) (domain.NodeResult, error) {
	return domain.NodeResult{
		"status":      "initialized",
		"workflow_id": executionContext.WorkflowID,
		"project_id":  executionContext.ProjectID,
	}, nil
}

// EndExecutor terminates a branch. Multiple end nodes each execute
// independently when reached by the schedule; none mutates shared state
// beyond its own result entry.
type EndExecutor struct{}

func NewEndExecutor() *EndExecutor {
	return &EndExecutor{}
}

func (e *EndExecutor) Execute(ctx context.Context, node domain.Node, executionContext *domain.ExecutionContext) (domain.NodeResult, error) {
	return domain.NodeResult{
		"status":               "completed",
		"workflow_id":          executionContext.WorkflowID,
		"total_nodes_executed": len(executionContext.Results),
	}, nil
}

const conditionConfigKey = "condition"

// DecisionExecutor evaluates a boolean condition over the results of prior
// nodes and records the branch outcome. The outcome is informational: the
// scheduler executes every node in topological order regardless of which
// branch was taken. Do not change that without product confirmation;
// existing workflow templates depend on all nodes always running.
type DecisionExecutor struct {
	evaluator *expressions.ConditionEvaluator
}

func NewDecisionExecutor() *DecisionExecutor {
	return &DecisionExecutor{
		evaluator: expressions.NewConditionEvaluator(),
	}
}

func (e *DecisionExecutor) Execute(ctx context.Context, node domain.Node, executionContext *domain.ExecutionContext) (domain.NodeResult, error) {
	condition, ok := node.ConfigString(conditionConfigKey)
	if !ok || condition == "" {
		return nil, &domain.InvalidConditionError{
			Expression: condition,
			Reason:     "decision node has no condition configured",
		}
	}

	resultsByNodeID := make(map[string]map[string]any, len(executionContext.Results))
	for nodeID, result := range executionContext.Results {
		resultsByNodeID[nodeID] = result
	}

	variables := expressions.BuildConditionContext(resultsByNodeID)

	outcome, err := e.evaluator.EvaluateBool(condition, variables)
	if err != nil {
		return nil, &domain.InvalidConditionError{
			Expression: condition,
			Reason:     err.Error(),
		}
	}

	branchTaken := "false"
	if outcome {
		branchTaken = "true"
	}

	return domain.NodeResult{
		"condition":          condition,
		"result":             outcome,
		"branch_taken":       branchTaken,
		"evaluation_context": variables,
	}, nil
}

// StubExecutor is the fail-loud placeholder for node types whose business
// logic is out of scope. Executing one aborts the run with instructions to
// remove the node.
type StubExecutor struct{}

func NewStubExecutor() *StubExecutor {
	return &StubExecutor{}
}

func (e *StubExecutor) Execute(ctx context.Context, node domain.Node, executionContext *domain.ExecutionContext) (domain.NodeResult, error) {
	return nil, &domain.NotImplementedError{
		NodeID:   node.ID,
		NodeName: node.DisplayName(),
		NodeType: node.Type,
	}
}
