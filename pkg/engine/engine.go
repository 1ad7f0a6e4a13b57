// Package engine drives a validated workflow graph to completion. Nodes
// execute strictly one at a time in the order the scheduler computed; there
// is no parallel branch execution, no retry and no resume. A failed or
// completed execution record is final; re-running a workflow always creates
// a new record.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/insightloop/insightloop/pkg/domain"
	"github.com/insightloop/insightloop/pkg/validation"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// scheduleOrderer is the engine's view of the scheduler.
type scheduleOrderer interface {
	Order(workflow domain.Workflow) ([]string, error)
}

type ExecutionEngine struct {
	workflows  domain.WorkflowStore
	executions domain.ExecutionStore
	validator  *validation.WorkflowValidator
	scheduler  scheduleOrderer
	selector   domain.ExecutorSelector
	now        func() time.Time
}

type ExecutionEngineDeps struct {
	WorkflowStore  domain.WorkflowStore
	ExecutionStore domain.ExecutionStore
	Validator      *validation.WorkflowValidator
	Selector       domain.ExecutorSelector

	// Now overrides the clock in tests.
	Now func() time.Time
}

func NewExecutionEngine(deps ExecutionEngineDeps) *ExecutionEngine {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &ExecutionEngine{
		workflows:  deps.WorkflowStore,
		executions: deps.ExecutionStore,
		validator:  deps.Validator,
		scheduler:  NewScheduler(),
		selector:   deps.Selector,
		now:        now,
	}
}

// Execute runs the workflow to a terminal state. The execution record is
// created only after validation passes, so an invalid graph never leaves a
// pending record behind. The record is persisted at every status transition
// and after every node result, making partial progress observable mid-run.
// On node failure the run stops immediately: the record is marked failed and
// persisted before the error propagates to the caller.
func (e *ExecutionEngine) Execute(ctx context.Context, workflowID, triggeredBy string) (*domain.WorkflowExecution, error) {
	workflow, err := e.workflows.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("loading workflow %s: %w", workflowID, err)
	}

	validationResult, err := e.validator.ValidateExecutionReadiness(ctx, workflow, workflow.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("validating workflow %s: %w", workflowID, err)
	}

	if !validationResult.IsValid() {
		return nil, &domain.ValidationFailedError{Errors: validationResult.Errors}
	}

	execution := &domain.WorkflowExecution{
		ID:          xid.New().String(),
		WorkflowID:  workflow.ID,
		TriggeredBy: triggeredBy,
		Status:      domain.ExecutionStatusPending,
		ResultData:  map[string]domain.NodeResult{},
		StartedAt:   e.now(),
	}

	if err := e.executions.CreateExecution(ctx, execution); err != nil {
		return nil, fmt.Errorf("creating execution record: %w", err)
	}

	log.Info().
		Str("workflow_id", workflow.ID).
		Str("execution_id", execution.ID).
		Str("triggered_by", triggeredBy).
		Msg("starting workflow execution")

	schedule, err := e.scheduler.Order(workflow)
	if err != nil {
		return execution, e.failExecution(ctx, execution, err)
	}

	execution.Status = domain.ExecutionStatusRunning
	e.persistUpdate(ctx, execution)

	executionContext := domain.NewExecutionContext(workflow.ProjectID, workflow.ID, triggeredBy)

	for _, nodeID := range schedule {
		node, ok := workflow.GetNodeByID(nodeID)
		if !ok {
			return execution, e.failExecution(ctx, execution, fmt.Errorf("scheduled node %q not found in workflow %s", nodeID, workflow.ID))
		}

		result, err := e.executeNode(ctx, node, executionContext)
		if err != nil {
			return execution, e.failExecution(ctx, execution, err)
		}

		executionContext.SetResult(node.ID, result)
		execution.ResultData[node.ID] = result
		e.persistUpdate(ctx, execution)

		log.Debug().
			Str("execution_id", execution.ID).
			Str("node_id", node.ID).
			Str("node_type", string(node.Type)).
			Msg("node executed")
	}

	execution.MarkCompleted(e.now())
	e.persistUpdate(ctx, execution)

	log.Info().
		Str("workflow_id", workflow.ID).
		Str("execution_id", execution.ID).
		Int("nodes_executed", len(schedule)).
		Msg("workflow execution completed")

	return execution, nil
}

func (e *ExecutionEngine) executeNode(ctx context.Context, node domain.Node, executionContext *domain.ExecutionContext) (domain.NodeResult, error) {
	executor, err := e.selector.Select(ctx, domain.SelectExecutorParams{NodeType: node.Type})
	if err != nil {
		if errors.Is(err, domain.ErrExecutorNotFound) {
			return nil, &domain.NotImplementedError{
				NodeID:   node.ID,
				NodeName: node.DisplayName(),
				NodeType: node.Type,
			}
		}

		return nil, err
	}

	result, err := executor.Execute(ctx, node, executionContext)
	if err != nil {
		var notImplemented *domain.NotImplementedError
		var invalidCondition *domain.InvalidConditionError

		// These two already carry node identity; every other failure gets
		// wrapped so the record names the node that sank the run.
		if errors.As(err, &notImplemented) || errors.As(err, &invalidCondition) {
			return nil, err
		}

		return nil, &domain.NodeExecutionError{
			NodeID:   node.ID,
			NodeName: node.DisplayName(),
			Err:      err,
		}
	}

	return result, nil
}

// failExecution records the terminal failed state before the error
// propagates, so a crashed caller can still observe the failure by re-reading
// the record.
func (e *ExecutionEngine) failExecution(ctx context.Context, execution *domain.WorkflowExecution, cause error) error {
	execution.MarkFailed(cause.Error(), e.now())
	e.persistUpdate(ctx, execution)

	log.Error().
		Err(cause).
		Str("workflow_id", execution.WorkflowID).
		Str("execution_id", execution.ID).
		Msg("workflow execution failed")

	return cause
}

// persistUpdate pushes the current record state to the store. A persistence
// failure is logged but never masks the in-memory transition: the run's
// outcome is decided by node execution, not by the store.
func (e *ExecutionEngine) persistUpdate(ctx context.Context, execution *domain.WorkflowExecution) {
	if err := e.executions.UpdateExecution(ctx, execution); err != nil {
		log.Error().
			Err(err).
			Str("execution_id", execution.ID).
			Str("status", string(execution.Status)).
			Msg("failed to persist execution update")
	}
}
