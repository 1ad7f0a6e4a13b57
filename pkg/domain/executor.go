package domain

import (
	"context"
	"fmt"
)

// NodeExecutor is the per-type execution strategy. Implementations read the
// accumulated results of prior nodes from the context and return their own
// result entry; they never mutate other entries.
type NodeExecutor interface {
	Execute(ctx context.Context, node Node, executionContext *ExecutionContext) (NodeResult, error)
}

type SelectExecutorParams struct {
	NodeType NodeType
}

// ExecutorSelector dispatches node types to their registered executors. It is
// constructed once at startup and injected into the engine; there is no
// ambient global registry.
type ExecutorSelector interface {
	Select(ctx context.Context, params SelectExecutorParams) (NodeExecutor, error)
	RegisterExecutor(nodeType NodeType, executor NodeExecutor)
}

type executorSelector struct {
	executorsByType map[NodeType]NodeExecutor
}

func NewExecutorSelector() ExecutorSelector {
	return &executorSelector{
		executorsByType: make(map[NodeType]NodeExecutor),
	}
}

func (s *executorSelector) RegisterExecutor(nodeType NodeType, executor NodeExecutor) {
	s.executorsByType[nodeType] = executor
}

func (s *executorSelector) Select(ctx context.Context, params SelectExecutorParams) (NodeExecutor, error) {
	executor, ok := s.executorsByType[params.NodeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrExecutorNotFound, params.NodeType)
	}

	return executor, nil
}
