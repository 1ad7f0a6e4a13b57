// Package validation proves a workflow graph is ready for execution. It
// aggregates three independent passes: structural DAG checks, per-type node
// config schema checks, and external dependency checks. The passes never
// short-circuit each other: a workflow can simultaneously have a cycle, a
// bad node config, and a missing dependency, and all of it is reported in one
// result.
package validation

import (
	"context"

	"github.com/insightloop/insightloop/pkg/domain"
)

type WorkflowValidator struct {
	structure  *StructureValidator
	nodeConfig *NodeConfigValidator
	deps       *DependencyChecker
}

type WorkflowValidatorDeps struct {
	SchemaRegistry  domain.SchemaRegistry
	Lookup          domain.DependencyLookup
	OutOfScopeTypes []domain.NodeType
}

func NewWorkflowValidator(deps WorkflowValidatorDeps) *WorkflowValidator {
	return &WorkflowValidator{
		structure: NewStructureValidator(),
		nodeConfig: NewNodeConfigValidator(NodeConfigValidatorDeps{
			Registry:        deps.SchemaRegistry,
			OutOfScopeTypes: deps.OutOfScopeTypes,
		}),
		deps: NewDependencyChecker(deps.Lookup),
	}
}

// ValidateExecutionReadiness runs all three passes and unions their findings
// in a fixed order: structure, node config, dependencies. The combined result
// is valid iff no pass recorded an error.
func (v *WorkflowValidator) ValidateExecutionReadiness(ctx context.Context, workflow domain.Workflow, projectID string) (*domain.ValidationResult, error) {
	result := domain.NewValidationResult()

	result.Merge(v.structure.Validate(workflow))
	result.Merge(v.nodeConfig.Validate(workflow))

	depsResult, err := v.deps.Check(ctx, workflow, projectID)
	if err != nil {
		return nil, err
	}

	result.Merge(depsResult)

	return result, nil
}
