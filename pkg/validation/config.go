package validation

import (
	"fmt"

	"github.com/insightloop/insightloop/pkg/domain"
)

// NodeConfigValidator checks every node's config against the schema
// registered for its type. Types flagged out of scope still validate so the
// graph can be scheduled, but are surfaced as warnings since their executors
// refuse to run them.
type NodeConfigValidator struct {
	registry        domain.SchemaRegistry
	outOfScopeTypes map[domain.NodeType]struct{}
}

type NodeConfigValidatorDeps struct {
	Registry        domain.SchemaRegistry
	OutOfScopeTypes []domain.NodeType
}

func NewNodeConfigValidator(deps NodeConfigValidatorDeps) *NodeConfigValidator {
	outOfScope := make(map[domain.NodeType]struct{}, len(deps.OutOfScopeTypes))
	for _, nodeType := range deps.OutOfScopeTypes {
		outOfScope[nodeType] = struct{}{}
	}

	return &NodeConfigValidator{
		registry:        deps.Registry,
		outOfScopeTypes: outOfScope,
	}
}

func (v *NodeConfigValidator) Validate(workflow domain.Workflow) *domain.ValidationResult {
	result := domain.NewValidationResult()

	for _, node := range workflow.Nodes {
		schema, known := v.registry.SchemaFor(node.Type)
		if !known {
			result.AddError(fmt.Sprintf("node %q (%s) has unknown type %q", node.DisplayName(), node.ID, node.Type))
			continue
		}

		if _, outOfScope := v.outOfScopeTypes[node.Type]; outOfScope {
			result.AddWarning(fmt.Sprintf("node %q (%s) has type %q which cannot be executed yet", node.DisplayName(), node.ID, node.Type))
		}

		for _, violation := range schema.ValidateConfig(node.Config) {
			result.AddError(fmt.Sprintf("node '%s' (%s, type: %s): %s - %s", node.DisplayName(), node.ID, node.Type, violation.Field, violation.Message))
		}
	}

	return result
}
