package engine

import "github.com/insightloop/insightloop/pkg/domain"

type ExecutorSelectorDeps struct {
	PersonaService    domain.PersonaService
	DiscussionService domain.DiscussionService
}

// StubbedNodeTypes lists the node types a selector built from deps registers
// the fail-loud stub for. Validation must be wired with the same deps so its
// out-of-scope warnings name exactly the types execution will refuse to run.
func StubbedNodeTypes(deps ExecutorSelectorDeps) []domain.NodeType {
	stubbed := []domain.NodeType{}

	if deps.PersonaService == nil {
		stubbed = append(stubbed, domain.NodeTypePersonaGeneration)
	}

	if deps.DiscussionService == nil {
		stubbed = append(stubbed, domain.NodeTypeFocusGroup)
	}

	return append(stubbed,
		domain.NodeTypeSurveyCreation,
		domain.NodeTypePDFExport,
		domain.NodeTypeResultsAnalysis,
	)
}

// NewDefaultExecutorSelector wires the built-in executors into a fresh
// selector. Types whose backing service is not provided, and types whose
// business logic is out of scope entirely, get the fail-loud stub.
func NewDefaultExecutorSelector(deps ExecutorSelectorDeps) domain.ExecutorSelector {
	selector := domain.NewExecutorSelector()

	selector.RegisterExecutor(domain.NodeTypeStart, NewStartExecutor())
	selector.RegisterExecutor(domain.NodeTypeEnd, NewEndExecutor())
	selector.RegisterExecutor(domain.NodeTypeDecision, NewDecisionExecutor())

	stub := NewStubExecutor()

	if deps.PersonaService != nil {
		selector.RegisterExecutor(domain.NodeTypePersonaGeneration, NewPersonaGenerationExecutor(deps.PersonaService))
	} else {
		selector.RegisterExecutor(domain.NodeTypePersonaGeneration, stub)
	}

	if deps.DiscussionService != nil {
		selector.RegisterExecutor(domain.NodeTypeFocusGroup, NewFocusGroupExecutor(deps.DiscussionService))
	} else {
		selector.RegisterExecutor(domain.NodeTypeFocusGroup, stub)
	}

	selector.RegisterExecutor(domain.NodeTypeSurveyCreation, stub)
	selector.RegisterExecutor(domain.NodeTypePDFExport, stub)
	selector.RegisterExecutor(domain.NodeTypeResultsAnalysis, stub)

	return selector
}
