package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/insightloop/insightloop/pkg/domain"
	"github.com/insightloop/insightloop/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubbedNodeTypes_TracksMissingServices(t *testing.T) {
	tests := []struct {
		name     string
		deps     ExecutorSelectorDeps
		expected []domain.NodeType
	}{
		{
			name: "no services wired",
			deps: ExecutorSelectorDeps{},
			expected: []domain.NodeType{
				domain.NodeTypePersonaGeneration,
				domain.NodeTypeFocusGroup,
				domain.NodeTypeSurveyCreation,
				domain.NodeTypePDFExport,
				domain.NodeTypeResultsAnalysis,
			},
		},
		{
			name: "both services wired",
			deps: ExecutorSelectorDeps{
				PersonaService:    fakePersonaService{},
				DiscussionService: fakeDiscussionService{},
			},
			expected: []domain.NodeType{
				domain.NodeTypeSurveyCreation,
				domain.NodeTypePDFExport,
				domain.NodeTypeResultsAnalysis,
			},
		},
		{
			name: "only persona service wired",
			deps: ExecutorSelectorDeps{PersonaService: fakePersonaService{}},
			expected: []domain.NodeType{
				domain.NodeTypeFocusGroup,
				domain.NodeTypeSurveyCreation,
				domain.NodeTypePDFExport,
				domain.NodeTypeResultsAnalysis,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StubbedNodeTypes(tt.deps))
		})
	}
}

// Every type StubbedNodeTypes reports must actually dispatch to the stub, and
// every other type must not. A drift between the two turns "valid, no
// warnings" workflows into guaranteed execution failures.
func TestStubbedNodeTypes_AgreesWithSelector(t *testing.T) {
	allTypes := []domain.NodeType{
		domain.NodeTypeStart,
		domain.NodeTypeEnd,
		domain.NodeTypeDecision,
		domain.NodeTypePersonaGeneration,
		domain.NodeTypeFocusGroup,
		domain.NodeTypeSurveyCreation,
		domain.NodeTypePDFExport,
		domain.NodeTypeResultsAnalysis,
	}

	depsVariants := []ExecutorSelectorDeps{
		{},
		{PersonaService: fakePersonaService{}},
		{DiscussionService: fakeDiscussionService{}},
		{PersonaService: fakePersonaService{}, DiscussionService: fakeDiscussionService{}},
	}

	for i, deps := range depsVariants {
		t.Run(fmt.Sprintf("variant_%d", i), func(t *testing.T) {
			selector := NewDefaultExecutorSelector(deps)

			stubbed := map[domain.NodeType]struct{}{}
			for _, nodeType := range StubbedNodeTypes(deps) {
				stubbed[nodeType] = struct{}{}
			}

			for _, nodeType := range allTypes {
				executor, err := selector.Select(context.Background(), domain.SelectExecutorParams{NodeType: nodeType})
				require.NoError(t, err)

				_, isStub := executor.(*StubExecutor)
				_, expected := stubbed[nodeType]

				assert.Equal(t, expected, isStub, "type %s", nodeType)
			}
		})
	}
}

func TestValidationWarnsForStubbedServiceTypes(t *testing.T) {
	workflow := domain.Workflow{
		ID:        "wf-1",
		ProjectID: "proj-1",
		Nodes: []domain.Node{
			testNode("start", domain.NodeTypeStart, nil),
			testNode("gen", domain.NodeTypePersonaGeneration, map[string]any{"count": 5}),
			testNode("end", domain.NodeTypeEnd, nil),
		},
		Edges: []domain.Edge{
			testEdge("start", "gen"),
			testEdge("gen", "end"),
		},
	}

	selectorDeps := ExecutorSelectorDeps{}

	validator := validation.NewWorkflowValidator(validation.WorkflowValidatorDeps{
		SchemaRegistry:  staticRegistry{},
		Lookup:          openLookup{},
		OutOfScopeTypes: StubbedNodeTypes(selectorDeps),
	})

	result, err := validator.ValidateExecutionReadiness(context.Background(), workflow, "proj-1")
	require.NoError(t, err)

	assert.True(t, result.IsValid())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "persona_generation")

	// The warned-about node is exactly the one that sinks the run.
	workflows := &memWorkflowStore{workflows: map[string]domain.Workflow{workflow.ID: workflow}}

	engine := NewExecutionEngine(ExecutionEngineDeps{
		WorkflowStore:  workflows,
		ExecutionStore: &memExecutionStore{},
		Validator:      validator,
		Selector:       NewDefaultExecutorSelector(selectorDeps),
	})

	execution, err := engine.Execute(context.Background(), "wf-1", "user-1")

	var notImplemented *domain.NotImplementedError
	require.ErrorAs(t, err, &notImplemented)
	assert.Equal(t, domain.NodeTypePersonaGeneration, notImplemented.NodeType)
	assert.Equal(t, domain.ExecutionStatusFailed, execution.Status)

	// With the persona service wired the same workflow warns nothing and runs.
	wiredDeps := ExecutorSelectorDeps{PersonaService: fakePersonaService{}}

	wiredValidator := validation.NewWorkflowValidator(validation.WorkflowValidatorDeps{
		SchemaRegistry:  staticRegistry{},
		Lookup:          openLookup{},
		OutOfScopeTypes: StubbedNodeTypes(wiredDeps),
	})

	result, err = wiredValidator.ValidateExecutionReadiness(context.Background(), workflow, "proj-1")
	require.NoError(t, err)
	assert.True(t, result.IsValid())
	assert.Empty(t, result.Warnings)

	wiredEngine := NewExecutionEngine(ExecutionEngineDeps{
		WorkflowStore:  workflows,
		ExecutionStore: &memExecutionStore{},
		Validator:      wiredValidator,
		Selector:       NewDefaultExecutorSelector(wiredDeps),
	})

	execution, err = wiredEngine.Execute(context.Background(), "wf-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionStatusCompleted, execution.Status)
}
