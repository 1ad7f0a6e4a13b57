package validation

import (
	"context"

	"github.com/insightloop/insightloop/pkg/domain"
)

// Test doubles shared by the validator tests.

type fakeSchema struct {
	violations []domain.SchemaViolation
}

func (f fakeSchema) ValidateConfig(config map[string]any) []domain.SchemaViolation {
	return f.violations
}

type fakeRegistry struct {
	schemas map[domain.NodeType]domain.SchemaValidator
}

func (f fakeRegistry) SchemaFor(nodeType domain.NodeType) (domain.SchemaValidator, bool) {
	schema, ok := f.schemas[nodeType]
	return schema, ok
}

// permissiveRegistry accepts every known node type with no violations.
func permissiveRegistry() fakeRegistry {
	schemas := map[domain.NodeType]domain.SchemaValidator{}

	for _, nodeType := range []domain.NodeType{
		domain.NodeTypeStart,
		domain.NodeTypeEnd,
		domain.NodeTypeDecision,
		domain.NodeTypePersonaGeneration,
		domain.NodeTypeFocusGroup,
		domain.NodeTypeSurveyCreation,
		domain.NodeTypePDFExport,
		domain.NodeTypeResultsAnalysis,
	} {
		schemas[nodeType] = fakeSchema{}
	}

	return fakeRegistry{schemas: schemas}
}

type fakeLookup struct {
	projectExists bool
	personas      map[string]struct{}
	projectErr    error
	personasErr   error
}

func (f fakeLookup) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	return f.projectExists, f.projectErr
}

func (f fakeLookup) PersonasExist(ctx context.Context, personaIDs []string, projectID string) (map[string]struct{}, error) {
	if f.personasErr != nil {
		return nil, f.personasErr
	}

	found := map[string]struct{}{}
	for _, id := range personaIDs {
		if _, ok := f.personas[id]; ok {
			found[id] = struct{}{}
		}
	}

	return found, nil
}

func node(id string, nodeType domain.NodeType) domain.Node {
	return domain.Node{ID: id, Type: nodeType, Label: id, Config: map[string]any{}}
}

func edge(source, target string) domain.Edge {
	return domain.Edge{ID: source + "-" + target, Source: source, Target: target}
}

func linearWorkflow() domain.Workflow {
	return domain.Workflow{
		ID:        "wf-1",
		ProjectID: "proj-1",
		Nodes: []domain.Node{
			node("start", domain.NodeTypeStart),
			node("end", domain.NodeTypeEnd),
		},
		Edges: []domain.Edge{edge("start", "end")},
	}
}
