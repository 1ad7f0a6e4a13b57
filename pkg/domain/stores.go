package domain

import "context"

// WorkflowStore loads workflow graphs. Authorization scoping is applied by
// the caller before the engine is involved.
type WorkflowStore interface {
	GetWorkflow(ctx context.Context, workflowID string) (Workflow, error)
	CreateWorkflow(ctx context.Context, workflow Workflow) error
}

// ExecutionStore persists the execution record at each status transition so
// partial progress survives a process failure.
type ExecutionStore interface {
	CreateExecution(ctx context.Context, execution *WorkflowExecution) error
	UpdateExecution(ctx context.Context, execution *WorkflowExecution) error
	GetExecution(ctx context.Context, executionID string) (*WorkflowExecution, error)
}

// DependencyLookup resolves externally owned entities referenced by node
// configs.
type DependencyLookup interface {
	ProjectExists(ctx context.Context, projectID string) (bool, error)
	PersonasExist(ctx context.Context, personaIDs []string, projectID string) (map[string]struct{}, error)
}

// SchemaValidator validates one node's config payload against the schema for
// its type. Violations are returned as field/message pairs, one per violated
// field.
type SchemaValidator interface {
	ValidateConfig(config map[string]any) []SchemaViolation
}

type SchemaViolation struct {
	Field   string
	Message string
}

// SchemaRegistry maps node types to their config schemas. Unknown types are
// reported via the second return value.
type SchemaRegistry interface {
	SchemaFor(nodeType NodeType) (SchemaValidator, bool)
}

type GeneratePersonasParams struct {
	ProjectID string
	Count     int
	Prompt    string
}

// PersonaService is the business logic behind persona_generation nodes. The
// core only defines the contract; the LLM-backed body lives outside it.
type PersonaService interface {
	GeneratePersonas(ctx context.Context, params GeneratePersonasParams) ([]string, error)
}

type RunDiscussionParams struct {
	ProjectID  string
	PersonaIDs []string
	Topic      string
}

type DiscussionResult struct {
	DiscussionID  string
	ResponseCount int
}

// DiscussionService runs focus-group discussions for focus_group nodes.
type DiscussionService interface {
	RunDiscussion(ctx context.Context, params RunDiscussionParams) (DiscussionResult, error)
}
