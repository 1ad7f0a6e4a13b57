package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/insightloop/insightloop/internal/controllers"
	"github.com/insightloop/insightloop/internal/schemas"
	"github.com/insightloop/insightloop/internal/server"
	"github.com/insightloop/insightloop/pkg/domain"
	"github.com/insightloop/insightloop/pkg/engine"
	"github.com/insightloop/insightloop/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWorkflowStore struct {
	workflows map[string]domain.Workflow
}

func (s *memWorkflowStore) GetWorkflow(ctx context.Context, workflowID string) (domain.Workflow, error) {
	workflow, ok := s.workflows[workflowID]
	if !ok {
		return domain.Workflow{}, domain.ErrWorkflowNotFound
	}

	return workflow, nil
}

func (s *memWorkflowStore) CreateWorkflow(ctx context.Context, workflow domain.Workflow) error {
	s.workflows[workflow.ID] = workflow
	return nil
}

type memExecutionStore struct {
	executions map[string]*domain.WorkflowExecution
}

func (s *memExecutionStore) CreateExecution(ctx context.Context, execution *domain.WorkflowExecution) error {
	copied := *execution
	s.executions[execution.ID] = &copied
	return nil
}

func (s *memExecutionStore) UpdateExecution(ctx context.Context, execution *domain.WorkflowExecution) error {
	if _, ok := s.executions[execution.ID]; !ok {
		return domain.ErrExecutionNotFound
	}

	copied := *execution
	s.executions[execution.ID] = &copied
	return nil
}

func (s *memExecutionStore) GetExecution(ctx context.Context, executionID string) (*domain.WorkflowExecution, error) {
	execution, ok := s.executions[executionID]
	if !ok {
		return nil, domain.ErrExecutionNotFound
	}

	return execution, nil
}

type openLookup struct{}

func (openLookup) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	return true, nil
}

func (openLookup) PersonasExist(ctx context.Context, personaIDs []string, projectID string) (map[string]struct{}, error) {
	found := map[string]struct{}{}
	for _, personaID := range personaIDs {
		found[personaID] = struct{}{}
	}

	return found, nil
}

func newTestApp(t *testing.T) (*fiber.App, *memWorkflowStore, *memExecutionStore) {
	t.Helper()

	workflowStore := &memWorkflowStore{workflows: map[string]domain.Workflow{}}
	executionStore := &memExecutionStore{executions: map[string]*domain.WorkflowExecution{}}

	schemaRegistry, err := schemas.NewRegistry()
	require.NoError(t, err)

	selectorDeps := engine.ExecutorSelectorDeps{}

	validator := validation.NewWorkflowValidator(validation.WorkflowValidatorDeps{
		SchemaRegistry:  schemaRegistry,
		Lookup:          openLookup{},
		OutOfScopeTypes: engine.StubbedNodeTypes(selectorDeps),
	})

	executionEngine := engine.NewExecutionEngine(engine.ExecutionEngineDeps{
		WorkflowStore:  workflowStore,
		ExecutionStore: executionStore,
		Validator:      validator,
		Selector:       engine.NewDefaultExecutorSelector(selectorDeps),
	})

	controller := controllers.NewWorkflowController(controllers.WorkflowControllerDependencies{
		WorkflowStore:  workflowStore,
		ExecutionStore: executionStore,
		Validator:      validator,
		Engine:         executionEngine,
	})

	app := server.NewHTTPServer(server.HTTPServerDependencies{
		WorkflowController: controller,
	})

	return app, workflowStore, executionStore
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target))
}

func validWorkflow(id string) domain.Workflow {
	return domain.Workflow{
		ID:        id,
		ProjectID: "proj-1",
		Name:      "Launch study",
		Slug:      "launch-study",
		Nodes: []domain.Node{
			{ID: "n-start", Type: domain.NodeTypeStart},
			{ID: "n-end", Type: domain.NodeTypeEnd},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "n-start", Target: "n-end"},
		},
	}
}

func TestCreateWorkflow(t *testing.T) {
	app, workflowStore, _ := newTestApp(t)

	req := jsonRequest(t, http.MethodPost, "/api/v1/workflows", controllers.CreateWorkflowRequest{
		ProjectID: "proj-1",
		Name:      "Pricing Study Q3",
		Nodes: []domain.Node{
			{ID: "n-start", Type: domain.NodeTypeStart},
			{ID: "n-end", Type: domain.NodeTypeEnd},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "n-start", Target: "n-end"},
		},
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created domain.Workflow
	decodeBody(t, resp, &created)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "pricing-study-q3", created.Slug)
	assert.Len(t, workflowStore.workflows, 1)
}

func TestCreateWorkflowRequiresNameAndProject(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := jsonRequest(t, http.MethodPost, "/api/v1/workflows", controllers.CreateWorkflowRequest{
		Name: "no project",
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetWorkflowNotFound(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/v1/workflows/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestValidateWorkflowReportsFindings(t *testing.T) {
	app, workflowStore, _ := newTestApp(t)

	workflowStore.workflows["wf-1"] = domain.Workflow{
		ID:        "wf-1",
		ProjectID: "proj-1",
		Name:      "No start",
		Nodes: []domain.Node{
			{ID: "n-end", Type: domain.NodeTypeEnd},
		},
	}

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/workflows/wf-1/validate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result controllers.ValidateWorkflowResponse
	decodeBody(t, resp, &result)

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "workflow must have exactly one start node")
}

func TestValidateWorkflowValid(t *testing.T) {
	app, workflowStore, _ := newTestApp(t)

	workflowStore.workflows["wf-1"] = validWorkflow("wf-1")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/workflows/wf-1/validate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result controllers.ValidateWorkflowResponse
	decodeBody(t, resp, &result)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateWorkflowWarnsForStubbedTypes(t *testing.T) {
	app, workflowStore, _ := newTestApp(t)

	workflowStore.workflows["wf-1"] = domain.Workflow{
		ID:        "wf-1",
		ProjectID: "proj-1",
		Name:      "Persona study",
		Nodes: []domain.Node{
			{ID: "n-start", Type: domain.NodeTypeStart},
			{ID: "n-gen", Type: domain.NodeTypePersonaGeneration, Config: map[string]any{"count": 5}},
			{ID: "n-end", Type: domain.NodeTypeEnd},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "n-start", Target: "n-gen"},
			{ID: "e2", Source: "n-gen", Target: "n-end"},
		},
	}

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/workflows/wf-1/validate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result controllers.ValidateWorkflowResponse
	decodeBody(t, resp, &result)

	// No persona service is wired in this app, so the type that would fail
	// at execution must be warned about here.
	assert.True(t, result.IsValid)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "persona_generation")
}

func TestExecuteWorkflow(t *testing.T) {
	app, workflowStore, executionStore := newTestApp(t)

	workflowStore.workflows["wf-1"] = validWorkflow("wf-1")

	req := jsonRequest(t, http.MethodPost, "/api/v1/workflows/wf-1/execute", controllers.ExecuteWorkflowRequest{
		TriggeredBy: "user-7",
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result controllers.ExecuteWorkflowResponse
	decodeBody(t, resp, &result)

	require.NotNil(t, result.Execution)
	assert.Equal(t, domain.ExecutionStatusCompleted, result.Execution.Status)
	assert.Equal(t, "user-7", result.Execution.TriggeredBy)
	assert.Len(t, result.Execution.ResultData, 2)

	getResp, err := app.Test(jsonRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/executions/%s", result.Execution.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, getResp.StatusCode)

	assert.Len(t, executionStore.executions, 1)
}

func TestExecuteInvalidWorkflowAnswers422(t *testing.T) {
	app, workflowStore, executionStore := newTestApp(t)

	workflowStore.workflows["wf-1"] = domain.Workflow{
		ID:        "wf-1",
		ProjectID: "proj-1",
		Name:      "No end",
		Nodes: []domain.Node{
			{ID: "n-start", Type: domain.NodeTypeStart},
		},
	}

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/workflows/wf-1/execute", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	decodeBody(t, resp, &body)

	assert.Contains(t, body.Errors, "workflow must have at least one end node")
	assert.Empty(t, executionStore.executions, "invalid workflow must not leave an execution record")
}

func TestExecuteWorkflowNotFound(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/workflows/missing/execute", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestExecuteWorkflowWithStubNodeReturnsFailedRecord(t *testing.T) {
	app, workflowStore, _ := newTestApp(t)

	workflowStore.workflows["wf-1"] = domain.Workflow{
		ID:        "wf-1",
		ProjectID: "proj-1",
		Name:      "With export",
		Nodes: []domain.Node{
			{ID: "n-start", Type: domain.NodeTypeStart},
			{ID: "n-export", Type: domain.NodeTypePDFExport, Label: "Export report"},
			{ID: "n-end", Type: domain.NodeTypeEnd},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "n-start", Target: "n-export"},
			{ID: "e2", Source: "n-export", Target: "n-end"},
		},
	}

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/workflows/wf-1/execute", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result controllers.ExecuteWorkflowResponse
	decodeBody(t, resp, &result)

	require.NotNil(t, result.Execution)
	assert.Equal(t, domain.ExecutionStatusFailed, result.Execution.Status)
	assert.Contains(t, result.Error, "Export report")
}

func TestGetExecutionNotFound(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/v1/executions/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
