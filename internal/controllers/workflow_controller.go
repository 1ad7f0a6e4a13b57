package controllers

import (
	"errors"

	"github.com/insightloop/insightloop/pkg/domain"
	"github.com/insightloop/insightloop/pkg/engine"
	"github.com/insightloop/insightloop/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// WorkflowController handles workflow CRUD, validation and execution requests.
type WorkflowController struct {
	workflows  domain.WorkflowStore
	executions domain.ExecutionStore
	validator  *validation.WorkflowValidator
	engine     *engine.ExecutionEngine
}

type WorkflowControllerDependencies struct {
	WorkflowStore  domain.WorkflowStore
	ExecutionStore domain.ExecutionStore
	Validator      *validation.WorkflowValidator
	Engine         *engine.ExecutionEngine
}

func NewWorkflowController(deps WorkflowControllerDependencies) *WorkflowController {
	return &WorkflowController{
		workflows:  deps.WorkflowStore,
		executions: deps.ExecutionStore,
		validator:  deps.Validator,
		engine:     deps.Engine,
	}
}

type CreateWorkflowRequest struct {
	ProjectID   string        `json:"project_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Nodes       []domain.Node `json:"nodes"`
	Edges       []domain.Edge `json:"edges"`
}

// CreateWorkflow stores a new workflow graph. Graphs are saved as-is; the
// validation endpoint reports problems without blocking saves, so users can
// keep drafts around.
func (c *WorkflowController) CreateWorkflow(ctx *fiber.Ctx) error {
	var req CreateWorkflowRequest

	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.ProjectID == "" || req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "project_id and name are required")
	}

	workflow := domain.Workflow{
		ID:          xid.New().String(),
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Nodes:       req.Nodes,
		Edges:       req.Edges,
	}

	if err := c.workflows.CreateWorkflow(ctx.UserContext(), workflow); err != nil {
		log.Error().Err(err).Str("project_id", req.ProjectID).Msg("Failed to create workflow")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create workflow")
	}

	return ctx.Status(fiber.StatusCreated).JSON(workflow)
}

// GetWorkflow returns one workflow graph by id.
func (c *WorkflowController) GetWorkflow(ctx *fiber.Ctx) error {
	workflowID := ctx.Params("id")

	workflow, err := c.workflows.GetWorkflow(ctx.UserContext(), workflowID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Workflow not found")
		}

		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to get workflow")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to get workflow")
	}

	return ctx.JSON(workflow)
}

type ValidateWorkflowResponse struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ValidateWorkflow runs the full readiness check and reports every finding at
// once. It always answers 200 for a completed check; invalidity is data, not
// an HTTP failure.
func (c *WorkflowController) ValidateWorkflow(ctx *fiber.Ctx) error {
	workflowID := ctx.Params("id")

	workflow, err := c.workflows.GetWorkflow(ctx.UserContext(), workflowID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Workflow not found")
		}

		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to get workflow")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to get workflow")
	}

	result, err := c.validator.ValidateExecutionReadiness(ctx.UserContext(), workflow, workflow.ProjectID)
	if err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to validate workflow")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to validate workflow")
	}

	return ctx.JSON(ValidateWorkflowResponse{
		IsValid:  result.IsValid(),
		Errors:   result.Errors,
		Warnings: result.Warnings,
	})
}

type ExecuteWorkflowRequest struct {
	TriggeredBy string `json:"triggered_by"`
}

type ExecuteWorkflowResponse struct {
	Execution *domain.WorkflowExecution `json:"execution"`
	Error     string                    `json:"error,omitempty"`
}

// ExecuteWorkflow triggers a synchronous run. Validation failures answer 422
// with the full finding list and leave no execution record. A run that starts
// and fails mid-graph answers 200 with the failed record; the record is the
// source of truth for what happened.
func (c *WorkflowController) ExecuteWorkflow(ctx *fiber.Ctx) error {
	workflowID := ctx.Params("id")

	var req ExecuteWorkflowRequest
	if err := ctx.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	execution, err := c.engine.Execute(ctx.UserContext(), workflowID, req.TriggeredBy)
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Workflow not found")
		}

		var validationFailed *domain.ValidationFailedError
		if errors.As(err, &validationFailed) {
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "Workflow is not ready to execute",
				"errors":  validationFailed.Errors,
			})
		}

		if execution != nil {
			return ctx.JSON(ExecuteWorkflowResponse{
				Execution: execution,
				Error:     execution.ErrorMessage,
			})
		}

		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to execute workflow")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to execute workflow")
	}

	return ctx.JSON(ExecuteWorkflowResponse{Execution: execution})
}

// GetExecution returns one execution record by id.
func (c *WorkflowController) GetExecution(ctx *fiber.Ctx) error {
	executionID := ctx.Params("id")

	execution, err := c.executions.GetExecution(ctx.UserContext(), executionID)
	if err != nil {
		if errors.Is(err, domain.ErrExecutionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Execution not found")
		}

		log.Error().Err(err).Str("execution_id", executionID).Msg("Failed to get execution")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to get execution")
	}

	return ctx.JSON(execution)
}
