package server

import (
	"time"

	"github.com/insightloop/insightloop/internal/controllers"
	"github.com/insightloop/insightloop/internal/version"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

type HTTPServerDependencies struct {
	WorkflowController *controllers.WorkflowController
}

func NewHTTPServer(deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName: "insightloop",
	})

	router.Use(recover.New())
	router.Use(cors.New())
	router.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return uuid.NewString()
		},
	}))
	router.Use(logger.New())

	// Health check endpoint (no authentication required)
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "insightloop",
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := router.Group("/api/v1")

	workflows := api.Group("/workflows")
	workflows.Post("/", deps.WorkflowController.CreateWorkflow)
	workflows.Get("/:id", deps.WorkflowController.GetWorkflow)
	workflows.Post("/:id/validate", deps.WorkflowController.ValidateWorkflow)
	workflows.Post("/:id/execute", deps.WorkflowController.ExecuteWorkflow)

	executions := api.Group("/executions")
	executions.Get("/:id", deps.WorkflowController.GetExecution)

	return router
}
