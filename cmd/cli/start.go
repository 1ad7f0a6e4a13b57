package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/insightloop/insightloop/internal/controllers"
	"github.com/insightloop/insightloop/internal/schemas"
	"github.com/insightloop/insightloop/internal/server"
	mongostore "github.com/insightloop/insightloop/internal/storage/mongo"
	redisstore "github.com/insightloop/insightloop/internal/storage/redis"
	"github.com/insightloop/insightloop/pkg/domain"
	"github.com/insightloop/insightloop/pkg/engine"
	"github.com/insightloop/insightloop/pkg/validation"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the workflow API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart()
		},
	}

	return cmd
}

func runStart() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config, err := LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()

	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}

	if err := mongoClient.Ping(connectCtx, readpref.Primary()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping MongoDB")
	}

	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()

	database := mongoClient.Database(config.MongoDatabase)

	workflowStore := mongostore.NewWorkflowStore(database)
	executionStore := mongostore.NewExecutionStore(database)
	projectStore := mongostore.NewProjectStore(database)

	var lookup domain.DependencyLookup = projectStore

	if config.RedisAddress != "" {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     config.RedisAddress,
			Password: config.RedisPassword,
		})

		lookup = redisstore.NewCachedLookup(redisstore.CachedLookupDeps{
			Client: redisClient,
			Next:   projectStore,
			TTL:    config.LookupCacheTTL,
		})

		log.Info().Str("redis_address", config.RedisAddress).Msg("Dependency lookup cache enabled")
	}

	schemaRegistry, err := schemas.NewRegistry()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build schema registry")
	}

	// No persona or discussion service is wired in this binary, so the
	// selector stubs those types and validation must warn about them too.
	selectorDeps := engine.ExecutorSelectorDeps{}

	validator := validation.NewWorkflowValidator(validation.WorkflowValidatorDeps{
		SchemaRegistry:  schemaRegistry,
		Lookup:          lookup,
		OutOfScopeTypes: engine.StubbedNodeTypes(selectorDeps),
	})

	selector := engine.NewDefaultExecutorSelector(selectorDeps)

	executionEngine := engine.NewExecutionEngine(engine.ExecutionEngineDeps{
		WorkflowStore:  workflowStore,
		ExecutionStore: executionStore,
		Validator:      validator,
		Selector:       selector,
	})

	workflowController := controllers.NewWorkflowController(controllers.WorkflowControllerDependencies{
		WorkflowStore:  workflowStore,
		ExecutionStore: executionStore,
		Validator:      validator,
		Engine:         executionEngine,
	})

	app := server.NewHTTPServer(server.HTTPServerDependencies{
		WorkflowController: workflowController,
	})

	go func() {
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown failed")
		}
	}()

	log.Info().Str("address", config.HTTPAddress).Msg("Starting workflow API server")

	if err := app.Listen(config.HTTPAddress); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
	}

	log.Info().Msg("Workflow API server stopped")

	return nil
}
