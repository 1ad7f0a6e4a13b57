package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/insightloop/insightloop/pkg/domain"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const executionsCollection = "workflow_executions"

type ExecutionStore struct {
	database *mongo.Database
}

func NewExecutionStore(database *mongo.Database) *ExecutionStore {
	store := &ExecutionStore{
		database: database,
	}
	store.ensureIndexes()

	return store
}

func (s *ExecutionStore) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := s.database.Collection(executionsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "workflow_id", Value: 1},
				{Key: "started_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create indexes for workflow_executions")
	}
}

func (s *ExecutionStore) CreateExecution(ctx context.Context, execution *domain.WorkflowExecution) error {
	if execution.ID == "" {
		return fmt.Errorf("execution id is required")
	}

	collection := s.database.Collection(executionsCollection)

	_, err := collection.InsertOne(ctx, execution)
	if err != nil {
		return fmt.Errorf("failed to create execution %s: %w", execution.ID, err)
	}

	return nil
}

// UpdateExecution replaces the mutable fields of an existing record. Each
// state transition of a run calls this once.
func (s *ExecutionStore) UpdateExecution(ctx context.Context, execution *domain.WorkflowExecution) error {
	collection := s.database.Collection(executionsCollection)

	update := bson.M{
		"$set": bson.M{
			"status":        execution.Status,
			"result_data":   execution.ResultData,
			"error_message": execution.ErrorMessage,
			"completed_at":  execution.CompletedAt,
		},
	}

	result, err := collection.UpdateOne(ctx, bson.M{"id": execution.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update execution %s: %w", execution.ID, err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrExecutionNotFound
	}

	return nil
}

func (s *ExecutionStore) GetExecution(ctx context.Context, executionID string) (*domain.WorkflowExecution, error) {
	collection := s.database.Collection(executionsCollection)

	var execution domain.WorkflowExecution

	err := collection.FindOne(ctx, bson.M{"id": executionID}).Decode(&execution)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to get execution %s: %w", executionID, err)
	}

	return &execution, nil
}
